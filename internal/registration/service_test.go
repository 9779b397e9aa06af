package registration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymhub/internal/apperror"
	"gymhub/internal/auth"
	"gymhub/internal/gymclass"
	"gymhub/internal/gymclass/gymclasstest"
	"gymhub/internal/registration"
	"gymhub/internal/registration/registrationtest"
	"gymhub/internal/user"
	"gymhub/internal/user/usertest"
)

type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) StatsByDay(ctx context.Context, from, to time.Time) ([]registration.StatsByDay, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registration.StatsByDay), args.Error(1)
}

func (m *MockAnalytics) StatsByClass(ctx context.Context, from, to time.Time) ([]registration.StatsByClass, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registration.StatsByClass), args.Error(1)
}

type fixture struct {
	svc      registration.Service
	regs     *registrationtest.FakeRepository
	classes  *gymclasstest.FakeRepository
	notifier *registrationtest.Notifier
}

func member(id int) user.User {
	return user.User{ID: id, Username: "m", Email: "m@example.com", FirstName: "Member", Role: auth.RoleMember, Enabled: true}
}

func newFixture(capacity int, status gymclass.Status, analytics registration.AnalyticsRepository) *fixture {
	users := usertest.NewFakeRepository(member(5), member(6), member(7),
		user.User{ID: 2, Username: "coach", Role: auth.RoleTrainer})
	classes := gymclasstest.NewFakeRepository(gymclass.GymClass{
		ID: 1, Name: "Yoga", TrainerID: 2, StartTime: "09:00", EndTime: "10:00",
		MaxCapacity: capacity, Status: status, ScheduleDays: "MON,WED",
	})
	regs := registrationtest.NewFakeRepository()
	notifier := &registrationtest.Notifier{}
	tx := registrationtest.Transactor{Store: registration.Store{Registrations: regs, Classes: classes, Users: users}}

	return &fixture{
		svc:      registration.NewService(regs, analytics, tx, notifier),
		regs:     regs,
		classes:  classes,
		notifier: notifier,
	}
}

func self(id int) auth.Caller {
	return auth.Caller{ID: id, Role: auth.RoleMember}
}

func register(f *fixture, memberID int) (*registration.Registration, error) {
	return f.svc.Register(context.Background(), self(memberID), registration.RegisterRequest{MemberID: memberID, GymClassID: 1})
}

func TestService_CapacityScenario(t *testing.T) {
	f := newFixture(2, gymclass.StatusActive, nil)

	a, err := register(f, 5)
	require.NoError(t, err)
	_, err = register(f, 6)
	require.NoError(t, err)

	class := f.classes.Get(1)
	assert.Equal(t, 2, class.CurrentEnrollment)
	assert.Equal(t, gymclass.StatusFull, class.Status)

	_, err = register(f, 7)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Class is already full", apperror.Message(err))

	_, err = f.svc.Cancel(context.Background(), self(5), a.ID)
	require.NoError(t, err)

	class = f.classes.Get(1)
	assert.Equal(t, 1, class.CurrentEnrollment)
	assert.Equal(t, gymclass.StatusActive, class.Status)

	c, err := register(f, 7)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRegistered, c.Status)
	assert.Equal(t, 2, f.classes.Get(1).CurrentEnrollment)

	assert.Len(t, f.notifier.Registrations, 3)
	assert.Len(t, f.notifier.Cancellations, 1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name         string
		caller       auth.Caller
		req          registration.RegisterRequest
		status       gymclass.Status
		preRegister  bool
		expectedKind apperror.Kind
		expectedMsg  string
	}{
		{
			name:   "member registers self",
			caller: self(5),
			req:    registration.RegisterRequest{MemberID: 5, GymClassID: 1},
			status: gymclass.StatusActive,
		},
		{
			name:   "trainer registers member",
			caller: auth.Caller{ID: 2, Role: auth.RoleTrainer},
			req:    registration.RegisterRequest{MemberID: 5, GymClassID: 1},
			status: gymclass.StatusActive,
		},
		{
			name:         "member registers someone else",
			caller:       self(6),
			req:          registration.RegisterRequest{MemberID: 5, GymClassID: 1},
			status:       gymclass.StatusActive,
			expectedKind: apperror.KindForbidden,
			expectedMsg:  "Access denied",
		},
		{
			name:         "unknown member",
			caller:       auth.Caller{ID: 1, Role: auth.RoleAdmin},
			req:          registration.RegisterRequest{MemberID: 99, GymClassID: 1},
			status:       gymclass.StatusActive,
			expectedKind: apperror.KindNotFound,
			expectedMsg:  "Member or gym class not found",
		},
		{
			name:         "unknown class",
			caller:       self(5),
			req:          registration.RegisterRequest{MemberID: 5, GymClassID: 42},
			status:       gymclass.StatusActive,
			expectedKind: apperror.KindNotFound,
			expectedMsg:  "Member or gym class not found",
		},
		{
			name:         "already registered",
			caller:       self(5),
			req:          registration.RegisterRequest{MemberID: 5, GymClassID: 1},
			status:       gymclass.StatusActive,
			preRegister:  true,
			expectedKind: apperror.KindConflict,
			expectedMsg:  "Member is already registered for this class",
		},
		{
			name:         "inactive class",
			caller:       self(5),
			req:          registration.RegisterRequest{MemberID: 5, GymClassID: 1},
			status:       gymclass.StatusInactive,
			expectedKind: apperror.KindConflict,
			expectedMsg:  "Class is not available for registration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(3, tt.status, nil)
			if tt.preRegister {
				f.regs.Put(registration.Registration{MemberID: 5, GymClassID: 1, Status: registration.StatusRegistered})
				g := f.classes.Get(1)
				g.CurrentEnrollment = 1
				f.classes.Put(g)
			}
			before := f.classes.Get(1).CurrentEnrollment

			reg, err := f.svc.Register(context.Background(), tt.caller, tt.req)
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, apperror.KindOf(err))
				assert.Equal(t, tt.expectedMsg, apperror.Message(err))
				assert.Equal(t, before, f.classes.Get(1).CurrentEnrollment)
				assert.Empty(t, f.notifier.Registrations)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.MemberID, reg.MemberID)
			assert.Equal(t, before+1, f.classes.Get(1).CurrentEnrollment)
		})
	}
}

func TestService_Register_NotifierFailureKeepsRegistration(t *testing.T) {
	f := newFixture(2, gymclass.StatusActive, nil)
	f.notifier.Err = errors.New("redis down")

	reg, err := register(f, 5)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRegistered, reg.Status)
	assert.Equal(t, 1, f.classes.Get(1).CurrentEnrollment)
}

func TestService_Cancel(t *testing.T) {
	t.Run("second cancel conflicts and keeps enrollment", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)
		reg, err := register(f, 5)
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), self(5), reg.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, f.classes.Get(1).CurrentEnrollment)

		_, err = f.svc.Cancel(context.Background(), self(5), reg.ID)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.Equal(t, "Registration is already cancelled", apperror.Message(err))
		assert.Equal(t, 0, f.classes.Get(1).CurrentEnrollment)
	})

	t.Run("other member is forbidden", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)
		reg, err := register(f, 5)
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), self(6), reg.ID)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		assert.Equal(t, 1, f.classes.Get(1).CurrentEnrollment)
	})

	t.Run("staff may cancel", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)
		reg, err := register(f, 5)
		require.NoError(t, err)

		cancelled, err := f.svc.Cancel(context.Background(), auth.Caller{ID: 3, Role: auth.RoleStaff}, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, registration.StatusCancelled, cancelled.Status)
	})

	t.Run("unknown registration", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)

		_, err := f.svc.Cancel(context.Background(), self(5), 77)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("counter already at zero is left alone", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)
		reg := f.regs.Put(registration.Registration{MemberID: 5, GymClassID: 1, Status: registration.StatusRegistered})

		cancelled, err := f.svc.Cancel(context.Background(), self(5), reg.ID)
		require.NoError(t, err)
		assert.Equal(t, registration.StatusCancelled, cancelled.Status)
		assert.Equal(t, 0, f.classes.Get(1).CurrentEnrollment)
		assert.Equal(t, 0, f.classes.Saves)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		from           registration.Status
		to             registration.Status
		expectedKind   apperror.Kind
		wantEnrollment int
	}{
		{"attend stamps date", registration.StatusRegistered, registration.StatusAttended, "", 1},
		{"no-show keeps spot", registration.StatusRegistered, registration.StatusNoShow, "", 1},
		{"cancel releases spot", registration.StatusRegistered, registration.StatusCancelled, "", 0},
		{"cancelled cannot be reopened", registration.StatusCancelled, registration.StatusRegistered, apperror.KindConflict, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(3, gymclass.StatusActive, nil)
			g := f.classes.Get(1)
			g.CurrentEnrollment = 1
			f.classes.Put(g)
			reg := f.regs.Put(registration.Registration{MemberID: 5, GymClassID: 1, Status: tt.from})

			updated, err := f.svc.UpdateStatus(context.Background(), reg.ID, tt.to)
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, apperror.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
				if tt.to == registration.StatusAttended {
					assert.NotNil(t, updated.AttendanceDate)
				}
			}
			assert.Equal(t, tt.wantEnrollment, f.classes.Get(1).CurrentEnrollment)
		})
	}
}

func TestService_MarkAttendance(t *testing.T) {
	f := newFixture(2, gymclass.StatusActive, nil)
	reg, err := register(f, 5)
	require.NoError(t, err)

	attended, err := f.svc.MarkAttendance(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusAttended, attended.Status)
	require.NotNil(t, attended.AttendanceDate)

	n, err := f.svc.CountAttendedByMember(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestService_Register_AfterAttendance(t *testing.T) {
	f := newFixture(2, gymclass.StatusActive, nil)
	reg, err := register(f, 5)
	require.NoError(t, err)

	_, err = f.svc.MarkAttendance(context.Background(), reg.ID)
	require.NoError(t, err)

	_, err = register(f, 5)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Member is already registered for this class", apperror.Message(err))

	class := f.classes.Get(1)
	assert.Equal(t, 1, class.CurrentEnrollment)
	assert.Equal(t, gymclass.StatusActive, class.Status)

	ok, err := f.svc.IsRegistered(context.Background(), self(5), 5, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_Register_AfterCancel(t *testing.T) {
	f := newFixture(2, gymclass.StatusActive, nil)
	reg, err := register(f, 5)
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), self(5), reg.ID)
	require.NoError(t, err)

	again, err := register(f, 5)
	require.NoError(t, err)
	assert.NotEqual(t, reg.ID, again.ID)
	assert.Equal(t, 1, f.classes.Get(1).CurrentEnrollment)
}

// clashingRepository rejects status changes the way the partial unique index does.
type clashingRepository struct {
	*registrationtest.FakeRepository
}

func (r clashingRepository) UpdateStatus(ctx context.Context, id int, status registration.Status, attendanceDate *time.Time) (*registration.Registration, error) {
	return nil, &pq.Error{Code: pgerrcode.UniqueViolation, Constraint: "uq_class_registrations_active"}
}

func TestService_UpdateStatus_UniqueViolationIsConflict(t *testing.T) {
	users := usertest.NewFakeRepository(member(5))
	classes := gymclasstest.NewFakeRepository(gymclass.GymClass{
		ID: 1, Name: "Yoga", TrainerID: 2, StartTime: "09:00", EndTime: "10:00",
		MaxCapacity: 2, Status: gymclass.StatusActive, CurrentEnrollment: 1,
	})
	regs := clashingRepository{registrationtest.NewFakeRepository(registration.Registration{
		ID: 1, MemberID: 5, GymClassID: 1, Status: registration.StatusNoShow,
	})}
	tx := registrationtest.Transactor{Store: registration.Store{Registrations: regs, Classes: classes, Users: users}}
	svc := registration.NewService(regs, nil, tx, &registrationtest.Notifier{})

	_, err := svc.UpdateStatus(context.Background(), 1, registration.StatusRegistered)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, 1, classes.Get(1).CurrentEnrollment)
}

func TestService_Delete(t *testing.T) {
	t.Run("active registration frees its spot", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)
		reg, err := register(f, 5)
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(context.Background(), reg.ID))
		assert.Equal(t, 0, f.classes.Get(1).CurrentEnrollment)

		_, err = f.svc.GetByID(context.Background(), reg.ID)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("cancelled registration leaves counter", func(t *testing.T) {
		f := newFixture(2, gymclass.StatusActive, nil)
		reg, err := register(f, 5)
		require.NoError(t, err)
		_, err = f.svc.Cancel(context.Background(), self(5), reg.ID)
		require.NoError(t, err)
		_, err = register(f, 6)
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(context.Background(), reg.ID))
		assert.Equal(t, 1, f.classes.Get(1).CurrentEnrollment)
	})
}

func TestService_IsRegistered(t *testing.T) {
	f := newFixture(2, gymclass.StatusActive, nil)
	_, err := register(f, 5)
	require.NoError(t, err)

	ok, err := f.svc.IsRegistered(context.Background(), self(5), 5, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsRegistered(context.Background(), auth.Caller{ID: 2, Role: auth.RoleTrainer}, 6, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.IsRegistered(context.Background(), self(6), 5, 1)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestService_Analytics(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tests := []struct {
		name         string
		groupBy      string
		setupMocks   func(m *MockAnalytics)
		expectedKind apperror.Kind
	}{
		{
			name:    "by day",
			groupBy: registration.GroupByDay,
			setupMocks: func(m *MockAnalytics) {
				m.On("StatsByDay", mock.Anything, from, to).Return([]registration.StatsByDay{{Bucket: "2026-03-02"}}, nil)
			},
		},
		{
			name:    "by class",
			groupBy: registration.GroupByClass,
			setupMocks: func(m *MockAnalytics) {
				m.On("StatsByClass", mock.Anything, from, to).Return(nil, nil)
			},
		},
		{
			name:         "unknown grouping",
			groupBy:      "week",
			setupMocks:   func(m *MockAnalytics) {},
			expectedKind: apperror.KindInvalid,
		},
		{
			name:    "store failure",
			groupBy: registration.GroupByDay,
			setupMocks: func(m *MockAnalytics) {
				m.On("StatsByDay", mock.Anything, from, to).Return(nil, errors.New("boom"))
			},
			expectedKind: apperror.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analytics := new(MockAnalytics)
			tt.setupMocks(analytics)
			f := newFixture(2, gymclass.StatusActive, analytics)

			stats, err := f.svc.Analytics(context.Background(), tt.groupBy, from, to)
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, apperror.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.NotNil(t, stats)
			}
			analytics.AssertExpectations(t)
		})
	}
}
