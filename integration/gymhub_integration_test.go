//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymhub/internal/apperror"
	"gymhub/internal/auth"
	"gymhub/internal/config"
	"gymhub/internal/gymclass"
	"gymhub/internal/membership"
	"gymhub/internal/payment"
	"gymhub/internal/registration"
	"gymhub/internal/server"
	"gymhub/internal/session"
	"gymhub/internal/user"
)

type quietNotifier struct{}

func (quietNotifier) SendClassRegistration(context.Context, string, string, string, string) error {
	return nil
}

func (quietNotifier) SendClassCancellation(context.Context, string, string, string) error {
	return nil
}

func (quietNotifier) SendSessionScheduled(context.Context, string, string, string, time.Time, int) error {
	return nil
}

func (quietNotifier) SendPaymentReceipt(context.Context, string, string, string, int64) error {
	return nil
}

func (quietNotifier) SendMembershipActivated(context.Context, string, string, string, time.Time) error {
	return nil
}

func setupTestDB(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	if testDB == nil {
		t.Skip("Skipping integration test: no database")
	}

	tables := []string{"payments", "equipment", "memberships", "training_sessions", "class_registrations", "gym_classes", "users"}
	for _, table := range tables {
		_, err := testDB.Exec(fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err, "Failed to clean table "+table)
	}
}

func createTestUser(t *testing.T, username string, role auth.Role) *user.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	u, err := user.NewRepository(testDB).Create(context.Background(), &user.User{
		Username:     username,
		Email:        username + "@gym.test",
		PasswordHash: hash,
		FirstName:    username,
		LastName:     "Test",
		Role:         role,
		Enabled:      true,
	})
	require.NoError(t, err)
	return u
}

func createTestClass(t *testing.T, trainerID, capacity int) *gymclass.GymClass {
	t.Helper()
	svc := gymclass.NewService(gymclass.NewRepository(testDB), gymclass.NewTransactor(testDB))
	g, err := svc.Create(context.Background(), gymclass.ClassRequest{
		Name:         "Evening Spin",
		Type:         string(gymclass.TypeSpinning),
		TrainerID:    trainerID,
		StartTime:    "18:00",
		EndTime:      "19:00",
		MaxCapacity:  capacity,
		Location:     "Studio B",
		ScheduleDays: "TUE,THU",
	})
	require.NoError(t, err)
	return g
}

func registrationService() registration.Service {
	return registration.NewService(
		registration.NewRepository(testDB),
		registration.NewAnalyticsRepository(testDB),
		registration.NewTransactor(testDB),
		quietNotifier{},
	)
}

func TestClassCapacity_Integration(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	staff := createTestUser(t, "frontdesk", auth.RoleStaff)
	trainer := createTestUser(t, "coach", auth.RoleTrainer)
	a := createTestUser(t, "alice", auth.RoleMember)
	b := createTestUser(t, "bob", auth.RoleMember)
	c := createTestUser(t, "carol", auth.RoleMember)
	class := createTestClass(t, trainer.ID, 2)

	svc := registrationService()
	desk := auth.Caller{ID: staff.ID, Role: auth.RoleStaff}

	regA, err := svc.Register(ctx, desk, registration.RegisterRequest{MemberID: a.ID, GymClassID: class.ID})
	require.NoError(t, err)
	_, err = svc.Register(ctx, desk, registration.RegisterRequest{MemberID: b.ID, GymClassID: class.ID})
	require.NoError(t, err)

	_, err = svc.Register(ctx, desk, registration.RegisterRequest{MemberID: c.ID, GymClassID: class.ID})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Class is already full", apperror.Message(err))

	classes := gymclass.NewRepository(testDB)
	full, err := classes.FindByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, full.CurrentEnrollment)
	assert.Equal(t, gymclass.StatusFull, full.Status)

	_, err = svc.Cancel(ctx, auth.Caller{ID: a.ID, Role: auth.RoleMember}, regA.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, auth.Caller{ID: a.ID, Role: auth.RoleMember}, regA.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = svc.Register(ctx, auth.Caller{ID: c.ID, Role: auth.RoleMember},
		registration.RegisterRequest{MemberID: c.ID, GymClassID: class.ID})
	require.NoError(t, err)

	after, err := classes.FindByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.CurrentEnrollment)
}

func TestConcurrentRegistrations_Integration(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	staff := createTestUser(t, "frontdesk", auth.RoleStaff)
	trainer := createTestUser(t, "coach", auth.RoleTrainer)
	class := createTestClass(t, trainer.ID, 3)

	const members = 10
	memberIDs := make([]int, members)
	for i := range memberIDs {
		memberIDs[i] = createTestUser(t, fmt.Sprintf("member%d", i), auth.RoleMember).ID
	}

	svc := registrationService()
	desk := auth.Caller{ID: staff.ID, Role: auth.RoleStaff}

	var (
		wg        sync.WaitGroup
		succeeded int32
	)
	for _, id := range memberIDs {
		wg.Add(1)
		go func(memberID int) {
			defer wg.Done()
			_, err := svc.Register(ctx, desk, registration.RegisterRequest{MemberID: memberID, GymClassID: class.ID})
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
				return
			}
			assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		}(id)
	}
	wg.Wait()

	assert.EqualValues(t, 3, succeeded)

	g, err := gymclass.NewRepository(testDB).FindByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, g.CurrentEnrollment)

	n, err := registration.NewRepository(testDB).CountRegistered(ctx, class.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestDuplicateRegistration_Integration(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	trainer := createTestUser(t, "coach", auth.RoleTrainer)
	member := createTestUser(t, "dana", auth.RoleMember)
	class := createTestClass(t, trainer.ID, 5)

	svc := registrationService()
	self := auth.Caller{ID: member.ID, Role: auth.RoleMember}
	req := registration.RegisterRequest{MemberID: member.ID, GymClassID: class.ID}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, self, req)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, "Member is already registered for this class", apperror.Message(err))
	}
	assert.Equal(t, 1, ok)
}

func TestTrainerOverlap_Integration(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	trainer := createTestUser(t, "coach", auth.RoleTrainer)
	m1 := createTestUser(t, "erin", auth.RoleMember)
	m2 := createTestUser(t, "frank", auth.RoleMember)

	svc := session.NewService(session.NewRepository(testDB), session.NewTransactor(testDB), quietNotifier{})
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	_, err := svc.Create(ctx, session.SessionRequest{
		TrainerID: trainer.ID, MemberID: m1.ID, Type: string(session.TypePersonalTraining),
		ScheduledDate: start, Duration: 60,
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		offset  time.Duration
		minutes int
		wantErr bool
	}{
		{"starts inside existing", 30 * time.Minute, 60, true},
		{"contains existing", -30 * time.Minute, 120, true},
		{"ends inside existing", -30 * time.Minute, 45, true},
		{"back to back after", 60 * time.Minute, 30, false},
		{"back to back before", -30 * time.Minute, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := svc.Create(ctx, session.SessionRequest{
				TrainerID: trainer.ID, MemberID: m2.ID, Type: string(session.TypeConsultation),
				ScheduledDate: start.Add(tt.offset), Duration: tt.minutes,
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
				assert.Equal(t, "Trainer is not available at the scheduled time", apperror.Message(err))
				return
			}
			require.NoError(t, err)
			_, err = svc.UpdateStatus(ctx, s.ID, session.StatusCancelled)
			require.NoError(t, err)
		})
	}
}

func TestSingleActiveMembership_Integration(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	member := createTestUser(t, "gina", auth.RoleMember)
	svc := membership.NewService(membership.NewRepository(testDB), membership.NewTransactor(testDB), quietNotifier{})

	var (
		wg        sync.WaitGroup
		succeeded int32
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, membership.MembershipRequest{
				UserID:    member.ID,
				Type:      string(membership.TypeBasic),
				StartDate: time.Now(),
			})
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
				return
			}
			assert.Equal(t, "User already has an active membership", apperror.Message(err))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded)

	active, err := svc.HasActive(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestPaymentStateMachine_Integration(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	member := createTestUser(t, "hank", auth.RoleMember)
	svc := payment.NewService(payment.NewRepository(testDB), user.NewRepository(testDB), quietNotifier{})

	p, err := svc.CreateMembershipPayment(ctx, payment.QuickPaymentRequest{
		UserID: member.ID, AmountCents: 4999, Method: string(payment.MethodCash),
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	require.NotNil(t, p.DueDate)

	var (
		wg        sync.WaitGroup
		processed int32
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Process(ctx, p.ID); err == nil {
				atomic.AddInt32(&processed, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, processed)

	_, err = svc.Cancel(ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	refunded, err := svc.Refund(ctx, p.ID, "duplicate charge")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, refunded.Status)
	assert.Equal(t, "duplicate charge", refunded.Notes)

	total, err := svc.TotalPaidByUser(ctx, member.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestHTTPSelfRegistration_Integration(t *testing.T) {
	setupTestDB(t)
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:      "test",
		JWTSecret:        "integration-access",
		JWTRefreshSecret: "integration-refresh",
		CORSOrigins:      []string{"*"},
		RateLimit:        config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	router := server.NewRouter(cfg, server.NewHandlers(testDB, cfg, quietNotifier{}), func(c *gin.Context) { c.Next() })

	call := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	signup := func(username string, roles ...string) user.AuthResponse {
		w := call(http.MethodPost, "/api/auth/signup", "", user.SignupRequest{
			Username: username, Email: username + "@gym.test", Password: "Passw0rd!",
			FirstName: username, LastName: "Test", Roles: roles,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp user.AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	staff := signup("desk", "staff")
	trainer := signup("coach", "trainer")
	member := signup("ivy")
	other := signup("jack")

	w := call(http.MethodPost, "/api/gym-classes", staff.AccessToken, gymclass.ClassRequest{
		Name: "Lunch Yoga", Type: "YOGA", TrainerID: trainer.User.ID,
		StartTime: "12:00", EndTime: "13:00", MaxCapacity: 1, ScheduleDays: "MON",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var class gymclass.GymClass
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &class))

	w = call(http.MethodPost, "/api/class-registrations/register", member.AccessToken,
		registration.RegisterRequest{MemberID: other.User.ID, GymClassID: class.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(http.MethodPost, "/api/class-registrations/register", member.AccessToken,
		registration.RegisterRequest{MemberID: member.User.ID, GymClassID: class.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(http.MethodPost, "/api/class-registrations/register", other.AccessToken,
		registration.RegisterRequest{MemberID: other.User.ID, GymClassID: class.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	var errResp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "CONFLICT", errResp.Code)
	assert.Equal(t, "Class is already full", errResp.Error)

	w = call(http.MethodGet, fmt.Sprintf("/api/class-registrations/member/%d", member.User.ID), member.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(http.MethodGet, fmt.Sprintf("/api/class-registrations/member/%d", member.User.ID), other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
