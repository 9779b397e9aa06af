package user

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymhub/internal/apperror"
	"gymhub/internal/auth"
)

var testKeys = auth.Keys{Access: "access-secret", Refresh: "refresh-secret"}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) LockByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Signup(t *testing.T) {
	baseReq := SignupRequest{
		Username:  "coach",
		Email:     "Coach@Example.com",
		Password:  "secret123",
		FirstName: "Carl",
	}

	tests := []struct {
		name         string
		roles        []string
		setupMocks   func(*MockRepository)
		expectedKind apperror.Kind
		expectedRole auth.Role
	}{
		{
			name:  "highest priority role wins",
			roles: []string{"staff", "trainer"},
			setupMocks: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "coach").Return(false, nil)
				m.On("EmailExists", mock.Anything, "Coach@Example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
					return u.Role == auth.RoleTrainer && u.Email == "coach@example.com" && u.PasswordHash != "secret123"
				})).Return(&User{ID: 1, Username: "coach", Email: "coach@example.com", Role: auth.RoleTrainer, Enabled: true}, nil)
			},
			expectedRole: auth.RoleTrainer,
		},
		{
			name: "no roles defaults to member",
			setupMocks: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "coach").Return(false, nil)
				m.On("EmailExists", mock.Anything, "Coach@Example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
					return u.Role == auth.RoleMember
				})).Return(&User{ID: 2, Username: "coach", Email: "coach@example.com", Role: auth.RoleMember, Enabled: true}, nil)
			},
			expectedRole: auth.RoleMember,
		},
		{
			name: "username taken",
			setupMocks: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "coach").Return(true, nil)
			},
			expectedKind: apperror.KindConflict,
		},
		{
			name: "email in use",
			setupMocks: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "coach").Return(false, nil)
				m.On("EmailExists", mock.Anything, "Coach@Example.com").Return(true, nil)
			},
			expectedKind: apperror.KindConflict,
		},
		{
			name: "concurrent duplicate caught by constraint",
			setupMocks: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "coach").Return(false, nil)
				m.On("EmailExists", mock.Anything, "Coach@Example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, &pq.Error{Code: "23505", Constraint: constraintUsername})
			},
			expectedKind: apperror.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			svc := NewService(repo, testKeys)

			req := baseReq
			req.Roles = tt.roles
			resp, err := svc.Signup(context.Background(), req)

			if tt.expectedKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, apperror.KindOf(err))
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, resp.User.Role)
				assert.NotEmpty(t, resp.AccessToken)
				assert.NotEmpty(t, resp.RefreshToken)

				claims, err := testKeys.Parse(resp.AccessToken, auth.KindAccess)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, claims.Role)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Signin(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	tests := []struct {
		name         string
		password     string
		setupMocks   func(*MockRepository)
		expectedKind apperror.Kind
	}{
		{
			name:     "valid credentials",
			password: "secret123",
			setupMocks: func(m *MockRepository) {
				m.On("FindByLogin", mock.Anything, "coach").
					Return(&User{ID: 1, Email: "c@example.com", PasswordHash: hash, Role: auth.RoleTrainer, Enabled: true}, nil)
			},
		},
		{
			name:     "unknown login",
			password: "secret123",
			setupMocks: func(m *MockRepository) {
				m.On("FindByLogin", mock.Anything, "coach").Return(nil, sql.ErrNoRows)
			},
			expectedKind: apperror.KindUnauthorized,
		},
		{
			name:     "wrong password",
			password: "nope12345",
			setupMocks: func(m *MockRepository) {
				m.On("FindByLogin", mock.Anything, "coach").
					Return(&User{ID: 1, PasswordHash: hash, Role: auth.RoleTrainer, Enabled: true}, nil)
			},
			expectedKind: apperror.KindUnauthorized,
		},
		{
			name:     "disabled account",
			password: "secret123",
			setupMocks: func(m *MockRepository) {
				m.On("FindByLogin", mock.Anything, "coach").
					Return(&User{ID: 1, PasswordHash: hash, Role: auth.RoleTrainer}, nil)
			},
			expectedKind: apperror.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			svc := NewService(repo, testKeys)

			resp, err := svc.Signin(context.Background(), SigninRequest{Login: "coach", Password: tt.password})
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, apperror.KindOf(err))
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Bearer", resp.TokenType)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Refresh_UsesStoredRole(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testKeys)

	refresh, err := testKeys.Sign(auth.Identity{Caller: auth.Caller{ID: 4, Role: auth.RoleMember}, Email: "m@example.com"}, auth.KindRefresh)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, 4).
		Return(&User{ID: 4, Email: "m@example.com", Role: auth.RoleStaff, Enabled: true}, nil)

	resp, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := testKeys.Parse(resp.AccessToken, auth.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, claims.Role)
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	svc := NewService(new(MockRepository), testKeys)

	// Signed with the refresh secret so only the kind check can reject it.
	sameSecret := auth.Keys{Access: testKeys.Refresh, Refresh: testKeys.Refresh}
	access, err := sameSecret.Sign(auth.Identity{Caller: auth.Caller{ID: 4, Role: auth.RoleMember}, Email: "m@example.com"}, auth.KindAccess)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestService_Update(t *testing.T) {
	admin := auth.Caller{ID: 1, Role: auth.RoleAdmin}
	self := auth.Caller{ID: 5, Role: auth.RoleMember}
	other := auth.Caller{ID: 6, Role: auth.RoleMember}
	trainerRole := "TRAINER"
	newName := "Maria"

	tests := []struct {
		name         string
		caller       auth.Caller
		req          UpdateRequest
		setupMocks   func(*MockRepository)
		expectedKind apperror.Kind
	}{
		{
			name:   "member updates own profile",
			caller: self,
			req:    UpdateRequest{FirstName: &newName},
			setupMocks: func(m *MockRepository) {
				m.On("FindByID", mock.Anything, 5).Return(&User{ID: 5, FirstName: "Mary", Role: auth.RoleMember}, nil)
				m.On("Update", mock.Anything, mock.MatchedBy(func(u *User) bool { return u.FirstName == "Maria" })).
					Return(&User{ID: 5, FirstName: "Maria", Role: auth.RoleMember}, nil)
			},
		},
		{
			name:         "member cannot update someone else",
			caller:       other,
			req:          UpdateRequest{FirstName: &newName},
			setupMocks:   func(m *MockRepository) {},
			expectedKind: apperror.KindForbidden,
		},
		{
			name:   "member cannot change own role",
			caller: self,
			req:    UpdateRequest{Role: &trainerRole},
			setupMocks: func(m *MockRepository) {
				m.On("FindByID", mock.Anything, 5).Return(&User{ID: 5, Role: auth.RoleMember}, nil)
			},
			expectedKind: apperror.KindForbidden,
		},
		{
			name:   "admin changes role",
			caller: admin,
			req:    UpdateRequest{Role: &trainerRole},
			setupMocks: func(m *MockRepository) {
				m.On("FindByID", mock.Anything, 5).Return(&User{ID: 5, Role: auth.RoleMember}, nil)
				m.On("Update", mock.Anything, mock.MatchedBy(func(u *User) bool { return u.Role == auth.RoleTrainer })).
					Return(&User{ID: 5, Role: auth.RoleTrainer}, nil)
			},
		},
		{
			name:   "missing user",
			caller: admin,
			req:    UpdateRequest{FirstName: &newName},
			setupMocks: func(m *MockRepository) {
				m.On("FindByID", mock.Anything, 5).Return(nil, sql.ErrNoRows)
			},
			expectedKind: apperror.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			svc := NewService(repo, testKeys)

			_, err := svc.Update(context.Background(), tt.caller, 5, tt.req)
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, apperror.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, 9).Return(ErrUserNotFound)

	err := NewService(repo, testKeys).Delete(context.Background(), 9)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "User not found", apperror.Message(err))
}
