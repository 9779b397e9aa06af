package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymhub/internal/api"
	"gymhub/internal/apperror"
	"gymhub/internal/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResponse), args.Error(1)
}

func (m *MockService) Signin(ctx context.Context, req SigninRequest) (*AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResponse), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RefreshResponse), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockService) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, caller auth.Caller, id int, req UpdateRequest) (*User, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(h *Handler, caller *auth.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if caller != nil {
		r.Use(func(c *gin.Context) {
			auth.SetCaller(c, *caller)
		})
	}
	r.POST("/auth/signup", h.Signup)
	r.GET("/auth/me", h.Me)
	r.GET("/users/trainers", h.ListByRole(auth.RoleTrainer))
	r.PUT("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func TestHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: `{"username":"coach","email":"c@example.com","password":"secret123","first_name":"Carl","roles":["trainer"]}`,
			setupMocks: func(m *MockService) {
				m.On("Signup", mock.Anything, mock.MatchedBy(func(r SignupRequest) bool { return r.Username == "coach" })).
					Return(&AuthResponse{AccessToken: "a", RefreshToken: "r", User: User{ID: 1, Role: auth.RoleTrainer}}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid body",
			body:           `{"username":"coach"`,
			setupMocks:     func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_ARGUMENT",
		},
		{
			name:           "weak password",
			body:           `{"username":"coach","email":"c@example.com","password":"password","first_name":"Carl"}`,
			setupMocks:     func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_ARGUMENT",
		},
		{
			name: "duplicate username",
			body: `{"username":"coach","email":"c@example.com","password":"secret123","first_name":"Carl"}`,
			setupMocks: func(m *MockService) {
				m.On("Signup", mock.Anything, mock.Anything).Return(nil, apperror.Conflict("Username is already taken"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMocks(svc)
			r := setupRouter(NewHandler(svc), nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var body api.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Me(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, 3).Return(&User{ID: 3, Username: "m"}, nil)
	r := setupRouter(NewHandler(svc), &auth.Caller{ID: 3, Role: auth.RoleMember})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"m"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestHandler_Me_Unauthenticated(t *testing.T) {
	r := setupRouter(NewHandler(new(MockService)), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_ListTrainers(t *testing.T) {
	svc := new(MockService)
	svc.On("ListByRole", mock.Anything, auth.RoleTrainer).Return([]User{{ID: 2, Role: auth.RoleTrainer}}, nil)
	r := setupRouter(NewHandler(svc), &auth.Caller{ID: 3, Role: auth.RoleMember})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/trainers", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Update_PassesCaller(t *testing.T) {
	caller := auth.Caller{ID: 5, Role: auth.RoleMember}
	svc := new(MockService)
	svc.On("Update", mock.Anything, caller, 5, mock.AnythingOfType("UpdateRequest")).
		Return(nil, apperror.Forbidden("Only administrators may change role or enabled status"))
	r := setupRouter(NewHandler(svc), &caller)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/5", bytes.NewBufferString(`{"role":"ADMIN"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMocks     func(*MockService)
		expectedStatus int
	}{
		{"deleted", "/users/4", func(m *MockService) { m.On("Delete", mock.Anything, 4).Return(nil) }, http.StatusNoContent},
		{"missing", "/users/4", func(m *MockService) {
			m.On("Delete", mock.Anything, 4).Return(apperror.NotFound("User not found"))
		}, http.StatusNotFound},
		{"bad id", "/users/abc", func(m *MockService) {}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMocks(svc)
			r := setupRouter(NewHandler(svc), &auth.Caller{ID: 1, Role: auth.RoleAdmin})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
