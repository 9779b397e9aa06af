package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gymhub/internal/apperror"
)

type MockService struct {
	mock.Mock
	Service
}

func (m *MockService) one(args mock.Arguments) (*Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockService) CreateClassPayment(ctx context.Context, req QuickPaymentRequest) (*Payment, error) {
	return m.one(m.Called(ctx, req))
}

func (m *MockService) Process(ctx context.Context, id int) (*Payment, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockService) Refund(ctx context.Context, id int, notes string) (*Payment, error) {
	return m.one(m.Called(ctx, id, notes))
}

func (m *MockService) Revenue(ctx context.Context, start, end time.Time) (int64, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) ListHighValue(ctx context.Context, minCents int64) ([]Payment, error) {
	args := m.Called(ctx, minCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payments/class", h.CreateQuick(TypeClassFee))
	r.PUT("/payments/:id/process", h.Process)
	r.PUT("/payments/:id/refund", h.Refund)
	r.GET("/payments/revenue", h.Revenue)
	r.GET("/payments/high-value", h.ListHighValue)
	r.GET("/payments/method/:method", h.ListByMethod)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateQuick(t *testing.T) {
	req := QuickPaymentRequest{UserID: 5, AmountCents: 1500, Method: "CASH"}
	svc := new(MockService)
	svc.On("CreateClassPayment", mock.Anything, req).Return(&Payment{ID: 1, Type: TypeClassFee, Status: StatusPending}, nil)
	r := setupRouter(NewHandler(svc))

	w := doJSON(r, http.MethodPost, "/payments/class", req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/payments/class", QuickPaymentRequest{UserID: 5, Method: "CASH"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Process(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMocks     func(m *MockService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "completed",
			path: "/payments/1/process",
			setupMocks: func(m *MockService) {
				m.On("Process", mock.Anything, 1).Return(&Payment{ID: 1, Status: StatusCompleted}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong status",
			path: "/payments/2/process",
			setupMocks: func(m *MockService) {
				m.On("Process", mock.Anything, 2).Return(nil, apperror.Conflict(Process.Conflict))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONFLICT",
		},
		{
			name: "missing",
			path: "/payments/3/process",
			setupMocks: func(m *MockService) {
				m.On("Process", mock.Anything, 3).Return(nil, apperror.NotFound("Payment not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id",
			path:           "/payments/abc/process",
			setupMocks:     func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMocks(svc)
			r := setupRouter(NewHandler(svc))

			w := doJSON(r, http.MethodPut, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var body map[string]string
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body["code"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Refund(t *testing.T) {
	svc := new(MockService)
	svc.On("Refund", mock.Anything, 4, "broken treadmill").Return(&Payment{ID: 4, Status: StatusRefunded, Notes: "broken treadmill"}, nil)
	r := setupRouter(NewHandler(svc))

	w := doJSON(r, http.MethodPut, "/payments/4/refund", RefundRequest{Notes: "broken treadmill"})
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Revenue(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc := new(MockService)
	svc.On("Revenue", mock.Anything, start, end).Return(int64(25000), nil)
	r := setupRouter(NewHandler(svc))

	w := doJSON(r, http.MethodGet, "/payments/revenue?start=2026-01-01T00:00:00Z&end=2026-02-01T00:00:00Z", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"amount_cents":25000}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/payments/revenue?start=2026-02-01T00:00:00Z&end=2026-01-01T00:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListHighValue(t *testing.T) {
	svc := new(MockService)
	svc.On("ListHighValue", mock.Anything, int64(10000)).Return([]Payment{{ID: 9, AmountCents: 12000}}, nil)
	r := setupRouter(NewHandler(svc))

	w := doJSON(r, http.MethodGet, "/payments/high-value?min=10000", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/payments/high-value?min=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListByMethod_Invalid(t *testing.T) {
	r := setupRouter(NewHandler(new(MockService)))

	w := doJSON(r, http.MethodGet, "/payments/method/barter", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
