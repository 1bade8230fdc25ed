package order_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-tradein/internal/auth"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) PlaceOrder(ctx context.Context, req models.CheckoutRequest) (*models.Order, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockService) GetOrder(ctx context.Context, actor models.Actor, orderID string) (*models.OrderDetails, error) {
	args := m.Called(actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderDetails), args.Error(1)
}

func (m *MockService) GetOrderByNumber(ctx context.Context, actor models.Actor, number string) (*models.OrderDetails, error) {
	args := m.Called(actor, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderDetails), args.Error(1)
}

func (m *MockService) SetOrderStatus(ctx context.Context, actor models.Actor, orderID, status, notes string) (*models.Order, error) {
	args := m.Called(actor, orderID, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockService) SetPaymentStatus(ctx context.Context, actor models.Actor, orderID, paymentStatus, transactionID string) (*models.Order, error) {
	args := m.Called(actor, orderID, paymentStatus, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockService) CreateCounterOffer(ctx context.Context, actor models.Actor, req models.CounterOfferRequest) (*models.CounterOffer, error) {
	args := m.Called(actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CounterOffer), args.Error(1)
}

func (m *MockService) ListCounterOffers(ctx context.Context, actor models.Actor, orderID string) ([]models.CounterOffer, error) {
	args := m.Called(actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CounterOffer), args.Error(1)
}

func (m *MockService) GetCounterOfferByToken(ctx context.Context, token string) (*models.PublicCounterOffer, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicCounterOffer), args.Error(1)
}

func (m *MockService) ResolveCounterOffer(ctx context.Context, token string, decision models.Decision, customerNotes string) (*models.CounterOffer, error) {
	args := m.Called(token, decision, customerNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CounterOffer), args.Error(1)
}

const jwtSecret = "handler-test-secret"

var (
	recycler = models.Actor{ID: "rec-1", Role: models.RoleRecycler}
	admin    = models.Actor{ID: "adm-1", Role: models.RoleAdmin}
	tok      = strings.Repeat("ab", 32)
)

func newRouter(svc *MockService) http.Handler {
	h := NewHandler(svc, logger.Discard())
	r := chi.NewRouter()
	r.Use(RequestLogger(logger.Discard()))
	RegisterRoutes(r, h, auth.Middleware(auth.NewHMACVerifier(jwtSecret), logger.Discard()))
	return r
}

func bearer(t *testing.T, actor models.Actor) string {
	t.Helper()
	c := &auth.Claims{Roles: []string{string(actor.Role)}}
	c.Subject = actor.ID
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	s, err := auth.NewHMACVerifier(jwtSecret).Sign(c)
	require.NoError(t, err)
	return "Bearer " + s
}

func call(t *testing.T, h http.Handler, method, path, body, authz string) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestPlaceOrder_Public(t *testing.T) {
	svc := new(MockService)
	svc.On("PlaceOrder", mock.MatchedBy(func(req models.CheckoutRequest) bool {
		return req.DeviceID == "dev-1" && req.Amount.Equal(decimal.RequireFromString("250"))
	})).Return(&models.Order{ID: "o-1", OrderNumber: "TI-20250301-AAAAAA"}, nil)

	rec, resp := call(t, newRouter(svc), http.MethodPost, "/api/orders",
		`{"deviceId":"dev-1","deviceName":"iPhone","recyclerId":"rec-1","customerName":"Jane","customerEmail":"j@example.com","amount":"250"}`, "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestPlaceOrder_ValidationNamesField(t *testing.T) {
	svc := new(MockService)
	svc.On("PlaceOrder", mock.Anything).Return(nil, models.NewValidationError("customerEmail", "customerEmail is required"))

	rec, resp := call(t, newRouter(svc), http.MethodPost, "/api/orders", `{"deviceId":"dev-1"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.CodeValidation, resp.Code)
	assert.Equal(t, "customerEmail", resp.Field)
}

func TestPlaceOrder_BadJSON(t *testing.T) {
	svc := new(MockService)
	rec, resp := call(t, newRouter(svc), http.MethodPost, "/api/orders", `{"deviceId":`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.CodeValidation, resp.Code)
	svc.AssertNotCalled(t, "PlaceOrder", mock.Anything)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := new(MockService)
	svc.On("SetOrderStatus", recycler, "o-1", "completed", "all good").
		Return(&models.Order{ID: "o-1", Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid}, nil)

	rec, resp := call(t, newRouter(svc), http.MethodPatch, "/api/orders/o-1/status",
		`{"status":"completed","notes":"all good"}`, bearer(t, recycler))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "paid", data["paymentStatus"])
	svc.AssertExpectations(t)
}

func TestGetOrderByNumber(t *testing.T) {
	svc := new(MockService)
	svc.On("GetOrderByNumber", admin, "TI-20250301-AAAAAA").
		Return(&models.OrderDetails{Order: &models.Order{ID: "o-1", OrderNumber: "TI-20250301-AAAAAA"}}, nil)
	svc.On("GetOrderByNumber", admin, "TI-20250301-ZZZZZZ").
		Return(nil, fmt.Errorf("order TI-20250301-ZZZZZZ: %w", models.ErrNotFound))

	router := newRouter(svc)
	rec, resp := call(t, router, http.MethodGet, "/api/orders/number/TI-20250301-AAAAAA", "", bearer(t, admin))
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "o-1", order["id"])

	rec, resp = call(t, router, http.MethodGet, "/api/orders/number/TI-20250301-ZZZZZZ", "", bearer(t, admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, utils.CodeNotFound, resp.Code)
	svc.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_RequiresAuth(t *testing.T) {
	svc := new(MockService)
	rec, resp := call(t, newRouter(svc), http.MethodPatch, "/api/orders/o-1/status", `{"status":"completed"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, utils.CodeUnauthorized, resp.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("order x: %w", models.ErrNotFound), http.StatusNotFound, utils.CodeNotFound},
		{"conflict", fmt.Errorf("modified: %w", models.ErrConflict), http.StatusConflict, utils.CodeConflict},
		{"forbidden", fmt.Errorf("order x: %w", models.ErrForbidden), http.StatusForbidden, utils.CodeForbidden},
		{"invalid status", models.NewValidationError("status", "unknown order status"), http.StatusBadRequest, utils.CodeValidation},
		{"internal", fmt.Errorf("driver: bad connection"), http.StatusInternalServerError, utils.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("SetOrderStatus", admin, "o-1", "processing", "").Return(nil, tc.err)

			rec, resp := call(t, newRouter(svc), http.MethodPatch, "/api/orders/o-1/status",
				`{"status":"processing"}`, bearer(t, admin))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, resp.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	svc := new(MockService)
	svc.On("GetOrder", admin, "o-1").Return(nil, fmt.Errorf("pq: password authentication failed"))

	_, resp := call(t, newRouter(svc), http.MethodGet, "/api/orders/o-1", "", bearer(t, admin))
	assert.Equal(t, "internal server error", resp.Message)
}

func TestUpdatePaymentStatus_RecyclerOnly(t *testing.T) {
	svc := new(MockService)
	svc.On("SetPaymentStatus", recycler, "o-1", "paid", "tx-9").
		Return(&models.Order{ID: "o-1", PaymentStatus: models.PaymentStatusPaid}, nil)
	router := newRouter(svc)

	rec, _ := call(t, router, http.MethodPatch, "/api/orders/o-1/payment-status",
		`{"paymentStatus":"paid","transactionId":"tx-9"}`, bearer(t, recycler))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := call(t, router, http.MethodPatch, "/api/orders/o-1/payment-status",
		`{"paymentStatus":"paid"}`, bearer(t, admin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, utils.CodeForbidden, resp.Code)
	svc.AssertNumberOfCalls(t, "SetPaymentStatus", 1)
}

func TestCreateCounterOffer(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateCounterOffer", recycler, mock.MatchedBy(func(req models.CounterOfferRequest) bool {
		return req.OrderID == "o-1" && req.AmendedPrice != nil && req.AmendedPrice.Equal(decimal.RequireFromString("199.50"))
	})).Return(&models.CounterOffer{ID: "co-1", Token: tok, Status: models.CounterOfferPending}, nil)
	router := newRouter(svc)

	rec, resp := call(t, router, http.MethodPost, "/api/counter-offers",
		`{"orderId":"o-1","amendedPrice":"199.50","reason":"scratches"}`, bearer(t, recycler))
	assert.Equal(t, http.StatusCreated, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, tok, data["token"])
	assert.NotContains(t, rec.Body.String(), "tokenHash")

	rec, _ = call(t, router, http.MethodPost, "/api/counter-offers",
		`{"orderId":"o-1","amendedPrice":"1","reason":"x"}`, bearer(t, admin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNumberOfCalls(t, "CreateCounterOffer", 1)
}

func TestGetCounterOfferByToken(t *testing.T) {
	svc := new(MockService)
	svc.On("GetCounterOfferByToken", tok).Return(&models.PublicCounterOffer{
		CounterOffer: &models.CounterOffer{ID: "co-1", TokenHash: "secret-hash", Status: models.CounterOfferPending},
		Order:        models.PublicOrderSummary{OrderNumber: "TI-1", DeviceName: "Pixel"},
	}, nil)

	rec, _ := call(t, newRouter(svc), http.MethodGet, "/api/counter-offers/token/"+tok, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.Contains(t, rec.Body.String(), `"deviceName":"Pixel"`)
}

func TestResolveCounterOffer(t *testing.T) {
	svc := new(MockService)
	svc.On("ResolveCounterOffer", tok, models.DecisionAccept, "thanks").
		Return(&models.CounterOffer{ID: "co-1", Status: models.CounterOfferAccepted}, nil)
	svc.On("ResolveCounterOffer", tok, models.DecisionDecline, "").
		Return(&models.CounterOffer{ID: "co-1", Status: models.CounterOfferDeclined}, nil)
	router := newRouter(svc)

	rec, resp := call(t, router, http.MethodPost, "/api/counter-offers/"+tok+"/accept", `{"customerNotes":"thanks"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Counter offer accepted", resp.Message)

	// empty body is allowed
	rec, resp = call(t, router, http.MethodPost, "/api/counter-offers/"+tok+"/decline", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Counter offer declined", resp.Message)
	svc.AssertExpectations(t)
}

func TestResolveCounterOffer_ExpiredAndConflict(t *testing.T) {
	svc := new(MockService)
	expired := &models.CounterOffer{ID: "co-1", Status: models.CounterOfferExpired}
	svc.On("ResolveCounterOffer", tok, models.DecisionAccept, "").
		Return(expired, fmt.Errorf("counter offer expired at x: %w", models.ErrExpired)).Once()
	svc.On("ResolveCounterOffer", tok, models.DecisionAccept, "").
		Return(nil, fmt.Errorf("counter offer has already been expired: %w", models.ErrConflict)).Once()
	router := newRouter(svc)

	rec, resp := call(t, router, http.MethodPost, "/api/counter-offers/"+tok+"/accept", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.CodeCounterOfferExpired, resp.Code)

	rec, resp = call(t, router, http.MethodPost, "/api/counter-offers/"+tok+"/accept", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, resp.Message, "already been expired")
}

func TestHealth(t *testing.T) {
	h := NewHandler(new(MockService), logger.Discard())
	r := chi.NewRouter()
	RegisterRoutes(r, h, func(next http.Handler) http.Handler { return next })

	rec, resp := call(t, r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	h.Ready = func(ctx context.Context) error { return fmt.Errorf("db down") }
	rec, _ = call(t, r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
