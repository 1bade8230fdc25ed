package analytics_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-tradein/internal/analytics"
	"ms-tradein/internal/auth"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) GetRecyclerAnalytics(ctx context.Context, recyclerID string, from, to time.Time) (*analytics.RecyclerAnalytics, error) {
	args := m.Called(recyclerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.RecyclerAnalytics), args.Error(1)
}

var now = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func serve(t *testing.T, svc *MockAnalytics, actor models.Actor, path string) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	h := NewHandler(svc, logger.Discard())
	h.Now = func() time.Time { return now }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithActor(req.Context(), actor)))
		})
	})
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestGetRecyclerAnalytics_DefaultWindow(t *testing.T) {
	svc := new(MockAnalytics)
	svc.On("GetRecyclerAnalytics", "rec-1", now.Add(-defaultWindow), now).
		Return(&analytics.RecyclerAnalytics{RecyclerID: "rec-1", TotalOrders: 4}, nil)

	rec, resp := serve(t, svc, models.Actor{ID: "rec-1", Role: models.RoleRecycler}, "/analytics/recyclers/rec-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestGetRecyclerAnalytics_ExplicitWindow(t *testing.T) {
	svc := new(MockAnalytics)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.On("GetRecyclerAnalytics", "rec-1", from, to).Return(&analytics.RecyclerAnalytics{}, nil)

	rec, _ := serve(t, svc, models.Actor{ID: "adm", Role: models.RoleAdmin}, "/analytics/recyclers/rec-1?from=2025-03-01&to=2025-03-15T12:00:00Z")
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetRecyclerAnalytics_OtherRecyclerForbidden(t *testing.T) {
	svc := new(MockAnalytics)
	rec, resp := serve(t, svc, models.Actor{ID: "rec-2", Role: models.RoleRecycler}, "/analytics/recyclers/rec-1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, utils.CodeForbidden, resp.Code)
	svc.AssertNotCalled(t, "GetRecyclerAnalytics", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRecyclerAnalytics_BadTime(t *testing.T) {
	svc := new(MockAnalytics)
	rec, resp := serve(t, svc, models.Actor{ID: "rec-1", Role: models.RoleRecycler}, "/analytics/recyclers/rec-1?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "from", resp.Field)
}
