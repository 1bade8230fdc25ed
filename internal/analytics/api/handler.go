package analytics_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-tradein/internal/analytics"
	"ms-tradein/internal/auth"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

const defaultWindow = 30 * 24 * time.Hour

type AnalyticsService interface {
	GetRecyclerAnalytics(ctx context.Context, recyclerID string, from, to time.Time) (*analytics.RecyclerAnalytics, error)
}

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service AnalyticsService
	Logger  *logger.Logger
	Now     func() time.Time
}

// NewHandler creates a new analytics handler
func NewHandler(service AnalyticsService, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger, Now: time.Now}
}

// RegisterRoutes registers the analytics routes on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(auth.RequireRole(models.RoleRecycler, models.RoleAdmin)).
		Get("/analytics/recyclers/{recyclerId}", h.GetRecyclerAnalytics)
}

// GetRecyclerAnalytics serves ?from=&to= (RFC 3339 or YYYY-MM-DD), defaulting
// to the last 30 days. Recyclers only see their own figures.
func (h *Handler) GetRecyclerAnalytics(w http.ResponseWriter, r *http.Request) {
	recyclerID := chi.URLParam(r, "recyclerId")
	actor, _ := auth.ActorFromContext(r.Context())

	if !actor.CanActOn(recyclerID) {
		h.Logger.LogSecurity("FORBIDDEN", fmt.Sprintf("%s %s requested analytics of %s", actor.Role, actor.ID, recyclerID))
		utils.WriteError(w, http.StatusForbidden, utils.CodeForbidden, "you can only view your own analytics", "")
		return
	}

	to := h.Now().UTC()
	from := to.Add(-defaultWindow)
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = parseTime(v); err != nil {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, err.Error(), "from")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = parseTime(v); err != nil {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, err.Error(), "to")
			return
		}
	}

	h.Logger.Info("ANALYTICS", fmt.Sprintf("Recycler analytics for %s from %s to %s", recyclerID, from.Format(time.RFC3339), to.Format(time.RFC3339)))

	result, err := h.Service.GetRecyclerAnalytics(r.Context(), recyclerID, from, to)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, verr.Message, verr.Field)
			return
		}
		h.Logger.Error("ANALYTICS", fmt.Sprintf("Failed to get analytics for %s: %v", recyclerID, err))
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "failed to retrieve analytics", "")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Analytics retrieved", result)
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use RFC 3339 or YYYY-MM-DD", v)
	}
	return t, nil
}
