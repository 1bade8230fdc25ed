package order_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tradein/internal/auth"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

const maxBodyBytes = 1 << 20

// TradeInService is what the handlers need from the order service.
type TradeInService interface {
	PlaceOrder(ctx context.Context, req models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, actor models.Actor, orderID string) (*models.OrderDetails, error)
	GetOrderByNumber(ctx context.Context, actor models.Actor, number string) (*models.OrderDetails, error)
	SetOrderStatus(ctx context.Context, actor models.Actor, orderID, status, notes string) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, actor models.Actor, orderID, paymentStatus, transactionID string) (*models.Order, error)
	CreateCounterOffer(ctx context.Context, actor models.Actor, req models.CounterOfferRequest) (*models.CounterOffer, error)
	ListCounterOffers(ctx context.Context, actor models.Actor, orderID string) ([]models.CounterOffer, error)
	GetCounterOfferByToken(ctx context.Context, token string) (*models.PublicCounterOffer, error)
	ResolveCounterOffer(ctx context.Context, token string, decision models.Decision, customerNotes string) (*models.CounterOffer, error)
}

type Handler struct {
	Service TradeInService
	Logger  *logger.Logger
	// Ready backs /healthz; nil means always healthy.
	Ready func(ctx context.Context) error
}

func NewHandler(service TradeInService, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if !h.decode(w, r, "PlaceOrder", &req) {
		return
	}
	h.Logger.Info("API", fmt.Sprintf("PlaceOrder: device=%s recycler=%s", req.DeviceID, req.RecyclerID))

	order, err := h.Service.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "PlaceOrder", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Order placed", order)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	actor, _ := auth.ActorFromContext(r.Context())
	h.Logger.Debug("API", fmt.Sprintf("GetOrder: orderId=%s actor=%s", orderID, actor.ID))

	details, err := h.Service.GetOrder(r.Context(), actor, orderID)
	if err != nil {
		h.writeServiceError(w, "GetOrder", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order retrieved", details)
}

func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")
	actor, _ := auth.ActorFromContext(r.Context())
	h.Logger.Debug("API", fmt.Sprintf("GetOrderByNumber: orderNumber=%s actor=%s", number, actor.ID))

	details, err := h.Service.GetOrderByNumber(r.Context(), actor, number)
	if err != nil {
		h.writeServiceError(w, "GetOrderByNumber", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order retrieved", details)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	actor, _ := auth.ActorFromContext(r.Context())

	var req models.StatusUpdateRequest
	if !h.decode(w, r, "UpdateOrderStatus", &req) {
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateOrderStatus: orderId=%s status=%s actor=%s", orderID, req.Status, actor.ID))

	order, err := h.Service.SetOrderStatus(r.Context(), actor, orderID, req.Status, req.Notes)
	if err != nil {
		h.writeServiceError(w, "UpdateOrderStatus", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order status updated", order)
}

func (h *Handler) ListCounterOffers(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	actor, _ := auth.ActorFromContext(r.Context())

	offers, err := h.Service.ListCounterOffers(r.Context(), actor, orderID)
	if err != nil {
		h.writeServiceError(w, "ListCounterOffers", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Counter offers retrieved", offers)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			h.Logger.Warn("API", fmt.Sprintf("Health check failed: %v", err))
			utils.WriteError(w, http.StatusServiceUnavailable, utils.CodeInternal, "unhealthy", "")
			return
		}
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("%s: failed to decode request body: %v", op, err))
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid request body", "")
		return false
	}
	return true
}

// writeServiceError maps service errors onto status codes. Unexpected errors
// are logged and reported without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, verr.Message, verr.Field)
	case errors.Is(err, models.ErrExpired):
		h.Logger.Info("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusBadRequest, utils.CodeCounterOfferExpired, "this counter offer has expired", "")
	case errors.Is(err, models.ErrValidation):
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, err.Error(), "")
	case errors.Is(err, models.ErrNotFound):
		h.Logger.Info("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, err.Error(), "")
	case errors.Is(err, models.ErrConflict):
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusConflict, utils.CodeConflict, err.Error(), "")
	case errors.Is(err, models.ErrForbidden):
		h.Logger.LogSecurity("FORBIDDEN", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusForbidden, utils.CodeForbidden, err.Error(), "")
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "internal server error", "")
	}
}
