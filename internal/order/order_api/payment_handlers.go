package order_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tradein/internal/auth"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

// UpdatePaymentStatus lets the recycler record a payout without changing the
// order status.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	actor, _ := auth.ActorFromContext(r.Context())

	var req models.PaymentStatusUpdateRequest
	if !h.decode(w, r, "UpdatePaymentStatus", &req) {
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdatePaymentStatus: orderId=%s paymentStatus=%s actor=%s", orderID, req.PaymentStatus, actor.ID))

	order, err := h.Service.SetPaymentStatus(r.Context(), actor, orderID, req.PaymentStatus, req.TransactionID)
	if err != nil {
		h.writeServiceError(w, "UpdatePaymentStatus", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Payment status updated", order)
}
