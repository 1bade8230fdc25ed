package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tradein/internal/auth"
	"ms-tradein/internal/counteroffer/token"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

// CreateCounterOffer serves POST /api/counter-offers with body
// {orderId, amendedPrice, reason, images}. It is the recycler's "counter offer
// on an order" call; POST /api/orders is checkout. The response is the only
// place the plaintext token appears.
func (h *Handler) CreateCounterOffer(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	var req models.CounterOfferRequest
	if !h.decode(w, r, "CreateCounterOffer", &req) {
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateCounterOffer: orderId=%s actor=%s", req.OrderID, actor.ID))

	offer, err := h.Service.CreateCounterOffer(r.Context(), actor, req)
	if err != nil {
		h.writeServiceError(w, "CreateCounterOffer", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Counter offer created", offer)
}

// GetCounterOfferByToken is public; the token is the credential.
func (h *Handler) GetCounterOfferByToken(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	h.Logger.Info("API", fmt.Sprintf("GetCounterOfferByToken: token=%s", token.Redact(tok)))

	view, err := h.Service.GetCounterOfferByToken(r.Context(), tok)
	if err != nil {
		h.writeServiceError(w, "GetCounterOfferByToken", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Counter offer retrieved", view)
}

func (h *Handler) AcceptCounterOffer(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.DecisionAccept)
}

func (h *Handler) DeclineCounterOffer(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.DecisionDecline)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, decision models.Decision) {
	tok := chi.URLParam(r, "token")
	op := fmt.Sprintf("ResolveCounterOffer(%s)", decision)
	h.Logger.Info("API", fmt.Sprintf("%s: token=%s", op, token.Redact(tok)))

	var req models.ResolveRequest
	if err := decodeOptional(w, r, &req); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("%s: failed to decode request body: %v", op, err))
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid request body", "")
		return
	}

	offer, err := h.Service.ResolveCounterOffer(r.Context(), tok, decision, req.CustomerNotes)
	if err != nil {
		h.writeServiceError(w, op, err)
		return
	}

	msg := "Counter offer accepted"
	if decision == models.DecisionDecline {
		msg = "Counter offer declined"
	}
	utils.WriteSuccess(w, http.StatusOK, msg, offer)
}

// decodeOptional treats an empty body as a zero request.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst *models.ResolveRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
