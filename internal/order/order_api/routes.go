package order_api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ms-tradein/internal/auth"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
)

// RegisterRoutes mounts the public token routes and the authenticated
// recycler/admin routes. authn authenticates and sets the actor; extra route
// sets are mounted behind it.
//
// POST /api/orders is the guest checkout. Recyclers create counter offers with
// POST /api/counter-offers, not on the orders collection.
func RegisterRoutes(r chi.Router, h *Handler, authn func(http.Handler) http.Handler, extra ...func(chi.Router)) {
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		// public
		r.Post("/orders", h.PlaceOrder)
		r.Get("/counter-offers/token/{token}", h.GetCounterOfferByToken)
		r.Post("/counter-offers/{token}/accept", h.AcceptCounterOffer)
		r.Post("/counter-offers/{token}/decline", h.DeclineCounterOffer)

		r.Group(func(r chi.Router) {
			r.Use(authn)

			staff := auth.RequireRole(models.RoleRecycler, models.RoleAdmin)
			recycler := auth.RequireRole(models.RoleRecycler)

			r.With(recycler).Post("/counter-offers", h.CreateCounterOffer)
			r.With(staff).Get("/orders/number/{orderNumber}", h.GetOrderByNumber)
			r.With(staff).Get("/orders/{orderId}", h.GetOrder)
			r.With(staff).Get("/orders/{orderId}/counter-offers", h.ListCounterOffers)
			r.With(staff).Patch("/orders/{orderId}/status", h.UpdateOrderStatus)
			r.With(recycler).Patch("/orders/{orderId}/payment-status", h.UpdatePaymentStatus)

			for _, mount := range extra {
				mount(r)
			}
		})
	})
}

// RequestLogger logs one line per request through LogAPI.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, redactPath(r), fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}

// redactPath keeps counter-offer tokens out of the access log.
func redactPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
