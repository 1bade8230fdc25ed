package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ms-tradein/internal/counteroffer/token"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/utils"
)

const (
	DefaultOfferTTL = 7 * 24 * time.Hour

	declinedReason = "Customer declined counter offer"
)

// OrderLock serializes writers of one order.
type OrderLock interface {
	AcquireOrder(ctx context.Context, orderID, owner string) error
	ReleaseOrder(ctx context.Context, orderID, owner string) error
}

// Notifier receives events once the change that caused them is committed.
// It must not block.
type Notifier interface {
	Dispatch(event models.NotificationEvent)
}

type Options struct {
	Policy        models.PaymentPolicy
	OfferTTL      time.Duration
	PublicBaseURL string
	// Recyclers, when set, supplies recycler addresses instead of the
	// checkout request.
	Recyclers RecyclerDirectory
	Now       func() time.Time
}

type OrderService struct {
	Store    Store
	Lock     OrderLock
	Notifier Notifier
	Logger   *logger.Logger
	opts     Options
}

func NewOrderService(store Store, lock OrderLock, notifier Notifier, log *logger.Logger, opts Options) *OrderService {
	if opts.OfferTTL <= 0 {
		opts.OfferTTL = DefaultOfferTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &OrderService{
		Store:    store,
		Lock:     lock,
		Notifier: notifier,
		Logger:   log,
		opts:     opts,
	}
}

func (s *OrderService) now() time.Time {
	return s.opts.Now().UTC()
}

// ---------------- ORDERS ----------------

// PlaceOrder records a guest checkout as a pending order.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.CheckoutRequest) (*models.Order, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	recyclerEmail := strings.TrimSpace(req.RecyclerEmail)
	if s.opts.Recyclers != nil {
		email, ok := s.opts.Recyclers.RecyclerEmail(ctx, strings.TrimSpace(req.RecyclerID))
		if !ok {
			return nil, models.NewValidationError("recyclerId", "unknown recycler")
		}
		recyclerEmail = email
	}

	now := s.now()
	order := &models.Order{
		ID:               uuid.New().String(),
		DeviceID:         strings.TrimSpace(req.DeviceID),
		DeviceName:       strings.TrimSpace(req.DeviceName),
		RecyclerID:       strings.TrimSpace(req.RecyclerID),
		RecyclerCompany:  strings.TrimSpace(req.RecyclerCompany),
		RecyclerEmail:    recyclerEmail,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerEmail:    strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		CustomerAddress:  strings.TrimSpace(req.Address),
		CustomerCity:     strings.TrimSpace(req.City),
		CustomerPostcode: strings.TrimSpace(req.Postcode),
		Amount:           req.Amount.Round(2),
		DeviceCondition:  req.DeviceCondition,
		Storage:          req.Storage,
		Status:           models.OrderStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}

	// order numbers are random; retry the rare collision
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		order.OrderNumber, err = utils.GenerateOrderNumber(now)
		if err != nil {
			return nil, err
		}
		err = s.Store.RunInTx(ctx, func(ctx context.Context, r Repos) error {
			if err := r.Orders.CreateOrder(ctx, order); err != nil {
				return err
			}
			return r.Orders.AppendStatusHistory(ctx, historyEntry(order.ID, order.Status, models.CustomerActor, "Order placed", now))
		})
		if !errors.Is(err, models.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.Logger.LogOrder("PLACED", order.ID, fmt.Sprintf("%s for %s (%s)", order.OrderNumber, order.DeviceName, order.Amount.StringFixed(2)))
	s.dispatch(s.orderEvent(order, models.NotifyOrderPlaced, models.RecipientCustomer, nil))
	s.dispatch(s.orderEvent(order, models.NotifyOrderPlaced, models.RecipientRecycler, nil))
	return order, nil
}

// GetOrder returns an order with its status history.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, orderID string) (*models.OrderDetails, error) {
	repos := s.Store.Repos()
	order, err := repos.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(order.RecyclerID) {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrForbidden)
	}
	history, err := repos.Orders.GetStatusHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for order %s: %w", orderID, err)
	}
	return &models.OrderDetails{Order: order, History: history}, nil
}

// GetOrderByNumber is GetOrder keyed by the order number customers quote.
func (s *OrderService) GetOrderByNumber(ctx context.Context, actor models.Actor, number string) (*models.OrderDetails, error) {
	order, err := s.Store.Repos().Orders.GetOrderByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, actor, order.ID)
}

// SetOrderStatus moves an order to a new status and derives its payment
// status through the payment policy.
func (s *OrderService) SetOrderStatus(ctx context.Context, actor models.Actor, orderID, rawStatus, notes string) (*models.Order, error) {
	status, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	var (
		order          *models.Order
		newlyCompleted bool
	)
	err = s.withOrderLock(ctx, orderID, func() error {
		return s.Store.RunInTx(ctx, func(ctx context.Context, r Repos) error {
			var err error
			order, err = r.Orders.GetOrderByID(ctx, orderID)
			if err != nil {
				return err
			}
			if !actor.CanActOn(order.RecyclerID) {
				return fmt.Errorf("order %s: %w", orderID, models.ErrForbidden)
			}

			now := s.now()
			// a pending offer only makes sense while the order waits on it
			if status != models.OrderStatusCounterOfferPending {
				if err := s.withdrawPendingOffer(ctx, r, order.ID, now); err != nil {
					return err
				}
			}
			if err := r.Orders.AppendStatusHistory(ctx, historyEntry(order.ID, status, actor, notes, now)); err != nil {
				return err
			}
			newlyCompleted = s.opts.Policy.ApplyStatus(order, status, now)
			if status == models.OrderStatusCancelled && notes != "" {
				order.CancellationReason = notes
			}
			return r.Orders.UpdateOrder(ctx, order, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogOrder("STATUS", order.ID, fmt.Sprintf("%s -> %s by %s %s (payment %s)", order.OrderNumber, status, actor.Role, actor.ID, order.PaymentStatus))

	s.dispatch(s.orderEvent(order, models.NotifyOrderStatusChanged, models.RecipientCustomer, map[string]string{
		"status": string(order.Status),
		"notes":  notes,
	}))
	if newlyCompleted {
		s.dispatch(s.orderEvent(order, models.NotifyOrderCompleted, models.RecipientCustomer, map[string]string{
			"amount": order.Amount.StringFixed(2),
		}))
		s.dispatch(s.orderEvent(order, models.NotifyReviewRequested, models.RecipientCustomer, nil))
	}
	return order, nil
}

// SetPaymentStatus is the recycler's direct payment setter. It does not look
// at or change order status.
func (s *OrderService) SetPaymentStatus(ctx context.Context, actor models.Actor, orderID, rawStatus, transactionID string) (*models.Order, error) {
	status, err := models.ParsePaymentStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if !s.opts.Policy.AllowIndependentPaymentStatus {
		return nil, fmt.Errorf("payment status is derived from order status: %w", models.ErrForbidden)
	}

	var order *models.Order
	err = s.withOrderLock(ctx, orderID, func() error {
		return s.Store.RunInTx(ctx, func(ctx context.Context, r Repos) error {
			var err error
			order, err = r.Orders.GetOrderByID(ctx, orderID)
			if err != nil {
				return err
			}
			if !actor.CanActOn(order.RecyclerID) {
				return fmt.Errorf("order %s: %w", orderID, models.ErrForbidden)
			}
			now := s.now()
			if err := s.opts.Policy.ApplyPaymentStatus(order, status, strings.TrimSpace(transactionID), now); err != nil {
				return err
			}
			return r.Orders.UpdateOrder(ctx, order, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogOrder("PAYMENT", order.ID, fmt.Sprintf("%s payment -> %s by %s", order.OrderNumber, status, actor.ID))
	s.dispatch(s.orderEvent(order, models.NotifyPaymentStatusChanged, models.RecipientCustomer, map[string]string{
		"paymentStatus": string(order.PaymentStatus),
		"transactionId": order.TransactionID,
	}))
	return order, nil
}

// ---------------- COUNTER OFFERS ----------------

// CreateCounterOffer opens a negotiation on an order the recycler owns. The
// returned offer carries the plaintext token; it is not stored anywhere.
func (s *OrderService) CreateCounterOffer(ctx context.Context, actor models.Actor, req models.CounterOfferRequest) (*models.CounterOffer, error) {
	if actor.Role != models.RoleRecycler {
		return nil, fmt.Errorf("only recyclers can make counter offers: %w", models.ErrForbidden)
	}
	if err := validateCounterOffer(req); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		offer *models.CounterOffer
	)
	err := s.withOrderLock(ctx, req.OrderID, func() error {
		return s.Store.RunInTx(ctx, func(ctx context.Context, r Repos) error {
			var err error
			order, err = r.Orders.GetOrderByID(ctx, req.OrderID)
			if err != nil {
				return err
			}
			if order.RecyclerID != actor.ID {
				return fmt.Errorf("order %s belongs to another recycler: %w", req.OrderID, models.ErrForbidden)
			}
			if order.Status.IsFinal() {
				return fmt.Errorf("order %s is %s: %w", order.OrderNumber, order.Status, models.ErrConflict)
			}

			now := s.now()
			existing, err := r.Offers.GetPendingByOrder(ctx, order.ID)
			switch {
			case errors.Is(err, models.ErrNotFound):
			case err != nil:
				return err
			case existing.OverdueAt(now):
				if err := s.expire(ctx, r, existing, now); err != nil {
					return err
				}
			default:
				return fmt.Errorf("there is already a pending counter offer for order %s: %w", order.OrderNumber, models.ErrConflict)
			}

			tok, err := token.Generate()
			if err != nil {
				return err
			}
			offer = &models.CounterOffer{
				ID:            uuid.New().String(),
				TokenHash:     token.Hash(tok),
				Token:         tok,
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				CreatedBy:     actor.ID,
				OriginalPrice: order.Amount,
				AmendedPrice:  req.AmendedPrice.Round(2),
				Reason:        strings.TrimSpace(req.Reason),
				Images:        req.Images,
				CustomerName:  order.CustomerName,
				CustomerEmail: order.CustomerEmail,
				Status:        models.CounterOfferPending,
				ExpiresAt:     now.Add(s.opts.OfferTTL),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := r.Offers.CreateCounterOffer(ctx, offer); err != nil {
				return err
			}

			note := fmt.Sprintf("Counter offer of %s made", offer.AmendedPrice.StringFixed(2))
			if err := r.Orders.AppendStatusHistory(ctx, historyEntry(order.ID, models.OrderStatusCounterOfferPending, actor, note, now)); err != nil {
				return err
			}
			s.opts.Policy.ApplyStatus(order, models.OrderStatusCounterOfferPending, now)
			return r.Orders.UpdateOrder(ctx, order, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogOffer("CREATED", offer.ID, fmt.Sprintf("order %s %s -> %s token %s expires %s",
		offer.OrderNumber, offer.OriginalPrice.StringFixed(2), offer.AmendedPrice.StringFixed(2),
		token.Redact(offer.Token), offer.ExpiresAt.Format(time.RFC3339)))

	s.dispatch(s.orderEvent(order, models.NotifyCounterOfferCreated, models.RecipientCustomer, map[string]string{
		"offerId":       offer.ID,
		"originalPrice": offer.OriginalPrice.StringFixed(2),
		"amendedPrice":  offer.AmendedPrice.StringFixed(2),
		"reason":        offer.Reason,
		"expiresAt":     offer.ExpiresAt.Format(time.RFC3339),
		"respondUrl":    s.respondURL(offer.Token),
	}))
	return offer, nil
}

// ListCounterOffers returns every offer made on an order, newest first.
func (s *OrderService) ListCounterOffers(ctx context.Context, actor models.Actor, orderID string) ([]models.CounterOffer, error) {
	repos := s.Store.Repos()
	order, err := repos.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(order.RecyclerID) {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrForbidden)
	}
	return repos.Offers.ListByOrder(ctx, orderID)
}

// GetCounterOfferByToken is the customer's view of an offer. An overdue
// offer is marked expired on the way out.
func (s *OrderService) GetCounterOfferByToken(ctx context.Context, tok string) (*models.PublicCounterOffer, error) {
	if !token.Valid(tok) {
		return nil, fmt.Errorf("counter offer: %w", models.ErrNotFound)
	}
	repos := s.Store.Repos()
	offer, err := repos.Offers.GetByTokenHash(ctx, token.Hash(tok))
	if err != nil {
		return nil, err
	}

	if now := s.now(); offer.OverdueAt(now) {
		if err := s.expire(ctx, repos, offer, now); err != nil {
			return nil, err
		}
	}

	order, err := repos.Orders.GetOrderByID(ctx, offer.OrderID)
	if err != nil {
		return nil, err
	}
	return &models.PublicCounterOffer{
		CounterOffer: offer,
		Order: models.PublicOrderSummary{
			OrderNumber:     order.OrderNumber,
			DeviceName:      order.DeviceName,
			RecyclerCompany: order.RecyclerCompany,
			Status:          order.Status,
			Amount:          order.Amount,
		},
	}, nil
}

// ResolveCounterOffer applies the customer's decision. Accepting adopts the
// amended price and confirms the order; declining cancels it. An overdue
// offer is expired and ErrExpired returned alongside it. Offers on orders that
// have since moved on (completed, cancelled, or set by staff) are rejected.
func (s *OrderService) ResolveCounterOffer(ctx context.Context, tok string, decision models.Decision, customerNotes string) (*models.CounterOffer, error) {
	if !decision.Valid() {
		return nil, models.NewValidationError("decision", fmt.Sprintf("unknown decision %q", decision))
	}
	if !token.Valid(tok) {
		return nil, fmt.Errorf("counter offer: %w", models.ErrNotFound)
	}
	hash := token.Hash(tok)

	found, err := s.Store.Repos().Offers.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	var (
		offer   *models.CounterOffer
		order   *models.Order
		expired bool
	)
	err = s.withOrderLock(ctx, found.OrderID, func() error {
		return s.Store.RunInTx(ctx, func(ctx context.Context, r Repos) error {
			var err error
			offer, err = r.Offers.GetByTokenHash(ctx, hash)
			if err != nil {
				return err
			}

			now := s.now()
			if offer.OverdueAt(now) {
				expired = true
				return s.expire(ctx, r, offer, now)
			}

			order, err = r.Orders.GetOrderByID(ctx, offer.OrderID)
			if err != nil {
				return err
			}
			if order.Status.IsFinal() {
				return fmt.Errorf("order %s is already %s: %w", order.OrderNumber, order.Status, models.ErrConflict)
			}
			switch {
			case offer.Status == models.CounterOfferExpired:
				return fmt.Errorf("counter offer expired at %s: %w", offer.ExpiresAt.Format(time.RFC3339), models.ErrExpired)
			case offer.Status != models.CounterOfferPending:
				return fmt.Errorf("counter offer has already been %s: %w", offer.Status, models.ErrConflict)
			case order.Status != models.OrderStatusCounterOfferPending:
				return fmt.Errorf("order %s is %s, not awaiting a decision: %w", order.OrderNumber, order.Status, models.ErrConflict)
			}

			responded := now
			offer.RespondedAt = &responded
			offer.CustomerNotes = strings.TrimSpace(customerNotes)
			offer.UpdatedAt = now
			if decision == models.DecisionAccept {
				offer.Status = models.CounterOfferAccepted
			} else {
				offer.Status = models.CounterOfferDeclined
			}
			won, err := r.Offers.TransitionStatus(ctx, offer, models.CounterOfferPending)
			if err != nil {
				return err
			}
			if !won {
				return fmt.Errorf("counter offer was resolved by another request: %w", models.ErrConflict)
			}

			var (
				status models.OrderStatus
				note   string
			)
			if decision == models.DecisionAccept {
				order.Amount = offer.AmendedPrice
				status = models.OrderStatusConfirmed
				note = fmt.Sprintf("Customer accepted counter offer of %s", offer.AmendedPrice.StringFixed(2))
			} else {
				status = models.OrderStatusCancelled
				note = declinedReason
				order.CancellationReason = declinedReason
			}
			if err := r.Orders.AppendStatusHistory(ctx, historyEntry(order.ID, status, models.CustomerActor, note, now)); err != nil {
				return err
			}
			s.opts.Policy.ApplyStatus(order, status, now)
			return r.Orders.UpdateOrder(ctx, order, now)
		})
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return offer, fmt.Errorf("counter offer expired at %s: %w", offer.ExpiresAt.Format(time.RFC3339), models.ErrExpired)
	}

	s.Logger.LogOffer(strings.ToUpper(string(offer.Status)), offer.ID, fmt.Sprintf("order %s now %s (amount %s)",
		order.OrderNumber, order.Status, order.Amount.StringFixed(2)))

	eventType := models.NotifyCounterOfferDeclined
	if offer.Status == models.CounterOfferAccepted {
		eventType = models.NotifyCounterOfferAccepted
	}
	data := map[string]string{
		"offerId":       offer.ID,
		"amendedPrice":  offer.AmendedPrice.StringFixed(2),
		"originalPrice": offer.OriginalPrice.StringFixed(2),
		"customerNotes": offer.CustomerNotes,
		"orderStatus":   string(order.Status),
	}
	s.dispatch(s.orderEvent(order, eventType, models.RecipientCustomer, data))
	s.dispatch(s.orderEvent(order, eventType, models.RecipientRecycler, data))
	return offer, nil
}

// ExpireOverdueOffers marks every overdue pending offer expired. Lookups
// expire offers lazily as well, so this only keeps listings tidy.
func (s *OrderService) ExpireOverdueOffers(ctx context.Context) (int64, error) {
	n, err := s.Store.Repos().Offers.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire counter offers: %w", err)
	}
	if n > 0 {
		s.Logger.LogOffer("EXPIRED", "sweep", fmt.Sprintf("%d overdue counter offers expired", n))
	}
	return n, nil
}

// RunExpirySweep calls ExpireOverdueOffers every interval until ctx ends.
func (s *OrderService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Logger.Info("SWEEP", fmt.Sprintf("Counter offer expiry sweep every %s", interval))
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("SWEEP", "Expiry sweep stopped")
			return
		case <-ticker.C:
			if _, err := s.ExpireOverdueOffers(ctx); err != nil {
				s.Logger.Error("SWEEP", err.Error())
			}
		}
	}
}

// ---------------- HELPERS ----------------

func (s *OrderService) expire(ctx context.Context, r Repos, offer *models.CounterOffer, now time.Time) error {
	offer.Status = models.CounterOfferExpired
	offer.UpdatedAt = now
	won, err := r.Offers.TransitionStatus(ctx, offer, models.CounterOfferPending)
	if err != nil {
		return err
	}
	if won {
		s.Logger.LogOffer("EXPIRED", offer.ID, fmt.Sprintf("order %s, deadline %s", offer.OrderNumber, offer.ExpiresAt.Format(time.RFC3339)))
	}
	return nil
}

// withdrawPendingOffer expires the order's pending offer, if any, so its
// token can no longer change the order.
func (s *OrderService) withdrawPendingOffer(ctx context.Context, r Repos, orderID string, now time.Time) error {
	pending, err := r.Offers.GetPendingByOrder(ctx, orderID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.expire(ctx, r, pending, now)
}

func (s *OrderService) withOrderLock(ctx context.Context, orderID string, fn func() error) error {
	if s.Lock == nil {
		return fn()
	}
	owner := uuid.New().String()
	if err := s.Lock.AcquireOrder(ctx, orderID, owner); err != nil {
		return err
	}
	defer func() {
		// release even if the request context is already gone
		if err := s.Lock.ReleaseOrder(context.Background(), orderID, owner); err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Failed to release lock on order %s: %v", orderID, err))
		}
	}()
	return fn()
}

func historyEntry(orderID string, status models.OrderStatus, actor models.Actor, notes string, at time.Time) *models.StatusHistoryEntry {
	return &models.StatusHistoryEntry{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Status:    status,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Notes:     strings.TrimSpace(notes),
		ChangedAt: at,
	}
}

func (s *OrderService) orderEvent(order *models.Order, t models.NotificationType, to models.Recipient, data map[string]string) models.NotificationEvent {
	ev := models.NotificationEvent{
		ID:          uuid.New().String(),
		Type:        t,
		Recipient:   to,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Data:        map[string]string{"deviceName": order.DeviceName},
		OccurredAt:  s.now(),
	}
	for k, v := range data {
		if v != "" {
			ev.Data[k] = v
		}
	}
	if to == models.RecipientRecycler {
		ev.Email = order.RecyclerEmail
		ev.Name = order.RecyclerCompany
	} else {
		ev.Email = order.CustomerEmail
		ev.Name = order.CustomerName
	}
	return ev
}

func (s *OrderService) dispatch(ev models.NotificationEvent) {
	if s.Notifier == nil {
		return
	}
	if ev.Email == "" {
		s.Logger.Debug("NOTIFY", fmt.Sprintf("No %s address for %s on order %s, skipping", ev.Recipient, ev.Type, ev.OrderNumber))
		return
	}
	s.Notifier.Dispatch(ev)
}

func (s *OrderService) respondURL(tok string) string {
	return fmt.Sprintf("%s/counter-offers/%s", s.opts.PublicBaseURL, tok)
}

func validateCheckout(req models.CheckoutRequest) error {
	required := []struct{ field, value string }{
		{"deviceId", req.DeviceID},
		{"deviceName", req.DeviceName},
		{"recyclerId", req.RecyclerID},
		{"customerName", req.CustomerName},
		{"customerEmail", req.CustomerEmail},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return models.NewValidationError(r.field, r.field+" is required")
		}
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return models.NewValidationError("customerEmail", "customerEmail is not a valid address")
	}
	if !req.Amount.GreaterThan(decimal.Zero) {
		return models.NewValidationError("amount", "amount must be greater than zero")
	}
	return nil
}

func validateCounterOffer(req models.CounterOfferRequest) error {
	if strings.TrimSpace(req.OrderID) == "" {
		return models.NewValidationError("orderId", "orderId is required")
	}
	if req.AmendedPrice == nil {
		return models.NewValidationError("amendedPrice", "amendedPrice is required")
	}
	if !req.AmendedPrice.GreaterThan(decimal.Zero) {
		return models.NewValidationError("amendedPrice", "amendedPrice must be greater than zero")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return models.NewValidationError("reason", "reason is required")
	}
	for i, img := range req.Images {
		if strings.TrimSpace(img.URL) == "" {
			return models.NewValidationError(fmt.Sprintf("images[%d].url", i), "image url is required")
		}
	}
	return nil
}
