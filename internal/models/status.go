package models

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusConfirmed           OrderStatus = "confirmed"
	OrderStatusCounterOfferPending OrderStatus = "counter_offer_pending"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderStatusPending:             true,
	OrderStatusConfirmed:           true,
	OrderStatusCounterOfferPending: true,
	OrderStatusProcessing:          true,
	OrderStatusCompleted:           true,
	OrderStatusCancelled:           true,
}

// Spellings found in rows written before statuses were a closed set.
var legacyOrderStatuses = map[string]OrderStatus{
	"canceled":              OrderStatusCancelled,
	"in_progress":           OrderStatusProcessing,
	"in-progress":           OrderStatusProcessing,
	"inprogress":            OrderStatusProcessing,
	"counter-offer-pending": OrderStatusCounterOfferPending,
	"counteroffer_pending":  OrderStatusCounterOfferPending,
	"counter_offer":         OrderStatusCounterOfferPending,
	"complete":              OrderStatusCompleted,
	"done":                  OrderStatusCompleted,
	"accepted":              OrderStatusConfirmed,
	"new":                   OrderStatusPending,
}

// ParseOrderStatus normalises a raw status string, mapping historical
// spellings onto the closed set.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := normalise(raw)
	if s == "" {
		return "", NewValidationError("status", "status is required")
	}
	if orderStatuses[OrderStatus(s)] {
		return OrderStatus(s), nil
	}
	if st, ok := legacyOrderStatuses[s]; ok {
		return st, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown order status %q", raw))
}

func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

var paymentStatuses = map[PaymentStatus]bool{
	PaymentStatusPending:    true,
	PaymentStatusProcessing: true,
	PaymentStatusPaid:       true,
	PaymentStatusFailed:     true,
	PaymentStatusRefunded:   true,
}

var legacyPaymentStatuses = map[string]PaymentStatus{
	"unpaid":    PaymentStatusPending,
	"success":   PaymentStatusPaid,
	"succeeded": PaymentStatusPaid,
	"completed": PaymentStatusPaid,
	"refund":    PaymentStatusRefunded,
	"error":     PaymentStatusFailed,
}

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	s := normalise(raw)
	if s == "" {
		return "", NewValidationError("paymentStatus", "payment status is required")
	}
	if paymentStatuses[PaymentStatus(s)] {
		return PaymentStatus(s), nil
	}
	if st, ok := legacyPaymentStatuses[s]; ok {
		return st, nil
	}
	return "", NewValidationError("paymentStatus", fmt.Sprintf("unknown payment status %q", raw))
}

type CounterOfferStatus string

const (
	CounterOfferPending  CounterOfferStatus = "pending"
	CounterOfferAccepted CounterOfferStatus = "accepted"
	CounterOfferDeclined CounterOfferStatus = "declined"
	CounterOfferExpired  CounterOfferStatus = "expired"
)

func (s CounterOfferStatus) IsTerminal() bool {
	return s == CounterOfferAccepted || s == CounterOfferDeclined || s == CounterOfferExpired
}

// Decision is the customer's answer to a counter offer.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

func (d Decision) Valid() bool {
	return d == DecisionAccept || d == DecisionDecline
}

func normalise(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
