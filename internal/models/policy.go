package models

import "time"

// PaymentPolicy couples payment status to order status. It is shared by the
// order-status setter and the independent payment-status setter so both paths
// are governed by one object.
type PaymentPolicy struct {
	// AllowIndependentPaymentStatus lets recyclers set payment status without
	// touching order status.
	AllowIndependentPaymentStatus bool
}

func DefaultPaymentPolicy() PaymentPolicy {
	return PaymentPolicy{AllowIndependentPaymentStatus: true}
}

// ApplyStatus moves the order to status and derives its payment status:
// completed means paid, anything else means pending. It returns true when the
// order has just become completed. Re-entering completed keeps the original
// paid/completed timestamps.
func (p PaymentPolicy) ApplyStatus(o *Order, status OrderStatus, now time.Time) bool {
	wasCompleted := o.Status == OrderStatusCompleted
	o.Status = status

	if status != OrderStatusCompleted {
		o.PaymentStatus = PaymentStatusPending
		return false
	}

	o.PaymentStatus = PaymentStatusPaid
	if wasCompleted {
		return false
	}
	stamp := now
	o.PaidAt = &stamp
	o.CompletedAt = &stamp
	return true
}

// ApplyPaymentStatus sets payment status without looking at order status.
func (p PaymentPolicy) ApplyPaymentStatus(o *Order, status PaymentStatus, transactionID string, now time.Time) error {
	if !p.AllowIndependentPaymentStatus {
		return ErrForbidden
	}
	o.PaymentStatus = status
	if transactionID != "" {
		o.TransactionID = transactionID
	}
	if status == PaymentStatusPaid {
		stamp := now
		o.PaidAt = &stamp
	}
	return nil
}
