package models

import "time"

type NotificationType string

const (
	NotifyOrderPlaced          NotificationType = "order.placed"
	NotifyOrderStatusChanged   NotificationType = "order.status_changed"
	NotifyOrderCompleted       NotificationType = "order.completed"
	NotifyReviewRequested      NotificationType = "order.review_requested"
	NotifyPaymentStatusChanged NotificationType = "order.payment_status_changed"
	NotifyCounterOfferCreated  NotificationType = "counter_offer.created"
	NotifyCounterOfferAccepted NotificationType = "counter_offer.accepted"
	NotifyCounterOfferDeclined NotificationType = "counter_offer.declined"
)

type Recipient string

const (
	RecipientCustomer Recipient = "customer"
	RecipientRecycler Recipient = "recycler"
)

// NotificationEvent is published to the notification topic after a state
// change has been committed. Consumers turn it into an email.
type NotificationEvent struct {
	ID          string            `json:"id"`
	Type        NotificationType  `json:"type"`
	Recipient   Recipient         `json:"recipient"`
	Email       string            `json:"email"`
	Name        string            `json:"name,omitempty"`
	OrderID     string            `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	Data        map[string]string `json:"data,omitempty"`
	OccurredAt  time.Time         `json:"occurredAt"`
}
