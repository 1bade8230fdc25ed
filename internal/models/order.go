package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CheckoutRequest is what a guest customer submits when trading in a device.
// The recycler fields are a snapshot of the catalog listing the customer
// picked; RecyclerEmail is only trusted when no recycler directory is
// configured (local setups).
type CheckoutRequest struct {
	DeviceID        string          `json:"deviceId"`
	DeviceName      string          `json:"deviceName"`
	RecyclerID      string          `json:"recyclerId"`
	RecyclerCompany string          `json:"recyclerCompany"`
	RecyclerEmail   string          `json:"recyclerEmail"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	Postcode        string          `json:"postcode"`
	Amount          decimal.Decimal `json:"amount"`
	DeviceCondition string          `json:"deviceCondition"`
	Storage         string          `json:"storage"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID          string `bun:"id,pk" json:"id"`
	OrderNumber string `bun:"order_number,unique,notnull" json:"orderNumber"`

	DeviceID        string `bun:"device_id,notnull" json:"deviceId"`
	DeviceName      string `bun:"device_name,notnull" json:"deviceName"`
	RecyclerID      string `bun:"recycler_id,notnull" json:"recyclerId"`
	RecyclerCompany string `bun:"recycler_company,nullzero" json:"recyclerCompany"`
	RecyclerEmail   string `bun:"recycler_email,nullzero" json:"-"`

	CustomerName     string `bun:"customer_name,notnull" json:"customerName"`
	CustomerEmail    string `bun:"customer_email,notnull" json:"customerEmail"`
	CustomerPhone    string `bun:"customer_phone,nullzero" json:"customerPhone"`
	CustomerAddress  string `bun:"customer_address,nullzero" json:"customerAddress"`
	CustomerCity     string `bun:"customer_city,nullzero" json:"customerCity"`
	CustomerPostcode string `bun:"customer_postcode,nullzero" json:"customerPostcode"`

	Amount          decimal.Decimal `bun:"amount,type:numeric(12,2),notnull" json:"amount"`
	DeviceCondition string          `bun:"device_condition,nullzero" json:"deviceCondition"`
	Storage         string          `bun:"storage,nullzero" json:"storage"`

	Status             OrderStatus   `bun:"status,notnull" json:"status"`
	PaymentStatus      PaymentStatus `bun:"payment_status,notnull" json:"paymentStatus"`
	TransactionID      string        `bun:"transaction_id,nullzero" json:"transactionId,omitempty"`
	PaidAt             *time.Time    `bun:"paid_at" json:"paidAt,omitempty"`
	CompletedAt        *time.Time    `bun:"completed_at" json:"completedAt,omitempty"`
	CancellationReason string        `bun:"cancellation_reason,nullzero" json:"cancellationReason,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
	Version   int64     `bun:"version,notnull" json:"version"`
}

// StatusHistoryEntry is one row of the append-only audit trail of an order.
type StatusHistoryEntry struct {
	bun.BaseModel `bun:"table:order_status_history,alias:h"`

	ID        string      `bun:"id,pk" json:"id"`
	OrderID   string      `bun:"order_id,notnull" json:"orderId"`
	Status    OrderStatus `bun:"status,notnull" json:"status"`
	ActorID   string      `bun:"actor_id,notnull" json:"actorId"`
	ActorRole Role        `bun:"actor_role,notnull" json:"actorRole"`
	Notes     string      `bun:"notes,nullzero" json:"notes,omitempty"`
	ChangedAt time.Time   `bun:"changed_at,notnull" json:"changedAt"`
}

type OrderDetails struct {
	Order   *Order               `json:"order"`
	History []StatusHistoryEntry `json:"history"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type PaymentStatusUpdateRequest struct {
	PaymentStatus string `json:"paymentStatus"`
	TransactionID string `json:"transactionId,omitempty"`
}
