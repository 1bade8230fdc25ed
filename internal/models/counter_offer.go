package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OfferImage struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type CounterOfferRequest struct {
	OrderID      string           `json:"orderId"`
	AmendedPrice *decimal.Decimal `json:"amendedPrice"`
	Reason       string           `json:"reason"`
	Images       []OfferImage     `json:"images,omitempty"`
}

type CounterOffer struct {
	bun.BaseModel `bun:"table:counter_offers,alias:co"`

	ID        string `bun:"id,pk" json:"id"`
	TokenHash string `bun:"token_hash,unique,notnull" json:"-"`
	// Token is only populated on the value returned from creation.
	Token string `bun:"-" json:"token,omitempty"`

	OrderID     string `bun:"order_id,notnull" json:"orderId"`
	OrderNumber string `bun:"order_number,notnull" json:"orderNumber"`
	CreatedBy   string `bun:"created_by,notnull" json:"createdBy"`

	OriginalPrice decimal.Decimal `bun:"original_price,type:numeric(12,2),notnull" json:"originalPrice"`
	AmendedPrice  decimal.Decimal `bun:"amended_price,type:numeric(12,2),notnull" json:"amendedPrice"`
	Reason        string          `bun:"reason,notnull" json:"reason"`
	Images        []OfferImage    `bun:"images" json:"images"`

	CustomerName  string `bun:"customer_name,nullzero" json:"customerName"`
	CustomerEmail string `bun:"customer_email,nullzero" json:"customerEmail"`

	Status        CounterOfferStatus `bun:"status,notnull" json:"status"`
	ExpiresAt     time.Time          `bun:"expires_at,notnull" json:"expiresAt"`
	RespondedAt   *time.Time         `bun:"responded_at" json:"respondedAt,omitempty"`
	CustomerNotes string             `bun:"customer_notes,nullzero" json:"customerNotes,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// OverdueAt reports whether a pending offer has passed its deadline at now.
func (c *CounterOffer) OverdueAt(now time.Time) bool {
	return c.Status == CounterOfferPending && now.After(c.ExpiresAt)
}

// PublicOrderSummary is the slice of an order a token holder may see.
type PublicOrderSummary struct {
	OrderNumber     string          `json:"orderNumber"`
	DeviceName      string          `json:"deviceName"`
	RecyclerCompany string          `json:"recyclerCompany"`
	Status          OrderStatus     `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
}

type PublicCounterOffer struct {
	CounterOffer *CounterOffer      `json:"counterOffer"`
	Order        PublicOrderSummary `json:"order"`
}

type ResolveRequest struct {
	CustomerNotes string `json:"customerNotes,omitempty"`
}
