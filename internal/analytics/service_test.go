package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"ms-tradein/internal/analytics"
	offerdb "ms-tradein/internal/counteroffer/db"
	"ms-tradein/internal/database/dbtest"
	"ms-tradein/internal/models"
	orderdb "ms-tradein/internal/order/db"
)

var day1 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, db *bun.DB, recyclerID, amount string, status models.OrderStatus, payment models.PaymentStatus, at time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		ID:            uuid.New().String(),
		OrderNumber:   "TI-" + uuid.New().String()[:8],
		DeviceID:      "dev",
		DeviceName:    "Device",
		RecyclerID:    recyclerID,
		CustomerName:  "C",
		CustomerEmail: "c@example.com",
		Amount:        decimal.RequireFromString(amount),
		Status:        status,
		PaymentStatus: payment,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, (&orderdb.DB{Bun: db}).CreateOrder(context.Background(), o))
	return o
}

func seedOffer(t *testing.T, db *bun.DB, o *models.Order, amended string, status models.CounterOfferStatus, at time.Time) {
	t.Helper()
	offer := &models.CounterOffer{
		ID:            uuid.New().String(),
		TokenHash:     uuid.New().String(),
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CreatedBy:     o.RecyclerID,
		OriginalPrice: o.Amount,
		AmendedPrice:  decimal.RequireFromString(amended),
		Reason:        "condition",
		Status:        status,
		ExpiresAt:     at.Add(7 * 24 * time.Hour),
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, (&offerdb.DB{Bun: db}).CreateCounterOffer(context.Background(), offer))
}

func TestGetRecyclerAnalytics(t *testing.T) {
	db := dbtest.NewSQLite(t)

	a := seedOrder(t, db, "rec-1", "400", models.OrderStatusCompleted, models.PaymentStatusPaid, day1)
	b := seedOrder(t, db, "rec-1", "250", models.OrderStatusCancelled, models.PaymentStatusPending, day1.Add(time.Hour))
	c := seedOrder(t, db, "rec-1", "100", models.OrderStatusCounterOfferPending, models.PaymentStatusPending, day1.Add(24*time.Hour))
	seedOrder(t, db, "rec-2", "999", models.OrderStatusCompleted, models.PaymentStatusPaid, day1)
	seedOrder(t, db, "rec-1", "50", models.OrderStatusPending, models.PaymentStatusPending, day1.Add(-48*time.Hour))

	seedOffer(t, db, a, "350", models.CounterOfferAccepted, day1.Add(time.Minute))
	seedOffer(t, db, b, "200", models.CounterOfferDeclined, day1.Add(2*time.Hour))
	seedOffer(t, db, c, "90", models.CounterOfferPending, day1.Add(25*time.Hour))

	svc := analytics.NewService(db)
	got, err := svc.GetRecyclerAnalytics(context.Background(), "rec-1", day1.Add(-time.Hour), day1.Add(72*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 1, got.OrdersByStatus[models.OrderStatusCompleted])
	assert.Equal(t, 1, got.OrdersByStatus[models.OrderStatusCancelled])
	assert.Equal(t, 1, got.OrdersByStatus[models.OrderStatusCounterOfferPending])
	assert.Equal(t, "750.00", got.QuotedValue.StringFixed(2))
	assert.Equal(t, "400.00", got.PaidOut.StringFixed(2))

	require.Len(t, got.DailyOrders, 2)
	assert.Equal(t, "2025-03-01", got.DailyOrders[0].Date)
	assert.Equal(t, 2, got.DailyOrders[0].Orders)
	assert.Equal(t, "650.00", got.DailyOrders[0].Value.StringFixed(2))
	assert.Equal(t, "2025-03-02", got.DailyOrders[1].Date)

	offers := got.CounterOffers
	assert.Equal(t, 3, offers.Total)
	assert.Equal(t, 1, offers.ByStatus[models.CounterOfferPending])
	assert.InDelta(t, 0.5, offers.AcceptanceRate, 1e-9)
	// (50 + 50 + 10) / 3
	assert.Equal(t, "36.67", offers.AverageReduction.StringFixed(2))
}

func TestGetRecyclerAnalytics_Empty(t *testing.T) {
	db := dbtest.NewSQLite(t)
	got, err := analytics.NewService(db).GetRecyclerAnalytics(context.Background(), "nobody", day1, day1.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, got.TotalOrders)
	assert.True(t, got.PaidOut.IsZero())
	assert.Empty(t, got.DailyOrders)
	assert.Zero(t, got.CounterOffers.AcceptanceRate)
}

func TestGetRecyclerAnalytics_BadWindow(t *testing.T) {
	db := dbtest.NewSQLite(t)
	_, err := analytics.NewService(db).GetRecyclerAnalytics(context.Background(), "rec-1", day1, day1)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "to", verr.Field)
}
