package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	offerdb "ms-tradein/internal/counteroffer/db"
	"ms-tradein/internal/counteroffer/token"
	"ms-tradein/internal/database/dbtest"
	"ms-tradein/internal/models"
	orderdb "ms-tradein/internal/order/db"
)

func TestPendingOfferIndex_Postgres(t *testing.T) {
	for _, driver := range []string{"pq", "pgdriver"} {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.NewPostgres(t, driver)
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			order := &models.Order{
				ID:            uuid.New().String(),
				OrderNumber:   "TI-20250301-PGTEST",
				DeviceID:      "dev-1",
				DeviceName:    "Pixel 8",
				RecyclerID:    "rec-1",
				CustomerName:  "Ada",
				CustomerEmail: "ada@example.com",
				Amount:        decimal.RequireFromString("500"),
				Status:        models.OrderStatusPending,
				PaymentStatus: models.PaymentStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			orders := &orderdb.DB{Bun: db}
			require.NoError(t, orders.CreateOrder(ctx, order))

			offers := &offerdb.DB{Bun: db}
			newOffer := func() *models.CounterOffer {
				tok, err := token.Generate()
				require.NoError(t, err)
				return &models.CounterOffer{
					ID:            uuid.New().String(),
					TokenHash:     token.Hash(tok),
					OrderID:       order.ID,
					OrderNumber:   order.OrderNumber,
					CreatedBy:     "rec-1",
					OriginalPrice: order.Amount,
					AmendedPrice:  decimal.RequireFromString("420"),
					Reason:        "dented frame",
					Images:        []models.OfferImage{{URL: "https://cdn.example.com/f.jpg"}},
					Status:        models.CounterOfferPending,
					ExpiresAt:     now.Add(7 * 24 * time.Hour),
					CreatedAt:     now,
					UpdatedAt:     now,
				}
			}

			first := newOffer()
			require.NoError(t, offers.CreateCounterOffer(ctx, first))
			assert.ErrorIs(t, offers.CreateCounterOffer(ctx, newOffer()), models.ErrConflict)

			first.Status = models.CounterOfferDeclined
			won, err := offers.TransitionStatus(ctx, first, models.CounterOfferPending)
			require.NoError(t, err)
			assert.True(t, won)
			require.NoError(t, offers.CreateCounterOffer(ctx, newOffer()))

			// stale version
			stale := *order
			order.Status = models.OrderStatusConfirmed
			require.NoError(t, orders.UpdateOrder(ctx, order, now))
			stale.Status = models.OrderStatusCancelled
			assert.ErrorIs(t, orders.UpdateOrder(ctx, &stale, now), models.ErrConflict)

			got, err := orders.GetOrderByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusConfirmed, got.Status)
			assert.Equal(t, "500.00", got.Amount.StringFixed(2))
		})
	}
}
