package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ms-tradein/internal/models"
)

// PendingOfferIndex enforces at most one pending counter offer per order.
const PendingOfferIndex = "idx_counter_offers_one_pending"

// CreateSchema creates the tables and indexes from the bun models. The
// migrations under ./migrations are the source of truth in Postgres; this is
// used for SQLite-backed tests and local demos.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []interface{}{
		(*models.Order)(nil),
		(*models.StatusHistoryEntry)(nil),
		(*models.CounterOffer)(nil),
	}
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	_, err := db.NewCreateIndex().
		Model((*models.CounterOffer)(nil)).
		Index(PendingOfferIndex).
		Unique().
		IfNotExists().
		Column("order_id").
		Where("status = 'pending'").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create pending offer index: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*models.CounterOffer)(nil)).
		Index("idx_counter_offers_order_id").
		IfNotExists().
		Column("order_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create counter offer order index: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*models.StatusHistoryEntry)(nil)).
		Index("idx_order_status_history_order_id").
		IfNotExists().
		Column("order_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create history index: %w", err)
	}
	return nil
}
