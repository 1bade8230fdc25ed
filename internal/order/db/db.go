package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-tradein/internal/database"
	"ms-tradein/internal/models"
)

// DB is the order store. Bun may be a *bun.DB or a bun.Tx.
type DB struct {
	Bun bun.IDB
}

// Columns an order update is allowed to touch. The customer snapshot and
// order number are immutable.
var mutableOrderColumns = []string{
	"amount",
	"status",
	"payment_status",
	"transaction_id",
	"paid_at",
	"completed_at",
	"cancellation_reason",
	"updated_at",
	"version",
}

// CreateOrder inserts a new order. A duplicate order number is reported as
// ErrConflict.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	_, err := d.Bun.NewInsert().Model(order).Exec(ctx)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("order number %s: %w", order.OrderNumber, models.ErrConflict)
	}
	return err
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("o.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("o.order_number = ?", number).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", number, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder writes the mutable columns if the row still carries the version
// the caller read, stamping updated_at with now. On success order.Version is
// bumped; a stale version returns ErrConflict and leaves order unchanged.
func (d *DB) UpdateOrder(ctx context.Context, order *models.Order, now time.Time) error {
	prev := order.Version
	prevUpdated := order.UpdatedAt

	order.Version = prev + 1
	order.UpdatedAt = now.UTC()

	res, err := d.Bun.NewUpdate().
		Model(order).
		Column(mutableOrderColumns...).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		order.Version, order.UpdatedAt = prev, prevUpdated
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		order.Version, order.UpdatedAt = prev, prevUpdated
		return err
	}
	if n == 0 {
		order.Version, order.UpdatedAt = prev, prevUpdated
		return fmt.Errorf("order %s was modified concurrently: %w", order.ID, models.ErrConflict)
	}
	return nil
}

// ---------------- STATUS HISTORY ----------------

func (d *DB) AppendStatusHistory(ctx context.Context, entry *models.StatusHistoryEntry) error {
	_, err := d.Bun.NewInsert().Model(entry).Exec(ctx)
	return err
}

// GetStatusHistory returns the audit trail oldest first.
func (d *DB) GetStatusHistory(ctx context.Context, orderID string) ([]models.StatusHistoryEntry, error) {
	history := []models.StatusHistoryEntry{}
	err := d.Bun.NewSelect().
		Model(&history).
		Where("h.order_id = ?", orderID).
		Order("h.changed_at ASC", "h.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return history, nil
}
