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

// DB is the counter-offer store. Bun may be a *bun.DB or a bun.Tx.
type DB struct {
	Bun bun.IDB
}

// CreateCounterOffer inserts a pending offer. The partial unique index on
// pending offers turns a lost race into ErrConflict.
func (d *DB) CreateCounterOffer(ctx context.Context, offer *models.CounterOffer) error {
	_, err := d.Bun.NewInsert().Model(offer).Exec(ctx)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("there is already a pending counter offer for order %s: %w", offer.OrderNumber, models.ErrConflict)
	}
	return err
}

func (d *DB) GetByTokenHash(ctx context.Context, hash string) (*models.CounterOffer, error) {
	return d.getOne(ctx, "co.token_hash = ?", hash)
}

// GetPendingByOrder returns the open offer of an order, or ErrNotFound.
func (d *DB) GetPendingByOrder(ctx context.Context, orderID string) (*models.CounterOffer, error) {
	var offer models.CounterOffer
	err := d.Bun.NewSelect().
		Model(&offer).
		Where("co.order_id = ?", orderID).
		Where("co.status = ?", models.CounterOfferPending).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListByOrder returns every offer made on an order, newest first.
func (d *DB) ListByOrder(ctx context.Context, orderID string) ([]models.CounterOffer, error) {
	offers := []models.CounterOffer{}
	err := d.Bun.NewSelect().
		Model(&offers).
		Where("co.order_id = ?", orderID).
		Order("co.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// TransitionStatus persists offer.Status, RespondedAt and CustomerNotes only
// if the stored status is still from. It reports whether this caller won.
func (d *DB) TransitionStatus(ctx context.Context, offer *models.CounterOffer, from models.CounterOfferStatus) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model(offer).
		Column("status", "responded_at", "customer_notes", "updated_at").
		WherePK().
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ExpireOverdue marks every pending offer whose deadline is before now as
// expired and returns how many rows changed.
func (d *DB) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.CounterOffer)(nil)).
		Set("status = ?", models.CounterOfferExpired).
		Set("updated_at = ?", now).
		Where("status = ?", models.CounterOfferPending).
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) getOne(ctx context.Context, where string, arg interface{}) (*models.CounterOffer, error) {
	var offer models.CounterOffer
	err := d.Bun.NewSelect().
		Model(&offer).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("counter offer: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}
