package order

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	offerdb "ms-tradein/internal/counteroffer/db"
	"ms-tradein/internal/models"
	orderdb "ms-tradein/internal/order/db"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order, now time.Time) error
	AppendStatusHistory(ctx context.Context, entry *models.StatusHistoryEntry) error
	GetStatusHistory(ctx context.Context, orderID string) ([]models.StatusHistoryEntry, error)
}

type CounterOfferStore interface {
	CreateCounterOffer(ctx context.Context, offer *models.CounterOffer) error
	GetByTokenHash(ctx context.Context, hash string) (*models.CounterOffer, error)
	GetPendingByOrder(ctx context.Context, orderID string) (*models.CounterOffer, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.CounterOffer, error)
	TransitionStatus(ctx context.Context, offer *models.CounterOffer, from models.CounterOfferStatus) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Repos groups the stores bound to one connection or transaction.
type Repos struct {
	Orders OrderStore
	Offers CounterOfferStore
}

type Store interface {
	Repos() Repos
	// RunInTx commits if fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// BunStore backs Store with bun, for Postgres in production and SQLite in
// tests.
type BunStore struct {
	DB *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{DB: db}
}

func (s *BunStore) Repos() Repos {
	return reposFor(s.DB)
}

func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, reposFor(tx))
	})
}

func reposFor(db bun.IDB) Repos {
	return Repos{
		Orders: &orderdb.DB{Bun: db},
		Offers: &offerdb.DB{Bun: db},
	}
}
