package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
)

// ErrLockTimeout is returned when another writer held the order for longer
// than MaxWait. It wraps models.ErrConflict.
var ErrLockTimeout = fmt.Errorf("order is locked by another request: %w", models.ErrConflict)

// releaseScript deletes the key only while it still holds our owner token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis serializes writers of the same order across service instances.
type Redis struct {
	Client        *redis.Client
	TTL           time.Duration
	RetryInterval time.Duration
	MaxWait       time.Duration
	Logger        *logger.Logger
}

func NewRedis(client *redis.Client, ttl, retry, maxWait time.Duration, log *logger.Logger) *Redis {
	return &Redis{
		Client:        client,
		TTL:           ttl,
		RetryInterval: retry,
		MaxWait:       maxWait,
		Logger:        log,
	}
}

func lockKey(orderID string) string {
	return "order_lock:" + orderID
}

// TryLockOrder makes one SETNX attempt.
func (r *Redis) TryLockOrder(ctx context.Context, orderID, owner string) (bool, error) {
	return r.Client.SetNX(ctx, lockKey(orderID), owner, r.ttl()).Result()
}

// AcquireOrder blocks until the order lock is taken, MaxWait passes or ctx
// ends.
func (r *Redis) AcquireOrder(ctx context.Context, orderID, owner string) error {
	deadline := time.Now().Add(r.maxWait())
	for {
		ok, err := r.TryLockOrder(ctx, orderID, owner)
		if err != nil {
			return fmt.Errorf("lock order %s: %w", orderID, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			r.Logger.Warn("REDIS", fmt.Sprintf("Timed out waiting for lock on order %s", orderID))
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryInterval()):
		}
	}
}

// ReleaseOrder drops the lock if owner still holds it. A lock that expired
// and was taken by someone else is left alone.
func (r *Redis) ReleaseOrder(ctx context.Context, orderID, owner string) error {
	err := releaseScript.Run(ctx, r.Client, []string{lockKey(orderID)}, owner).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *Redis) ttl() time.Duration {
	if r.TTL <= 0 {
		return 10 * time.Second
	}
	return r.TTL
}

func (r *Redis) retryInterval() time.Duration {
	if r.RetryInterval <= 0 {
		return 50 * time.Millisecond
	}
	return r.RetryInterval
}

func (r *Redis) maxWait() time.Duration {
	if r.MaxWait <= 0 {
		return 5 * time.Second
	}
	return r.MaxWait
}
