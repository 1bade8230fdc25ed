package redis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
)

// setupTestRedis starts an in-memory miniredis server and a client for it.
func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedis(client, time.Second, 5*time.Millisecond, 200*time.Millisecond, logger.Discard()), mr
}

func TestAcquireAndRelease(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.AcquireOrder(ctx, "order-1", "owner-a"))
	val, err := mr.Get("order_lock:order-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-a", val)

	ok, err := r.TryLockOrder(ctx, "order-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.ReleaseOrder(ctx, "order-1", "owner-a"))
	assert.False(t, mr.Exists("order_lock:order-1"))

	ok, err = r.TryLockOrder(ctx, "order-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease_OnlyOwnerCanRelease(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.AcquireOrder(ctx, "order-1", "owner-a"))
	require.NoError(t, r.ReleaseOrder(ctx, "order-1", "owner-b"))

	val, err := mr.Get("order_lock:order-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-a", val)
}

func TestAcquire_TimesOutAsConflict(t *testing.T) {
	r, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.AcquireOrder(ctx, "order-1", "owner-a"))

	err := r.AcquireOrder(ctx, "order-1", "owner-b")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	r, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.AcquireOrder(ctx, "order-1", "owner-a"))

	done := make(chan error, 1)
	go func() { done <- r.AcquireOrder(ctx, "order-1", "owner-b") }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, r.ReleaseOrder(ctx, "order-1", "owner-a"))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second acquire never returned")
	}
}

func TestLockExpiresAfterTTL(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.AcquireOrder(ctx, "order-1", "owner-a"))
	mr.FastForward(2 * time.Second)

	ok, err := r.TryLockOrder(ctx, "order-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentAcquire_MutualExclusion(t *testing.T) {
	r, _ := setupTestRedis(t)
	r.MaxWait = 2 * time.Second
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			owner := fmt.Sprintf("owner-%d", n)
			if err := r.AcquireOrder(ctx, "order-1", owner); err != nil {
				return
			}
			cur := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if cur <= m || atomic.CompareAndSwapInt32(&maxInside, m, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = r.ReleaseOrder(ctx, "order-1", owner)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}
