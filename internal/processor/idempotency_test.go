package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kisanpay/kisanpay/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	// unique connection name per test; adapters are cached globally
	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	return mr, adapter
}

func TestIdempotencyService_AcquireProcessingLock_FirstAttempt(t *testing.T) {
	_, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())

	pc, err := service.AcquireProcessingLock(context.Background(), "txn:1")
	require.NoError(t, err)
	require.NotNil(t, pc)

	assert.Equal(t, "txn:1", pc.EventKey)
	assert.Equal(t, 0, pc.RetryCount)
	assert.False(t, pc.IsRetry)
	assert.True(t, pc.lockAcquired)
}

func TestIdempotencyService_AcquireProcessingLock_Concurrent(t *testing.T) {
	_, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	first, err := service.AcquireProcessingLock(ctx, "txn:2")
	require.NoError(t, err)

	second, err := service.AcquireProcessingLock(ctx, "txn:2")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
	assert.Nil(t, second)
	assert.True(t, first.lockAcquired)
}

func TestIdempotencyService_LockExpires(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.LockTTL = time.Second
	service := NewIdempotencyService(adapter, cfg)
	ctx := context.Background()

	_, err := service.AcquireProcessingLock(ctx, "txn:3")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = service.AcquireProcessingLock(ctx, "txn:3")
	assert.NoError(t, err)
}

func TestIdempotencyService_MarkSuccess(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := service.AcquireProcessingLock(ctx, "txn:4")
	require.NoError(t, err)
	require.NoError(t, service.MarkFailure(ctx, pc, errors.New("db down")))

	pc, err = service.AcquireProcessingLock(ctx, "txn:4")
	require.NoError(t, err)
	require.NoError(t, service.MarkSuccess(ctx, pc))

	processed, err := service.IsProcessed(ctx, "txn:4")
	require.NoError(t, err)
	assert.True(t, processed)
	assert.False(t, mr.Exists("billing:lock:txn:4"))
	assert.False(t, mr.Exists("billing:retry:txn:4"))

	again, err := service.AcquireProcessingLock(ctx, "txn:4")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Nil(t, again)
}

func TestIdempotencyService_MarkFailure_WithRetry(t *testing.T) {
	_, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := service.AcquireProcessingLock(ctx, "txn:5")
	require.NoError(t, err)
	require.NoError(t, service.MarkFailure(ctx, pc, nil))
	assert.False(t, pc.lockAcquired)

	retry, err := service.AcquireProcessingLock(ctx, "txn:5")
	require.NoError(t, err)
	assert.Equal(t, 1, retry.RetryCount)
	assert.True(t, retry.IsRetry)

	count, err := service.GetRetryCount(ctx, "txn:5")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIdempotencyService_MaxRetriesExceeded(t *testing.T) {
	_, adapter := setupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = 2
	service := NewIdempotencyService(adapter, cfg)
	ctx := context.Background()

	for i := 0; i < cfg.MaxRetries; i++ {
		pc, err := service.AcquireProcessingLock(ctx, "txn:6")
		require.NoError(t, err, "attempt %d", i)
		require.NoError(t, service.MarkFailure(ctx, pc, nil))
	}

	pc, err := service.AcquireProcessingLock(ctx, "txn:6")
	assert.True(t, errors.Is(err, ErrMaxRetriesExceeded))
	assert.Nil(t, pc)
}

func TestIdempotencyService_ReleaseLock(t *testing.T) {
	_, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := service.AcquireProcessingLock(ctx, "txn:7")
	require.NoError(t, err)
	require.NoError(t, service.ReleaseLock(ctx, pc))
	assert.False(t, pc.lockAcquired)
	assert.NoError(t, service.ReleaseLock(ctx, pc))
	assert.NoError(t, service.ReleaseLock(ctx, nil))

	again, err := service.AcquireProcessingLock(ctx, "txn:7")
	require.NoError(t, err)
	assert.NotNil(t, again)
}
