package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardhat/internal/application/entitlement/usecases"
	"hardhat/internal/domain/account"
	"hardhat/internal/shared/logger"
)

// nopLogger is a no-op logger for testing.
type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func testSnapshot() *usecases.PlanStateSnapshot {
	return &usecases.PlanStateSnapshot{
		PlanID:      3,
		Status:      account.StatusTrialing,
		TrialUsed:   true,
		PeriodStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRedisPlanStateCache_RoundTrip(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewRedisPlanStateCache(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct_1", testSnapshot()))

	snap, err := cache.Get(ctx, "acct_1")
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, uint(3), snap.PlanID)
	assert.Equal(t, account.StatusTrialing, snap.Status)
	assert.True(t, snap.TrialUsed)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), snap.PeriodStart)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), snap.PeriodEnd)
	assert.False(t, snap.Missing)
}

func TestRedisPlanStateCache_MissReturnsNil(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewRedisPlanStateCache(client, newNopLogger())

	snap, err := cache.Get(context.Background(), "acct_unknown")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisPlanStateCache_MissingMarker(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewRedisPlanStateCache(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct_1", &usecases.PlanStateSnapshot{Missing: true}))

	snap, err := cache.Get(ctx, "acct_1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.Missing)

	// The marker expires quickly so a state created later is picked up.
	mr.FastForward(3 * time.Minute)

	snap, err = cache.Get(ctx, "acct_1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisPlanStateCache_SetOverwritesMissingMarker(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewRedisPlanStateCache(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct_1", &usecases.PlanStateSnapshot{Missing: true}))
	require.NoError(t, cache.Set(ctx, "acct_1", testSnapshot()))

	snap, err := cache.Get(ctx, "acct_1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.False(t, snap.Missing)
	assert.Equal(t, uint(3), snap.PlanID)
}

func TestRedisPlanStateCache_Invalidate(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewRedisPlanStateCache(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct_1", testSnapshot()))
	require.NoError(t, cache.Invalidate(ctx, "acct_1"))

	snap, err := cache.Get(ctx, "acct_1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisPlanStateCache_EntryExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewRedisPlanStateCache(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct_1", testSnapshot()))

	// Past the maximum jittered TTL.
	mr.FastForward(41 * time.Minute)

	snap, err := cache.Get(ctx, "acct_1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}
