package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestPredictionCache(t *testing.T) {
	c, mr := newTestClient(t)
	cache := c.PredictionCache(time.Hour, "model-a")
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "Exports surge")
	require.NoError(t, err)
	assert.False(t, ok, "empty cache is a miss")

	want := models.Prediction{Label: models.LabelPositive, Score: 0.9132}
	require.NoError(t, cache.Set(ctx, "Exports surge", want))

	got, ok, err := cache.Get(ctx, "Exports surge")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	key := cache.Key("Exports surge")
	assert.Regexp(t, `^sentiment:predict:model-a:[0-9a-f]{32}$`, key)
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	_, ok, err = cache.Get(ctx, "Exports surge")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry is a miss")
}

func TestPredictionCache_ScopedByModel(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	old := c.PredictionCache(time.Hour, "model-a")
	retrained := c.PredictionCache(time.Hour, "model-b")

	require.NoError(t, old.Set(ctx, "Exports surge", models.Prediction{Label: models.LabelNegative, Score: 0.51}))

	_, ok, err := retrained.Get(ctx, "Exports surge")
	require.NoError(t, err)
	assert.False(t, ok, "a new model does not see predictions of the previous one")
	assert.NotEqual(t, old.Key("Exports surge"), retrained.Key("Exports surge"))
}

func TestPredictionCache_CorruptEntry(t *testing.T) {
	c, mr := newTestClient(t)
	cache := c.PredictionCache(time.Minute, "model-a")

	require.NoError(t, mr.Set(cache.Key("x"), "not json"))

	_, ok, err := cache.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDistributedLock(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	first := c.IngestionLock(time.Minute)
	second := c.IngestionLock(time.Minute)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "lock is held by first")

	require.NoError(t, first.Release(ctx))
	require.NoError(t, first.Release(ctx), "double release is a no-op")

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Release(ctx))
}

func TestDistributedLock_LostDuringRenewal(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	lock := c.IngestionLock(300 * time.Millisecond)
	ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, lock.Held())

	keys := mr.Keys()
	require.Len(t, keys, 1)
	key := keys[0]

	// another replica takes over the key before the next renewal
	require.NoError(t, mr.Set(key, "other-replica"))

	require.Eventually(t, func() bool { return !lock.Held() }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, lock.Release(ctx))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "other-replica", got, "a lost lock must not be released")
}

func TestClient_Health(t *testing.T) {
	c, mr := newTestClient(t)
	assert.NoError(t, c.Health(context.Background()))

	mr.Close()
	assert.Error(t, c.Health(context.Background()))
}

func TestNoopLock(t *testing.T) {
	var l RunLock = NoopLock{}
	ok, err := l.TryAcquire(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Release(context.Background()))
}
