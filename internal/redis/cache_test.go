package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/domain"
)

// fakeRedis implements the subset of redis.Cmdable used by CacheStore.
type fakeRedis struct {
	redis.Cmdable
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestCacheStore_ProfileRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	store := NewCacheStore(fake, 0)
	ctx := context.Background()

	miss, err := store.GetProfile(ctx, "drv-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	profile := &domain.Profile{
		ID:     "drv-1",
		Name:   "Bruno",
		City:   "Recife",
		Role:   domain.RoleDriver,
		Status: domain.ProfileStatusActive,
	}
	require.NoError(t, store.SetProfile(ctx, profile))
	assert.Equal(t, DefaultProfileCacheTTL, fake.ttls["cache:profile:drv-1"])

	got, err := store.GetProfile(ctx, "drv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDriver, got.Role)
	assert.True(t, got.IsActive())

	require.NoError(t, store.InvalidateProfile(ctx, "drv-1"))
	miss, err = store.GetProfile(ctx, "drv-1")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheStore_PropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	store := NewCacheStore(fake, 0)

	_, err := store.GetProfile(context.Background(), "drv-1")
	assert.EqualError(t, err, "connection refused")
}

func TestCacheStore_UsesConfiguredTTL(t *testing.T) {
	fake := newFakeRedis()
	store := NewCacheStore(fake, 2*time.Second)

	require.NoError(t, store.SetProfile(context.Background(), &domain.Profile{ID: "drv-1", Role: domain.RoleDriver}))
	assert.Equal(t, 2*time.Second, fake.ttls["cache:profile:drv-1"])
}
