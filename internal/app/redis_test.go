package app

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"haul/internal/config"
)

func TestRedisOptions(t *testing.T) {
	cfg := config.Default().Redis
	cfg.ReadTimeout = 300 * time.Millisecond

	opts := redisOptions(cfg)

	assert.Equal(t, cfg.Addr, opts.Addr)
	assert.Equal(t, cfg.PoolSize, opts.PoolSize)
	assert.Equal(t, cfg.DialTimeout, opts.DialTimeout)
	assert.Equal(t, 300*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, opts.WriteTimeout)
	assert.True(t, opts.ContextTimeoutEnabled)
}

func TestKeyNamespace(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		cmd  redis.Cmder
		want string
	}{
		{redis.NewStringCmd(ctx, "get", "cache:profile:drv-1"), "cache:profile"},
		{redis.NewStringCmd(ctx, "get", "idempotency:drv-1:POST:/v1/wallet/withdrawals:k-1"), "idempotency"},
		{redis.NewStatusCmd(ctx, "ping"), "redis"},
		{redis.NewStringCmd(ctx, "get", "plain"), "redis"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, keyNamespace(tc.cmd), tc.cmd.Args())
	}
}
