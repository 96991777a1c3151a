package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focal/internal/cache"
	"focal/internal/config"
	"focal/internal/logger"
)

func TestNewAgendaCache_MemoryFallback(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{AgendaCacheTTL: time.Minute}

	c, closeCache := newAgendaCache(ctx, cfg, logger.Nop())
	assert.IsType(t, &cache.Memory{}, c)
	assert.NoError(t, closeCache())

	cfg.RedisAddr = "127.0.0.1:1"
	c, closeCache = newAgendaCache(ctx, cfg, logger.Nop())
	assert.IsType(t, &cache.Memory{}, c)
	assert.NoError(t, closeCache())
}

// Runs against a real server when FOCAL_TEST_REDIS_ADDR is set.
func TestNewAgendaCache_RedisIsClosed(t *testing.T) {
	addr := os.Getenv("FOCAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FOCAL_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	cfg := config.Config{RedisAddr: addr, RedisDB: 15, AgendaCacheTTL: time.Minute}

	c, closeCache := newAgendaCache(ctx, cfg, logger.Nop())
	require.IsType(t, &cache.Redis{}, c)
	_, err := c.Generation(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, closeCache())
	_, err = c.Generation(ctx, 1)
	assert.Error(t, err, "closed client rejects commands")
}
