package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/models"
)

func TestUserCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewUserCache(rdb, time.Minute)
	id := uuid.NewString()
	defer rdb.Del(ctx, userKey(id))

	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	now := models.Now()
	require.NoError(t, c.Set(ctx, &models.User{ID: id, Email: "a@x.com", FullName: "A", HashedPassword: "secret-hash", CreatedAt: now, UpdatedAt: now}))

	got, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Empty(t, got.HashedPassword)
	assert.True(t, now.Equal(got.CreatedAt))

	ttl := rdb.TTL(ctx, userKey(id)).Val()
	assert.Greater(t, ttl, time.Duration(0))
}
