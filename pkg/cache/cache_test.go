package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCaches(t *testing.T) map[string]Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return map[string]Cache{
		"memory": NewMemoryCache(),
		"redis":  NewRedisCache(client),
	}
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k", "some value", time.Minute))

			var got string
			require.True(t, c.Get(ctx, "k", &got))
			assert.Equal(t, "some value", got)
			assert.True(t, c.Exists(ctx, "k"))
		})
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			var got string
			assert.False(t, c.Get(ctx, "unknown", &got))
			assert.False(t, c.Exists(ctx, "unknown"))
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k", 42, ForEver))
			require.NoError(t, c.Delete(ctx, "k"))

			var got int
			assert.False(t, c.Get(ctx, "k", &got))
		})
	}
}

func TestMemoryExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", "v", 30*time.Millisecond))

	var got string
	require.True(t, c.Get(ctx, "k", &got))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestStructValues(t *testing.T) {
	type payload struct {
		QrCode string `json:"qr_code"`
	}
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k", payload{QrCode: "body"}, time.Minute))

			var got payload
			require.True(t, c.Get(ctx, "k", &got))
			assert.Equal(t, "body", got.QrCode)
		})
	}
}
