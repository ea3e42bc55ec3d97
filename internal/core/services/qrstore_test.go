package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdr-id/wallet-node/internal/redis"
	"github.com/holdr-id/wallet-node/pkg/cache"
)

func TestQRStore(t *testing.T) {
	ctx := context.Background()
	instance := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+instance.Addr())
	require.NoError(t, err)
	defer func() { assert.NoError(t, client.Close()) }()
	s := NewQrStoreService(cache.NewRedisCache(client))

	type expected struct {
		qrcode []byte
		error  error
	}

	type testConfig struct {
		name     string
		qrcode   []byte
		ttl      time.Duration
		expected expected
	}

	for _, tc := range []testConfig{
		{
			name:   "Nil value",
			qrcode: nil,
			ttl:    1 * time.Minute,
			expected: expected{
				qrcode: []byte(""),
				error:  nil,
			},
		},
		{
			name:   "Happy path",
			qrcode: []byte("ewogICJ0eXBlIjogInByb29mIgp9"),
			ttl:    1 * time.Minute,
			expected: expected{
				qrcode: []byte("ewogICJ0eXBlIjogInByb29mIgp9"),
				error:  nil,
			},
		},
		{
			name:   "Expired QR",
			qrcode: []byte("ewogICJ0eXBlIjogInByb29mIgp9"),
			ttl:    -1 * time.Minute,
			expected: expected{
				qrcode: nil,
				error:  ErrQRCodeLinkNotFound,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, err := s.Store(ctx, tc.qrcode, tc.ttl)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			qrcode, err := s.Find(ctx, id)
			require.Equal(t, tc.expected.error, err)
			assert.Equal(t, tc.expected.qrcode, qrcode)
		})
	}
}

func TestQRStoreToURL(t *testing.T) {
	s := NewQrStoreService(cache.NewMemoryCache())
	id := uuid.MustParse("1f209581-ab1d-426d-88d9-2b545bdb851d")
	assert.Equal(t,
		"https://wallet.holdr.id/v1/qr-store?id=1f209581-ab1d-426d-88d9-2b545bdb851d",
		s.ToURL("https://wallet.holdr.id", id))
}
