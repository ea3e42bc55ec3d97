package envelope

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := encodeAt(KindProof, "payload-bytes", 2*time.Minute, now)
	require.NoError(t, err)

	env, err := decodeAt(s, now.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, KindProof, env.Kind)
	assert.Equal(t, "payload-bytes", env.Payload)
	assert.Equal(t, now.Unix(), env.CreatedAt.Unix())
	require.NotNil(t, env.ExpiresAt)
	assert.Equal(t, now.Add(2*time.Minute).Unix(), env.ExpiresAt.Unix())
}

func TestDecodeExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := encodeAt(KindProof, "stale", 2*time.Minute, now)
	require.NoError(t, err)

	env, err := decodeAt(s, now.Add(121*time.Second))
	assert.ErrorIs(t, err, ErrExpired)
	assert.Nil(t, env)
}

func TestDecodeAtExactExpiryIsValid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := encodeAt(KindCredential, "edge", time.Minute, now)
	require.NoError(t, err)

	env, err := decodeAt(s, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "edge", env.Payload)
}

func TestDecodeWithoutExpiryNeverExpires(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := encodeAt(KindDID, "did:iden3:polygon:amoy:x7xjFDkoCW7MSQUZQwrXhyU5HqQ8npzEdAvHmBjqx", 0, now)
	require.NoError(t, err)

	env, err := decodeAt(s, now.Add(10*365*24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, env.ExpiresAt)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not base64":        "%%%%",
		"not json":          base64.RawURLEncoding.EncodeToString([]byte("nope")),
		"missing type":      base64.RawURLEncoding.EncodeToString([]byte(`{"data":"x","timestamp":1}`)),
		"missing data":      base64.RawURLEncoding.EncodeToString([]byte(`{"type":"proof","timestamp":1}`)),
		"missing timestamp": base64.RawURLEncoding.EncodeToString([]byte(`{"type":"proof","data":"x"}`)),
		"unknown kind":      base64.RawURLEncoding.EncodeToString([]byte(`{"type":"selfie","data":"x","timestamp":1}`)),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(s)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestEncodeRejectsUnknownKind(t *testing.T) {
	_, err := Encode(Kind("selfie"), "x", 0)
	assert.ErrorIs(t, err, ErrMalformed)
}
