package qrlink

import (
	"testing"

	"github.com/google/uuid"
	"github.com/iden3/go-iden3-core/v2/w3c"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniversal(t *testing.T) {
	baseURL := "https://wallet.holdr.id/"
	hostURL := "https://wallet-node.holdr.id"
	id, err := uuid.Parse("1f209581-ab1d-426d-88d9-2b545bdb851d")
	require.NoError(t, err)
	holderDID, err := w3c.ParseDID("did:iden3:polygon:amoy:x7xjFDkoCW7MSQUZQwrXhyU5HqQ8npzEdAvHmBjqx")
	require.NoError(t, err)
	expected := "https://wallet.holdr.id/#request_uri=https%3A%2F%2Fwallet-node.holdr.id%2Fv1%2Fqr-store%3Fid%3D1f209581-ab1d-426d-88d9-2b545bdb851d%26holder%3Ddid%3Aiden3%3Apolygon%3Aamoy%3Ax7xjFDkoCW7MSQUZQwrXhyU5HqQ8npzEdAvHmBjqx"
	got := NewUniversal(baseURL, hostURL, id, holderDID)
	assert.Equal(t, expected, got)

	expectedNoHolder := "https://wallet.holdr.id/#request_uri=https%3A%2F%2Fwallet-node.holdr.id%2Fv1%2Fqr-store%3Fid%3D1f209581-ab1d-426d-88d9-2b545bdb851d"
	assert.Equal(t, expectedNoHolder, NewUniversal(baseURL, hostURL, id, nil))
}

func TestDeepLink(t *testing.T) {
	hostURL := "https://wallet-node.holdr.id"
	id, err := uuid.Parse("1f209581-ab1d-426d-88d9-2b545bdb851d")
	require.NoError(t, err)
	holderDID, err := w3c.ParseDID("did:iden3:polygon:amoy:x7xjFDkoCW7MSQUZQwrXhyU5HqQ8npzEdAvHmBjqx")
	require.NoError(t, err)
	expected := "holdr://?request_uri=https%3A%2F%2Fwallet-node.holdr.id%2Fv1%2Fqr-store%3Fid%3D1f209581-ab1d-426d-88d9-2b545bdb851d%26holder%3Ddid%3Aiden3%3Apolygon%3Aamoy%3Ax7xjFDkoCW7MSQUZQwrXhyU5HqQ8npzEdAvHmBjqx"
	got := NewDeepLink(hostURL, id, holderDID)
	assert.Equal(t, expected, got)
}
