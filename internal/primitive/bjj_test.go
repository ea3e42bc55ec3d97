package primitive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/kms"
)

func testSigner(t *testing.T) *BJJSigner {
	t.Helper()
	keyStore := kms.NewKMS()
	require.NoError(t, keyStore.RegisterKeyProvider(kms.KeyTypeBabyJubJub, kms.NewLocalBJJKeyProvider(kms.KeyTypeBabyJubJub)))
	keyID, err := keyStore.CreateKey(kms.KeyTypeBabyJubJub)
	require.NoError(t, err)
	signer, err := NewBJJSigner(keyStore, keyID)
	require.NoError(t, err)
	return signer
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer := testSigner(t)
	msg := []byte("share proof request 77")

	sig, err := signer.Sign(context.Background(), msg)
	require.NoError(t, err)

	verifier := &BJJVerifier{}
	assert.True(t, verifier.Verify(msg, sig, signer.PublicKey()))
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	signer := testSigner(t)
	sig, err := signer.Sign(context.Background(), []byte("original"))
	require.NoError(t, err)

	verifier := &BJJVerifier{}
	assert.False(t, verifier.Verify([]byte("tampered"), sig, signer.PublicKey()))
}

func TestVerifyNeverRaises(t *testing.T) {
	signer := testSigner(t)
	sig, err := signer.Sign(context.Background(), []byte("msg"))
	require.NoError(t, err)

	verifier := &BJJVerifier{}

	t.Run("short signature", func(t *testing.T) {
		assert.False(t, verifier.Verify([]byte("msg"), sig[:10], signer.PublicKey()))
	})
	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, verifier.Verify([]byte("msg"), nil, signer.PublicKey()))
	})
	t.Run("empty message", func(t *testing.T) {
		assert.False(t, verifier.Verify(nil, sig, signer.PublicKey()))
	})
	t.Run("malformed public key", func(t *testing.T) {
		assert.False(t, verifier.Verify([]byte("msg"), sig, "not-a-key"))
	})
	t.Run("garbage everywhere", func(t *testing.T) {
		assert.False(t, verifier.Verify([]byte{0xff}, []byte{0x01, 0x02}, ""))
	})
}

func TestVerifyIsConcurrencySafe(t *testing.T) {
	signer := testSigner(t)
	msg := []byte("concurrent")
	sig, err := signer.Sign(context.Background(), msg)
	require.NoError(t, err)

	verifier := &BJJVerifier{}
	done := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		go func() {
			done <- verifier.Verify(msg, sig, signer.PublicKey())
		}()
	}
	for i := 0; i < 16; i++ {
		assert.True(t, <-done)
	}
}

func TestSignerWithoutKey(t *testing.T) {
	var signer *BJJSigner
	_, err := signer.Sign(context.Background(), []byte("msg"))
	assert.ErrorIs(t, err, domain.ErrKeyUnavailable)
}

func TestNewBJJSignerValidation(t *testing.T) {
	keyStore := kms.NewKMS()
	_, err := NewBJJSigner(keyStore, kms.KeyID{Type: "RSA", ID: "x"})
	assert.Error(t, err)

	_, err = NewBJJSigner(keyStore, kms.KeyID{Type: kms.KeyTypeBabyJubJub, ID: ""})
	assert.Error(t, err)

	_, err = NewBJJSigner(nil, kms.KeyID{Type: kms.KeyTypeBabyJubJub, ID: "x"})
	assert.Error(t, err)
}
