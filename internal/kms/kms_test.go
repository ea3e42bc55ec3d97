package kms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKMS(t *testing.T) *KMS {
	t.Helper()
	k := NewKMS()
	require.NoError(t, k.RegisterKeyProvider(KeyTypeBabyJubJub, NewLocalBJJKeyProvider(KeyTypeBabyJubJub)))
	return k
}

func TestRegisterKeyProviderConflict(t *testing.T) {
	k := testKMS(t)
	err := k.RegisterKeyProvider(KeyTypeBabyJubJub, NewLocalBJJKeyProvider(KeyTypeBabyJubJub))
	assert.ErrorIs(t, err, ErrKeyTypeConflict)
}

func TestCreateKeyAndPublicKey(t *testing.T) {
	k := testKMS(t)
	keyID, err := k.CreateKey(KeyTypeBabyJubJub)
	require.NoError(t, err)
	assert.Equal(t, KeyTypeBabyJubJub, keyID.Type)
	assert.NotEmpty(t, keyID.ID)

	pub, err := k.PublicKey(keyID)
	require.NoError(t, err)
	assert.Len(t, pub, bjjKeyLength)
}

func TestCreateKeyUnknownType(t *testing.T) {
	k := testKMS(t)
	_, err := k.CreateKey(KeyType("RSA"))
	assert.ErrorIs(t, err, ErrUnknownKeyType)
}

func TestImportKey(t *testing.T) {
	k := testKMS(t)
	material := make([]byte, bjjKeyLength)
	for i := range material {
		material[i] = byte(i + 1)
	}
	keyID, err := k.ImportKey(KeyTypeBabyJubJub, material)
	require.NoError(t, err)

	again, err := k.ImportKey(KeyTypeBabyJubJub, material)
	require.NoError(t, err)
	assert.Equal(t, keyID, again, "importing the same material yields the same key ID")
}

func TestImportKeyBadLength(t *testing.T) {
	k := testKMS(t)
	_, err := k.ImportKey(KeyTypeBabyJubJub, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestSignUnknownKey(t *testing.T) {
	k := testKMS(t)
	_, err := k.Sign(context.Background(), KeyID{Type: KeyTypeBabyJubJub, ID: "deadbeef"}, []byte{1})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSignProducesCompressedSignature(t *testing.T) {
	k := testKMS(t)
	keyID, err := k.CreateKey(KeyTypeBabyJubJub)
	require.NoError(t, err)

	sig, err := k.Sign(context.Background(), keyID, []byte{42})
	require.NoError(t, err)
	assert.Len(t, sig, 64)
}
