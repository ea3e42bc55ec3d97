package kms

import (
	"encoding/hex"
	"math/big"
	"sync"

	"context"

	"github.com/iden3/go-iden3-crypto/babyjub"
	"github.com/iden3/go-iden3-crypto/utils"
	"github.com/pkg/errors"
)

const bjjKeyLength = 32

type localBJJKeyProvider struct {
	keyType KeyType

	mu   sync.RWMutex
	keys map[string]babyjub.PrivateKey // indexed by public key hex
}

// NewLocalBJJKeyProvider creates a key provider for BabyJubJub keys held in
// memory. The wallet keeps exactly what it imported or generated; nothing is
// written to disk.
func NewLocalBJJKeyProvider(keyType KeyType) KeyProvider {
	return &localBJJKeyProvider{
		keyType: keyType,
		keys:    make(map[string]babyjub.PrivateKey),
	}
}

// New generates a random key and returns its KeyID.
func (ls *localBJJKeyProvider) New() (KeyID, error) {
	privKey := babyjub.NewRandPrivKey()
	return ls.store(privKey), nil
}

// Import loads a key from its 32 byte private scalar.
func (ls *localBJJKeyProvider) Import(material []byte) (KeyID, error) {
	if len(material) != bjjKeyLength {
		return KeyID{}, errors.Errorf("babyjubjub private key must be %d bytes", bjjKeyLength)
	}
	var privKey babyjub.PrivateKey
	copy(privKey[:], material)
	return ls.store(privKey), nil
}

// PublicKey returns the compressed public key for the specified key ID
func (ls *localBJJKeyProvider) PublicKey(keyID KeyID) ([]byte, error) {
	if keyID.Type != ls.keyType {
		return nil, ErrIncorrectKeyType
	}

	ls.mu.RLock()
	defer ls.mu.RUnlock()
	if _, ok := ls.keys[keyID.ID]; !ok {
		return nil, errors.WithStack(ErrKeyNotFound)
	}
	return hex.DecodeString(keyID.ID)
}

// Sign signs data, interpreted as a little-endian field element, with the
// poseidon variant of the BJJ signature scheme.
func (ls *localBJJKeyProvider) Sign(_ context.Context, keyID KeyID, data []byte) ([]byte, error) {
	if keyID.Type != ls.keyType {
		return nil, ErrIncorrectKeyType
	}
	if len(data) > bjjKeyLength {
		return nil, errors.New("data to sign is too large")
	}

	i := new(big.Int).SetBytes(utils.SwapEndianness(data))
	if !utils.CheckBigIntInField(i) {
		return nil, errors.New("data to sign is too large")
	}

	ls.mu.RLock()
	privKey, ok := ls.keys[keyID.ID]
	ls.mu.RUnlock()
	if !ok {
		return nil, errors.WithStack(ErrKeyNotFound)
	}

	sig := privKey.SignPoseidon(i).Compress()
	return sig[:], nil
}

func (ls *localBJJKeyProvider) store(privKey babyjub.PrivateKey) KeyID {
	pubHex := privKey.Public().String()
	ls.mu.Lock()
	ls.keys[pubHex] = privKey
	ls.mu.Unlock()
	return KeyID{Type: ls.keyType, ID: pubHex}
}
