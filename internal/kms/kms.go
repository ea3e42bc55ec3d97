// Package kms holds the wallet key material. Private keys never leave the
// registered providers; callers interact through KeyID handles only.
package kms

import (
	"context"
	stderr "errors"

	"github.com/pkg/errors"
)

// KMSType represents the KMS interface
// revive:disable-next-line
type KMSType interface {
	RegisterKeyProvider(kt KeyType, kp KeyProvider) error
	CreateKey(kt KeyType) (KeyID, error)
	ImportKey(kt KeyType, material []byte) (KeyID, error)
	PublicKey(keyID KeyID) ([]byte, error)
	Sign(ctx context.Context, keyID KeyID, data []byte) ([]byte, error)
}

// KeyProvider describes the interface that key providers should match.
type KeyProvider interface {
	// New generates a random key.
	New() (KeyID, error)
	// Import loads a key from raw private material (e.g. a seed-derived scalar).
	Import(material []byte) (KeyID, error)
	// PublicKey returns byte representation of public key
	PublicKey(keyID KeyID) ([]byte, error)
	// Sign the data and return signature.
	Sign(ctx context.Context, keyID KeyID, data []byte) ([]byte, error)
}

// KMS stores keys and secrets
type KMS struct {
	registry map[KeyType]KeyProvider
}

// KeyType describes the type of Key
type KeyType string

// List of supported key types
const (
	KeyTypeBabyJubJub KeyType = "BJJ"
)

// ErrUnknownKeyType returns when we do not support this type of keys
var ErrUnknownKeyType = stderr.New("unknown key type")

// ErrIncorrectKeyType returns when key provider can't work with given key type
var ErrIncorrectKeyType = stderr.New("incorrect key type")

// ErrKeyTypeConflict raises when we register new key provider with key type
// that already exists
var ErrKeyTypeConflict = stderr.New("key type already registered")

// ErrKeyNotFound returns when the provider holds no key for the given ID
var ErrKeyNotFound = stderr.New("key not found")

// KeyID is a key unique identifier
type KeyID struct {
	Type KeyType
	ID   string
}

// NewKMS create new KMS
func NewKMS() *KMS {
	k := &KMS{registry: make(map[KeyType]KeyProvider)}
	return k
}

// RegisterKeyProvider register new key provider. It is a thread unsafe
// function that should be called on app initialization or under external mutex.
func (k *KMS) RegisterKeyProvider(kt KeyType, kp KeyProvider) error {
	if _, ok := k.registry[kt]; ok {
		return errors.WithStack(ErrKeyTypeConflict)
	}

	k.registry[kt] = kp
	return nil
}

// CreateKey creates a new random key of specified type.
func (k *KMS) CreateKey(kt KeyType) (KeyID, error) {
	var id KeyID
	kp, ok := k.registry[kt]
	if !ok {
		return id, errors.WithStack(ErrUnknownKeyType)
	}

	return kp.New()
}

// ImportKey loads a key of specified type from raw private material.
func (k *KMS) ImportKey(kt KeyType, material []byte) (KeyID, error) {
	var id KeyID
	kp, ok := k.registry[kt]
	if !ok {
		return id, errors.WithStack(ErrUnknownKeyType)
	}

	return kp.Import(material)
}

// PublicKey returns bytes representation for public key for specified key ID
func (k *KMS) PublicKey(keyID KeyID) ([]byte, error) {
	kp, ok := k.registry[keyID.Type]
	if !ok {
		return nil, errors.WithStack(ErrUnknownKeyType)
	}

	return kp.PublicKey(keyID)
}

// Sign signs digest with keyID.
func (k *KMS) Sign(ctx context.Context, keyID KeyID, data []byte) ([]byte, error) {
	kp, ok := k.registry[keyID.Type]
	if !ok {
		return nil, errors.WithStack(ErrUnknownKeyType)
	}

	return kp.Sign(ctx, keyID, data)
}
