package primitive

import (
	"context"
	stderr "errors"

	"github.com/iden3/go-iden3-crypto/babyjub"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/iden3/go-iden3-crypto/utils"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/kms"
)

var (
	errorInvalidSignatureLength = stderr.New("incorrect signature length")
	errorInvalidSignature       = stderr.New("invalid signature")
	errorDecompress             = stderr.New("can't decompress bjj signature")
)

// BJJSigner signs wallet messages with a BJJ key held by the kms. Messages of
// arbitrary length are poseidon-hashed into the field before signing.
type BJJSigner struct {
	kms   kms.KMSType
	keyID kms.KeyID
}

// NewBJJSigner creates a new instance of BJJ signer
func NewBJJSigner(keyMS kms.KMSType, keyID kms.KeyID) (*BJJSigner, error) {
	if keyID.Type != kms.KeyTypeBabyJubJub {
		return nil, errors.New("wrong key type")
	}
	if keyID.ID == "" {
		return nil, errors.New("empty key ID")
	}
	if keyMS == nil {
		return nil, errors.New("KMS is nil")
	}
	return &BJJSigner{keyMS, keyID}, nil
}

// Sign poseidon-hashes the message and signs the digest. The private key
// never leaves the kms; error paths carry no key material.
func (s *BJJSigner) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if s == nil || s.kms == nil {
		return nil, errors.WithStack(domain.ErrKeyUnavailable)
	}
	digest, err := poseidon.HashBytes(message)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return s.kms.Sign(ctx, s.keyID, utils.SwapEndianness(digest.Bytes()))
}

// PublicKey returns the compressed public key the signer signs with, in its
// hex text form.
func (s *BJJSigner) PublicKey() string {
	return s.keyID.ID
}

// BJJVerifier verifies BJJ signatures. It holds no state and is safe for
// concurrent use.
type BJJVerifier struct{}

// Verify checks a BJJ signature over message against a public key given as
// hex text or base58. It never returns an error: any malformed input maps
// to false.
func (s *BJJVerifier) Verify(message, signature []byte, publicKeyOrAddress string) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
		}
	}()
	return s.verify(message, signature, publicKeyOrAddress) == nil
}

func (s *BJJVerifier) verify(message, signature []byte, publicKeyOrAddress string) error {
	var sigComp babyjub.SignatureComp
	if len(signature) != len(sigComp) {
		return errors.WithStack(errorInvalidSignatureLength)
	}

	copy(sigComp[:], signature)
	sig, err := sigComp.Decompress()
	if err != nil {
		return errors.WithStack(errorDecompress)
	}

	digest, err := poseidon.HashBytes(message)
	if err != nil {
		return errors.WithStack(err)
	}

	pub := babyjub.PublicKey{}
	if err := pub.UnmarshalText([]byte(publicKeyOrAddress)); err != nil {
		// hex failed, try the base58 address form
		raw, b58Err := base58.Decode(publicKeyOrAddress)
		if b58Err != nil {
			return errors.WithStack(err)
		}
		var comp babyjub.PublicKeyComp
		if len(raw) != len(comp) {
			return errors.WithStack(errorInvalidSignature)
		}
		copy(comp[:], raw)
		p, decErr := comp.Decompress()
		if decErr != nil {
			return errors.WithStack(decErr)
		}
		pub = *p
	}

	if !pub.VerifyPoseidon(digest, sig) {
		return errors.WithStack(errorInvalidSignature)
	}
	return nil
}
