package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/envelope"
	"github.com/holdr-id/wallet-node/internal/log"
)

// Verification is the verifier-side entry point. It decodes a received
// envelope, rejects stale or malformed shares before any verifier traffic
// and forwards the surviving share to the proof verifier.
type Verification struct {
	verifier ports.ProofVerifier
	chain    ports.ChainService
	record   bool
}

// NewVerification returns an on-chain verification service. When record is
// set, valid proofs are additionally submitted on chain and the transaction
// hash is attached to the outcome.
func NewVerification(chain ports.ChainService, record bool) *Verification {
	return &Verification{verifier: chain, chain: chain, record: record}
}

// NewOffchainVerification returns a verification service that checks proofs
// locally with the circuit's verification key. Nothing is recorded on chain.
func NewOffchainVerification(verifier ports.ProofVerifier) *Verification {
	return &Verification{verifier: verifier}
}

// Receive processes one received envelope string. Rejection order is fixed:
// decoding and expiry first, then the kind check, then payload structure.
// The verifier is only reached by shares that passed all of them, so a
// replayed stale proof never costs a verification round trip.
func (v *Verification) Receive(ctx context.Context, envelopeString string) (*domain.VerifiedProof, error) {
	env, err := envelope.Decode(envelopeString)
	if err != nil {
		return nil, err
	}
	if env.Kind != envelope.KindProof {
		return nil, domain.ErrWrongEnvelopeKind
	}

	var share domain.ProofShare
	if err := json.Unmarshal([]byte(env.Payload), &share); err != nil {
		return nil, envelope.ErrMalformed
	}
	if share.CircuitID == "" || share.Proof == "" {
		return nil, envelope.ErrMalformed
	}

	valid, err := v.verifier.VerifyProof(ctx, &share)
	if err != nil {
		return nil, errors.Wrap(err, "verifying proof")
	}

	verified := &domain.VerifiedProof{
		Share:      share,
		Valid:      valid,
		ReceivedAt: time.Now(),
	}
	if valid && v.record {
		// the verdict stands even if recording it fails
		txHash, err := v.chain.SubmitVerification(ctx, &share)
		if err != nil {
			log.Error(ctx, "submitting verification on chain", err, "circuit", share.CircuitID)
		} else {
			verified.TxHash = txHash
		}
	}
	return verified, nil
}
