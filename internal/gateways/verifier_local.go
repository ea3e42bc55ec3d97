package gateways

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/iden3/go-circuits/v2"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"
	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/pkg/loaders"
)

// LocalVerifier checks groth16 proofs off chain, against the verification
// key from the circuit artifact directory. It needs no rpc node, so a
// verifier can run fully air-gapped.
type LocalVerifier struct {
	circuits *loaders.Circuits
}

// NewLocalVerifier returns a verifier backed by the given circuit loader
func NewLocalVerifier(circuits *loaders.Circuits) *LocalVerifier {
	return &LocalVerifier{circuits: circuits}
}

// VerifyProof unpacks the share's proof document and checks it with the
// circuit's verification key. A proof that fails the pairing check yields a
// false verdict, not an error; errors are reserved for unusable inputs and
// missing artifacts.
func (v *LocalVerifier) VerifyProof(ctx context.Context, share *domain.ProofShare) (bool, error) {
	proofBytes, err := base64.StdEncoding.DecodeString(share.Proof)
	if err != nil {
		return false, errors.Wrap(err, "decoding proof document")
	}
	var zkp types.ZKProof
	if err := json.Unmarshal(proofBytes, &zkp); err != nil {
		return false, errors.Wrap(err, "unmarshaling proof document")
	}
	if zkp.Proof == nil {
		return false, errors.New("proof document has no proof data")
	}

	vk, err := v.circuits.LoadVerificationKey(circuits.CircuitID(share.CircuitID))
	if err != nil {
		return false, errors.Wrapf(err, "loading verification key for circuit %s", share.CircuitID)
	}

	if err := verifier.VerifyGroth16(zkp, vk); err != nil {
		log.Info(ctx, "proof rejected by local verifier", "circuit", share.CircuitID, "reason", err.Error())
		return false, nil
	}
	return true, nil
}
