package ports

import (
	"context"

	"github.com/holdr-id/wallet-node/internal/core/domain"
)

// RequestBuilder assembles canonical proof requests from a credential and a
// disclosure mask.
type RequestBuilder interface {
	Build(credential *domain.Credential, mask domain.DisclosureMask, circuitID string, options map[string]string) (*domain.ProofRequest, error)
}

// ProverBridge executes proof requests against the external proof backend,
// at most one at a time. A rejected concurrent call carries the
// already_in_progress error kind; the outstanding call is unaffected.
type ProverBridge interface {
	Execute(ctx context.Context, request *domain.ProofRequest) *domain.ProofResult
	Busy() bool
	Cancel()
}

// VerificationService is the verifier-side entry point: decode a received
// envelope, reject stale or malformed shares before any chain traffic, and
// check the proof.
type VerificationService interface {
	Receive(ctx context.Context, envelopeString string) (*domain.VerifiedProof, error)
}
