package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/holdr-id/wallet-node/internal/core/domain"
)

// ProofVerifier checks a received proof share and returns the validity
// verdict. The on-chain gateway and the local groth16 verifier both
// implement it.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, share *domain.ProofShare) (bool, error)
}

// ChainService is the chain collaborator consumed by the wallet. All calls
// are asynchronous round trips and may fail; the wallet treats the chain as
// a black box behind this contract.
type ChainService interface {
	// GetCredential fetches the current chain view of a credential, including
	// its status.
	GetCredential(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	// VerifyProof checks a proof against the on-chain verifier. Returns the
	// validity verdict.
	VerifyProof(ctx context.Context, share *domain.ProofShare) (bool, error)
	// SubmitVerification records a verification on chain and returns the
	// transaction hash.
	SubmitVerification(ctx context.Context, share *domain.ProofShare) (string, error)
}
