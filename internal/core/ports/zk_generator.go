package ports

import (
	"context"
	"encoding/json"

	"github.com/iden3/go-rapidsnark/types"
)

// GenerateParams is one proof generation call crossing the prover contract.
// WitnessInputs is the merged witness document and holds the private field
// values; PublicInputs and Options travel alongside so an out-of-process
// prover sees the same request shape as an in-process one.
type GenerateParams struct {
	CircuitID     string
	WitnessInputs json.RawMessage
	PublicInputs  []string
	Options       map[string]string
}

// ZKGenerator is the proof computation backend consumed by the prover bridge.
// Implementations are expected to be slow and CPU heavy; callers own
// concurrency control.
type ZKGenerator interface {
	Generate(ctx context.Context, params GenerateParams) (*types.ZKProof, error)
}
