package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/log"
)

// ProverBridge owns the call into the proof computation backend. It enforces
// the single-flight policy: at most one generation is in flight, a concurrent
// Execute is rejected rather than queued so private inputs are never held in
// a queue. Every backend failure is converted to a failed ProofResult at this
// boundary; nothing propagates as a panic or raw error.
type ProverBridge struct {
	generator ports.ZKGenerator

	mu     sync.Mutex
	busy   bool
	cancel context.CancelFunc
}

// NewProverBridge returns a bridge over the given proof backend
func NewProverBridge(generator ports.ZKGenerator) *ProverBridge {
	return &ProverBridge{generator: generator}
}

// Busy tells whether a generation is outstanding
func (b *ProverBridge) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// Cancel requests best-effort cancellation of the outstanding generation,
// if any. The backend may still run to completion; its result is discarded.
func (b *ProverBridge) Cancel() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Execute runs one proof generation. The private input blob is consumed and
// wiped before the backend call returns to the caller, whether it succeeded
// or not. If the caller's context is cancelled the bridge stops reporting:
// the in-flight handle stays owned by the bridge, which releases it and
// discards the late result on completion.
func (b *ProverBridge) Execute(ctx context.Context, request *domain.ProofRequest) *domain.ProofResult {
	if request == nil || request.CircuitID == "" {
		if request != nil {
			request.Zero()
		}
		return domain.NewProofError(domain.ProofErrorValidation, domain.ErrMissingCircuit.Error())
	}

	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		request.Zero()
		return domain.NewProofError(domain.ProofErrorBusy, domain.ErrProofInProgress.Error())
	}
	b.busy = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.mu.Unlock()

	inputs, err := b.witnessInputs(request)
	request.Zero()
	if err != nil {
		b.release(cancel)
		return domain.NewProofError(domain.ProofErrorValidation, err.Error())
	}

	params := ports.GenerateParams{
		CircuitID:     request.CircuitID,
		WitnessInputs: inputs,
		PublicInputs:  request.PublicInputs,
		Options:       request.Options,
	}
	resCh := make(chan *domain.ProofResult, 1)
	go func() {
		defer b.release(cancel)
		resCh <- b.generate(runCtx, params)
	}()

	select {
	case res := <-resCh:
		return res
	case <-ctx.Done():
		// stop observing; the goroutine keeps the handle and releases it
		cancel()
		log.Info(ctx, "proof generation abandoned by caller", "circuit", params.CircuitID)
		return domain.NewProofError(domain.ProofErrorCanceled, ctx.Err().Error())
	}
}

func (b *ProverBridge) generate(ctx context.Context, params ports.GenerateParams) (res *domain.ProofResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.NewProofError(domain.ProofErrorBridge, fmt.Sprintf("prover panic: %v", r))
		}
		zero(params.WitnessInputs)
	}()

	zkp, err := b.generator.Generate(ctx, params)
	if err != nil {
		log.Error(ctx, "proof generation failed", err, "circuit", params.CircuitID)
		return domain.NewProofError(domain.ProofErrorBridge, err.Error())
	}

	proofBytes, err := json.Marshal(zkp)
	if err != nil {
		return domain.NewProofError(domain.ProofErrorBridge, err.Error())
	}
	return &domain.ProofResult{Ok: true, Proof: proofBytes}
}

// witnessInputs decodes the private blob and merges the engine options into
// the witness input map. The resulting document exists only for the duration
// of one backend call.
func (b *ProverBridge) witnessInputs(request *domain.ProofRequest) (json.RawMessage, error) {
	fields, err := domain.DecodePrivateInputs(request.PrivateInputsEncoded)
	if err != nil {
		return nil, err
	}

	inputs := make(map[string]string, len(fields)+len(request.Options))
	for k, v := range fields {
		inputs[k] = v
	}
	for k, v := range request.Options {
		if _, ok := inputs[k]; !ok {
			inputs[k] = v
		}
	}
	return json.Marshal(inputs)
}

func (b *ProverBridge) release(cancel context.CancelFunc) {
	cancel()
	b.mu.Lock()
	b.busy = false
	b.cancel = nil
	b.mu.Unlock()
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
