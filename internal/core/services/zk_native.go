package services

import (
	"context"
	"fmt"

	"github.com/iden3/go-circuits/v2"
	"github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/witness/v2"
	"github.com/iden3/go-rapidsnark/witness/wazero"

	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/pkg/loaders"
)

// NativeProverConfig represents native prover config
type NativeProverConfig struct {
	CircuitsLoader *loaders.Circuits
}

// NativeProverService computes proofs in-process: witness calculation over
// the circuit wasm plus a groth16 prover over the proving key.
type NativeProverService struct {
	config *NativeProverConfig
}

// NewNativeProverService new prover service that works with zero knowledge proofs
func NewNativeProverService(config *NativeProverConfig) *NativeProverService {
	return &NativeProverService{config: config}
}

// Generate generates a proof for the given circuit and inputs
func (s *NativeProverService) Generate(ctx context.Context, params ports.GenerateParams) (*types.ZKProof, error) {
	wasm, err := s.config.CircuitsLoader.LoadWasm(circuits.CircuitID(params.CircuitID))
	if err != nil {
		return nil, err
	}

	calc, err := witness.NewCalculator(wasm, witness.WithWasmEngine(wazero.NewCircom2WZWitnessCalculator))
	if err != nil {
		log.Error(ctx, "can't create witness calculator", err)
		return nil, fmt.Errorf("can't create witness calculator: %w", err)
	}

	parsedInputs, err := witness.ParseInputs(params.WitnessInputs)
	if err != nil {
		return nil, err
	}

	wtnsBytes, err := calc.CalculateWTNSBin(parsedInputs, true)
	if err != nil {
		log.Error(ctx, "can't generate witnesses", err)
		return nil, fmt.Errorf("can't generate witnesses: %w", err)
	}

	provingKey, err := s.config.CircuitsLoader.LoadProvingKey(circuits.CircuitID(params.CircuitID))
	if err != nil {
		return nil, err
	}

	p, err := prover.Groth16Prover(provingKey, wtnsBytes)
	if err != nil {
		log.Error(ctx, "can't create prover", err)
		return nil, fmt.Errorf("can't create prover: %w", err)
	}
	return p, nil
}
