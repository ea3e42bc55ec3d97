package gateways

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/config"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/core/services"
	"github.com/holdr-id/wallet-node/internal/log"
	client "github.com/holdr-id/wallet-node/pkg/http"
	"github.com/holdr-id/wallet-node/pkg/loaders"
)

// RemoteProverConfig represents prover server config
type RemoteProverConfig struct {
	ServerURL       string
	ResponseTimeout time.Duration
}

// RemoteProverService delegates proof generation to an external prover
// server speaking the generateProof wire contract.
type RemoteProverService struct {
	proverConfig *RemoteProverConfig
}

// NewRemoteProverService new prover service that delegates to a prover server
func NewRemoteProverService(config *RemoteProverConfig) *RemoteProverService {
	return &RemoteProverService{proverConfig: config}
}

// NewProver returns the proof backend selected by the configuration: the
// in-process rapidsnark prover, or the remote prover server.
func NewProver(ctx context.Context, cfg *config.Configuration, circuitLoaderService *loaders.Circuits) ports.ZKGenerator {
	log.Info(ctx, "native prover enabled", "enabled", cfg.NativeProofGenerationEnabled)
	if cfg.NativeProofGenerationEnabled {
		return services.NewNativeProverService(&services.NativeProverConfig{
			CircuitsLoader: circuitLoaderService,
		})
	}

	return NewRemoteProverService(&RemoteProverConfig{
		ServerURL:       cfg.Prover.ServerURL,
		ResponseTimeout: cfg.Prover.ResponseTimeout,
	})
}

// Generate calls the prover server for proof generation. The witness inputs
// travel base64 encoded and are never logged; public inputs and engine
// options go alongside in the clear.
func (s *RemoteProverService) Generate(ctx context.Context, params ports.GenerateParams) (*types.ZKProof, error) {
	r := struct {
		CircuitID            string            `json:"circuit_id"`
		PublicInputs         []string          `json:"public_inputs"`
		PrivateInputsEncoded string            `json:"private_inputs_encoded"`
		Options              map[string]string `json:"options,omitempty"`
	}{
		CircuitID:            params.CircuitID,
		PublicInputs:         params.PublicInputs,
		PrivateInputsEncoded: base64.StdEncoding.EncodeToString(params.WitnessInputs),
		Options:              params.Options,
	}

	req, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	url := s.proverConfig.ServerURL + "/api/v1/proof/generate"

	res, err := client.NewClient(http.Client{Timeout: s.proverConfig.ResponseTimeout}).Post(ctx, url, req)
	if err != nil {
		return nil, err
	}

	resp := struct {
		Ok    bool   `json:"ok"`
		Proof string `json:"proof"`
		Error string `json:"error"`
	}{}
	if err := json.Unmarshal(res, &resp); err != nil {
		log.Error(ctx, "failed to unmarshal proof generation result", err)
		return nil, err
	}
	if !resp.Ok {
		return nil, errors.Errorf("prover server: %s", resp.Error)
	}

	rawProof, err := base64.StdEncoding.DecodeString(resp.Proof)
	if err != nil {
		return nil, errors.Wrap(err, "prover server returned a corrupt proof")
	}
	var zkp types.ZKProof
	if err := json.Unmarshal(rawProof, &zkp); err != nil {
		return nil, errors.Wrap(err, "prover server returned a corrupt proof")
	}
	return &zkp, nil
}
