package services

import (
	"time"

	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
)

// RequestBuilder assembles canonical proof requests. It is a pure function
// over the credential: repeated builds from the same credential and mask
// produce byte-identical public inputs, which the verifier relies on when it
// recomputes the expected ordering.
type RequestBuilder struct{}

// NewRequestBuilder returns a proof request builder
func NewRequestBuilder() ports.RequestBuilder {
	return &RequestBuilder{}
}

// Build validates the disclosure mask against the credential and splits its
// fields into the public and private channels. Disclosed fields contribute
// their names to PublicInputs in sorted order; every field value, disclosed
// or not, travels only inside the private blob.
func (b *RequestBuilder) Build(credential *domain.Credential, mask domain.DisclosureMask, circuitID string, options map[string]string) (*domain.ProofRequest, error) {
	for _, field := range mask {
		if _, ok := credential.Fields[field]; !ok {
			return nil, errors.Wrap(domain.ErrUnknownField, field)
		}
	}
	if circuitID == "" {
		return nil, domain.ErrMissingCircuit
	}
	if !credential.Usable(time.Now()) {
		return nil, domain.ErrCredentialNotUsable
	}

	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[k] = v
	}

	return &domain.ProofRequest{
		CircuitID:            circuitID,
		PublicInputs:         mask.Sorted(),
		PrivateInputsEncoded: domain.EncodePrivateInputs(credential.Fields),
		Options:              opts,
	}, nil
}
