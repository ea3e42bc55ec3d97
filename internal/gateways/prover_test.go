package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/core/services"
)

type fakeGenerator struct {
	calls   int32
	release chan struct{} // when non nil, Generate blocks until closed or ctx done
	err     error
	panics  bool
	params  ports.GenerateParams
}

func (f *fakeGenerator) Generate(ctx context.Context, params ports.GenerateParams) (*types.ZKProof, error) {
	atomic.AddInt32(&f.calls, 1)
	f.params = params
	if f.panics {
		panic("witness calculator blew up")
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &types.ZKProof{
		Proof:      &types.ProofData{A: []string{"1"}, B: [][]string{{"2"}}, C: []string{"3"}, Protocol: "groth16"},
		PubSignals: []string{"42"},
	}, nil
}

func testRequest() *domain.ProofRequest {
	return &domain.ProofRequest{
		CircuitID:            "age_verification",
		PublicInputs:         []string{"age"},
		PrivateInputsEncoded: domain.EncodePrivateInputs(map[string]string{"age": "25", "name": "Alice"}),
	}
}

func TestExecuteSuccess(t *testing.T) {
	gen := &fakeGenerator{}
	bridge := NewProverBridge(gen)

	res := bridge.Execute(context.Background(), testRequest())
	require.True(t, res.Ok)
	require.Nil(t, res.Error)
	require.NotEmpty(t, res.Proof)

	var zkp types.ZKProof
	require.NoError(t, json.Unmarshal(res.Proof, &zkp))
	assert.Equal(t, []string{"42"}, zkp.PubSignals)
	assert.Equal(t, []string{"age"}, gen.params.PublicInputs, "public inputs cross the prover contract")
	assert.Equal(t, "age_verification", gen.params.CircuitID)
	assert.False(t, bridge.Busy())
}

func TestExecuteWipesPrivateInputs(t *testing.T) {
	bridge := NewProverBridge(&fakeGenerator{})
	req := testRequest()
	bridge.Execute(context.Background(), req)
	assert.Empty(t, req.PrivateInputsEncoded)

	req = testRequest()
	failing := NewProverBridge(&fakeGenerator{err: errors.New("witness calculation failed")})
	res := failing.Execute(context.Background(), req)
	require.False(t, res.Ok)
	assert.Empty(t, req.PrivateInputsEncoded, "wiped on failure paths too")
}

func TestExecuteMissingCircuitNeverReachesBackend(t *testing.T) {
	gen := &fakeGenerator{}
	bridge := NewProverBridge(gen)

	req := testRequest()
	req.CircuitID = ""
	res := bridge.Execute(context.Background(), req)

	require.False(t, res.Ok)
	assert.Equal(t, domain.ProofErrorValidation, res.Error.Kind)
	assert.Zero(t, atomic.LoadInt32(&gen.calls))
}

func TestExecuteSingleFlight(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	bridge := NewProverBridge(gen)

	first := make(chan *domain.ProofResult, 1)
	go func() {
		first <- bridge.Execute(context.Background(), testRequest())
	}()

	require.Eventually(t, bridge.Busy, time.Second, time.Millisecond)

	second := bridge.Execute(context.Background(), testRequest())
	require.False(t, second.Ok)
	assert.Equal(t, domain.ProofErrorBusy, second.Error.Kind)

	close(gen.release)
	res := <-first
	assert.True(t, res.Ok, "the original call's result is unaffected by the rejection")
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
}

func TestExecuteMapsBackendError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("malformed circuit")}
	bridge := NewProverBridge(gen)

	res := bridge.Execute(context.Background(), testRequest())
	require.False(t, res.Ok)
	assert.Equal(t, domain.ProofErrorBridge, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "malformed circuit")
	assert.False(t, bridge.Busy())
}

func TestExecuteRecoversBackendPanic(t *testing.T) {
	gen := &fakeGenerator{panics: true}
	bridge := NewProverBridge(gen)

	res := bridge.Execute(context.Background(), testRequest())
	require.False(t, res.Ok)
	assert.Equal(t, domain.ProofErrorBridge, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "panic")
	assert.False(t, bridge.Busy())
}

func TestExecuteCancellation(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	bridge := NewProverBridge(gen)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.ProofResult, 1)
	go func() {
		done <- bridge.Execute(ctx, testRequest())
	}()
	require.Eventually(t, bridge.Busy, time.Second, time.Millisecond)

	cancel()
	res := <-done
	require.False(t, res.Ok)
	assert.Equal(t, domain.ProofErrorCanceled, res.Error.Kind)

	// the in-flight handle is released once the backend observes the cancel
	assert.Eventually(t, func() bool { return !bridge.Busy() }, time.Second, time.Millisecond)
}

func TestStartedSessionOutlivesInitiatorContext(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	bridge := NewProverBridge(gen)
	session := services.NewProofSession("did:polygonid:holder", bridge)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, session.Start(ctx, testRequest()))
	require.Eventually(t, bridge.Busy, time.Second, time.Millisecond)

	// an http handler returning 202 cancels its request context
	cancel()
	close(gen.release)

	require.Eventually(t, func() bool { return session.State() == services.SessionSucceeded }, time.Second, time.Millisecond)
	assert.Empty(t, session.LastError())
}

func TestCancelWithoutInFlightCallIsANoop(t *testing.T) {
	bridge := NewProverBridge(&fakeGenerator{})
	bridge.Cancel()
	assert.False(t, bridge.Busy())
}
