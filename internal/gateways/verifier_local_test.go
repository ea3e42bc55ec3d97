package gateways

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/pkg/loaders"
)

func circuitDirWithKey(t *testing.T, circuitID, key string) string {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, circuitID)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "verification_key.json"), []byte(key), 0o600))
	return base
}

func encodedProof(t *testing.T) string {
	t.Helper()
	zkp := types.ZKProof{
		Proof:      &types.ProofData{A: []string{"1"}, B: [][]string{{"2"}}, C: []string{"3"}, Protocol: "groth16"},
		PubSignals: []string{"42"},
	}
	raw, err := json.Marshal(zkp)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestLocalVerifyRejectsUnprovableProof(t *testing.T) {
	base := circuitDirWithKey(t, "age_verification", `{"protocol":"groth16","curve":"bn128","nPublic":1}`)
	v := NewLocalVerifier(loaders.NewCircuits(base))

	share := &domain.ProofShare{CircuitID: "age_verification", Proof: encodedProof(t)}
	valid, err := v.VerifyProof(context.Background(), share)
	require.NoError(t, err, "a proof that fails the check is a verdict, not an error")
	assert.False(t, valid)
}

func TestLocalVerifyMissingKeyIsAnError(t *testing.T) {
	v := NewLocalVerifier(loaders.NewCircuits(t.TempDir()))

	share := &domain.ProofShare{CircuitID: "age_verification", Proof: encodedProof(t)}
	_, err := v.VerifyProof(context.Background(), share)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification key")
}

func TestLocalVerifyRejectsCorruptProofDocument(t *testing.T) {
	base := circuitDirWithKey(t, "age_verification", `{}`)
	v := NewLocalVerifier(loaders.NewCircuits(base))

	for name, proof := range map[string]string{
		"not base64": "%%%%",
		"not json":   base64.StdEncoding.EncodeToString([]byte("nope")),
		"empty body": base64.StdEncoding.EncodeToString([]byte(`{"pub_signals":["1"]}`)),
	} {
		t.Run(name, func(t *testing.T) {
			share := &domain.ProofShare{CircuitID: "age_verification", Proof: proof}
			_, err := v.VerifyProof(context.Background(), share)
			assert.Error(t, err)
		})
	}
}
