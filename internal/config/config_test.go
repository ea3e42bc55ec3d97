package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Configuration {
	return &Configuration{
		ServerUrl:                    "http://localhost:8001/",
		ServerPort:                   8001,
		NativeProofGenerationEnabled: true,
		Circuit:                      Circuit{Path: "./circuits"},
	}
}

func TestSanitizeTrimsServerUrl(t *testing.T) {
	cfg := validConfig()
	cfg.ServerUrl = "http://localhost:8001/?x=1"
	require.NoError(t, cfg.Sanitize())
	assert.Equal(t, "http://localhost:8001", cfg.ServerUrl)
}

func TestSanitizeRejectsNonHTTPServerUrl(t *testing.T) {
	for name, serverURL := range map[string]string{
		"relative":     "localhost:8001",
		"no host":      "http://",
		"wrong scheme": "ftp://wallet.example.com",
		"path only":    "/v1",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ServerUrl = serverURL
			assert.Error(t, cfg.Sanitize())
		})
	}
}

func TestSanitizeAcceptsHTTPSServerUrl(t *testing.T) {
	cfg := validConfig()
	cfg.ServerUrl = "https://wallet.example.com/"
	require.NoError(t, cfg.Sanitize())
	assert.Equal(t, "https://wallet.example.com", cfg.ServerUrl)
}

func TestSanitizeRequiresCircuitPath(t *testing.T) {
	cfg := validConfig()
	cfg.Circuit.Path = ""
	assert.Error(t, cfg.Sanitize())
}

func TestSanitizeRequiresProverServerWhenNotNative(t *testing.T) {
	cfg := validConfig()
	cfg.NativeProofGenerationEnabled = false
	assert.Error(t, cfg.Sanitize())

	cfg.Prover.ServerURL = "http://prover:8002"
	assert.NoError(t, cfg.Sanitize())
}

func TestSanitizeDefaultsTTLs(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Sanitize())
	assert.Equal(t, 5*time.Minute, cfg.QRStoreTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}
