package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCarriesErrAttribute(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(context.Background(), LevelInfo, OutputJSON, &buf)

	Error(ctx, "proof generation failed", errors.New("backend down"), "circuit", "age_verification")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "proof generation failed", line["msg"])
	assert.Equal(t, "backend down", line["err"])
	assert.Equal(t, "age_verification", line["circuit"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(context.Background(), LevelWarn, OutputText, &buf)

	Debug(ctx, "noisy detail")
	Info(ctx, "routine event")
	assert.Zero(t, buf.Len())

	Warn(ctx, "something odd")
	assert.Contains(t, buf.String(), "something odd")
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(context.Background(), LevelInfo, OutputJSON, &buf)
	ctx = With(ctx, "req-id", "abc-123")

	Info(ctx, "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc-123", line["req-id"])
}
