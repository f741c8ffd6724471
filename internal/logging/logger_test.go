package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bp-tracker-service/internal/logging"
)

func TestLoggerEmitsJSONWithRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New("info", logging.WithWriter(&buf))

	ctx := logging.WithRequestID(context.Background(), "req-123")
	logger.Info(ctx, "request handled", "status", 200)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request handled", entry["msg"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New("error", logging.WithWriter(&buf))

	logger.Info(context.Background(), "ignored")
	assert.Zero(t, buf.Len(), "info must be filtered at error level")

	logger.Error(context.Background(), "kept")
	assert.NotZero(t, buf.Len())
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, logging.RequestIDFromContext(context.Background()))

	ctx := logging.WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", logging.RequestIDFromContext(ctx))
}
