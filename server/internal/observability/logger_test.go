package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestContext_Logging(t *testing.T) {
	var buf bytes.Buffer
	r := NewRequestContext(newJSONLogger(&buf), "req-1", "parse")

	r.Info("parsed", slog.Int(LogFieldMatches, 3))
	entry := lastEntry(t, &buf)
	assert.Equal(t, "parsed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-1", entry[LogFieldRequestID])
	assert.Equal(t, "parse", entry[LogFieldOperation])
	assert.EqualValues(t, 3, entry[LogFieldMatches])

	r.Error("failed", errors.New("boom"), slog.String(LogFieldErrorCode, "INTERNAL"))
	entry = lastEntry(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "INTERNAL", entry[LogFieldErrorCode])

	r.Debug("debug")
	assert.Equal(t, "DEBUG", lastEntry(t, &buf)["level"])
	r.Warn("warn")
	assert.Equal(t, "WARN", lastEntry(t, &buf)["level"])

	assert.GreaterOrEqual(t, r.DurationMs(), int64(0))
}

func TestNewRequestContext_GeneratesID(t *testing.T) {
	r := NewRequestContext(nil, "", "batch")
	assert.Len(t, r.RequestID, 36)
	assert.NotNil(t, r.Logger)
}

func TestLogger_FromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), Logger(context.Background()))

	var buf bytes.Buffer
	r := NewRequestContext(newJSONLogger(&buf), "req-2", "batch")
	ctx := WithRequestContext(context.Background(), r)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, r, got)

	Logger(ctx).Debug("document failed", LogFieldDocumentID, "doc-0")
	entry := lastEntry(t, &buf)
	assert.Equal(t, "req-2", entry[LogFieldRequestID])
	assert.Equal(t, "doc-0", entry[LogFieldDocumentID])
}
