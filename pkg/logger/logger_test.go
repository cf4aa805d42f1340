package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/pkg/logger"
)

type ctxKey struct{}

func requestID(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return slog.String("request_id", id), ok
}

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "debug"}, requestID, nil)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With("component", "test").DebugContext(ctx, "hello", slog.Int("n", 1))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "DEBUG", rec["level"])
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "req-1", rec["request_id"])
	require.Equal(t, "test", rec["component"])
	require.InDelta(t, 1.0, rec["n"], 0)
}

func TestNewWithWriter_TextAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "warn", Format: "text"})

	log.Info("dropped")
	require.Empty(t, buf.String())

	log.WithGroup("embed").Warn("kept", slog.String("controller", "users"))
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "embed.controller=users")
}

func TestNewWithWriter_ExtractorSkipped(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{}, requestID)
	log.Info("no id")
	require.NotContains(t, buf.String(), "request_id")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel(" WARN "))
	require.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}
