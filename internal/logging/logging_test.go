package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schemawatch/internal/config"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "debug", LogFormat: "text"}

	logger := New(cfg, &buf)
	require.NotNil(t, logger)

	logger.Info("hello", slog.String("module", "terrain"))
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "module=terrain")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "info", LogFormat: "json"}

	New(cfg, &buf).Info("test-msg")
	assert.Contains(t, buf.String(), `"msg":"test-msg"`)
}

func TestSetupWithWriter_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupWithWriter(&config.Config{LogLevel: "info", LogFormat: "text"}, &buf)
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestNew_QuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "info", LogFormat: "text", Quiet: true}

	logger := New(cfg, &buf)
	logger.Info("should-not-appear")
	logger.Error("should-appear")

	assert.NotContains(t, buf.String(), "should-not-appear")
	assert.Contains(t, buf.String(), "should-appear")
}

func TestNew_LevelFiltering(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer

	New(&config.Config{LogLevel: "debug"}, &debugBuf).Debug("debug-msg")
	New(&config.Config{LogLevel: "info"}, &infoBuf).Debug("debug-hidden")

	assert.Contains(t, debugBuf.String(), "debug-msg")
	assert.NotContains(t, infoBuf.String(), "debug-hidden")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestContext_RoundTrip(t *testing.T) {
	logger := Discard()
	got := FromContext(NewContext(context.Background(), logger))
	assert.Equal(t, logger, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
