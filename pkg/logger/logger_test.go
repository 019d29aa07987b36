package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "todos.log")

	log, err := New(Config{Level: "debug", Output: "none", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Debug("hello", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"msg":"hello"`)
	assert.Contains(t, string(body), `"k":"v"`)
	assert.Contains(t, string(body), `"timestamp"`)
}

func TestNew_LevelFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.log")
	log, err := New(Config{Level: "loud", Output: "none", File: path})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_NoSinks(t *testing.T) {
	log, err := New(Config{Output: "none"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))

	WithRequestID(ctx, base).Info("with id")
	WithRequestID(context.Background(), base).Info("without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
