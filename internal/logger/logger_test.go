package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.ErrorContains(t, err, "invalid log level")
}

func TestNew_WritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	l, err := New(Config{Level: "debug", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Debug("copied batch", zap.Int("batch", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"copied batch"`)
	require.Contains(t, string(data), `"batch":3`)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	l, err := New(Config{Level: "warn", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "hidden")
	require.Contains(t, string(data), "shown")
}

func TestInitAndGet(t *testing.T) {
	require.NoError(t, Init(Config{Level: "error", Development: true}))

	l := Get()
	require.NotNil(t, l)
	require.Same(t, l, Get())
	require.False(t, l.Core().Enabled(zap.InfoLevel))
	require.NotNil(t, With(zap.String("file", "in.readpack")))

	require.Error(t, Init(Config{Level: "nope"}))
	require.Same(t, l, Get())
}
