package logger_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbsaOSS/spot/internal/logger"
)

func TestNew_AppliesDefaults(t *testing.T) {
	cfg := logger.Config{}
	cfg.SetDefaults()
	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)

	l, err := logger.New(logger.Config{Level: "bogus", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)

	enriched := l.With(logger.String("run_id", "app-1"))
	assert.NotSame(t, l, enriched)
	enriched.Info("usable")
}

func TestNew_Development(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	l.Debug("console output")
}

func TestNew_InvalidOutputPath(t *testing.T) {
	_, err := logger.New(logger.Config{OutputPaths: []string{filepath.Join(t.TempDir(), "missing", "dir", "log")}})
	require.Error(t, err)
}

func TestNewNop(t *testing.T) {
	l := logger.NewNop()
	l.Info("dropped", logger.Int("n", 1))
	assert.Equal(t, l, l.With(logger.String("k", "v")))
	assert.NoError(t, l.Sync())
}
