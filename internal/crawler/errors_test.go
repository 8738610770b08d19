package crawler

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AbsaOSS/spot/internal/sink"
	"github.com/AbsaOSS/spot/internal/source"
)

func TestErrorType(t *testing.T) {
	_, numErr := strconv.Atoi("x")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transient", fmt.Errorf("list: %w", source.ErrTransientBackend), "TransientBackendError"},
		{"not found", fmt.Errorf("stages: %w", source.ErrNotFound), "NotFoundError"},
		{"field limit", fmt.Errorf("index: %w", sink.ErrFieldLimitExceeded), "SchemaExpansionError"},
		{"status", fmt.Errorf("executors: %w", &source.StatusError{Code: 502, URL: "u"}), "StatusError"},
		{"innermost type", fmt.Errorf("parse: %w", numErr), "*strconv.NumError"},
		{"plain", errors.New("boom"), "*errors.errorString"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorType(tt.err))
		})
	}
}

func TestRunProcessingError(t *testing.T) {
	cause := errors.New("boom")
	err := &RunProcessingError{RunID: "app-1", Stage: "raw", Err: cause}

	assert.Equal(t, "process raw of run app-1: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, MethodAll, cfg.Method)
	assert.Equal(t, DefaultLookback, cfg.Lookback)
	assert.Equal(t, DefaultTimeStep, cfg.TimeStep)
	assert.Equal(t, DefaultRetryAttempts, cfg.RetryAttempts)
	assert.Equal(t, DefaultRetrySleep, cfg.RetrySleep)
	assert.Zero(t, cfg.CompletionTimeout)
}

func TestConfig_SetDefaultsKeepsNoRetries(t *testing.T) {
	cfg := Config{RetryAttempts: NoRetries}
	cfg.SetDefaults()
	assert.Equal(t, NoRetries, cfg.RetryAttempts)
}
