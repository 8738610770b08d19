package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/server"
)

func serve(t *testing.T, s *server.Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		checks   map[string]server.HealthChecker
		wantCode int
		want     server.HealthStatus
	}{
		{
			name:     "no checks",
			wantCode: http.StatusOK,
			want:     server.HealthStatusHealthy,
		},
		{
			name: "failing check",
			checks: map[string]server.HealthChecker{
				"elasticsearch": func(context.Context) error { return errors.New("connection refused") },
				"history":       func(context.Context) error { return nil },
			},
			wantCode: http.StatusServiceUnavailable,
			want:     server.HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := server.New(":0", logger.NewNop(), server.Options{Version: "1.2.3", Checks: tt.checks})

			rec := serve(t, s, http.MethodGet, "/health")
			require.Equal(t, tt.wantCode, rec.Code)

			var resp server.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, "spot", resp.Service)
			assert.Equal(t, "1.2.3", resp.Version)
			if tt.checks != nil {
				assert.Equal(t, "connection refused", resp.Checks["elasticsearch"].Message)
				assert.Equal(t, server.HealthStatusHealthy, resp.Checks["history"].Status)
			}
		})
	}
}

func TestHeadHealth(t *testing.T) {
	s := server.New(":0", logger.NewNop(), server.Options{})
	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodHead, "/health").Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("spot_runs_seen_total 3\n"))
	})

	with := server.New(":0", logger.NewNop(), server.Options{Metrics: metrics})
	rec := serve(t, with, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spot_runs_seen_total 3\n", rec.Body.String())

	without := server.New(":0", logger.NewNop(), server.Options{})
	assert.Equal(t, http.StatusNotFound, serve(t, without, http.MethodGet, "/metrics").Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := server.New("127.0.0.1:0", logger.NewNop(), server.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
}
