package sink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/flatten"
	"github.com/AbsaOSS/spot/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Interface(t *testing.T) {
	t.Helper()

	var _ sink.Sink = (*sink.Writer)(nil)
}

func TestWriter_WritesJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := sink.NewWriter(&buf)
	ctx := context.Background()

	require.NoError(t, w.StoreRaw(ctx, &domain.Run{ID: "app-1", Name: "job"}))
	require.NoError(t, w.StoreAggregate(ctx, &flatten.Document{Run: domain.Run{ID: "app-1"}}))
	require.NoError(t, w.StoreError(ctx, &domain.ErrorDocument{ID: "e1"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	kinds := make([]string, 0, len(lines))
	for _, line := range lines {
		var env struct {
			Kind string `json:"kind"`
			ID   string `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &env))
		kinds = append(kinds, env.Kind+":"+env.ID)
	}
	assert.Equal(t, []string{"raw:app-1", "aggregate:app-1-0", "error:e1"}, kinds)
}

func TestWriter_HasNoHistory(t *testing.T) {
	t.Parallel()

	w := sink.NewWriter(&bytes.Buffer{})

	ids, err := w.ProcessedIDs(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, ids)

	latest, tabu, err := w.LatestWatermark(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Empty(t, tabu)
}
