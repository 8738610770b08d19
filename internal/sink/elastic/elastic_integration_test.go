//go:build integration

package elastic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/elasticsearch"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/sink/elastic"
	"github.com/AbsaOSS/spot/testutils/escontainer"
)

func TestSink_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := escontainer.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop(context.Background()) })

	cfg := elasticsearch.Config{
		Addresses: []string{c.Address},
		RawIndex:  "it_raw",
		AggIndex:  "it_agg",
		ErrIndex:  "it_err",
	}
	log := logger.NewNop()
	client, err := elasticsearch.NewClient(ctx, cfg, log)
	require.NoError(t, err)

	s := elastic.New(client, cfg, log)
	require.NoError(t, s.EnsureIndices(ctx))

	latest, ids, err := s.LatestWatermark(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Empty(t, ids)

	end := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, id := range []string{"app-1", "app-2"} {
		run := &domain.Run{ID: id, Name: "job", Attempts: []domain.Attempt{{
			StartTime: domain.NewTimestamp(end.Add(-time.Minute)),
			EndTime:   domain.NewTimestamp(end),
			Completed: true,
		}}}
		require.NoError(t, s.StoreRaw(ctx, run))
	}
	res, err := client.Indices.Refresh(client.Indices.Refresh.WithIndex(cfg.RawIndex))
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	got, err := s.ProcessedIDs(ctx, end.Add(-time.Second), end.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.NewIDSet("app-1", "app-2"), got)

	latest, ids, err = s.LatestWatermark(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, end.Equal(*latest))
	assert.Equal(t, domain.NewIDSet("app-1", "app-2"), ids)

	stats, err := s.IndexStats(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	assert.Equal(t, "it_raw", stats[0].Name)
}
