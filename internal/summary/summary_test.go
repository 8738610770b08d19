package summary_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

var t0 = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

func fixture(duration int64) (*domain.Attempt, aggregate.Aggregation, aggregate.Aggregation) {
	attempt := &domain.Attempt{
		AttemptID: "1",
		Duration:  duration,
		Stages: []domain.Stage{{
			FirstTaskLaunchedTime: domain.NewTimestamp(t0),
			CompletionTime:        domain.NewTimestamp(t0.Add(800 * time.Millisecond)),
			InputBytes:            256 * mib,
		}},
		Environment: &domain.Environment{SparkProperties: map[string]any{
			"spark_executor_memory": "2g",
			"spark_driver_memory":   "bogus",
		}},
	}

	funcs := aggregate.DefaultFuncs()
	stages := aggregate.Aggregate([]aggregate.Record{{
		"firstTaskLaunchedTime":   t0,
		"completionTime":          t0.Add(800 * time.Millisecond),
		"inputBytes":              int64(256 * mib),
		domain.FieldStageDuration: 800.0,
	}}, funcs)
	executors := aggregate.Aggregate([]aggregate.Record{
		{"totalDuration": int64(2500), domain.FieldCoreCost: 4000.0, "maxMemory": int64(512 * mib), "totalInputBytes": int64(128 * mib)},
		{"totalDuration": int64(2500), domain.FieldCoreCost: 4000.0, "maxMemory": int64(512 * mib), "totalInputBytes": int64(128 * mib)},
	}, funcs)

	return attempt, stages, executors
}

func TestSummarize_Arithmetic(t *testing.T) {
	t.Parallel()

	attempt, stages, executors := fixture(1000)
	s := summary.Summarize(attempt, stages, executors, logger.NewNop())

	require.False(t, s.IsEmpty())
	assert.InDelta(t, 5000.0, *s.ParallelWork, 1e-9)
	assert.InDelta(t, 800.0, *s.ParallelPart, 1e-9)
	assert.InDelta(t, 200.0, *s.SeqPart, 1e-9)
	assert.InDelta(t, 5200.0, *s.EstSeqTime, 1e-9)
	assert.InDelta(t, 5.2, *s.EstimatedSpeedup, 1e-9)
	assert.InDelta(t, 0.8, *s.ParallelFraction, 1e-9)
	assert.InDelta(t, 0.2, *s.SeqFraction, 1e-9)
	assert.False(t, *s.StagesInParallel)
	assert.InDelta(t, 800.0, *s.StagesSum, 1e-9)
	assert.InDelta(t, 800.0, *s.StagesInterval, 1e-9)

	assert.InDelta(t, 8000.0, *s.CoreCost, 1e-9)
	assert.InDelta(t, 0.625, *s.EstimatedCoreEfficiency, 1e-9)
	assert.InDelta(t, 3000.0, *s.UnusedCoreCost, 1e-9)

	assert.Equal(t, int64(2), *s.StagesMaxInputBlocks)
	assert.Equal(t, int64(2), *s.ExecutorsTotalInputBlocks)
	assert.InDelta(t, 0.002, *s.AverageThroughput, 1e-12)
	assert.InDelta(t, float64(768*mib), *s.UnusedStorageMemory, 0)
	assert.InDelta(t, 0.25, *s.StorageMemoryUsage, 1e-9)

	require.NotNil(t, s.ExecutorMemoryBytes)
	assert.Equal(t, int64(2<<30), *s.ExecutorMemoryBytes)
	assert.Nil(t, s.DriverMemoryBytes)
}

func TestSummarize_ZeroDurationOmitsRatios(t *testing.T) {
	t.Parallel()

	attempt, stages, executors := fixture(0)
	s := summary.Summarize(attempt, stages, executors, logger.NewNop())

	require.False(t, s.IsEmpty())
	assert.Nil(t, s.EstimatedSpeedup)
	assert.Nil(t, s.ParallelFraction)
	assert.Nil(t, s.SeqFraction)
	assert.Nil(t, s.AverageThroughput)
	assert.InDelta(t, -800.0, *s.SeqPart, 1e-9)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "estimated_speedup")
	assert.NotContains(t, string(data), "NaN")
}

func TestSummarize_Preconditions(t *testing.T) {
	t.Parallel()

	attempt, stages, executors := fixture(1000)
	funcs := aggregate.DefaultFuncs()

	tests := []struct {
		name      string
		stages    aggregate.Aggregation
		executors aggregate.Aggregation
	}{
		{"no executors", stages, aggregate.Aggregate(nil, funcs)},
		{"no stages", aggregate.Aggregate(nil, funcs), executors},
		{
			name:      "no complete stage",
			stages:    aggregate.Aggregate([]aggregate.Record{{"submissionTime": t0, "inputBytes": 1.0}}, funcs),
			executors: executors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := summary.Summarize(attempt, tt.stages, tt.executors, logger.NewNop())
			assert.True(t, s.IsEmpty())

			data, err := json.Marshal(s)
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, string(data))
		})
	}
}

func TestParseBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"4g", 4 << 30, true},
		{" 512M ", 512 << 20, true},
		{"2gb", 2 << 30, true},
		{"10k", 10 << 10, true},
		{"1T", 1 << 40, true},
		{"100B", 100, true},
		{"", 0, false},
		{"g", 0, false},
		{"12", 0, false},
		{"1.5g", 0, false},
		{"-1g", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, ok := summary.ParseBytes(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBytesToBlocks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), summary.BytesToBlocks(0))
	assert.Equal(t, int64(1), summary.BytesToBlocks(1))
	assert.Equal(t, int64(1), summary.BytesToBlocks(summary.HDFSBlockSize))
	assert.Equal(t, int64(2), summary.BytesToBlocks(summary.HDFSBlockSize+1))
}
