package flatten_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/flatten"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2022, 2, 2, 8, 0, 0, 0, time.UTC)

func at(ms int) domain.Timestamp {
	return domain.NewTimestamp(start.Add(time.Duration(ms) * time.Millisecond))
}

func newRun() *domain.Run {
	attempt := func(id string) domain.Attempt {
		return domain.Attempt{
			AttemptID: id,
			StartTime: at(0),
			EndTime:   at(10_000),
			Duration:  10_000,
			Executors: []domain.Executor{
				{ID: domain.DriverID, TotalCores: 1, MaxMemory: 1 << 30},
				{ID: "1", TotalCores: 2, MaxMemory: 1 << 30, TotalDuration: 6000, AddTime: at(1000), RemoveTime: at(9000)},
				{ID: "2", TotalCores: 2, MaxMemory: 1 << 30, TotalDuration: 4000, AddTime: at(1000)},
			},
			Stages: []domain.Stage{
				{StageID: 1, SubmissionTime: at(1000), FirstTaskLaunchedTime: at(1100), CompletionTime: at(5100), InputBytes: 4000, InputRecords: 40, ExecutorCPUTime: 2_000_000},
				{StageID: 2, SubmissionTime: at(3000), FirstTaskLaunchedTime: at(3100), CompletionTime: at(7100), InputBytes: 100},
				{StageID: 3, SubmissionTime: at(8000)},
			},
			Environment: &domain.Environment{SparkProperties: map[string]any{"spark_app_id": "app-1"}},
		}
	}
	return &domain.Run{
		ID:       "app-1",
		Name:     "job",
		Attempts: []domain.Attempt{attempt("2"), attempt("1")},
		Extra:    map[string]any{"coresGranted": 4.0},
	}
}

func collect(f *flatten.Flattener, run *domain.Run) []*flatten.Document {
	var docs []*flatten.Document
	for doc := range f.Flatten(run) {
		docs = append(docs, doc)
	}
	return docs
}

func TestFlatten_OneDocumentPerAttempt(t *testing.T) {
	t.Parallel()

	f := flatten.New(aggregate.DefaultFuncs(), logger.NewNop())
	run := newRun()

	docs := collect(f, run)

	require.Len(t, docs, 2)
	assert.True(t, docs[0].IsFinalAttempt)
	assert.False(t, docs[1].IsFinalAttempt)
	assert.Equal(t, "app-1-2", docs[0].ID())
	assert.Equal(t, "app-1-1", docs[1].ID())

	for _, doc := range docs {
		assert.Nil(t, doc.Run.Attempts)
		assert.Nil(t, doc.Attempt.Stages)
		assert.Nil(t, doc.Attempt.Executors)
	}
	// The raw run keeps its details.
	assert.Len(t, run.Attempts[0].Stages, 3)
}

func TestFlatten_Aggregations(t *testing.T) {
	t.Parallel()

	f := flatten.New(aggregate.DefaultFuncs(), logger.NewNop())
	doc := collect(f, newRun())[0]
	aggs := doc.Attempt.Aggs

	assert.Equal(t, 2, aggs.AllExecutors.Executors.ElementsCount)
	assert.Equal(t, domain.DriverID, aggs.AllExecutors.Driver["id"])
	assert.Contains(t, aggs.AllExecutors.Driver, domain.FieldCoreCost)

	// Executor 1 lives 8s, executor 2 falls back to the attempt end: 9s.
	coreCost, ok := aggs.AllExecutors.Executors.Float(domain.FieldCoreCost, "sum")
	require.True(t, ok)
	assert.InDelta(t, 2*8000.0+2*9000.0, coreCost, 1e-6)

	assert.Equal(t, 3, aggs.Stages.ElementsCount)
	durations := aggs.Stages.Fields[domain.FieldStageDuration]
	assert.Equal(t, 2, durations["count_not_null"])
	assert.InDelta(t, 8000.0, durations["sum"], 1e-6)
	assert.Equal(t, 3, aggs.Stages.Fields[domain.FieldExecutorCPUTimeMs]["count_not_null"])
	assert.InDelta(t, 1.0, aggs.Stages.Fields[domain.FieldThroughputBytes]["max"], 1e-9)

	s := aggs.Summary
	require.False(t, s.IsEmpty())
	assert.InDelta(t, 10000.0, *s.ParallelWork, 1e-6)
	assert.InDelta(t, 6000.0, *s.ParallelPart, 1e-6)
	assert.True(t, *s.StagesInParallel)
	assert.InDelta(t, 4000.0, *s.SeqPart, 1e-6)
}

func TestFlatten_Lazy(t *testing.T) {
	t.Parallel()

	f := flatten.New(aggregate.DefaultFuncs(), logger.NewNop())
	run := newRun()

	n := 0
	for range f.Flatten(run) {
		n++
		break
	}
	assert.Equal(t, 1, n)

	assert.Len(t, collect(f, run), 2, "re-invoking restarts the sequence")
}

func TestFlatten_JSONShape(t *testing.T) {
	t.Parallel()

	f := flatten.New(aggregate.DefaultFuncs(), logger.NewNop())
	doc := collect(f, newRun())[0]

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "app-1", out["id"])
	assert.Equal(t, true, out["isFinalAttempt"])
	assert.InDelta(t, 4.0, out["coresGranted"], 0)
	assert.NotContains(t, out, "attempts")

	attempt, ok := out["attempt"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", attempt["attemptId"])
	assert.NotContains(t, attempt, "stages")
	assert.NotContains(t, attempt, "allexecutors")

	aggs, ok := attempt["aggs"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, aggs, "allexecutors")
	assert.Contains(t, aggs, "stages")
	assert.Contains(t, aggs, "summary")
}

func TestFlatten_NoExecutorsGivesEmptySummary(t *testing.T) {
	t.Parallel()

	run := newRun()
	run.Attempts = run.Attempts[:1]
	run.Attempts[0].Executors = nil

	f := flatten.New(aggregate.DefaultFuncs(), logger.NewNop())
	doc := collect(f, run)[0]

	assert.Empty(t, doc.Attempt.Aggs.AllExecutors.Driver)
	assert.Equal(t, 0, doc.Attempt.Aggs.AllExecutors.Executors.ElementsCount)
	assert.True(t, doc.Attempt.Aggs.Summary.IsEmpty())
}
