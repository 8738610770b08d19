package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sparkRun = `{
  "id": "application_1_0001",
  "name": "Standardisation 1.0 ds 1 2020-01-01 1",
  "coresGranted": 8,
  "attempts": [
    {
      "attemptId": "2",
      "startTime": "2020-01-15T14:00:00.000GMT",
      "endTime": "2020-01-15T14:59:33.707GMT",
      "duration": 3573707,
      "sparkUser": "svc",
      "completed": true,
      "endTimeEpoch": 1579100373707
    },
    {
      "attemptId": "1",
      "startTime": "2020-01-15T13:00:00.000GMT",
      "endTime": "2020-01-15T13:10:00.000GMT",
      "duration": 600000,
      "completed": true
    }
  ]
}`

func TestRun_UnmarshalSparkJSON(t *testing.T) {
	t.Parallel()

	var run domain.Run
	require.NoError(t, json.Unmarshal([]byte(sparkRun), &run))

	assert.Equal(t, "application_1_0001", run.ID)
	assert.InDelta(t, 8.0, run.Extra["coresGranted"], 0)
	require.Len(t, run.Attempts, 2)

	first := run.Attempts[0]
	assert.Equal(t, "2", first.AttemptID)
	assert.Equal(t, time.Date(2020, 1, 15, 14, 59, 33, 707_000_000, time.UTC), first.EndTime.Time)
	assert.Equal(t, int64(3573707), first.Duration)
	assert.Contains(t, first.Extra, "endTimeEpoch")
	assert.NotContains(t, first.Extra, "duration")
}

func TestRun_MarshalKeepsExtraKeys(t *testing.T) {
	t.Parallel()

	var run domain.Run
	require.NoError(t, json.Unmarshal([]byte(sparkRun), &run))

	data, err := json.Marshal(run)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))

	assert.InDelta(t, 8.0, back["coresGranted"], 0)
	attempts, ok := back["attempts"].([]any)
	require.True(t, ok)
	first, ok := attempts[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2020-01-15T14:59:33.707Z", first["endTime"])
	assert.InDelta(t, 1579100373707.0, first["endTimeEpoch"], 0)
}

func TestRun_FinalAttempt(t *testing.T) {
	t.Parallel()

	var run domain.Run
	require.NoError(t, json.Unmarshal([]byte(sparkRun), &run))

	final := run.FinalAttempt()
	require.NotNil(t, final)
	assert.Equal(t, "2", final.AttemptID)
	assert.True(t, run.IsFinal(&run.Attempts[0]))
	assert.False(t, run.IsFinal(&run.Attempts[1]))
	assert.True(t, run.IsFinal(&domain.Attempt{}))

	empty := domain.Run{}
	assert.Nil(t, empty.FinalAttempt())
}

func TestRun_HeaderDropsAttempts(t *testing.T) {
	t.Parallel()

	run := domain.Run{ID: "a", Attempts: []domain.Attempt{{AttemptID: "1"}}}
	h := run.Header()

	assert.Nil(t, h.Attempts)
	assert.Len(t, run.Attempts, 1)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"spark format", "2020-01-15T14:59:33.707GMT", time.Date(2020, 1, 15, 14, 59, 33, 707_000_000, time.UTC), true},
		{"rfc3339", "2020-01-15T16:59:33.707+02:00", time.Date(2020, 1, 15, 14, 59, 33, 707_000_000, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
		{"bad spark format", "2020-01-15 14:59GMT", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := domain.ParseTime(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestFormatSparkTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2020, 1, 15, 14, 59, 33, 707_123_000, time.UTC)
	assert.Equal(t, "2020-01-15T14:59:33.707GMT", domain.FormatSparkTime(ts))
}

func TestStage_Derived(t *testing.T) {
	t.Parallel()

	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	stage := domain.Stage{
		SubmissionTime:        domain.NewTimestamp(base),
		FirstTaskLaunchedTime: domain.NewTimestamp(base.Add(50 * time.Millisecond)),
		CompletionTime:        domain.NewTimestamp(base.Add(1050 * time.Millisecond)),
		Extra:                 map[string]any{"memoryBytesSpilled": 10.0},
	}

	assert.True(t, stage.IsComplete())
	assert.Equal(t, time.Second, stage.Duration())
	overhead, ok := stage.SchedulingOverhead()
	require.True(t, ok)
	assert.Equal(t, 50*time.Millisecond, overhead)

	fields := stage.Fields()
	assert.Equal(t, base, fields["submissionTime"])
	assert.InDelta(t, 10.0, fields["memoryBytesSpilled"], 0)

	incomplete := domain.Stage{SubmissionTime: domain.NewTimestamp(base)}
	assert.False(t, incomplete.IsComplete())
	assert.Zero(t, incomplete.Duration())
	assert.NotContains(t, incomplete.Fields(), "completionTime")
}

func TestExecutor_UnmarshalAndFields(t *testing.T) {
	t.Parallel()

	raw := `{"id":"driver","totalCores":0,"maxMemory":1024,"addTime":"2020-01-15T14:00:00.000GMT",
		"memoryMetrics":{"usedOnHeapStorageMemory":5}}`

	var ex domain.Executor
	require.NoError(t, json.Unmarshal([]byte(raw), &ex))

	assert.True(t, ex.IsDriver())
	assert.Equal(t, int64(1024), ex.MaxMemory)
	assert.True(t, ex.RemoveTime.IsZero())

	fields := ex.Fields()
	assert.Equal(t, int64(1024), fields["maxMemory"])
	assert.NotContains(t, fields, "removeTime")
	assert.Contains(t, fields, "memoryMetrics")
}
