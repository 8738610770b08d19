package aggregate_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericRecords(field string, vals ...float64) []aggregate.Record {
	out := make([]aggregate.Record, 0, len(vals))
	for _, v := range vals {
		out = append(out, aggregate.Record{field: v})
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	agg := aggregate.Aggregate(nil, aggregate.DefaultFuncs())

	assert.Equal(t, 0, agg.ElementsCount)
	assert.Empty(t, agg.Fields)

	data, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"elements_count":0}`, string(data))
}

func TestAggregate_NumericSkipsNaN(t *testing.T) {
	t.Parallel()

	agg := aggregate.Aggregate(numericRecords("x", 1, 2, 3, math.NaN()), aggregate.DefaultFuncs())

	require.True(t, agg.Has("x"))
	stats := agg.Fields["x"]
	assert.Equal(t, 4, agg.ElementsCount)
	assert.Equal(t, 3, stats["count_not_null"])
	assert.InDelta(t, 6.0, stats["sum"], 1e-9)
	assert.InDelta(t, 2.0, stats["mean"], 1e-9)
	assert.Equal(t, 3, stats["nunique"])
	assert.Equal(t, 0, stats["count_zeroes"])
	assert.InDelta(t, 1.0, stats["min"], 1e-9)
	assert.InDelta(t, 3.0, stats["max"], 1e-9)
	assert.InDelta(t, 1.0, stats["std"], 1e-9)
	assert.InDelta(t, 0.5, stats["rsd"], 1e-9)

	for name, v := range stats {
		if f, ok := v.(float64); ok {
			assert.False(t, math.IsNaN(f), "statistic %s is NaN", name)
		}
	}
}

func TestAggregate_UndefinedStatisticsAreAbsent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		vals    []float64
		opts    []aggregate.Option
		absent  []string
		present map[string]any
	}{
		{
			name:    "single value has no std or rsd",
			vals:    []float64{5},
			absent:  []string{"std", "rsd"},
			present: map[string]any{"mean": 5.0, "count_not_null": 1},
		},
		{
			name:    "zero mean skips rsd by default",
			vals:    []float64{-1, 1},
			absent:  []string{"rsd"},
			present: map[string]any{"mean": 0.0, "count_zeroes": 0},
		},
		{
			name:    "zero mean reports zero rsd when configured",
			vals:    []float64{-1, 1},
			opts:    []aggregate.Option{aggregate.WithRSDZeroMean(aggregate.RSDZero)},
			present: map[string]any{"rsd": 0.0},
		},
		{
			name:    "all NaN keeps only counting statistics",
			vals:    []float64{math.NaN(), math.NaN()},
			absent:  []string{"min", "max", "mean", "std", "rsd"},
			present: map[string]any{"sum": 0.0, "count_not_null": 0, "nunique": 0},
		},
		{
			name:    "zeroes are counted",
			vals:    []float64{0, 0, 4},
			present: map[string]any{"count_zeroes": 2, "nunique": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			agg := aggregate.Aggregate(numericRecords("x", tt.vals...), aggregate.DefaultFuncs(tt.opts...))
			stats := agg.Fields["x"]

			for _, k := range tt.absent {
				assert.NotContains(t, stats, k)
			}
			for k, want := range tt.present {
				assert.Equal(t, want, stats[k], k)
			}
		})
	}
}

func TestAggregate_TypedFields(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2022, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []aggregate.Record{
		{"status": "COMPLETE", "active": true, "at": t0, "cores": int64(4)},
		{"status": "FAILED", "active": false, "at": t0.Add(time.Minute), "cores": int64(4)},
		{"status": "COMPLETE", "active": nil, "at": t0.Add(-time.Minute)},
	}

	agg := aggregate.Aggregate(records, aggregate.DefaultFuncs())

	assert.Equal(t, aggregate.Stats{
		"count_not_null":       3,
		"nunique":              2,
		"concat_unique_values": "COMPLETE|FAILED",
	}, agg.Fields["status"])

	assert.Equal(t, aggregate.Stats{"any": true, "all": false, "sum": 1}, agg.Fields["active"])

	minAt, ok := agg.Time("at", "min")
	require.True(t, ok)
	assert.Equal(t, t0.Add(-time.Minute), minAt)
	maxAt, ok := agg.Time("at", "max")
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Minute), maxAt)

	cores, ok := agg.Float("cores", "sum")
	require.True(t, ok)
	assert.InDelta(t, 8.0, cores, 0)
	assert.Equal(t, 2, agg.Fields["cores"]["count_not_null"])
}

func TestAggregate_MixedTypesBecomeText(t *testing.T) {
	t.Parallel()

	records := []aggregate.Record{{"v": 1.0}, {"v": "a"}, {"v": 1.0}}
	agg := aggregate.Aggregate(records, aggregate.DefaultFuncs())

	assert.Equal(t, "1|a", agg.Fields["v"]["concat_unique_values"])
	assert.Equal(t, 2, agg.Fields["v"]["nunique"])
}

func TestAggregate_NilOnlyFieldIsAbsent(t *testing.T) {
	t.Parallel()

	records := []aggregate.Record{{"v": nil, "x": 1.0}, {"v": nil}}
	agg := aggregate.Aggregate(records, aggregate.DefaultFuncs())

	assert.False(t, agg.Has("v"))
	assert.True(t, agg.Has("x"))
}

func TestAggregate_CustomFuncs(t *testing.T) {
	t.Parallel()

	funcs := aggregate.Funcs{
		aggregate.Numeric: {{Name: "count_not_null", Apply: func(c aggregate.Column) (any, bool) { return c.Len(), true }}},
	}
	records := []aggregate.Record{{"x": 1.0, "s": "ignored"}}

	agg := aggregate.Aggregate(records, funcs)

	assert.Equal(t, aggregate.Stats{"count_not_null": 1}, agg.Fields["x"])
	assert.False(t, agg.Has("s"))
}

func TestAggregation_MarshalJSON(t *testing.T) {
	t.Parallel()

	agg := aggregate.Aggregate(numericRecords("x", 2, 2), aggregate.DefaultFuncs())

	data, err := json.Marshal(agg)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.InDelta(t, 2.0, out["elements_count"], 0)
	x, ok := out["x"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 4.0, x["sum"], 0)
	assert.NotContains(t, x, "rsd")
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	rec := aggregate.Flatten(map[string]any{
		"a": 1.0,
		"memoryMetrics": map[string]any{
			"used": 2.0,
			"deep": map[string]any{"x": "y"},
		},
		"rddIds": []any{1.0, 2.0},
		"none":   nil,
	})

	assert.Equal(t, aggregate.Record{
		"a":                    1.0,
		"memoryMetrics.used":   2.0,
		"memoryMetrics.deep.x": "y",
	}, rec)
}

func TestInferSchema(t *testing.T) {
	t.Parallel()

	schema := aggregate.InferSchema([]aggregate.Record{
		{"n": int64(1), "s": "x", "b": true, "t": time.Now(), "nested": map[string]any{}},
		{"n": 2.5, "j": json.Number("3")},
	})

	assert.Equal(t, aggregate.Numeric, schema["n"])
	assert.Equal(t, aggregate.Text, schema["s"])
	assert.Equal(t, aggregate.Boolean, schema["b"])
	assert.Equal(t, aggregate.Timestamp, schema["t"])
	assert.Equal(t, aggregate.Numeric, schema["j"])
	assert.NotContains(t, schema, "nested")
	assert.Equal(t, []string{"j", "n"}, schema.Fields(aggregate.Numeric))
}
