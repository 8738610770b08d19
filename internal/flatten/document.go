package flatten

import (
	"bytes"
	"encoding/json"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/summary"
)

// Document is the flat, per-attempt view of a run.
type Document struct {
	// Run holds the run's top-level fields; Attempts is always nil.
	Run            domain.Run
	IsFinalAttempt bool
	Attempt        AttemptDocument
}

// AttemptDocument is an attempt without its stages and executors, plus
// their aggregations.
type AttemptDocument struct {
	domain.Attempt
	Aggs Aggregations
}

// Aggregations bundles the statistics of one attempt.
type Aggregations struct {
	AllExecutors ExecutorAggregations  `json:"allexecutors"`
	Stages       aggregate.Aggregation `json:"stages"`
	Summary      summary.Summary       `json:"summary"`
}

// ExecutorAggregations keeps the driver as-is and aggregates the rest.
type ExecutorAggregations struct {
	Driver    map[string]any        `json:"driver"`
	Executors aggregate.Aggregation `json:"executors"`
}

// ID is the sink document id: "{runId}-{attemptId}", with 0 standing in for
// a missing attempt id.
func (d *Document) ID() string {
	attemptID := d.Attempt.AttemptID
	if attemptID == "" {
		attemptID = "0"
	}
	return d.Run.ID + "-" + attemptID
}

func (d Document) MarshalJSON() ([]byte, error) {
	return withKeys(d.Run, map[string]any{
		"isFinalAttempt": d.IsFinalAttempt,
		"attempt":        d.Attempt,
	})
}

func (a AttemptDocument) MarshalJSON() ([]byte, error) {
	return withKeys(a.Attempt, map[string]any{"aggs": a.Aggs})
}

// withKeys encodes base as an object and adds keys to it.
func withKeys(base any, keys map[string]any) ([]byte, error) {
	data, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	for k, v := range keys {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}
