// Package flatten turns a nested run into one aggregated document per attempt.
package flatten

import (
	"iter"
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/summary"
)

const bytesPerGiB = 1 << 30

// Flattener aggregates the stages and executors of each attempt.
type Flattener struct {
	funcs aggregate.Funcs
	log   logger.Logger
}

// New creates a Flattener using funcs for every aggregation.
func New(funcs aggregate.Funcs, log logger.Logger) *Flattener {
	return &Flattener{funcs: funcs, log: log}
}

// Flatten yields one Document per attempt of run, in attempt order. Work for
// an attempt happens only when its document is requested.
func (f *Flattener) Flatten(run *domain.Run) iter.Seq[*Document] {
	return func(yield func(*Document) bool) {
		for i := range run.Attempts {
			if !yield(f.flattenAttempt(run, &run.Attempts[i])) {
				return
			}
		}
	}
}

func (f *Flattener) flattenAttempt(run *domain.Run, attempt *domain.Attempt) *Document {
	log := f.log.With(logger.String("run_id", run.ID), logger.String("attempt_id", attempt.AttemptID))

	driver, executors := f.executorAggregations(attempt)
	stages := f.stageAggregation(attempt, log)

	flat := *attempt
	flat.Executors = nil
	flat.Stages = nil

	return &Document{
		Run:            run.Header(),
		IsFinalAttempt: run.IsFinal(attempt),
		Attempt: AttemptDocument{
			Attempt: flat,
			Aggs: Aggregations{
				AllExecutors: ExecutorAggregations{Driver: driver, Executors: executors},
				Stages:       stages,
				Summary:      summary.Summarize(attempt, stages, executors, log),
			},
		},
	}
}

func (f *Flattener) executorAggregations(attempt *domain.Attempt) (map[string]any, aggregate.Aggregation) {
	driver := map[string]any{}
	records := make([]aggregate.Record, 0, len(attempt.Executors))

	for i := range attempt.Executors {
		ex := &attempt.Executors[i]
		fields := ex.Fields()
		for k, v := range executorMetrics(attempt, ex) {
			fields[k] = v
		}
		if ex.IsDriver() {
			driver = fields
			continue
		}
		records = append(records, aggregate.Flatten(fields))
	}

	return driver, aggregate.Aggregate(records, f.funcs)
}

// executorMetrics derives lifetime and cost. The lifetime falls back to the
// attempt bounds when the executor's own times are missing.
func executorMetrics(attempt *domain.Attempt, ex *domain.Executor) map[string]any {
	start := ex.AddTime
	if start.IsZero() {
		start = attempt.StartTime
	}
	stop := ex.RemoveTime
	if stop.IsZero() {
		stop = attempt.EndTime
	}

	out := map[string]any{}
	if !start.IsZero() {
		out[domain.FieldStartTime] = start.Time
	}
	if !stop.IsZero() {
		out[domain.FieldStopTime] = stop.Time
	}
	if start.IsZero() || stop.IsZero() {
		return out
	}

	durationMs := millis(stop.Sub(start.Time))
	out[domain.FieldDurationMillis] = durationMs
	out[domain.FieldCoreCost] = float64(ex.TotalCores) * durationMs
	out[domain.FieldStorageCost] = float64(ex.MaxMemory) / bytesPerGiB * durationMs
	return out
}

func (f *Flattener) stageAggregation(attempt *domain.Attempt, log logger.Logger) aggregate.Aggregation {
	records := make([]aggregate.Record, 0, len(attempt.Stages))

	for i := range attempt.Stages {
		st := &attempt.Stages[i]
		if !st.IsComplete() {
			log.Warn("Incomplete stage excluded from timing aggregations",
				logger.Int64("stage_id", st.StageID),
				logger.Int64("stage_attempt_id", st.AttemptID),
				logger.String("spark_app_id", attempt.Environment.AppID()),
			)
		}
		fields := st.Fields()
		for k, v := range stageMetrics(st) {
			fields[k] = v
		}
		records = append(records, aggregate.Flatten(fields))
	}

	return aggregate.Aggregate(records, f.funcs)
}

// stageMetrics derives timing and throughput. Timing keys are only set for
// complete stages; throughput only when the stage took a positive time.
func stageMetrics(st *domain.Stage) map[string]any {
	out := map[string]any{
		domain.FieldExecutorCPUTimeMs: float64(st.ExecutorCPUTime) / float64(time.Millisecond),
	}
	if overhead, ok := st.SchedulingOverhead(); ok {
		out[domain.FieldSchedulingOverhead] = millis(overhead)
	}
	if !st.IsComplete() {
		return out
	}

	durationMs := millis(st.Duration())
	out[domain.FieldStageDuration] = durationMs
	if durationMs > 0 {
		out[domain.FieldThroughputBytes] = float64(st.InputBytes) / durationMs
		out[domain.FieldThroughputRecords] = float64(st.InputRecords) / durationMs
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
