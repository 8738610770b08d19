// Package summary derives efficiency metrics for one run attempt from its
// stage and executor aggregations.
package summary

import (
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/interval"
	"github.com/AbsaOSS/spot/internal/logger"
)

// Summary holds the derived metrics of an attempt. Unset metrics are nil and
// left out of the JSON encoding. Durations are in milliseconds.
type Summary struct {
	ParallelWork              *float64 `json:"parallel_work,omitempty"`
	ParallelPart              *float64 `json:"parallel_part,omitempty"`
	SeqPart                   *float64 `json:"seq_part,omitempty"`
	EstSeqTime                *float64 `json:"est_seq_time,omitempty"`
	CoreCost                  *float64 `json:"core_cost,omitempty"`
	StagesInParallel          *bool    `json:"stages_in_parallel,omitempty"`
	StagesSum                 *float64 `json:"stages_sum,omitempty"`
	StagesInterval            *float64 `json:"stages_interval,omitempty"`
	StagesMaxInputBlocks      *int64   `json:"stages_max_input_blocks,omitempty"`
	ExecutorsTotalInputBlocks *int64   `json:"executors_total_input_blocks,omitempty"`
	UnusedStorageMemory       *float64 `json:"unused_storage_memory,omitempty"`
	EstimatedSpeedup          *float64 `json:"estimated_speedup,omitempty"`
	ParallelFraction          *float64 `json:"parallel_fraction,omitempty"`
	SeqFraction               *float64 `json:"seq_fraction,omitempty"`
	AverageThroughput         *float64 `json:"average_throughput,omitempty"`
	EstimatedCoreEfficiency   *float64 `json:"estimated_core_efficiency,omitempty"`
	UnusedCoreCost            *float64 `json:"unused_core_cost,omitempty"`
	StorageMemoryUsage        *float64 `json:"storage_memory_usage,omitempty"`
	ExecutorMemoryBytes       *int64   `json:"executor_memory_bytes,omitempty"`
	DriverMemoryBytes         *int64   `json:"driver_memory_bytes,omitempty"`
}

// IsEmpty reports whether no metric was computed.
func (s Summary) IsEmpty() bool {
	return s.ParallelWork == nil
}

func ptr[T any](v T) *T {
	return &v
}

// Summarize computes the summary of attempt. The result is empty unless both
// aggregations have elements and at least one stage was complete.
func Summarize(attempt *domain.Attempt, stages, executors aggregate.Aggregation, log logger.Logger) Summary {
	var s Summary
	if executors.ElementsCount == 0 || stages.ElementsCount == 0 ||
		!stages.Has("firstTaskLaunchedTime") || !stages.Has("completionTime") {
		return s
	}

	sumOf := func(agg aggregate.Aggregation, field string) float64 {
		v, _ := agg.Float(field, "sum")
		return v
	}
	maxInput, _ := stages.Float("inputBytes", "max")

	parallelWork := sumOf(executors, "totalDuration")
	coreCost := sumOf(executors, domain.FieldCoreCost)
	totalMaxMemory := sumOf(executors, "maxMemory")
	totalInput := sumOf(executors, "totalInputBytes")

	firstStart, _ := stages.Time("firstTaskLaunchedTime", "min")
	lastFinish, _ := stages.Time("completionTime", "max")

	parallel, overlap := interval.Merge(stageIntervals(attempt.Stages))
	parallelPart := millis(parallel)
	duration := float64(attempt.Duration)

	seqPart := duration - parallelPart
	if seqPart < 0 {
		log.Warn("Sequential part of attempt is negative",
			logger.String("attempt_id", attempt.AttemptID),
			logger.Float64("duration_ms", duration),
			logger.Float64("parallel_part_ms", parallelPart),
		)
	}
	estSeqTime := seqPart + parallelWork
	maxInputBlocks := BytesToBlocks(maxInput)

	s.ParallelWork = ptr(parallelWork)
	s.ParallelPart = ptr(parallelPart)
	s.SeqPart = ptr(seqPart)
	s.EstSeqTime = ptr(estSeqTime)
	s.CoreCost = ptr(coreCost)
	s.StagesInParallel = ptr(overlap)
	s.StagesSum = ptr(sumOf(stages, domain.FieldStageDuration))
	s.StagesInterval = ptr(millis(lastFinish.Sub(firstStart)))
	s.StagesMaxInputBlocks = ptr(maxInputBlocks)
	s.ExecutorsTotalInputBlocks = ptr(BytesToBlocks(totalInput))
	s.UnusedStorageMemory = ptr(totalMaxMemory - maxInput)

	if duration != 0 {
		s.EstimatedSpeedup = ptr(estSeqTime / duration)
		s.ParallelFraction = ptr(parallelPart / duration)
		s.SeqFraction = ptr(seqPart / duration)
		s.AverageThroughput = ptr(float64(maxInputBlocks) / duration)
	}
	if coreCost != 0 {
		s.EstimatedCoreEfficiency = ptr(parallelWork / coreCost)
		s.UnusedCoreCost = ptr(coreCost - parallelWork)
	}
	if totalMaxMemory != 0 {
		s.StorageMemoryUsage = ptr(maxInput / totalMaxMemory)
	}

	props := attempt.SparkProperties()
	s.ExecutorMemoryBytes = memoryProperty(props, "spark_executor_memory", log)
	s.DriverMemoryBytes = memoryProperty(props, "spark_driver_memory", log)

	return s
}

func stageIntervals(stages []domain.Stage) []interval.Interval {
	out := make([]interval.Interval, 0, len(stages))
	for i := range stages {
		st := &stages[i]
		if !st.IsComplete() {
			continue
		}
		out = append(out, interval.Interval{Start: st.FirstTaskLaunchedTime.Time, End: st.CompletionTime.Time})
	}
	return out
}

func memoryProperty(props map[string]any, key string, log logger.Logger) *int64 {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	str, isString := raw.(string)
	if !isString {
		log.Warn("Memory property is not a size string", logger.String("property", key), logger.Any("value", raw))
		return nil
	}
	n, ok := ParseBytes(str)
	if !ok {
		log.Warn("Failed to parse memory property", logger.String("property", key), logger.String("value", str))
		return nil
	}
	return &n
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
