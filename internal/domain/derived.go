package domain

// Keys of the metrics derived from stages and executors while flattening.
const (
	FieldStartTime          = "x_startTime"
	FieldStopTime           = "x_stopTime"
	FieldDurationMillis     = "x_durationMilliseconds"
	FieldCoreCost           = "x_coreCost"
	FieldStorageCost        = "x_storageCost"
	FieldSchedulingOverhead = "x_scheduling_overhead"
	FieldStageDuration      = "x_duration"
	FieldExecutorCPUTimeMs  = "x_executorCpuTime_ms"
	FieldThroughputBytes    = "throughput_bytes"
	FieldThroughputRecords  = "throughput_records"
)
