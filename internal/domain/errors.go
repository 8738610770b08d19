package domain

import "time"

// Processing stages recorded in error documents.
const (
	StageListing      = "listing"
	StageRaw          = "raw"
	StageAggregations = "aggregations"
)

// ErrorDocument describes a failure to process a run.
type ErrorDocument struct {
	// ID is the sink document id; not serialised.
	ID   string    `json:"-"`
	Spot ErrorInfo `json:"spot"`
}

// ErrorInfo is the body of an ErrorDocument.
type ErrorInfo struct {
	TimeProcessed time.Time   `json:"time_processed"`
	SparkAppID    string      `json:"spark_app_id"`
	HistoryHost   string      `json:"history_host"`
	Error         ErrorDetail `json:"error"`
}

// ErrorDetail names the failure.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Stage   string `json:"stage"`
}
