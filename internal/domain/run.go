package domain

import "time"

// Run is one submitted application with its attempts.
type Run struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Attempts are ordered newest first, as returned by the history server.
	Attempts        []Attempt       `json:"attempts,omitempty"`
	HistoryHost     string          `json:"history_host,omitempty"`
	Spot            *ProcessingInfo `json:"spot,omitempty"`
	AppSpecificData map[string]any  `json:"app_specific_data,omitempty"`
	Extra           map[string]any  `json:"-"`
}

// ProcessingInfo records when and from where a run was crawled.
type ProcessingInfo struct {
	TimeProcessed time.Time `json:"time_processed"`
	HistoryHost   string    `json:"history_host"`
}

type runFields Run

func (r Run) MarshalJSON() ([]byte, error) {
	return encodeObject(runFields(r), r.Extra)
}

func (r *Run) UnmarshalJSON(data []byte) error {
	var typed runFields
	if err := decodeObject(data, &typed, &typed.Extra); err != nil {
		return err
	}
	*r = Run(typed)
	return nil
}

// FinalAttempt returns the most recent attempt, or nil if the run has none.
func (r *Run) FinalAttempt() *Attempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[0]
}

// IsFinal reports whether a is the final attempt of the run. An attempt
// without an id is always final.
func (r *Run) IsFinal(a *Attempt) bool {
	if a.AttemptID == "" {
		return true
	}
	final := r.FinalAttempt()
	return final != nil && final.AttemptID == a.AttemptID
}

// EndTimes returns the non-zero end times of all attempts.
func (r *Run) EndTimes() []time.Time {
	out := make([]time.Time, 0, len(r.Attempts))
	for i := range r.Attempts {
		if end := r.Attempts[i].EndTime; !end.IsZero() {
			out = append(out, end.Time)
		}
	}
	return out
}

// Header returns a shallow copy of the run without its attempts.
func (r *Run) Header() Run {
	h := *r
	h.Attempts = nil
	return h
}

// Attempt is one execution of a run.
type Attempt struct {
	AttemptID       string         `json:"attemptId,omitempty"`
	StartTime       Timestamp      `json:"startTime,omitzero"`
	EndTime         Timestamp      `json:"endTime,omitzero"`
	LastUpdated     Timestamp      `json:"lastUpdated,omitzero"`
	Duration        int64          `json:"duration"`
	SparkUser       string         `json:"sparkUser,omitempty"`
	Completed       bool           `json:"completed"`
	AppSparkVersion string         `json:"appSparkVersion,omitempty"`
	Executors       []Executor     `json:"allexecutors,omitempty"`
	Stages          []Stage        `json:"stages,omitempty"`
	Environment     *Environment   `json:"environment,omitempty"`
	AppSpecificData map[string]any `json:"app_specific_data,omitempty"`
	Extra           map[string]any `json:"-"`
}

type attemptFields Attempt

func (a Attempt) MarshalJSON() ([]byte, error) {
	return encodeObject(attemptFields(a), a.Extra)
}

func (a *Attempt) UnmarshalJSON(data []byte) error {
	var typed attemptFields
	if err := decodeObject(data, &typed, &typed.Extra); err != nil {
		return err
	}
	*a = Attempt(typed)
	return nil
}

// SparkProperties returns the attempt's job configuration, or nil.
func (a *Attempt) SparkProperties() map[string]any {
	if a.Environment == nil {
		return nil
	}
	return a.Environment.SparkProperties
}

// Environment is the runtime configuration of an attempt.
type Environment struct {
	Runtime map[string]any `json:"runtime,omitempty"`
	// SparkProperties keys use '_' in place of '.'.
	SparkProperties map[string]any `json:"sparkProperties,omitempty"`
	Extra           map[string]any `json:"-"`
}

type environmentFields Environment

func (e Environment) MarshalJSON() ([]byte, error) {
	return encodeObject(environmentFields(e), e.Extra)
}

func (e *Environment) UnmarshalJSON(data []byte) error {
	var typed environmentFields
	if err := decodeObject(data, &typed, &typed.Extra); err != nil {
		return err
	}
	*e = Environment(typed)
	return nil
}

// AppID returns spark_app_id from the properties, or "".
func (e *Environment) AppID() string {
	if e == nil {
		return ""
	}
	id, _ := e.SparkProperties["spark_app_id"].(string)
	return id
}
