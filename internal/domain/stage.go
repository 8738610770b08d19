package domain

import "time"

// Stage is a scheduling unit of parallel work inside an attempt.
type Stage struct {
	Status                string         `json:"status,omitempty"`
	StageID               int64          `json:"stageId"`
	AttemptID             int64          `json:"attemptId"`
	Name                  string         `json:"name,omitempty"`
	NumTasks              int64          `json:"numTasks"`
	SubmissionTime        Timestamp      `json:"submissionTime,omitzero"`
	FirstTaskLaunchedTime Timestamp      `json:"firstTaskLaunchedTime,omitzero"`
	CompletionTime        Timestamp      `json:"completionTime,omitzero"`
	ExecutorRunTime       int64          `json:"executorRunTime"`
	ExecutorCPUTime       int64          `json:"executorCpuTime"`
	InputBytes            int64          `json:"inputBytes"`
	InputRecords          int64          `json:"inputRecords"`
	OutputBytes           int64          `json:"outputBytes"`
	OutputRecords         int64          `json:"outputRecords"`
	Extra                 map[string]any `json:"-"`
}

type stageFields Stage

func (s Stage) MarshalJSON() ([]byte, error) {
	return encodeObject(stageFields(s), s.Extra)
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var typed stageFields
	if err := decodeObject(data, &typed, &typed.Extra); err != nil {
		return err
	}
	*s = Stage(typed)
	return nil
}

// IsComplete reports whether both the first task launch and the completion
// time are known.
func (s *Stage) IsComplete() bool {
	return !s.FirstTaskLaunchedTime.IsZero() && !s.CompletionTime.IsZero()
}

// Duration is completionTime - firstTaskLaunchedTime. Zero for incomplete stages.
func (s *Stage) Duration() time.Duration {
	if !s.IsComplete() {
		return 0
	}
	return s.CompletionTime.Sub(s.FirstTaskLaunchedTime.Time)
}

// SchedulingOverhead is firstTaskLaunchedTime - submissionTime.
func (s *Stage) SchedulingOverhead() (time.Duration, bool) {
	if s.FirstTaskLaunchedTime.IsZero() || s.SubmissionTime.IsZero() {
		return 0, false
	}
	return s.FirstTaskLaunchedTime.Sub(s.SubmissionTime.Time), true
}

// Fields returns the stage as a nested key/value map. Unset timestamps are
// left out; timestamps are time.Time values.
func (s *Stage) Fields() map[string]any {
	out := make(map[string]any, len(s.Extra)+14)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["stageId"] = s.StageID
	out["attemptId"] = s.AttemptID
	out["numTasks"] = s.NumTasks
	out["executorRunTime"] = s.ExecutorRunTime
	out["executorCpuTime"] = s.ExecutorCPUTime
	out["inputBytes"] = s.InputBytes
	out["inputRecords"] = s.InputRecords
	out["outputBytes"] = s.OutputBytes
	out["outputRecords"] = s.OutputRecords
	if s.Status != "" {
		out["status"] = s.Status
	}
	if s.Name != "" {
		out["name"] = s.Name
	}
	putTime(out, "submissionTime", s.SubmissionTime)
	putTime(out, "firstTaskLaunchedTime", s.FirstTaskLaunchedTime)
	putTime(out, "completionTime", s.CompletionTime)
	return out
}

func putTime(m map[string]any, key string, t Timestamp) {
	if !t.IsZero() {
		m[key] = t.Time
	}
}
