package domain

// DriverID is the executor id Spark assigns to the driver.
const DriverID = "driver"

// Executor is a worker process, or the driver, active during an attempt.
type Executor struct {
	ID              string         `json:"id"`
	IsActive        bool           `json:"isActive"`
	TotalCores      int64          `json:"totalCores"`
	MaxMemory       int64          `json:"maxMemory"`
	TotalInputBytes int64          `json:"totalInputBytes"`
	TotalDuration   int64          `json:"totalDuration"`
	TotalTasks      int64          `json:"totalTasks"`
	AddTime         Timestamp      `json:"addTime,omitzero"`
	RemoveTime      Timestamp      `json:"removeTime,omitzero"`
	RemoveReason    string         `json:"removeReason,omitempty"`
	Extra           map[string]any `json:"-"`
}

type executorFields Executor

func (e Executor) MarshalJSON() ([]byte, error) {
	return encodeObject(executorFields(e), e.Extra)
}

func (e *Executor) UnmarshalJSON(data []byte) error {
	var typed executorFields
	if err := decodeObject(data, &typed, &typed.Extra); err != nil {
		return err
	}
	*e = Executor(typed)
	return nil
}

// IsDriver reports whether the executor is the application driver.
func (e *Executor) IsDriver() bool {
	return e.ID == DriverID
}

// Fields returns the executor as a nested key/value map.
func (e *Executor) Fields() map[string]any {
	out := make(map[string]any, len(e.Extra)+10)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["id"] = e.ID
	out["isActive"] = e.IsActive
	out["totalCores"] = e.TotalCores
	out["maxMemory"] = e.MaxMemory
	out["totalInputBytes"] = e.TotalInputBytes
	out["totalDuration"] = e.TotalDuration
	out["totalTasks"] = e.TotalTasks
	if e.RemoveReason != "" {
		out["removeReason"] = e.RemoveReason
	}
	putTime(out, "addTime", e.AddTime)
	putTime(out, "removeTime", e.RemoveTime)
	return out
}
