package crawler

import (
	"fmt"
	"regexp"
	"time"
)

// Method selects how new runs are discovered.
type Method string

const (
	// MethodAll diffs every time step of the lookback window against the
	// ids already in the sink.
	MethodAll Method = "all"
	// MethodLatest fetches runs ending after the latest seen end time.
	//
	// Deprecated: runs that complete out of order are missed.
	MethodLatest Method = "latest"
)

// Defaults.
const (
	DefaultLookback      = 7 * 24 * time.Hour
	DefaultTimeStep      = time.Hour
	DefaultRetryAttempts = 24
	DefaultRetrySleep    = 15 * time.Minute

	rateLogEvery = 20
)

// NoRetries as Config.RetryAttempts makes the first transient backend error
// fatal to the cycle.
const NoRetries = -1

// Config tunes a Crawler.
type Config struct {
	Method Method
	// Lookback is how far back from now the window starts.
	Lookback time.Duration
	// TimeStep is the size of the slices a window is processed in. A step
	// should hold well under 10000 runs.
	TimeStep time.Duration
	// CompletionTimeout keeps runs younger than this out of the window so
	// the history server can finish writing them.
	CompletionTimeout time.Duration
	// RetryAttempts bounds consecutive retries of transient backend errors.
	// Zero uses DefaultRetryAttempts; NoRetries disables retrying.
	RetryAttempts int
	RetrySleep    time.Duration
	// SkipExceptions records failed runs and continues instead of aborting
	// the cycle.
	SkipExceptions bool
	// NamePattern keeps runs whose name matches; empty keeps all.
	NamePattern string
	// StageStatus filters fetched stages, e.g. "complete"; empty fetches all.
	StageStatus string
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Method == "" {
		c.Method = MethodAll
	}
	if c.Lookback == 0 {
		c.Lookback = DefaultLookback
	}
	if c.TimeStep == 0 {
		c.TimeStep = DefaultTimeStep
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetrySleep == 0 {
		c.RetrySleep = DefaultRetrySleep
	}
}

func (c *Config) nameFilter() (*regexp.Regexp, error) {
	if c.NamePattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.NamePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", c.NamePattern, err)
	}
	return re, nil
}
