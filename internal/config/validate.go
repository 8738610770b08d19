package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/crawler"
)

// maxIDPageSize is the default index.max_result_window.
const maxIDPageSize = 10000

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration, returning the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		func() error { return validateURL("history.api_base_url", c.History.APIBaseURL, true) },
		c.Crawler.validate,
		c.validateAggregation,
		c.validateSink,
		func() error { return validateURL("enceladus.api_base_url", c.Enceladus.APIBaseURL, false) },
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(field, value string, required bool) error {
	if value == "" {
		if required {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute URL"}
	}
	return nil
}

func (c *CrawlerConfig) validate() error {
	switch crawler.Method(c.Method) {
	case crawler.MethodAll, crawler.MethodLatest:
	default:
		return &ValidationError{Field: "crawler.method", Message: "must be one of: all, latest"}
	}
	positive := []struct {
		field string
		value int
	}{
		{"crawler.lookback_hours", c.LookbackHours},
		{"crawler.time_step_seconds", c.TimeStepSeconds},
		{"crawler.sleep_seconds", c.SleepSeconds},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ValidationError{Field: p.field, Message: "must be positive"}
		}
	}
	if c.CompletionTimeoutSeconds < 0 {
		return &ValidationError{Field: "crawler.completion_timeout_seconds", Message: "must not be negative"}
	}
	if c.RetryAttempts != nil && *c.RetryAttempts < 0 {
		return &ValidationError{Field: "crawler.retry_attempts", Message: "must not be negative"}
	}
	if c.RetrySleepSeconds < 0 {
		return &ValidationError{Field: "crawler.retry_sleep_seconds", Message: "must not be negative"}
	}
	if c.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Schedule); err != nil {
			return &ValidationError{Field: "crawler.schedule", Message: err.Error()}
		}
	}
	if _, err := ParseMinEndDate(c.MinEndDate); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAggregation() error {
	switch c.Aggregation.RSDZeroMean {
	case aggregate.RSDSkip, aggregate.RSDZero:
		return nil
	default:
		return &ValidationError{Field: "aggregation.rsd_zero_mean", Message: "must be one of: skip, zero"}
	}
}

func (c *Config) validateSink() error {
	switch c.Sink.Type {
	case SinkStdout:
		return nil
	case SinkElasticsearch:
		if c.Elasticsearch.FieldLimitIncrement <= 0 {
			return &ValidationError{Field: "elasticsearch.field_limit_increment", Message: "must be positive"}
		}
		if c.Elasticsearch.IDPageSize <= 0 || c.Elasticsearch.IDPageSize > maxIDPageSize {
			return &ValidationError{Field: "elasticsearch.id_page_size", Message: "must be between 1 and 10000"}
		}
		return nil
	default:
		return &ValidationError{Field: "sink.type", Message: "must be one of: elasticsearch, stdout"}
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}
