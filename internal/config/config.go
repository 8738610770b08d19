package config

import (
	"fmt"
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/crawler"
	"github.com/AbsaOSS/spot/internal/elasticsearch"
	"github.com/AbsaOSS/spot/internal/logger"
)

// Default configuration values.
const (
	defaultHistoryTimeout    = 60 * time.Second
	defaultLookbackHours     = 168
	defaultTimeStepSeconds   = 3600
	defaultSleepSeconds      = 60
	defaultRetryAttempts     = 24
	defaultRetrySleepSeconds = 900
	defaultEnceladusTimezone = "UTC"
	defaultServerAddress     = ":9090"
	defaultSinkType          = SinkElasticsearch
	defaultRSDZeroMean       = aggregate.RSDSkip
	minEndDateLayout         = "2006-01-02T15:04:05"
)

// Sink types.
const (
	SinkElasticsearch = "elasticsearch"
	SinkStdout        = "stdout"
)

// Config is the spot configuration.
type Config struct {
	History       HistoryConfig        `yaml:"history"`
	Crawler       CrawlerConfig        `yaml:"crawler"`
	Aggregation   AggregationConfig    `yaml:"aggregation"`
	Sink          SinkConfig           `yaml:"sink"`
	Elasticsearch elasticsearch.Config `yaml:"elasticsearch"`
	Enceladus     EnceladusConfig      `yaml:"enceladus"`
	Server        ServerConfig         `yaml:"server"`
	Logging       logger.Config        `yaml:"logging"`
}

// HistoryConfig locates the Spark History Server REST API.
type HistoryConfig struct {
	APIBaseURL  string        `env:"SPOT_HISTORY_URL" yaml:"api_base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	StageStatus string        `yaml:"stage_status"`
}

// CrawlerConfig holds the crawl loop settings. Durations are whole seconds
// or hours.
type CrawlerConfig struct {
	Method                   string `env:"SPOT_CRAWLER_METHOD" yaml:"method"`
	LookbackHours            int    `yaml:"lookback_hours"`
	TimeStepSeconds          int    `yaml:"time_step_seconds"`
	CompletionTimeoutSeconds int    `yaml:"completion_timeout_seconds"`
	SleepSeconds             int    `env:"SPOT_CRAWLER_SLEEP_SECONDS" yaml:"sleep_seconds"`
	// Schedule is a cron expression replacing SleepSeconds when set.
	Schedule          string `env:"SPOT_CRAWLER_SCHEDULE" yaml:"schedule"`
	SkipExceptions    bool   `env:"SPOT_SKIP_EXCEPTIONS" yaml:"skip_exceptions"`
	// RetryAttempts is nil when unset; 0 disables retries.
	RetryAttempts     *int   `yaml:"retry_attempts"`
	RetrySleepSeconds int    `yaml:"retry_sleep_seconds"`
	NamePattern       string `yaml:"name_pattern"`
	// MinEndDate (2006-01-02T15:04:05, UTC) seeds the watermark.
	MinEndDate string `yaml:"min_end_date"`
}

// AggregationConfig tunes the statistics.
type AggregationConfig struct {
	RSDZeroMean aggregate.RSDZeroMean `yaml:"rsd_zero_mean"`
}

// SinkConfig selects where documents go.
type SinkConfig struct {
	Type string `env:"SPOT_SINK" yaml:"type"`
}

// EnceladusConfig enables the Enceladus enrichment when APIBaseURL is set.
type EnceladusConfig struct {
	APIBaseURL string `env:"SPOT_MENAS_URL" yaml:"api_base_url"`
	Username   string `env:"SPOT_MENAS_USERNAME" yaml:"username"`
	Password   string `env:"SPOT_MENAS_PASSWORD" yaml:"password"`
	// DefaultTimezone reads Menas times that carry no offset.
	DefaultTimezone string `yaml:"default_timezone"`
}

// Enabled reports whether the enrichment is configured.
func (c *EnceladusConfig) Enabled() bool {
	return c.APIBaseURL != ""
}

// Location loads DefaultTimezone.
func (c *EnceladusConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("enceladus default timezone: %w", err)
	}
	return loc, nil
}

// ServerConfig holds the health and metrics endpoint settings.
type ServerConfig struct {
	Enabled bool   `env:"SPOT_SERVER_ENABLED" yaml:"enabled"`
	Address string `env:"SPOT_SERVER_ADDRESS" yaml:"address"`
}

// Load loads configuration from path. An empty path uses defaults and the
// environment only.
func Load(path string) (*Config, error) {
	cfg, err := loadFile[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	setHistoryDefaults(&cfg.History)
	setCrawlerDefaults(&cfg.Crawler)
	if cfg.Aggregation.RSDZeroMean == "" {
		cfg.Aggregation.RSDZeroMean = defaultRSDZeroMean
	}
	if cfg.Sink.Type == "" {
		cfg.Sink.Type = defaultSinkType
	}
	cfg.Elasticsearch.SetDefaults()
	if cfg.Enceladus.DefaultTimezone == "" {
		cfg.Enceladus.DefaultTimezone = defaultEnceladusTimezone
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultServerAddress
	}
	cfg.Logging.SetDefaults()
}

func setHistoryDefaults(h *HistoryConfig) {
	if h.Timeout == 0 {
		h.Timeout = defaultHistoryTimeout
	}
}

func setCrawlerDefaults(c *CrawlerConfig) {
	if c.Method == "" {
		c.Method = string(crawler.MethodAll)
	}
	if c.LookbackHours == 0 {
		c.LookbackHours = defaultLookbackHours
	}
	if c.TimeStepSeconds == 0 {
		c.TimeStepSeconds = defaultTimeStepSeconds
	}
	if c.SleepSeconds == 0 {
		c.SleepSeconds = defaultSleepSeconds
	}
	if c.RetryAttempts == nil {
		attempts := defaultRetryAttempts
		c.RetryAttempts = &attempts
	}
	if c.RetrySleepSeconds == 0 {
		c.RetrySleepSeconds = defaultRetrySleepSeconds
	}
}

// CrawlSettings converts the crawler section into crawler settings.
func (c *Config) CrawlSettings() crawler.Config {
	cc := c.Crawler
	return crawler.Config{
		Method:            crawler.Method(cc.Method),
		Lookback:          time.Duration(cc.LookbackHours) * time.Hour,
		TimeStep:          time.Duration(cc.TimeStepSeconds) * time.Second,
		CompletionTimeout: time.Duration(cc.CompletionTimeoutSeconds) * time.Second,
		RetryAttempts:     cc.retryAttempts(),
		RetrySleep:        time.Duration(cc.RetrySleepSeconds) * time.Second,
		SkipExceptions:    cc.SkipExceptions,
		NamePattern:       cc.NamePattern,
		StageStatus:       c.History.StageStatus,
	}
}

// Sleep is the pause between poll cycles.
func (c *CrawlerConfig) Sleep() time.Duration {
	return time.Duration(c.SleepSeconds) * time.Second
}

func (c *CrawlerConfig) retryAttempts() int {
	switch {
	case c.RetryAttempts == nil:
		return defaultRetryAttempts
	case *c.RetryAttempts == 0:
		return crawler.NoRetries
	default:
		return *c.RetryAttempts
	}
}

// ParseMinEndDate parses a minimum end date given as 2006-01-02T15:04:05
// in UTC. An empty value returns nil.
func ParseMinEndDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(minEndDateLayout, s)
	if err != nil {
		return nil, &ValidationError{Field: "crawler.min_end_date", Message: "must look like " + minEndDateLayout}
	}
	return &t, nil
}
