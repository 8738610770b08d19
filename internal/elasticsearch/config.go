package elasticsearch

import (
	"net/http"
	"time"

	"github.com/AbsaOSS/spot/internal/retry"
)

// Default index names.
const (
	DefaultRawIndex = "raw_default"
	DefaultAggIndex = "agg_default"
	DefaultErrIndex = "err_default"

	defaultFieldLimitIncrement = 1000
	defaultRequestTimeout      = 30 * time.Second
	defaultIDPageSize          = 10000
)

// Config holds Elasticsearch connection and index configuration
type Config struct {
	// Addresses are the node URLs (e.g., http://elasticsearch:9200)
	Addresses []string `env:"ELASTICSEARCH_ADDRESSES" yaml:"addresses"`

	// Username is the optional basic auth username
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`

	// Password is the optional basic auth password
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`

	// APIKey is the optional API key for authentication
	APIKey string `env:"ELASTICSEARCH_API_KEY" yaml:"api_key"`

	// TLS configuration for secure connections
	TLS TLSConfig `yaml:"tls"`

	// MaxRetries is the maximum number of retries for client operations (default: 3)
	MaxRetries int `yaml:"max_retries"`

	// PingTimeout is the timeout for ping verification (default: 5s)
	PingTimeout time.Duration `yaml:"ping_timeout"`

	// RequestTimeout bounds every sink request (default: 30s)
	RequestTimeout time.Duration `env:"ELASTICSEARCH_REQUEST_TIMEOUT" yaml:"request_timeout"`

	RawIndex string `env:"ELASTICSEARCH_RAW_INDEX" yaml:"raw_index"`
	AggIndex string `env:"ELASTICSEARCH_AGG_INDEX" yaml:"agg_index"`
	ErrIndex string `env:"ELASTICSEARCH_ERR_INDEX" yaml:"err_index"`

	// FieldLimitIncrement is added to index.mapping.total_fields.limit when
	// a write exceeds it (default: 1000)
	FieldLimitIncrement int `yaml:"field_limit_increment"`

	// IDPageSize is the number of run ids fetched per search page, at most
	// the index's max_result_window (default: 10000)
	IDPageSize int `yaml:"id_page_size"`

	// RetryConfig is the configuration for connection retry logic
	// If nil, default retry config will be used (5 attempts, 2s initial, 10s max)
	RetryConfig *retry.Config `yaml:"-"`

	// Transport replaces the HTTP transport, for tests.
	Transport http.RoundTripper `yaml:"-"`
}

// TLSConfig holds TLS configuration for Elasticsearch connections
type TLSConfig struct {
	// Enabled enables TLS
	Enabled bool `env:"ELASTICSEARCH_TLS_ENABLED" yaml:"enabled"`

	// InsecureSkipVerify skips certificate verification (for development/testing)
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// CertFile is the path to the client certificate file
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the client private key file
	KeyFile string `yaml:"key_file"`

	// CAFile is the path to the CA certificate file
	CAFile string `env:"ELASTICSEARCH_CA_FILE" yaml:"ca_file"`
}

// SetDefaults applies default values to the config if not set
func (c *Config) SetDefaults() {
	if len(c.Addresses) == 0 {
		c.Addresses = []string{"http://localhost:9200"}
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.RawIndex == "" {
		c.RawIndex = DefaultRawIndex
	}
	if c.AggIndex == "" {
		c.AggIndex = DefaultAggIndex
	}
	if c.ErrIndex == "" {
		c.ErrIndex = DefaultErrIndex
	}
	if c.FieldLimitIncrement == 0 {
		c.FieldLimitIncrement = defaultFieldLimitIncrement
	}
	if c.IDPageSize == 0 {
		c.IDPageSize = defaultIDPageSize
	}
	if c.RetryConfig == nil {
		c.RetryConfig = &retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}
