// Package history is a client for the Spark History Server REST API.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/retry"
	"github.com/AbsaOSS/spot/internal/source"
)

const defaultHTTPTimeout = 60 * time.Second

var errUnavailable = errors.New("history server unavailable")

// Client implements source.Source against a Spark History Server.
type Client struct {
	baseURL    string
	host       string
	httpClient *http.Client
	retry      retry.Config
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets the backoff used while the server answers 503.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. http://history:18080/api/v1.
func NewClient(baseURL string, log logger.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse history url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("history url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		host:       u.Hostname(),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retry: retry.Config{
			MaxAttempts:  10,
			InitialDelay: time.Second,
			MaxDelay:     time.Minute,
			Multiplier:   2,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.IsRetryable = func(err error) bool { return errors.Is(err, errUnavailable) }
	return c, nil
}

// Host returns the history server host name.
func (c *Client) Host() string {
	return c.host
}

// ListCompleted lists completed applications. The server returns them newest
// first; the result is reversed.
func (c *Client) ListCompleted(ctx context.Context, opts source.ListOptions) ([]domain.Run, error) {
	params := url.Values{}
	params.Set("status", "completed")
	if !opts.MinEnd.IsZero() {
		params.Set("minEndDate", domain.FormatSparkTime(opts.MinEnd))
	}
	if !opts.MaxEnd.IsZero() {
		params.Set("maxEndDate", domain.FormatSparkTime(opts.MaxEnd))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	c.log.Debug("Listing completed applications",
		logger.String("host", c.host),
		logger.String("min_end", params.Get("minEndDate")),
		logger.String("max_end", params.Get("maxEndDate")),
	)

	var runs []domain.Run
	if err := c.getJSON(ctx, "applications", params, &runs); err != nil {
		return nil, err
	}
	slices.Reverse(runs)
	return runs, nil
}

// Executors returns every executor of an attempt with noisy keys removed.
func (c *Client) Executors(ctx context.Context, runID, attemptID string) ([]domain.Executor, error) {
	var executors []domain.Executor
	if err := c.getJSON(ctx, attemptPath(runID, attemptID, "allexecutors"), nil, &executors); err != nil {
		return nil, err
	}
	for i := range executors {
		removeKeys(executors[i].Extra, executorDropKeys)
	}
	return executors, nil
}

// Stages returns the stages of an attempt. An empty status returns all.
func (c *Client) Stages(ctx context.Context, runID, attemptID, status string) ([]domain.Stage, error) {
	var params url.Values
	if status != "" {
		params = url.Values{"status": {status}}
	}
	var stages []domain.Stage
	if err := c.getJSON(ctx, attemptPath(runID, attemptID, "stages"), params, &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

// Environment returns the attempt's runtime configuration. Spark properties
// are converted from key/value pairs into a map.
func (c *Client) Environment(ctx context.Context, runID, attemptID string) (*domain.Environment, error) {
	var raw map[string]json.RawMessage
	if err := c.getJSON(ctx, attemptPath(runID, attemptID, "environment"), nil, &raw); err != nil {
		return nil, err
	}
	return convertEnvironment(raw)
}

func attemptPath(runID, attemptID, resource string) string {
	p := "applications/" + url.PathEscape(runID)
	if attemptID != "" {
		p += "/" + url.PathEscape(attemptID)
	}
	return p + "/" + resource
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + "/" + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var body []byte
	err := retry.Retry(ctx, c.retry, func() error {
		var fetchErr error
		body, fetchErr = c.fetch(ctx, target)
		if errors.Is(fetchErr, errUnavailable) {
			c.log.Warn("History server unavailable, backing off", logger.String("url", target))
		}
		return fetchErr
	})
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return fmt.Errorf("%w: malformed response from %s", source.ErrTransientBackend, target)
	}
	if decodeErr := json.Unmarshal(trimmed, out); decodeErr != nil {
		return fmt.Errorf("decode response from %s: %w", target, decodeErr)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL from config
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Error("Error closing response body", logger.Error(closeErr))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, target)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", errUnavailable, target)
	case resp.StatusCode != http.StatusOK:
		return nil, &source.StatusError{Code: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
