package enceladus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/retry"
)

const defaultHTTPTimeout = 60 * time.Second

var errUnauthorized = errors.New("menas session expired")

// MenasClient reads run documents from the Menas REST API using a cookie
// session. An expired session is renewed with exponential backoff.
type MenasClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	retry      retry.Config
	log        logger.Logger

	mu       sync.Mutex
	loggedIn bool
}

// MenasOption configures a MenasClient.
type MenasOption func(*MenasClient)

// WithMenasHTTPClient replaces the default HTTP client. A cookie jar is
// added if the client has none.
func WithMenasHTTPClient(hc *http.Client) MenasOption {
	return func(c *MenasClient) {
		c.httpClient = hc
	}
}

// WithMenasRetry sets the backoff used to renew the session.
func WithMenasRetry(cfg retry.Config) MenasOption {
	return func(c *MenasClient) {
		c.retry = cfg
	}
}

// NewMenasClient creates a client for the API rooted at baseURL,
// e.g. https://menas:8080/menas/api.
func NewMenasClient(baseURL, username, password string, log logger.Logger, opts ...MenasOption) (*MenasClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse menas url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("menas url %q must be absolute", baseURL)
	}

	c := &MenasClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retry: retry.Config{
			MaxAttempts:  10,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Minute,
			Multiplier:   2,
		},
		log: log.With(logger.String("component", "menas")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, jarErr := cookiejar.New(nil)
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		c.httpClient.Jar = jar
	}
	c.retry.IsRetryable = func(err error) bool { return errors.Is(err, errUnauthorized) }
	return c, nil
}

// Login starts a new session.
func (c *MenasClient) Login(ctx context.Context) error {
	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("menas login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("menas login: status %d", resp.StatusCode)
	}
	c.log.Debug("Started Menas session", logger.Int("status", resp.StatusCode))

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	return nil
}

// RunsBySparkAppID returns the Menas run documents of a Spark application.
// An unknown application yields no runs.
func (c *MenasClient) RunsBySparkAppID(ctx context.Context, appID string) ([]map[string]any, error) {
	var runs []map[string]any
	found, err := c.get(ctx, "runs/bySparkAppId/"+url.PathEscape(appID), &runs)
	if err != nil || !found {
		return nil, err
	}
	return runs, nil
}

func (c *MenasClient) get(ctx context.Context, path string, out any) (bool, error) {
	c.mu.Lock()
	loggedIn := c.loggedIn
	c.mu.Unlock()
	if !loggedIn {
		if err := c.Login(ctx); err != nil {
			return false, err
		}
	}

	endpoint := c.baseURL + "/" + path
	found := false
	attempt := 0
	err := retry.Retry(ctx, c.retry, func() error {
		attempt++
		if attempt > 1 {
			c.log.Warn("Menas session rejected, logging in again",
				logger.String("url", endpoint),
				logger.Int("attempt", attempt),
			)
			if loginErr := c.Login(ctx); loginErr != nil {
				return loginErr
			}
		}

		var fetchErr error
		found, fetchErr = c.fetch(ctx, endpoint, out)
		return fetchErr
	})
	if err != nil {
		return false, fmt.Errorf("get %s: %w", endpoint, err)
	}
	return found, nil
}

func (c *MenasClient) fetch(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	c.log.Debug("Sending Menas request", logger.String("url", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
			return false, fmt.Errorf("decode menas response: %w", decodeErr)
		}
		return true, nil
	case http.StatusNotFound:
		c.log.Warn("Menas resource not found", logger.String("url", endpoint))
		return false, nil
	case http.StatusUnauthorized:
		return false, errUnauthorized
	default:
		return false, fmt.Errorf("unexpected menas status %d", resp.StatusCode)
	}
}
