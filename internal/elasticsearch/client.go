// Package elasticsearch builds a verified go-elasticsearch client.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/retry"
)

// NewClient creates a new Elasticsearch client with retry logic for connection verification.
// It normalizes the URLs, configures TLS and authentication, and retries the connection
// verification with exponential backoff if the initial connection fails.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()

	addresses := make([]string, 0, len(cfg.Addresses))
	for _, a := range cfg.Addresses {
		addresses = append(addresses, normalizeURL(a))
	}

	transport := cfg.Transport
	if transport == nil {
		t, err := createTransport(cfg.TLS)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	clientConfig := es.Config{
		Addresses:  addresses,
		Transport:  transport,
		MaxRetries: cfg.MaxRetries,
	}

	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	esClient, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	log.Info("Verifying Elasticsearch connection", logger.Strings("addresses", addresses))

	if err := retry.Retry(ctx, *cfg.RetryConfig, func() error {
		return pingElasticsearch(ctx, esClient, cfg.PingTimeout, log)
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch after retries: %w", err)
	}

	log.Info("Elasticsearch connection established", logger.Strings("addresses", addresses))

	return esClient, nil
}

// normalizeURL adds the http:// prefix if missing
func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

// createTransport creates an HTTP transport with TLS configuration if enabled
func createTransport(cfg TLSConfig) (*http.Transport, error) {
	transport := &http.Transport{}
	if !cfg.Enabled {
		return transport, nil
	}

	tlsClientConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for development clusters
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsClientConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("no certificates found in CA file")
		}
		tlsClientConfig.RootCAs = pool
	}

	transport.TLSClientConfig = tlsClientConfig
	return transport, nil
}

// pingElasticsearch verifies the Elasticsearch connection by pinging it
func pingElasticsearch(ctx context.Context, client *es.Client, timeout time.Duration, log logger.Logger) error {
	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		log.Debug("Elasticsearch ping failed", logger.Error(err))
		return fmt.Errorf("ping failed: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Debug("Failed to close ping response body", logger.Error(closeErr))
		}
	}()

	if res.IsError() {
		body, readErr := io.ReadAll(res.Body)
		errMsg := string(body)
		if readErr != nil {
			errMsg = fmt.Sprintf("error reading response body: %v", readErr)
		}
		log.Debug("Elasticsearch ping returned error", logger.String("status", res.Status()), logger.String("body", errMsg))
		return fmt.Errorf("ping returned error [%s]: %s", res.Status(), errMsg)
	}

	return nil
}
