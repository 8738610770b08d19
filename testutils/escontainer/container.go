// Package escontainer starts a throwaway Elasticsearch for integration tests.
package escontainer

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultImage is the Elasticsearch image used by integration tests.
	DefaultImage = "docker.elastic.co/elasticsearch/elasticsearch:8.11.0"

	startupTimeout = 90 * time.Second
)

// Container is a running Elasticsearch node with security disabled.
type Container struct {
	Container testcontainers.Container
	Address   string
}

// Start runs DefaultImage and waits until it answers on 9200.
func Start(ctx context.Context) (*Container, error) {
	esContainer, err := elasticsearch.Run(
		ctx,
		DefaultImage,
		testcontainers.WithEnv(map[string]string{
			"xpack.security.enabled": "false",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_cluster/health").WithPort("9200/tcp").WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start Elasticsearch container: %w", err)
	}

	host, err := esContainer.Host(ctx)
	if err != nil {
		_ = esContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := esContainer.MappedPort(ctx, "9200")
	if err != nil {
		_ = esContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &Container{
		Container: esContainer,
		Address:   "http://" + net.JoinHostPort(host, mappedPort.Port()),
	}, nil
}

// Stop terminates the container.
func (c *Container) Stop(ctx context.Context) error {
	if c.Container == nil {
		return nil
	}
	return c.Container.Terminate(ctx)
}
