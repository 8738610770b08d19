package bootstrap

import (
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/AbsaOSS/spot/internal/config"
	"github.com/AbsaOSS/spot/internal/elasticsearch"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/server"
	"github.com/AbsaOSS/spot/internal/sink"
	"github.com/AbsaOSS/spot/internal/sink/elastic"
)

// SinkComponents is the configured sink. Stats is nil for sinks that
// cannot report their size.
type SinkComponents struct {
	Sink   sink.Sink
	Stats  sink.StatsReporter
	Checks map[string]server.HealthChecker
}

// SetupSink creates the configured sink. The Elasticsearch sink gets its
// missing indices created.
func SetupSink(ctx context.Context, cfg *config.Config, log logger.Logger) (*SinkComponents, error) {
	switch cfg.Sink.Type {
	case config.SinkStdout:
		log.Info("Printing documents to stdout")
		return &SinkComponents{Sink: sink.NewWriter(nil)}, nil

	case config.SinkElasticsearch:
		client, err := elasticsearch.NewClient(ctx, cfg.Elasticsearch, log)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch client: %w", err)
		}
		s := elastic.New(client, cfg.Elasticsearch, log)
		if err := s.EnsureIndices(ctx); err != nil {
			return nil, fmt.Errorf("ensure indices: %w", err)
		}
		return &SinkComponents{
			Sink:   s,
			Stats:  s,
			Checks: map[string]server.HealthChecker{"elasticsearch": pingCheck(client)},
		}, nil

	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Sink.Type)
	}
}

func pingCheck(client *es.Client) server.HealthChecker {
	return func(ctx context.Context) error {
		res, err := client.Ping(client.Ping.WithContext(ctx))
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("ping returned %s", res.Status())
		}
		return nil
	}
}
