package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AbsaOSS/spot/internal/crawler"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/metrics"
	"github.com/AbsaOSS/spot/internal/server"
	"github.com/AbsaOSS/spot/internal/sink"
)

// Options are the command line overrides of a run.
type Options struct {
	// MinEndDate overrides crawler.min_end_date.
	MinEndDate *time.Time
	Version    string
}

// App is a wired crawler.
type App struct {
	deps    *Deps
	sink    *SinkComponents
	crawler *crawler.Crawler
	metrics *metrics.Metrics
	version string
}

// NewApp runs the setup phases.
func NewApp(ctx context.Context, deps *Deps, opts Options) (*App, error) {
	sinkComponents, err := SetupSink(ctx, deps.Config, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup sink: %w", err)
	}

	m := metrics.New()
	c, err := SetupCrawler(ctx, deps, sinkComponents.Sink, m, opts.MinEndDate)
	if err != nil {
		return nil, fmt.Errorf("setup crawler: %w", err)
	}

	return &App{
		deps:    deps,
		sink:    sinkComponents,
		crawler: c,
		metrics: m,
		version: opts.Version,
	}, nil
}

// Crawler returns the wired crawler.
func (a *App) Crawler() *crawler.Crawler {
	return a.crawler
}

// RunOnce runs a single poll cycle.
func (a *App) RunOnce(ctx context.Context) error {
	n, err := a.crawler.ProcessNewRuns(ctx)
	a.deps.Logger.Info("Poll cycle finished", logger.Int("new_runs", n))
	a.sink.Sink.LogIndexStats(ctx)
	return err
}

// RunWindow processes one explicit window.
func (a *App) RunWindow(ctx context.Context, from, to time.Time) error {
	n, err := a.crawler.ProcessWindow(ctx, from, to)
	a.deps.Logger.Info("Window finished", logger.Int("new_runs", n))
	return err
}

// Run polls until ctx is done or a signal arrives, serving health and
// metrics alongside when enabled.
func (a *App) Run(ctx context.Context) error {
	cfg := a.deps.Config
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server.Address, a.deps.Logger, server.Options{
			Version: a.version,
			Metrics: a.metrics.Handler(),
			Checks:  a.sink.Checks,
			Debug:   cfg.Logging.Level == "debug",
		})
		g.Go(func() error { return srv.Run(ctx) })
	}

	g.Go(func() error {
		var err error
		if cfg.Crawler.Schedule != "" {
			err = a.crawler.RunScheduled(ctx, cfg.Crawler.Schedule)
		} else {
			err = a.crawler.Run(ctx, cfg.Crawler.Sleep())
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// Stats reports the size of the sink's stores.
func (a *App) Stats(ctx context.Context) ([]sink.IndexStat, error) {
	return IndexStats(ctx, a.sink)
}

// IndexStats reports the size of components' stores.
func IndexStats(ctx context.Context, components *SinkComponents) ([]sink.IndexStat, error) {
	if components.Stats == nil {
		return nil, errors.New("sink does not report index stats")
	}
	return components.Stats.IndexStats(ctx)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
