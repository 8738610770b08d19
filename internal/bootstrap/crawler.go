package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AbsaOSS/spot/internal/aggregate"
	"github.com/AbsaOSS/spot/internal/config"
	"github.com/AbsaOSS/spot/internal/crawler"
	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/enrichment/enceladus"
	"github.com/AbsaOSS/spot/internal/flatten"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/sink"
	"github.com/AbsaOSS/spot/internal/source/history"
)

// SetupCrawler creates the crawler reading from the configured history
// server into snk. rec may be nil. minEnd, when set, overrides
// crawler.min_end_date.
func SetupCrawler(
	ctx context.Context,
	deps *Deps,
	snk sink.Sink,
	rec crawler.Recorder,
	minEnd *time.Time,
) (*crawler.Crawler, error) {
	cfg := deps.Config
	log := deps.Logger

	src, err := history.NewClient(cfg.History.APIBaseURL, log,
		history.WithHTTPClient(&http.Client{Timeout: cfg.History.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("history client: %w", err)
	}

	var opts []crawler.Option
	if rec != nil {
		opts = append(opts, crawler.WithRecorder(rec))
	}

	if cfg.Enceladus.Enabled() {
		enricher, enrichErr := setupEnceladus(&cfg.Enceladus, cfg.History.Timeout, log)
		if enrichErr != nil {
			return nil, enrichErr
		}
		opts = append(opts, crawler.WithEnricher(enricher))
	}

	crawlCfg := cfg.CrawlSettings()
	if crawlCfg.Method == crawler.MethodLatest {
		state, stateErr := loadState(ctx, snk, cfg, minEnd, log)
		if stateErr != nil {
			return nil, stateErr
		}
		opts = append(opts, crawler.WithState(state))
	}

	flattener := flatten.New(aggregate.DefaultFuncs(aggregate.WithRSDZeroMean(cfg.Aggregation.RSDZeroMean)), log)
	return crawler.New(src, snk, flattener, crawlCfg, log, opts...)
}

func setupEnceladus(cfg *config.EnceladusConfig, timeout time.Duration, log logger.Logger) (*enceladus.Enricher, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	menas, err := enceladus.NewMenasClient(cfg.APIBaseURL, cfg.Username, cfg.Password, log,
		enceladus.WithMenasHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("menas client: %w", err)
	}
	log.Info("Enceladus enrichment enabled",
		logger.String("menas", cfg.APIBaseURL),
		logger.String("default_timezone", loc.String()),
	)
	return enceladus.New(menas, loc, log), nil
}

// loadState reads the stored watermark and applies the minimum end date.
func loadState(ctx context.Context, snk sink.Sink, cfg *config.Config, minEnd *time.Time, log logger.Logger) (crawler.State, error) {
	if minEnd == nil {
		parsed, err := config.ParseMinEndDate(cfg.Crawler.MinEndDate)
		if err != nil {
			return crawler.State{}, err
		}
		minEnd = parsed
	}

	stored, tabu, err := snk.LatestWatermark(ctx)
	if err != nil {
		return crawler.State{}, fmt.Errorf("latest watermark: %w", err)
	}
	state := SeedState(stored, tabu, minEnd)

	fields := []logger.Field{logger.Int("tabu", len(state.Tabu))}
	if state.LatestSeenEndTime != nil {
		fields = append(fields, logger.Time("watermark", *state.LatestSeenEndTime))
	}
	log.Info("Crawl state loaded", fields...)
	return state, nil
}

// SeedState combines the stored watermark with a minimum end date. The
// minimum wins, with an empty tabu set, when nothing is stored or the stored
// watermark is older.
func SeedState(stored *time.Time, tabu domain.IDSet, minEnd *time.Time) crawler.State {
	if minEnd != nil && (stored == nil || stored.Before(*minEnd)) {
		t := *minEnd
		return crawler.State{LatestSeenEndTime: &t, Tabu: domain.NewIDSet()}
	}
	if tabu == nil {
		tabu = domain.NewIDSet()
	}
	return crawler.State{LatestSeenEndTime: stored, Tabu: tabu}
}
