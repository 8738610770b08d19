// Package crawler discovers completed runs on a history server, stores them
// with their aggregations and keeps track of what was already processed.
package crawler

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/enrichment"
	"github.com/AbsaOSS/spot/internal/flatten"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/retry"
	"github.com/AbsaOSS/spot/internal/sink"
	"github.com/AbsaOSS/spot/internal/source"
)

// Recorder receives crawl metrics.
type Recorder interface {
	RunSeen()
	RunProcessed()
	RunSkipped()
	ProcessingError(stage string)
	TransientRetry(stage string)
	CycleDuration(d time.Duration)
	Watermark(t time.Time)
}

type nopRecorder struct{}

func (nopRecorder) RunSeen()                    {}
func (nopRecorder) RunProcessed()               {}
func (nopRecorder) RunSkipped()                 {}
func (nopRecorder) ProcessingError(string)      {}
func (nopRecorder) TransientRetry(string)       {}
func (nopRecorder) CycleDuration(time.Duration) {}
func (nopRecorder) Watermark(time.Time)         {}

// State is the watermark of the latest-run strategy: the latest end time
// seen and the runs that ended exactly then.
type State struct {
	LatestSeenEndTime *time.Time
	Tabu              domain.IDSet
}

// Crawler moves runs from a source to a sink. It is not safe for
// concurrent use.
type Crawler struct {
	src       source.Source
	sink      sink.Sink
	flattener *flatten.Flattener
	enricher  enrichment.Enricher
	cfg       Config
	names     *regexp.Regexp
	budget    *retry.Budget
	metrics   Recorder
	log       logger.Logger
	now       func() time.Time
	sleep     retry.SleepFunc
	state     State
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithEnricher sets the plugin applied to matching runs.
func WithEnricher(e enrichment.Enricher) Option {
	return func(c *Crawler) {
		c.enricher = e
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Crawler) {
		c.metrics = r
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) {
		c.now = now
	}
}

// WithSleep replaces the wait between retries.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(c *Crawler) {
		c.sleep = sleep
	}
}

// WithState seeds the watermark used by MethodLatest.
func WithState(s State) Option {
	return func(c *Crawler) {
		c.state = s
	}
}

// New creates a Crawler.
func New(
	src source.Source,
	snk sink.Sink,
	flattener *flatten.Flattener,
	cfg Config,
	log logger.Logger,
	opts ...Option,
) (*Crawler, error) {
	cfg.SetDefaults()

	names, err := cfg.nameFilter()
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		src:       src,
		sink:      snk,
		flattener: flattener,
		cfg:       cfg,
		names:     names,
		metrics:   nopRecorder{},
		log:       log.With(logger.String("component", "crawler")),
		now:       time.Now,
		sleep:     retry.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.state.Tabu == nil {
		c.state.Tabu = domain.NewIDSet()
	}
	c.budget = retry.NewBudget(cfg.RetryAttempts, cfg.RetrySleep, c.sleep)

	switch cfg.Method {
	case MethodAll, MethodLatest:
	default:
		c.log.Warn("Crawler method not recognized, using the default",
			logger.String("method", string(cfg.Method)),
			logger.String("default", string(MethodAll)),
		)
		c.cfg.Method = MethodAll
	}
	c.log.Debug("Crawler configured", logger.String("method", string(c.cfg.Method)))
	return c, nil
}

// State returns the current watermark. The tabu set is shared, not copied.
func (c *Crawler) State() State {
	return c.state
}

// RetriesRemaining returns how many transient failures may still be retried.
func (c *Crawler) RetriesRemaining() int {
	return c.budget.Remaining()
}

// ProcessNewRuns runs one poll cycle with the configured method and
// returns the number of new runs.
func (c *Crawler) ProcessNewRuns(ctx context.Context) (int, error) {
	start := c.now()
	defer func() { c.metrics.CycleDuration(c.now().Sub(start)) }()

	if c.cfg.Method == MethodLatest {
		return c.ProcessSinceWatermark(ctx)
	}
	return c.ProcessAllNewRuns(ctx)
}

// ProcessAllNewRuns processes the window from now-Lookback to
// now-CompletionTimeout.
func (c *Crawler) ProcessAllNewRuns(ctx context.Context) (int, error) {
	now := c.now().UTC()
	return c.ProcessWindow(ctx, now.Add(-c.cfg.Lookback), now.Add(-c.cfg.CompletionTimeout))
}

// ProcessWindow processes [start, end) in steps of TimeStep, oldest first.
// An empty or inverted window processes nothing.
func (c *Crawler) ProcessWindow(ctx context.Context, start, end time.Time) (int, error) {
	if !start.Before(end) {
		c.log.Warn("Time window error",
			logger.Time("window_start", start),
			logger.Time("window_end", end),
		)
		return 0, nil
	}

	processingStart := c.now()
	total := 0
	step := 0
	c.log.Info("Starting processing of time window",
		logger.Time("window_start", start),
		logger.Time("window_end", end),
	)

	for stepStart := start; stepStart.Before(end); {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		step++
		stepEnd := stepStart.Add(c.cfg.TimeStep)
		if stepEnd.After(end) {
			stepEnd = end
		}

		n, err := c.ProcessStep(ctx, stepStart, stepEnd)
		total += n
		if err != nil {
			return total, err
		}
		c.log.Debug("Step processed",
			logger.Int("step", step),
			logger.Time("step_start", stepStart),
			logger.Time("step_end", stepEnd),
			logger.Int("new_runs", n),
		)
		stepStart = stepEnd
	}

	c.log.Info("Time window processed",
		logger.Time("window_start", start),
		logger.Time("window_end", end),
		logger.Int("new_runs", total),
	)
	c.logRate(ctx, processingStart, total)
	return total, nil
}

// ProcessStep processes runs completed within [start, end] that the sink
// does not hold yet.
func (c *Crawler) ProcessStep(ctx context.Context, start, end time.Time) (int, error) {
	processingStart := c.now()
	log := c.log.With(logger.Time("step_start", start), logger.Time("step_end", end))
	log.Debug("Processing completed runs within the time step")

	processed, err := c.sink.ProcessedIDs(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("processed ids: %w", err)
	}

	runs, err := c.listCompleted(ctx, source.ListOptions{MinEnd: start, MaxEnd: end})
	if err != nil {
		return 0, err
	}

	matched, added := 0, 0
	for i := range runs {
		run := &runs[i]
		c.metrics.RunSeen()
		if !c.matches(run) {
			continue
		}
		matched++
		if processed.Has(run.ID) {
			c.metrics.RunSkipped()
			log.Debug("Skipping run processed before", logger.String("run_id", run.ID))
			continue
		}

		added++
		if procErr := c.processRun(ctx, run); procErr != nil {
			return added, procErr
		}
		if added%rateLogEvery == 0 {
			c.logRate(ctx, processingStart, added)
		}
	}

	log.Debug("Time step processed",
		logger.Int("total", len(runs)),
		logger.Int("matched", matched),
		logger.Int("new", added),
	)
	if added > 0 {
		c.logRate(ctx, processingStart, added)
	}
	return added, nil
}

// ProcessSinceWatermark processes runs that ended after the latest seen end
// time, skipping the runs that tied with it last time.
//
// A failed cycle leaves the state as it was, so the next cycle lists the
// same runs again.
//
// Deprecated: use ProcessAllNewRuns; this misses runs completing out of order.
func (c *Crawler) ProcessSinceWatermark(ctx context.Context) (_ int, err error) {
	processingStart := c.now()
	maxEnd := processingStart.UTC().Add(-c.cfg.CompletionTimeout)

	opts := source.ListOptions{MaxEnd: maxEnd}
	if c.state.LatestSeenEndTime != nil {
		opts.MinEnd = *c.state.LatestSeenEndTime
	}
	c.log.Info("Fetching new runs",
		logger.Time("min_end", opts.MinEnd),
		logger.Time("max_end", maxEnd),
	)

	runs, err := c.listCompleted(ctx, opts)
	if err != nil {
		return 0, err
	}

	previous := c.state
	previousTabu := c.state.Tabu
	nextTabu := domain.NewIDSet()
	fresh, matched := 0, 0
	defer func() {
		if err != nil {
			c.state = previous
		} else {
			c.state.Tabu = nextTabu
		}
		if c.state.LatestSeenEndTime != nil {
			c.metrics.Watermark(*c.state.LatestSeenEndTime)
		}
	}()

	for i := range runs {
		run := &runs[i]
		c.metrics.RunSeen()
		c.advanceWatermark(run, nextTabu)

		if previousTabu.Has(run.ID) {
			c.metrics.RunSkipped()
			continue
		}
		fresh++
		if !c.matches(run) {
			continue
		}
		matched++
		if procErr := c.processRun(ctx, run); procErr != nil {
			return fresh, procErr
		}
		if matched%rateLogEvery == 0 {
			c.logRate(ctx, processingStart, matched)
		}
	}

	c.log.Info("Iteration finished",
		logger.Int("new_runs", fresh),
		logger.Int("matching_runs", matched),
	)
	if matched > 0 {
		c.logRate(ctx, processingStart, matched)
	}
	return fresh, nil
}

// advanceWatermark moves the latest seen end time forward. Runs ending at
// the new watermark go into tabu.
func (c *Crawler) advanceWatermark(run *domain.Run, tabu domain.IDSet) {
	for _, end := range run.EndTimes() {
		latest := c.state.LatestSeenEndTime
		switch {
		case latest == nil || end.After(*latest):
			t := end
			c.state.LatestSeenEndTime = &t
			clear(tabu)
			tabu.Add(run.ID)
		case end.Equal(*latest):
			tabu.Add(run.ID)
		}
	}
}

func (c *Crawler) matches(run *domain.Run) bool {
	return c.names == nil || c.names.MatchString(run.Name)
}

func (c *Crawler) logRate(ctx context.Context, start time.Time, runs int) {
	elapsed := c.now().Sub(start).Seconds()
	fields := []logger.Field{
		logger.Int("runs", runs),
		logger.Float64("seconds", elapsed),
	}
	if elapsed > 0 {
		fields = append(fields, logger.Float64("runs_per_hour", float64(runs)*3600/elapsed))
	}
	c.log.Info("Processing rate", fields...)
	c.sink.LogIndexStats(ctx)
}
