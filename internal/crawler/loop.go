package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/retry"
)

// cycle runs one poll. A failed cycle is logged; the next one starts over.
func (c *Crawler) cycle(ctx context.Context) {
	n, err := c.ProcessNewRuns(ctx)
	switch {
	case err == nil:
		c.log.Info("Poll cycle finished", logger.Int("new_runs", n))
	case ctx.Err() != nil:
		c.log.Info("Poll cycle interrupted", logger.Int("new_runs", n))
	default:
		c.log.Error("Poll cycle failed", logger.Int("new_runs", n), logger.Error(err))
	}
	c.sink.LogIndexStats(ctx)
}

// Run polls until ctx is done, sleeping between cycles.
func (c *Crawler) Run(ctx context.Context, sleep time.Duration) error {
	c.log.Info("Starting crawler", logger.Duration("sleep", sleep))
	for {
		c.cycle(ctx)
		if err := c.sleep(ctx, sleep); err != nil {
			if errors.Is(err, retry.ErrContextCancelled) {
				c.log.Info("Crawler stopped")
				return ctx.Err()
			}
			return err
		}
	}
}

// RunScheduled polls on a cron schedule until ctx is done. A cycle still
// running when the next is due makes that one skip.
func (c *Crawler) RunScheduled(ctx context.Context, expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid crawler schedule %q: %w", expr, err)
	}

	cronLog := cronLogger{log: c.log}
	sched := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	sched.Schedule(schedule, cron.FuncJob(func() { c.cycle(ctx) }))

	c.log.Info("Starting scheduled crawler",
		logger.String("schedule", expr),
		logger.Time("next", schedule.Next(c.now())),
	)
	sched.Start()
	<-ctx.Done()

	<-sched.Stop().Done()
	c.log.Info("Crawler stopped")
	return ctx.Err()
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keyValueFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keyValueFields(keysAndValues), logger.Error(err))...)
}

func keyValueFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
