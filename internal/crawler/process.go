package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/retry"
	"github.com/AbsaOSS/spot/internal/source"
)

const unknownRunID = "n/a"

// listCompleted lists runs, retrying transient backend errors.
func (c *Crawler) listCompleted(ctx context.Context, opts source.ListOptions) ([]domain.Run, error) {
	var runs []domain.Run
	err := c.withRetry(ctx, domain.StageListing, unknownRunID, func() error {
		var listErr error
		runs, listErr = c.src.ListCompleted(ctx, opts)
		return listErr
	})
	if err != nil {
		return nil, &RunProcessingError{RunID: unknownRunID, Stage: domain.StageListing, Err: err}
	}
	return runs, nil
}

// processRun stores a run and, if that succeeded, its aggregations.
func (c *Crawler) processRun(ctx context.Context, run *domain.Run) error {
	host := c.src.Host()
	run.HistoryHost = host
	run.Spot = &domain.ProcessingInfo{TimeProcessed: c.now().UTC(), HistoryHost: host}

	stored, err := c.processRaw(ctx, run)
	if err != nil || !stored {
		return err
	}
	if err := c.processAggregations(ctx, run); err != nil {
		return err
	}
	c.metrics.RunProcessed()
	return nil
}

// processRaw fetches the run's details, enriches it and stores it raw.
// It reports false when the run failed and failures are skipped.
func (c *Crawler) processRaw(ctx context.Context, run *domain.Run) (bool, error) {
	err := c.withRetry(ctx, domain.StageRaw, run.ID, func() error {
		if err := source.FetchDetails(ctx, c.src, run, c.cfg.StageStatus); err != nil {
			return err
		}
		if c.enricher != nil && c.enricher.IsMatchingRun(run) {
			if err := c.enricher.Enrich(ctx, run); err != nil {
				return fmt.Errorf("enrich: %w", err)
			}
		}
		return c.sink.StoreRaw(ctx, run)
	})
	return c.settle(run.ID, domain.StageRaw, err)
}

// processAggregations flattens the run and stores one document per attempt.
func (c *Crawler) processAggregations(ctx context.Context, run *domain.Run) error {
	err := c.storeAggregations(ctx, run)
	if err != nil {
		c.recordError(ctx, run.ID, domain.StageAggregations, err)
	}
	_, err = c.settle(run.ID, domain.StageAggregations, err)
	return err
}

func (c *Crawler) storeAggregations(ctx context.Context, run *domain.Run) error {
	enrich := c.enricher != nil && c.enricher.IsMatchingRun(run)
	if enrich {
		if err := c.enricher.Aggregate(run); err != nil {
			return fmt.Errorf("enrichment aggregate: %w", err)
		}
	}
	for doc := range c.flattener.Flatten(run) {
		if enrich {
			if err := c.enricher.PostAggregate(doc); err != nil {
				return fmt.Errorf("enrichment post-aggregate: %w", err)
			}
		}
		if err := c.sink.StoreAggregate(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// settle applies the skip policy to a failure already recorded.
func (c *Crawler) settle(runID, stage string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if c.cfg.SkipExceptions && !isFatal(err) {
		return false, nil
	}
	return false, &RunProcessingError{RunID: runID, Stage: stage, Err: err}
}

// isFatal reports errors that end the cycle even when failures are skipped.
func isFatal(err error) bool {
	return errors.Is(err, retry.ErrBudgetExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// withRetry runs fn, recording each failure. Transient backend failures are
// retried after RetrySleep while the budget lasts; any success refills it.
func (c *Crawler) withRetry(ctx context.Context, stage, runID string, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			c.budget.Reset()
			return nil
		}
		c.recordError(ctx, runID, stage, err)
		if !errors.Is(err, source.ErrTransientBackend) {
			return err
		}

		log := c.log.With(logger.String("run_id", runID), logger.String("stage", stage))
		log.Error("History server responded with a malformed body, it may need a restart", logger.Error(err))
		if c.budget.Remaining() == 0 {
			log.Error("No retry attempts left")
			return fmt.Errorf("%w: %w", retry.ErrBudgetExhausted, err)
		}
		log.Warn("Will retry",
			logger.Duration("delay", c.budget.Delay()),
			logger.Int("retries_remaining", c.budget.Remaining()),
		)
		c.metrics.TransientRetry(stage)
		if waitErr := c.budget.Wait(ctx); waitErr != nil {
			return waitErr
		}
	}
}

// recordError logs a failure and stores an error document for it.
func (c *Crawler) recordError(ctx context.Context, runID, stage string, err error) {
	c.metrics.ProcessingError(stage)
	c.log.Warn("Failed to process run",
		logger.String("run_id", runID),
		logger.String("stage", stage),
		logger.Error(err),
	)

	doc := &domain.ErrorDocument{
		ID: uuid.NewString(),
		Spot: domain.ErrorInfo{
			TimeProcessed: c.now().UTC(),
			SparkAppID:    runID,
			HistoryHost:   c.src.Host(),
			Error: domain.ErrorDetail{
				Type:    errorType(err),
				Message: err.Error(),
				Stage:   stage,
			},
		},
	}
	if storeErr := c.sink.StoreError(ctx, doc); storeErr != nil {
		c.log.Error("Failed to store error document",
			logger.String("run_id", runID),
			logger.Error(storeErr),
		)
	}
}
