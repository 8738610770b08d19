// Package source defines the history backend the crawler reads runs from.
package source

//go:generate mockgen -destination=../../testutils/mocks/source/source.go -package=source github.com/AbsaOSS/spot/internal/source Source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
)

var (
	// ErrTransientBackend marks an empty or malformed response body, which
	// the history server returns while it is unhealthy.
	ErrTransientBackend = errors.New("transient backend error")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// ListOptions bound a listing of completed runs. Zero times are unbounded;
// Limit 0 means no limit.
type ListOptions struct {
	MinEnd time.Time
	MaxEnd time.Time
	Limit  int
}

// Source is a history backend.
type Source interface {
	// ListCompleted returns completed runs ordered oldest first.
	ListCompleted(ctx context.Context, opts ListOptions) ([]domain.Run, error)
	// Environment returns the runtime configuration of an attempt.
	Environment(ctx context.Context, runID, attemptID string) (*domain.Environment, error)
	// Executors returns every executor, including the driver, of an attempt.
	Executors(ctx context.Context, runID, attemptID string) ([]domain.Executor, error)
	// Stages returns the stages of an attempt, optionally filtered by status.
	Stages(ctx context.Context, runID, attemptID, status string) ([]domain.Stage, error)
	// Host identifies the backend in stored documents.
	Host() string
}

// FetchDetails fills in the executors, stages and environment of every
// attempt of run.
func FetchDetails(ctx context.Context, src Source, run *domain.Run, stageStatus string) error {
	for i := range run.Attempts {
		attempt := &run.Attempts[i]

		executors, err := src.Executors(ctx, run.ID, attempt.AttemptID)
		if err != nil {
			return fmt.Errorf("fetch executors of %s: %w", run.ID, err)
		}
		stages, err := src.Stages(ctx, run.ID, attempt.AttemptID, stageStatus)
		if err != nil {
			return fmt.Errorf("fetch stages of %s: %w", run.ID, err)
		}
		env, err := src.Environment(ctx, run.ID, attempt.AttemptID)
		if err != nil {
			return fmt.Errorf("fetch environment of %s: %w", run.ID, err)
		}

		attempt.Executors = executors
		attempt.Stages = stages
		attempt.Environment = env
	}
	return nil
}
