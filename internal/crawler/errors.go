package crawler

import (
	"errors"
	"fmt"

	"github.com/AbsaOSS/spot/internal/sink"
	"github.com/AbsaOSS/spot/internal/source"
)

// RunProcessingError is returned when processing a run fails and failures
// are not skipped.
type RunProcessingError struct {
	RunID string
	Stage string
	Err   error
}

func (e *RunProcessingError) Error() string {
	return fmt.Sprintf("process %s of run %s: %v", e.Stage, e.RunID, e.Err)
}

func (e *RunProcessingError) Unwrap() error {
	return e.Err
}

// errorType names err in error documents.
func errorType(err error) string {
	var statusErr *source.StatusError
	switch {
	case errors.Is(err, source.ErrTransientBackend):
		return "TransientBackendError"
	case errors.Is(err, source.ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, sink.ErrFieldLimitExceeded):
		return "SchemaExpansionError"
	case errors.As(err, &statusErr):
		return "StatusError"
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
