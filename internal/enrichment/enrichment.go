// Package enrichment defines plugins that attach domain-specific data to
// runs of a particular kind.
package enrichment

import (
	"context"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/flatten"
)

// Enricher is invoked around flattening for the runs it matches.
type Enricher interface {
	// IsMatchingRun reports whether the plugin applies to run.
	IsMatchingRun(run *domain.Run) bool
	// Enrich adds data to run before it is stored raw.
	Enrich(ctx context.Context, run *domain.Run) error
	// Aggregate prepares run for flattening.
	Aggregate(run *domain.Run) error
	// PostAggregate adjusts each flat document before it is stored.
	PostAggregate(doc *flatten.Document) error
}
