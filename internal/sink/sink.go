// Package sink defines where crawled runs, their aggregations and processing
// errors are stored.
package sink

//go:generate mockgen -destination=../../testutils/mocks/sink/sink.go -package=sink github.com/AbsaOSS/spot/internal/sink Sink

import (
	"context"
	"errors"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/flatten"
)

// ErrFieldLimitExceeded is returned when the store rejects a document because
// its dynamic field limit is reached.
var ErrFieldLimitExceeded = errors.New("total fields limit exceeded")

// Sink stores crawl output. StoreRaw and StoreAggregate upsert by id.
type Sink interface {
	StoreRaw(ctx context.Context, run *domain.Run) error
	StoreAggregate(ctx context.Context, doc *flatten.Document) error
	StoreError(ctx context.Context, doc *domain.ErrorDocument) error
	// ProcessedIDs returns the ids of stored runs with an attempt that ended
	// within [minEnd, maxEnd].
	ProcessedIDs(ctx context.Context, minEnd, maxEnd time.Time) (domain.IDSet, error)
	// LatestWatermark returns the latest stored attempt end time and the ids
	// of the runs that ended exactly then. The time is nil if nothing is stored.
	LatestWatermark(ctx context.Context) (*time.Time, domain.IDSet, error)
	// LogIndexStats logs the size of each store.
	LogIndexStats(ctx context.Context)
}

// IndexStat is the size of one store.
type IndexStat struct {
	Name      string
	Docs      int64
	SizeBytes int64
}

// StatsReporter is implemented by sinks that can report their size.
type StatsReporter interface {
	IndexStats(ctx context.Context) ([]IndexStat, error)
}
