package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/flatten"
)

// Writer prints every document as one JSON line. It keeps no history, so
// every crawl cycle reprocesses its whole window.
type Writer struct {
	out io.Writer
}

// NewWriter returns a Writer on w, or on stdout when w is nil.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		w = os.Stdout
	}
	return &Writer{out: w}
}

type envelope struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Doc  any    `json:"doc"`
}

func (w *Writer) write(kind, id string, doc any) error {
	data, err := json.Marshal(envelope{Kind: kind, ID: id, Doc: doc})
	if err != nil {
		return fmt.Errorf("encode %s document: %w", kind, err)
	}
	if _, err := fmt.Fprintln(w.out, string(data)); err != nil {
		return fmt.Errorf("write %s document: %w", kind, err)
	}
	return nil
}

func (w *Writer) StoreRaw(_ context.Context, run *domain.Run) error {
	return w.write("raw", run.ID, run)
}

func (w *Writer) StoreAggregate(_ context.Context, doc *flatten.Document) error {
	return w.write("aggregate", doc.ID(), doc)
}

func (w *Writer) StoreError(_ context.Context, doc *domain.ErrorDocument) error {
	return w.write("error", doc.ID, doc)
}

func (w *Writer) ProcessedIDs(context.Context, time.Time, time.Time) (domain.IDSet, error) {
	return domain.IDSet{}, nil
}

func (w *Writer) LatestWatermark(context.Context) (*time.Time, domain.IDSet, error) {
	return nil, domain.IDSet{}, nil
}

func (w *Writer) LogIndexStats(context.Context) {}
