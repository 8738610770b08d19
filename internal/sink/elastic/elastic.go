// Package elastic stores crawl output in Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/elasticsearch"
	"github.com/AbsaOSS/spot/internal/flatten"
	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/sink"
)

const fieldLimitSetting = "index.mapping.total_fields.limit"

var fieldLimitPattern = regexp.MustCompile(`Limit of total fields \[(\d+)\]`)

// Sink implements sink.Sink on top of three indices: raw runs, per-attempt
// aggregations and processing errors.
type Sink struct {
	client *es.Client
	cfg    elasticsearch.Config
	log    logger.Logger
}

var (
	_ sink.Sink          = (*Sink)(nil)
	_ sink.StatsReporter = (*Sink)(nil)
)

// New creates a sink. Index names and timeouts come from cfg.
func New(client *es.Client, cfg elasticsearch.Config, log logger.Logger) *Sink {
	cfg.SetDefaults()
	return &Sink{
		client: client,
		cfg:    cfg,
		log:    log.With(logger.String("component", "elastic_sink")),
	}
}

// StoreRaw upserts the run under its id.
func (s *Sink) StoreRaw(ctx context.Context, run *domain.Run) error {
	return s.store(ctx, s.cfg.RawIndex, run.ID, run)
}

// StoreAggregate upserts the flat document under "{runId}-{attemptId}".
func (s *Sink) StoreAggregate(ctx context.Context, doc *flatten.Document) error {
	return s.store(ctx, s.cfg.AggIndex, doc.ID(), doc)
}

// StoreError indexes an error document, assigning a random id if it has none.
func (s *Sink) StoreError(ctx context.Context, doc *domain.ErrorDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return s.store(ctx, s.cfg.ErrIndex, doc.ID, doc)
}

func (s *Sink) store(ctx context.Context, index, id string, document any) error {
	if s.client == nil {
		return errors.New("elasticsearch client is not initialized")
	}

	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document for indexing: %w", err)
	}

	err = s.index(ctx, index, id, body)
	var limitErr *fieldLimitError
	if !errors.As(err, &limitErr) {
		return err
	}

	newLimit := limitErr.limit + s.cfg.FieldLimitIncrement
	s.log.Warn("Total fields limit reached, raising it",
		logger.String("index", index),
		logger.Int("limit", limitErr.limit),
		logger.Int("new_limit", newLimit),
	)
	if putErr := s.putFieldLimit(ctx, index, newLimit); putErr != nil {
		return fmt.Errorf("%w: %w", sink.ErrFieldLimitExceeded, putErr)
	}

	if retryErr := s.index(ctx, index, id, body); retryErr != nil {
		if errors.As(retryErr, &limitErr) {
			return fmt.Errorf("%w: index %s doc %s", sink.ErrFieldLimitExceeded, index, id)
		}
		return retryErr
	}
	return nil
}

func (s *Sink) index(ctx context.Context, index, id string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	res, err := s.client.Index(
		index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer s.closeBody(res, index)

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		if res.StatusCode == http.StatusBadRequest {
			if limit, ok := parseFieldLimit(raw); ok {
				return &fieldLimitError{limit: limit}
			}
		}
		s.log.Error("Elasticsearch returned error response",
			logger.String("index", index),
			logger.String("doc_id", id),
			logger.Int("status", res.StatusCode),
			logger.String("error", string(raw)),
		)
		return fmt.Errorf("elasticsearch error: [%d] %s", res.StatusCode, raw)
	}

	s.log.Debug("Document indexed",
		logger.String("index", index),
		logger.String("doc_id", id),
	)
	return nil
}

func (s *Sink) putFieldLimit(ctx context.Context, index string, limit int) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	body := fmt.Sprintf(`{%q:%d}`, fieldLimitSetting, limit)
	res, err := s.client.Indices.PutSettings(
		strings.NewReader(body),
		s.client.Indices.PutSettings.WithContext(ctx),
		s.client.Indices.PutSettings.WithIndex(index),
	)
	if err != nil {
		return fmt.Errorf("failed to update index settings: %w", err)
	}
	defer s.closeBody(res, index)

	if res.IsError() {
		return fmt.Errorf("failed to update index settings: %s", res.String())
	}
	return nil
}

func (s *Sink) closeBody(res *esapi.Response, index string) {
	if closeErr := res.Body.Close(); closeErr != nil {
		s.log.Error("Failed to close response body",
			logger.Error(closeErr),
			logger.String("index", index),
		)
	}
}

type fieldLimitError struct {
	limit int
}

func (e *fieldLimitError) Error() string {
	return fmt.Sprintf("limit of total fields [%d] exceeded", e.limit)
}

// parseFieldLimit extracts the current limit from a mapper rejection.
func parseFieldLimit(body []byte) (int, bool) {
	m := fieldLimitPattern.FindSubmatch(body)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, false
	}
	return n, true
}
