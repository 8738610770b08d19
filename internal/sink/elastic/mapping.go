package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/AbsaOSS/spot/internal/logger"
)

// nestedFields keep per-element structure so range queries on attempts
// match within a single attempt.
var nestedFields = []string{"attempts", "allexecutors", "stages", "memoryMetrics"}

// objectFields are forced to plain objects.
var objectFields = []string{"environment", "runtime", "sparkProperties"}

func dynamicMapping() map[string]any {
	templates := make([]map[string]any, 0, len(nestedFields)+len(objectFields))
	add := func(name, typ string) {
		templates = append(templates, map[string]any{
			name: map[string]any{
				"match":   name,
				"mapping": map[string]any{"type": typ},
			},
		})
	}
	for _, f := range nestedFields {
		add(f, "nested")
	}
	for _, f := range objectFields {
		add(f, "object")
	}
	return map[string]any{
		"mappings": map[string]any{
			"dynamic_templates": templates,
		},
	}
}

// EnsureIndices creates the raw and aggregation indices with the dynamic
// templates, and the error index with default mappings, when missing.
func (s *Sink) EnsureIndices(ctx context.Context) error {
	mapping := dynamicMapping()
	for _, idx := range []struct {
		name    string
		mapping map[string]any
	}{
		{s.cfg.RawIndex, mapping},
		{s.cfg.AggIndex, mapping},
		{s.cfg.ErrIndex, nil},
	} {
		if err := s.ensureIndex(ctx, idx.name, idx.mapping); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) ensureIndex(ctx context.Context, name string, mapping map[string]any) error {
	exists, err := s.indexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	if exists {
		s.log.Debug("Index already exists", logger.String("index", name))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	opts := []func(*esapi.IndicesCreateRequest){s.client.Indices.Create.WithContext(ctx)}
	if mapping != nil {
		body, marshalErr := json.Marshal(mapping)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal index mapping: %w", marshalErr)
		}
		opts = append(opts, s.client.Indices.Create.WithBody(bytes.NewReader(body)))
	}

	res, err := s.client.Indices.Create(name, opts...)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer s.closeBody(res, name)

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		// Lost a creation race with another crawler.
		if res.StatusCode == http.StatusBadRequest && bytes.Contains(raw, []byte("resource_already_exists_exception")) {
			return nil
		}
		return fmt.Errorf("failed to create index %s: [%d] %s", name, res.StatusCode, raw)
	}

	s.log.Info("Created index", logger.String("index", name))
	return nil
}

func (s *Sink) indexExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	res, err := s.client.Indices.Exists([]string{name}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer s.closeBody(res, name)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status checking index %s: %s", name, res.Status())
	}
}
