package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/AbsaOSS/spot/internal/logger"
	"github.com/AbsaOSS/spot/internal/sink"
)

type statsResponse struct {
	Indices map[string]struct {
		Primaries struct {
			Docs struct {
				Count int64 `json:"count"`
			} `json:"docs"`
			Store struct {
				SizeInBytes int64 `json:"size_in_bytes"`
			} `json:"store"`
		} `json:"primaries"`
	} `json:"indices"`
}

// IndexStats returns primary document counts and sizes of the raw and
// aggregation indices. Missing indices are skipped with a warning.
func (s *Sink) IndexStats(ctx context.Context) ([]sink.IndexStat, error) {
	var stats []sink.IndexStat
	for _, name := range []string{s.cfg.RawIndex, s.cfg.AggIndex} {
		exists, err := s.indexExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			s.log.Warn("Index does not exist", logger.String("index", name))
			continue
		}
		st, err := s.indexStats(ctx, name)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *Sink) indexStats(ctx context.Context, name string) (sink.IndexStat, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	res, err := s.client.Indices.Stats(
		s.client.Indices.Stats.WithContext(ctx),
		s.client.Indices.Stats.WithIndex(name),
	)
	if err != nil {
		return sink.IndexStat{}, fmt.Errorf("failed to get index stats: %w", err)
	}
	defer s.closeBody(res, name)

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return sink.IndexStat{}, fmt.Errorf("index stats error: [%d] %s", res.StatusCode, raw)
	}

	var out statsResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&out); decodeErr != nil {
		return sink.IndexStat{}, fmt.Errorf("error decoding index stats: %w", decodeErr)
	}
	idx, ok := out.Indices[name]
	if !ok {
		return sink.IndexStat{}, fmt.Errorf("index stats missing %s", name)
	}
	return sink.IndexStat{
		Name:      name,
		Docs:      idx.Primaries.Docs.Count,
		SizeBytes: idx.Primaries.Store.SizeInBytes,
	}, nil
}

// LogIndexStats logs IndexStats at debug level. Failures are logged, not returned.
func (s *Sink) LogIndexStats(ctx context.Context) {
	stats, err := s.IndexStats(ctx)
	if err != nil {
		s.log.Warn("Failed to read index stats", logger.Error(err))
		return
	}
	for _, st := range stats {
		s.log.Debug("Index stats",
			logger.String("index", st.Name),
			logger.Int64("count", st.Docs),
			logger.String("size", humanize.IBytes(uint64(max(st.SizeBytes, 0)))),
		)
	}
}
