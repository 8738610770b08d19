package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/logger"
)

const attemptsEndTime = "attempts.endTime"

// pitKeepAlive must cover the gap between two id pages.
const pitKeepAlive = "1m"

var errPITExpired = errors.New("point in time expired while paging run ids")

type searchResponse struct {
	PitID string `json:"pit_id"`
	Hits  struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		Attempts struct {
			MaxEnd struct {
				Value *float64 `json:"value"`
			} `json:"max_end"`
		} `json:"attempts"`
	} `json:"aggregations"`
}

type searchHit struct {
	ID string `json:"_id"`
	// Sort is kept raw so search_after gets the exact values back.
	Sort []json.RawMessage `json:"sort"`
}

func endTimeRange(gte, lte any, format string) map[string]any {
	r := map[string]any{"gte": gte, "lte": lte}
	if format != "" {
		r["format"] = format
	}
	return map[string]any{
		"nested": map[string]any{
			"path": "attempts",
			"query": map[string]any{
				"range": map[string]any{attemptsEndTime: r},
			},
		},
	}
}

// ProcessedIDs returns the ids of raw runs having an attempt that ended in
// [minEnd, maxEnd]. A missing raw index yields an empty set.
func (s *Sink) ProcessedIDs(ctx context.Context, minEnd, maxEnd time.Time) (domain.IDSet, error) {
	ids, _, err := s.collectIDs(ctx, endTimeRange(
		minEnd.UTC().Format(time.RFC3339Nano),
		maxEnd.UTC().Format(time.RFC3339Nano),
		"",
	))
	return ids, err
}

// LatestWatermark returns the greatest attempt end time in the raw index and
// the ids of runs ending exactly then.
func (s *Sink) LatestWatermark(ctx context.Context) (*time.Time, domain.IDSet, error) {
	ids := domain.NewIDSet()
	query := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"attempts": map[string]any{
				"nested": map[string]any{"path": "attempts"},
				"aggs": map[string]any{
					"max_end": map[string]any{"max": map[string]any{"field": attemptsEndTime}},
				},
			},
		},
	}

	resp, found, err := s.search(ctx, s.cfg.RawIndex, query)
	if err != nil {
		return nil, nil, err
	}
	if !found || resp.Aggregations.Attempts.MaxEnd.Value == nil {
		return nil, ids, nil
	}

	millis := int64(*resp.Aggregations.Attempts.MaxEnd.Value)
	latest := time.UnixMilli(millis).UTC()

	ids, _, err = s.collectIDs(ctx, endTimeRange(millis, millis, "epoch_millis"))
	if err != nil {
		return nil, nil, err
	}
	return &latest, ids, nil
}

// collectIDs returns the ids of every raw run matching query, paging with
// search_after over a point in time. found is false when the raw index does
// not exist.
func (s *Sink) collectIDs(ctx context.Context, query map[string]any) (domain.IDSet, bool, error) {
	ids := domain.NewIDSet()

	pit, found, err := s.openPIT(ctx, s.cfg.RawIndex)
	if err != nil || !found {
		return ids, found, err
	}
	defer func() { s.closePIT(ctx, pit) }()

	var after []json.RawMessage
	for {
		body := map[string]any{
			"size":             s.cfg.IDPageSize,
			"_source":          false,
			"track_total_hits": false,
			"query":            query,
			"pit":              map[string]any{"id": pit, "keep_alive": pitKeepAlive},
			"sort":             []any{map[string]any{"_shard_doc": "asc"}},
		}
		if after != nil {
			body["search_after"] = after
		}

		resp, ok, searchErr := s.search(ctx, "", body)
		if searchErr != nil {
			return nil, false, searchErr
		}
		if !ok {
			return nil, false, errPITExpired
		}
		if resp.PitID != "" {
			pit = resp.PitID
		}

		hits := resp.Hits.Hits
		for _, h := range hits {
			ids.Add(h.ID)
		}
		if len(hits) < s.cfg.IDPageSize {
			return ids, true, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

func (s *Sink) openPIT(ctx context.Context, index string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	res, err := s.client.OpenPointInTime([]string{index}, pitKeepAlive,
		s.client.OpenPointInTime.WithContext(ctx),
	)
	if err != nil {
		return "", false, fmt.Errorf("error opening point in time: %w", err)
	}
	defer s.closeBody(res, index)

	if res.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if res.IsError() {
		return "", false, fmt.Errorf("open point in time error: %s", res.String())
	}

	var out struct {
		ID string `json:"id"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&out); decodeErr != nil {
		return "", false, fmt.Errorf("error decoding point in time: %w", decodeErr)
	}
	return out.ID, true, nil
}

// closePIT releases pit. Failures are logged; the point in time expires on
// its own after pitKeepAlive.
func (s *Sink) closePIT(ctx context.Context, pit string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RequestTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"id": pit})
	if err != nil {
		return
	}
	res, err := s.client.ClosePointInTime(
		s.client.ClosePointInTime.WithContext(ctx),
		s.client.ClosePointInTime.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		s.log.Warn("Failed to close point in time", logger.Error(err))
		return
	}
	defer s.closeBody(res, s.cfg.RawIndex)
	if res.IsError() {
		s.log.Warn("Failed to close point in time", logger.String("status", res.Status()))
	}
}

// search runs a query against index, or against the point in time in query
// when index is empty. found is false when the index or point in time does
// not exist.
func (s *Sink) search(ctx context.Context, index string, query map[string]any) (*searchResponse, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	body, err := json.Marshal(query)
	if err != nil {
		return nil, false, fmt.Errorf("error marshaling search query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithContext(ctx),
		s.client.Search.WithBody(bytes.NewReader(body)),
	}
	// A search over a point in time names no index.
	if index != "" {
		opts = append(opts, s.client.Search.WithIndex(index))
	}
	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, false, fmt.Errorf("error executing search: %w", err)
	}
	defer s.closeBody(res, index)

	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, false, fmt.Errorf("search error: [%d] %s", res.StatusCode, raw)
	}

	var out searchResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&out); decodeErr != nil {
		return nil, false, fmt.Errorf("error decoding search response: %w", decodeErr)
	}
	return &out, true, nil
}
