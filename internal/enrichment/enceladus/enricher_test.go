package enceladus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/enrichment/enceladus"
	"github.com/AbsaOSS/spot/internal/logger"
)

type fakeFetcher struct {
	runs []map[string]any
	err  error
}

func (f *fakeFetcher) RunsBySparkAppID(context.Context, string) ([]map[string]any, error) {
	return f.runs, f.err
}

const stdName = "Standardisation 2.1.0 sales 3 2020-01-31 1"

func menasRun(uniqueID, appID, startDateTime string) map[string]any {
	return map[string]any{
		"uniqueId":       uniqueID,
		"dataset":        "sales",
		"datasetVersion": float64(3),
		"startDateTime":  startDateTime,
		"controlMeasure": map[string]any{
			"metadata": map[string]any{
				"version":         float64(1),
				"informationDate": "31-01-2020",
				"additionalInfo": map[string]any{
					"std_enceladus_version": "2.1.0",
					"std_application_id":    appID,
					"std_record_count":      "1500",
				},
			},
			"checkpoints": []any{map[string]any{"name": "source"}},
		},
	}
}

func TestEnricher_IsMatchingRun(t *testing.T) {
	e := enceladus.New(&fakeFetcher{}, nil, logger.NewNop())

	assert.True(t, e.IsMatchingRun(&domain.Run{Name: stdName}))
	assert.False(t, e.IsMatchingRun(&domain.Run{Name: "etl job"}))
}

func TestEnricher_Enrich(t *testing.T) {
	older := menasRun("u-old", "app-1", "04-12-2020 13:45:01 +0200")
	newer := menasRun("u-new", "app-1", "05-12-2020 08:00:00")
	other := menasRun("u-other", "app-2", "05-12-2020 08:00:00")
	fetcher := &fakeFetcher{runs: []map[string]any{older, other, newer}}

	loc := time.FixedZone("CET", 3600)
	e := enceladus.New(fetcher, loc, logger.NewNop())
	run := &domain.Run{
		ID:       "app-1",
		Name:     stdName,
		Attempts: []domain.Attempt{{AttemptID: "2"}, {AttemptID: "1"}},
	}

	require.NoError(t, e.Enrich(context.Background(), run))

	assert.Equal(t, "standardization_2.1.0_sales_3", run.AppSpecificData[enceladus.KeyTag])
	cls := run.AppSpecificData[enceladus.KeyClassification].(map[string]any)
	assert.Equal(t, int64(3), cls["dataset_version"])

	latest := run.Attempts[0].AppSpecificData[enceladus.KeyRun].(map[string]any)
	first := run.Attempts[1].AppSpecificData[enceladus.KeyRun].(map[string]any)
	assert.Equal(t, "u-new", latest["uniqueId"])
	assert.Equal(t, "u-old", first["uniqueId"])

	assert.Equal(t, "2020-12-04T11:45:01Z", first["startDateTime"])
	assert.Equal(t, "2020-12-05T07:00:00Z", latest["startDateTime"])

	md := first["controlMeasure"].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, "2020-01-31", md["informationDate"])
	info := md["additionalInfo"].(map[string]any)
	assert.Equal(t, int64(1500), info["std_record_count"])
	assert.Equal(t, "2.1.0", info["std_enceladus_version"])
}

func TestEnricher_EnrichMoreAttemptsThanRuns(t *testing.T) {
	e := enceladus.New(&fakeFetcher{runs: []map[string]any{menasRun("u1", "app-1", "")}}, nil, logger.NewNop())
	run := &domain.Run{ID: "app-1", Name: stdName, Attempts: []domain.Attempt{{AttemptID: "2"}, {AttemptID: "1"}}}

	require.NoError(t, e.Enrich(context.Background(), run))

	assert.NotNil(t, run.Attempts[0].AppSpecificData[enceladus.KeyRun])
	assert.Nil(t, run.Attempts[1].AppSpecificData[enceladus.KeyRun])
}

func TestEnricher_EnrichConformanceUsesConformApplicationID(t *testing.T) {
	r := menasRun("u1", "std-app", "")
	info := r["controlMeasure"].(map[string]any)["metadata"].(map[string]any)["additionalInfo"].(map[string]any)
	info["conform_application_id"] = "app-9"

	e := enceladus.New(&fakeFetcher{runs: []map[string]any{r}}, nil, logger.NewNop())
	run := &domain.Run{
		ID:       "app-9",
		Name:     "Dynamic Conformance 2.1.0 sales 3 2020-01-31 1",
		Attempts: []domain.Attempt{{}},
	}

	require.NoError(t, e.Enrich(context.Background(), run))
	assert.NotNil(t, run.Attempts[0].AppSpecificData[enceladus.KeyRun])
}

func TestEnricher_EnrichPropagatesFetchError(t *testing.T) {
	fetchErr := errors.New("menas down")
	e := enceladus.New(&fakeFetcher{err: fetchErr}, nil, logger.NewNop())

	err := e.Enrich(context.Background(), &domain.Run{ID: "app-1", Name: stdName})
	require.ErrorIs(t, err, fetchErr)
}

func TestEnricher_AggregateDropsCheckpoints(t *testing.T) {
	r := menasRun("u1", "app-1", "")
	run := &domain.Run{Attempts: []domain.Attempt{
		{AppSpecificData: map[string]any{enceladus.KeyRun: r}},
		{AppSpecificData: map[string]any{enceladus.KeyRun: map[string]any(nil)}},
		{},
	}}

	e := enceladus.New(&fakeFetcher{}, nil, logger.NewNop())
	require.NoError(t, e.Aggregate(run))

	cm := r["controlMeasure"].(map[string]any)
	assert.NotContains(t, cm, "checkpoints")
	assert.Contains(t, cm, "metadata")
}
