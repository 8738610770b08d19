package enceladus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/AbsaOSS/spot/internal/domain"
	"github.com/AbsaOSS/spot/internal/enrichment"
	"github.com/AbsaOSS/spot/internal/flatten"
	"github.com/AbsaOSS/spot/internal/logger"
)

// Keys under app_specific_data.
const (
	KeyClassification = "classification"
	KeyTag            = "tag"
	KeyRun            = "enceladus_run"
)

// Menas date layouts.
const (
	menasDateTimeLayout     = "02-01-2006 15:04:05 -0700"
	menasDateTimeNoTZLayout = "02-01-2006 15:04:05"
	menasDateLayout         = "02-01-2006"
)

// RunFetcher looks up Menas run documents by Spark application id.
type RunFetcher interface {
	RunsBySparkAppID(ctx context.Context, appID string) ([]map[string]any, error)
}

// Enricher attaches classification and Menas runs to Enceladus runs.
type Enricher struct {
	menas RunFetcher
	loc   *time.Location
	log   logger.Logger
}

var _ enrichment.Enricher = (*Enricher)(nil)

// New creates an Enricher. Menas times without an offset are read in loc;
// nil means UTC.
func New(menas RunFetcher, loc *time.Location, log logger.Logger) *Enricher {
	if loc == nil {
		loc = time.UTC
	}
	return &Enricher{
		menas: menas,
		loc:   loc,
		log:   log.With(logger.String("component", "enceladus")),
	}
}

// IsMatchingRun reports whether run's name classifies as an Enceladus job.
func (e *Enricher) IsMatchingRun(run *domain.Run) bool {
	return IsEnceladusRun(run.Name)
}

// Enrich sets the run's classification and tag, and gives every attempt its
// Menas run. Menas lists runs oldest first while attempts are newest first.
func (e *Enricher) Enrich(ctx context.Context, run *domain.Run) error {
	c, ok := Classify(run.Name)
	if !ok {
		return nil
	}
	if run.AppSpecificData == nil {
		run.AppSpecificData = make(map[string]any)
	}
	run.AppSpecificData[KeyClassification] = c.Map()
	run.AppSpecificData[KeyTag] = c.Tag()

	runs, err := e.matchingRuns(ctx, run.ID, c)
	if err != nil {
		return err
	}
	if len(runs) != len(run.Attempts) {
		e.log.Error("Menas runs and attempts mismatch",
			logger.String("run_id", run.ID),
			logger.String("name", run.Name),
			logger.Int("menas_runs", len(runs)),
			logger.Int("attempts", len(run.Attempts)),
		)
	}

	for i := range run.Attempts {
		var matched map[string]any
		if i < len(runs) {
			matched = runs[len(runs)-1-i]
		}
		a := &run.Attempts[i]
		if a.AppSpecificData == nil {
			a.AppSpecificData = make(map[string]any)
		}
		a.AppSpecificData[KeyRun] = matched
	}
	return nil
}

// Aggregate drops the bulky control measure checkpoints before flattening.
func (e *Enricher) Aggregate(run *domain.Run) error {
	for i := range run.Attempts {
		attached, _ := run.Attempts[i].AppSpecificData[KeyRun].(map[string]any)
		if cm, ok := attached["controlMeasure"].(map[string]any); ok {
			delete(cm, "checkpoints")
		}
	}
	return nil
}

// PostAggregate leaves flat documents unchanged.
func (e *Enricher) PostAggregate(*flatten.Document) error {
	return nil
}

func (e *Enricher) matchingRuns(ctx context.Context, appID string, c Classification) ([]map[string]any, error) {
	runs, err := e.menas.RunsBySparkAppID(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("menas runs of %s: %w", appID, err)
	}
	if len(runs) == 0 {
		e.log.Warn("Menas run document not found", logger.String("run_id", appID))
		return nil, nil
	}

	matched := make([]map[string]any, 0, len(runs))
	for _, raw := range runs {
		var r menasRun
		if decodeErr := decodeRun(raw, &r); decodeErr != nil {
			e.log.Warn("Unreadable Menas run document",
				logger.String("run_id", appID),
				logger.Error(decodeErr),
			)
			continue
		}
		if !e.matches(&r, appID, c) {
			e.log.Warn("Menas run does not match Spark application",
				logger.String("unique_id", r.UniqueID),
				logger.String("run_id", appID),
			)
			continue
		}
		castAdditionalInfo(raw)
		e.normalizeTimes(raw)
		matched = append(matched, raw)
	}

	switch {
	case len(matched) == 0:
		e.log.Warn("No matching Menas run documents", logger.String("run_id", appID))
	case len(matched) > 1:
		e.log.Warn("Multiple Menas run documents", logger.String("run_id", appID), logger.Int("count", len(matched)))
	}
	return matched, nil
}

type menasRun struct {
	UniqueID       string `mapstructure:"uniqueId"`
	Dataset        string `mapstructure:"dataset"`
	DatasetVersion int64  `mapstructure:"datasetVersion"`
	ControlMeasure struct {
		Metadata struct {
			Version        int64             `mapstructure:"version"`
			AdditionalInfo map[string]string `mapstructure:"additionalInfo"`
		} `mapstructure:"metadata"`
	} `mapstructure:"controlMeasure"`
}

func decodeRun(raw map[string]any, out *menasRun) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (e *Enricher) matches(r *menasRun, appID string, c Classification) bool {
	info := r.ControlMeasure.Metadata.AdditionalInfo

	var runAppID string
	switch c.Type {
	case TypeStandardization:
		runAppID = info["std_application_id"]
	case TypeConformance:
		runAppID = info["conform_application_id"]
	}

	checks := []struct {
		name        string
		left, right string
	}{
		{"dataset", r.Dataset, c.Dataset},
		{"dataset_version", strconv.FormatInt(r.DatasetVersion, 10), c.DatasetVersion},
		{"info_version", strconv.FormatInt(r.ControlMeasure.Metadata.Version, 10), c.InfoVersion},
		{"app_version", info["std_enceladus_version"], c.AppVersion},
		{"application_id", runAppID, appID},
	}
	for _, chk := range checks {
		if chk.left != chk.right {
			e.log.Debug("Menas value mismatch",
				logger.String("field", chk.name),
				logger.String("menas", chk.left),
				logger.String("spark", chk.right),
			)
			return false
		}
	}
	return true
}

func metadataOf(raw map[string]any) map[string]any {
	cm, _ := raw["controlMeasure"].(map[string]any)
	md, _ := cm["metadata"].(map[string]any)
	return md
}

func castAdditionalInfo(raw map[string]any) {
	info, _ := metadataOf(raw)["additionalInfo"].(map[string]any)
	for k, v := range info {
		if s, ok := v.(string); ok {
			info[k] = CastValue(s)
		}
	}
}

// normalizeTimes rewrites Menas dates as RFC 3339 so they index as dates.
func (e *Enricher) normalizeTimes(raw map[string]any) {
	if s, ok := raw["startDateTime"].(string); ok {
		if t, parsed := e.parseMenasTime(s); parsed {
			raw["startDateTime"] = t.UTC().Format(time.RFC3339)
		}
	}
	md := metadataOf(raw)
	if s, ok := md["informationDate"].(string); ok {
		if t, err := time.Parse(menasDateLayout, s); err == nil {
			md["informationDate"] = t.Format(time.DateOnly)
		}
	}
}

func (e *Enricher) parseMenasTime(s string) (time.Time, bool) {
	if t, err := time.Parse(menasDateTimeLayout, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(menasDateTimeNoTZLayout, s, e.loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
