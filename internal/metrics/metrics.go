// Package metrics exports crawl metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AbsaOSS/spot/internal/crawler"
)

const namespace = "spot"

// Metrics holds the crawler's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	runsSeen         prometheus.Counter
	runsProcessed    prometheus.Counter
	runsSkipped      prometheus.Counter
	processingErrors *prometheus.CounterVec
	transientRetries *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	watermark        prometheus.Gauge
}

var _ crawler.Recorder = (*Metrics)(nil)

// New registers the metrics, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsSeen: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_seen_total",
			Help:      "Runs listed by the history server",
		}),
		runsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_processed_total",
			Help:      "Runs stored with their aggregations",
		}),
		runsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_skipped_total",
			Help:      "Runs skipped because they were processed before",
		}),
		processingErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processing_errors_total",
			Help:      "Failed processing attempts by stage",
		}, []string{"stage"}),
		transientRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transient_retries_total",
			Help:      "Retries after malformed history server responses, by stage",
		}, []string{"stage"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of poll cycles",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		watermark: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watermark_timestamp_seconds",
			Help:      "Latest run end time seen, as unix seconds",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RunSeen()      { m.runsSeen.Inc() }
func (m *Metrics) RunProcessed() { m.runsProcessed.Inc() }
func (m *Metrics) RunSkipped()   { m.runsSkipped.Inc() }

func (m *Metrics) ProcessingError(stage string) {
	m.processingErrors.WithLabelValues(stage).Inc()
}

func (m *Metrics) TransientRetry(stage string) {
	m.transientRetries.WithLabelValues(stage).Inc()
}

func (m *Metrics) CycleDuration(d time.Duration) {
	m.cycleDuration.Observe(d.Seconds())
}

func (m *Metrics) Watermark(t time.Time) {
	m.watermark.Set(float64(t.Unix()))
}
