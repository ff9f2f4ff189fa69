package observability

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics counts what the pipeline did with each line and page.
type Metrics interface {
	ObserveLine(outcome string)
	ObserveRecords(n int)
	ObservePage(status string)
	// ObservePageDuration is only called for pages that reached OCR.
	ObservePageDuration(d time.Duration)
}

// Label values for ObservePage.
const (
	PageStatusOK     = "ok"
	PageStatusFailed = "failed"
)

type NopMetrics struct{}

func (NopMetrics) ObserveLine(string)                {}
func (NopMetrics) ObserveRecords(int)                {}
func (NopMetrics) ObservePage(string)                {}
func (NopMetrics) ObservePageDuration(time.Duration) {}

// PrometheusMetrics records pipeline counters on its own registry so several
// pipelines in one process do not collide.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	lines    *prometheus.CounterVec
	records  prometheus.Counter
	pages    *prometheus.CounterVec
	pageTime prometheus.Histogram
}

// NewPrometheusMetrics registers the packlist collectors on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "packlist",
			Name:      "lines_total",
			Help:      "OCR lines seen, by extraction outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "packlist",
			Name:      "records_total",
			Help:      "Shipment records kept after filtering.",
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "packlist",
			Name:      "pages_total",
			Help:      "Pages processed, by status.",
		}, []string{"status"}),
		pageTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "packlist",
			Name:      "page_duration_seconds",
			Help:      "Time spent on OCR and parsing per page.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	m.registry.MustRegister(m.lines, m.records, m.pages, m.pageTime)
	return m
}

func (m *PrometheusMetrics) ObserveLine(outcome string) { m.lines.WithLabelValues(outcome).Inc() }
func (m *PrometheusMetrics) ObserveRecords(n int)       { m.records.Add(float64(n)) }

func (m *PrometheusMetrics) ObservePage(status string) { m.pages.WithLabelValues(status).Inc() }

func (m *PrometheusMetrics) ObservePageDuration(d time.Duration) { m.pageTime.Observe(d.Seconds()) }

// WriteText dumps all metrics in the Prometheus text exposition format.
func (m *PrometheusMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
