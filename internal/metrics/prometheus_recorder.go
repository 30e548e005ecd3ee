package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry *prom.Registry

	stageDuration     *prom.HistogramVec
	stageResults      *prom.CounterVec
	buildDuration     prom.Histogram
	buildOutcome      *prom.CounterVec
	documentsLoaded   prom.Gauge
	pagesWritten      prom.Gauge
	permalinkWarnings prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}

	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "pressgen",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pressgen",
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "pressgen",
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pressgen",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.documentsLoaded = prom.NewGauge(prom.GaugeOpts{
		Namespace: "pressgen",
		Name:      "documents_loaded",
		Help:      "Documents loaded in the last build",
	})
	pr.pagesWritten = prom.NewGauge(prom.GaugeOpts{
		Namespace: "pressgen",
		Name:      "pages_written",
		Help:      "Pages emitted by the last build",
	})
	pr.permalinkWarnings = prom.NewCounter(prom.CounterOpts{
		Namespace: "pressgen",
		Name:      "permalink_warnings_total",
		Help:      "Unresolved permalink placeholders substituted with fallbacks",
	})

	reg.MustRegister(
		pr.stageDuration,
		pr.stageResults,
		pr.buildDuration,
		pr.buildOutcome,
		pr.documentsLoaded,
		pr.pagesWritten,
		pr.permalinkWarnings,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage, result string) {
	p.stageResults.WithLabelValues(stage, result).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetDocumentsLoaded(n int) {
	p.documentsLoaded.Set(float64(n))
}

func (p *PrometheusRecorder) SetPagesWritten(n int) {
	p.pagesWritten.Set(float64(n))
}

func (p *PrometheusRecorder) IncPermalinkWarnings(n int) {
	p.permalinkWarnings.Add(float64(n))
}

// Handler returns the HTTP handler exposing the registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
