// Package metrics exposes build pass counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hbslint"

// Recorder holds the collectors for build passes. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	gatherer    prometheus.Gatherer
	passes      *prometheus.CounterVec
	files       *prometheus.CounterVec
	diagnostics prometheus.Counter
	lastErrors  prometheus.Gauge
	duration    prometheus.Histogram
}

// NewRecorder registers collectors with a new registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		gatherer: reg,
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_passes_total",
			Help:      "Build passes run, by outcome.",
		}, []string{"outcome"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Template files handled, by whether the result came from the cache.",
		}, []string{"cached"}),
		diagnostics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Build-failing diagnostics reported across passes.",
		}),
		lastErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_pass_diagnostics",
			Help:      "Build-failing diagnostics in the most recent pass.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_pass_duration_seconds",
			Help:      "Wall time of build passes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(r.passes, r.files, r.diagnostics, r.lastErrors, r.duration)
	return r
}

// PassOutcome is the result of one pass as seen by metrics.
type PassOutcome struct {
	Files       int
	CacheHits   int
	Diagnostics int
	Duration    time.Duration
	Failed      bool
}

// ObservePass records one finished pass.
func (r *Recorder) ObservePass(o PassOutcome) {
	if r == nil {
		return
	}
	outcome := "ok"
	if o.Failed {
		outcome = "error"
	}
	r.passes.WithLabelValues(outcome).Inc()
	r.files.WithLabelValues("true").Add(float64(o.CacheHits))
	r.files.WithLabelValues("false").Add(float64(o.Files - o.CacheHits))
	r.diagnostics.Add(float64(o.Diagnostics))
	r.lastErrors.Set(float64(o.Diagnostics))
	r.duration.Observe(o.Duration.Seconds())
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
