// Package metrics records regeneration passes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/ploog/pkg/core"
)

const namespace = "ploog"

// Outcome labels of ploog_passes_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PrometheusRecorder implements core.Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry     *prom.Registry
	passes       *prom.CounterVec
	passDuration prom.Histogram
	pagesWritten prom.Counter
	watchEvents  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the ploog metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		passes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Regeneration passes by outcome",
		}, []string{"outcome"}),
		passDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of full regeneration passes",
			Buckets:   prom.DefBuckets,
		}),
		pagesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_written_total",
			Help:      "Pages written by successful passes",
		}),
		watchEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Filesystem events that triggered a pass",
		}, []string{"type"}),
	}
	reg.MustRegister(pr.passes, pr.passDuration, pr.pagesWritten, pr.watchEvents)
	return pr
}

func (p *PrometheusRecorder) ObservePass(d time.Duration, err error) {
	if p == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	p.passes.WithLabelValues(outcome).Inc()
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddPagesWritten(n int) {
	if p == nil {
		return
	}
	p.pagesWritten.Add(float64(n))
}

func (p *PrometheusRecorder) IncWatchEvent(t core.EventType) {
	if p == nil {
		return
	}
	p.watchEvents.WithLabelValues(string(t)).Inc()
}

// Registry returns the registry the metrics live in.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

var _ core.Recorder = (*PrometheusRecorder)(nil)
