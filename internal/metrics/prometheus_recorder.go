package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	slotTransitions *prom.CounterVec
	superseded      *prom.CounterVec
	remoteDuration  *prom.HistogramVec
	cacheWrites     *prom.CounterVec
	failures        prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		slotTransitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ava",
			Name:      "slot_transitions_total",
			Help:      "State slot writes by resulting loadable state",
		}, []string{"slot", "state"}),
		superseded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ava",
			Name:      "superseded_completions_total",
			Help:      "Completions discarded because a newer request owns the slot",
		}, []string{"slot"}),
		remoteDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "ava",
			Name:      "remote_request_duration_seconds",
			Help:      "Duration of remote service calls",
			Buckets:   prom.DefBuckets,
		}, []string{"endpoint", "result"}),
		cacheWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ava",
			Name:      "cache_writes_total",
			Help:      "Local cache write transactions by entity kind and outcome",
		}, []string{"kind", "result"}),
		failures: prom.NewGauge(prom.GaugeOpts{
			Namespace: "ava",
			Name:      "refresh_consecutive_failures",
			Help:      "Consecutive failed background refreshes",
		}),
	}
	reg.MustRegister(pr.slotTransitions, pr.superseded, pr.remoteDuration, pr.cacheWrites, pr.failures)
	return pr
}

func (p *PrometheusRecorder) IncSlotTransition(slot, state string) {
	if p == nil || p.slotTransitions == nil {
		return
	}
	p.slotTransitions.WithLabelValues(slot, state).Inc()
}

func (p *PrometheusRecorder) IncSuperseded(slot string) {
	if p == nil || p.superseded == nil {
		return
	}
	p.superseded.WithLabelValues(slot).Inc()
}

func (p *PrometheusRecorder) ObserveRemoteDuration(endpoint string, d time.Duration, result ResultLabel) {
	if p == nil || p.remoteDuration == nil {
		return
	}
	p.remoteDuration.WithLabelValues(endpoint, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheWrite(kind string, result ResultLabel) {
	if p == nil || p.cacheWrites == nil {
		return
	}
	p.cacheWrites.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) SetConsecutiveFailures(n int) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.Set(float64(n))
}
