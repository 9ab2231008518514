package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusProvider creates Prometheus collectors registered with a Registerer.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with default buckets.
// Instrument attributes become constant labels.
type PrometheusProvider struct {
	factory promauto.Factory

	counters   registry[prometheus.Counter]
	gauges     registry[prometheus.Gauge]
	histograms registry[prometheus.Histogram]
}

// NewPrometheusProvider registers collectors with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{factory: promauto.With(reg)}
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	c := p.counters.get(name, func() prometheus.Counter {
		cfg := buildConfig(opts)
		return p.factory.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	})
	return promCounter{c}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	g := p.gauges.get(name, func() prometheus.Gauge {
		cfg := buildConfig(opts)
		return p.factory.NewGauge(prometheus.GaugeOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	})
	return promGauge{g}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	h := p.histograms.get(name, func() prometheus.Histogram {
		cfg := buildConfig(opts)
		return p.factory.NewHistogram(prometheus.HistogramOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
			Buckets:     prometheus.DefBuckets,
		})
	})
	return promHistogram{h}
}

type promCounter struct{ c prometheus.Counter }

// Add ignores negative increments; prometheus.Counter panics on them.
func (c promCounter) Add(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }
