package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ParseCollector bundles Prometheus metrics for TLE decoding. It satisfies
// tle.Recorder.
type ParseCollector struct {
	gatherer prometheus.Gatherer

	RecordsParsed  prometheus.Counter
	RecordsDropped *prometheus.CounterVec
	ParseDuration  prometheus.Histogram
	LastBatch      prometheus.Gauge
}

// NewParseCollector registers TLE parse metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewParseCollector(reg prometheus.Registerer) (*ParseCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	parsed, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tle_records_parsed_total",
		Help: "Total number of orbital element sets decoded from TLE input.",
	}), "tle_records_parsed_total")
	if err != nil {
		return nil, err
	}

	dropped, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tle_records_dropped_total",
		Help: "Total number of TLE lines or records skipped, labeled by reason.",
	}, []string{"reason"}), "tle_records_dropped_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tle_parse_duration_seconds",
		Help:    "Wall-clock time spent decoding one TLE batch.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}), "tle_parse_duration_seconds")
	if err != nil {
		return nil, err
	}

	last, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tle_last_batch_records",
		Help: "Number of records decoded by the most recent batch.",
	}), "tle_last_batch_records")
	if err != nil {
		return nil, err
	}

	return &ParseCollector{
		gatherer:       gatherer,
		RecordsParsed:  parsed,
		RecordsDropped: dropped,
		ParseDuration:  duration,
		LastBatch:      last,
	}, nil
}

// RecordParse updates the collector from one decoded batch.
func (c *ParseCollector) RecordParse(records int, dropped map[string]int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RecordsParsed.Add(float64(records))
	for reason, n := range dropped {
		c.RecordsDropped.WithLabelValues(reason).Add(float64(n))
	}
	c.ParseDuration.Observe(elapsed.Seconds())
	c.LastBatch.Set(float64(records))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ParseCollector) Handler() http.Handler {
	return handlerFor(c.gatherer)
}

func handlerFor(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func resolveRegistry(reg prometheus.Registerer) (prometheus.Registerer, prometheus.Gatherer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	return reg, gatherer
}

// register adds c to reg. If an identical collector is already registered
// (for example by a second NewParseCollector call on the default
// registry) the existing one is returned.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var zero T
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return c, nil
}
