package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogCollector exposes metrics for catalog refreshes.
type CatalogCollector struct {
	gatherer prometheus.Gatherer

	Updates          *prometheus.CounterVec
	DownloadDuration prometheus.Histogram
	CatalogRecords   prometheus.Gauge
	LastSuccess      prometheus.Gauge
}

// NewCatalogCollector registers catalog metrics against the provided registerer.
func NewCatalogCollector(reg prometheus.Registerer) (*CatalogCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	updates, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_updates_total",
		Help: "Catalog refresh attempts, labeled by result (ok, download_error, rejected, write_error).",
	}, []string{"result"}), "catalog_updates_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_download_duration_seconds",
		Help:    "Duration of catalog downloads.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}), "catalog_download_duration_seconds")
	if err != nil {
		return nil, err
	}

	records, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_records",
		Help: "Records decoded from the most recently installed catalog.",
	}), "catalog_records")
	if err != nil {
		return nil, err
	}

	last, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_last_success_timestamp_seconds",
		Help: "Unix time of the last successful catalog refresh.",
	}), "catalog_last_success_timestamp_seconds")
	if err != nil {
		return nil, err
	}

	return &CatalogCollector{
		gatherer:         gatherer,
		Updates:          updates,
		DownloadDuration: duration,
		CatalogRecords:   records,
		LastSuccess:      last,
	}, nil
}

// ObserveDownload records how long a download took.
func (c *CatalogCollector) ObserveDownload(d time.Duration) {
	if c == nil {
		return
	}
	c.DownloadDuration.Observe(d.Seconds())
}

// RecordUpdate counts one refresh attempt. records and at are only used
// when result is "ok".
func (c *CatalogCollector) RecordUpdate(result string, records int, at time.Time) {
	if c == nil {
		return
	}
	c.Updates.WithLabelValues(result).Inc()
	if result == "ok" {
		c.CatalogRecords.Set(float64(records))
		c.LastSuccess.Set(float64(at.Unix()))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *CatalogCollector) Handler() http.Handler {
	return handlerFor(c.gatherer)
}
