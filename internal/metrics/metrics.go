package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the pipeline's Prometheus collectors.
type Registry struct {
	reg               *prometheus.Registry
	BatchesTotal      prometheus.Counter
	BatchesDegraded   prometheus.Counter
	RowsProcessed     prometheus.Counter
	EventsExtracted   prometheus.Counter
	ExtractionSeconds prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	batches := prometheus.NewCounter(prometheus.CounterOpts{Name: "fleetscan_batches_total"})
	degraded := prometheus.NewCounter(prometheus.CounterOpts{Name: "fleetscan_batches_degraded_total"})
	rows := prometheus.NewCounter(prometheus.CounterOpts{Name: "fleetscan_rows_processed_total"})
	events := prometheus.NewCounter(prometheus.CounterOpts{Name: "fleetscan_events_extracted_total"})
	seconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetscan_extraction_seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	r.MustRegister(batches, degraded, rows, events, seconds)
	return &Registry{
		reg:               r,
		BatchesTotal:      batches,
		BatchesDegraded:   degraded,
		RowsProcessed:     rows,
		EventsExtracted:   events,
		ExtractionSeconds: seconds,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
