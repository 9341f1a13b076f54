// Package metrics exposes calendar counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "groupmeet"

// Recorder counts storage operations, strokes and stale completions. It
// satisfies calendar.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	storageOps  *prometheus.CounterVec
	strokes     prometheus.Counter
	strokeCells prometheus.Histogram
	stale       *prometheus.CounterVec
}

// New creates a Recorder with its own registry, so tests and multiple
// servers in one process do not collide on the global one.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Storage adapter calls by operation and outcome.",
		}, []string{"op", "status"}),
		strokes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_total",
			Help:      "Completed paint strokes.",
		}),
		strokeCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stroke_cells",
			Help:      "Cells touched per stroke.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_completions_total",
			Help:      "Load or save completions discarded as stale.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.storageOps, r.strokes, r.strokeCells, r.stale)
	return r
}

// ObserveStorage counts one storage call.
func (r *Recorder) ObserveStorage(op, status string) {
	r.storageOps.WithLabelValues(op, status).Inc()
}

// ObserveStroke counts one committed stroke of the given size.
func (r *Recorder) ObserveStroke(cells int) {
	r.strokes.Inc()
	r.strokeCells.Observe(float64(cells))
}

// ObserveStale counts a discarded completion.
func (r *Recorder) ObserveStale(kind string) {
	r.stale.WithLabelValues(kind).Inc()
}

// Registry returns the registry the counters live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry for Prometheus scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
