package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Processing a large document means extraction, chunking and one embedding
// call per batch, so durations run far past the default buckets.
var processingBuckets = []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160, 320}

// queueLagBuckets cover the gap between upload and pickup; minutes of lag
// means the worker pool is starved.
var queueLagBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}

// WorkerMetrics instruments the document processing pipeline consumed off
// the queue.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processed *prometheus.CounterVec
	durations *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	pickupLag *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	m := &WorkerMetrics{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tattva",
			Subsystem: "worker",
			Name:      "documents_processed_total",
			Help:      "Documents taken through the processing pipeline, by outcome.",
		}, []string{"service", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tattva",
			Subsystem: "worker",
			Name:      "processing_duration_seconds",
			Help:      "Wall time of the extract-chunk-embed pipeline per document.",
			Buckets:   processingBuckets,
		}, []string{"service", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "tattva",
			Subsystem:   "worker",
			Name:        "processing_in_flight",
			Help:        "Documents currently inside the pipeline.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		pickupLag: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tattva",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and processing start.",
			Buckets:   queueLagBuckets,
		}, []string{"service"}),
	}
	m.registry.MustRegister(m.processed, m.durations, m.inFlight, m.pickupLag)
	return m
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.inFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.inFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.processed.WithLabelValues(service, status).Inc()
	m.durations.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveQueueLag ignores negative lag, which happens when clocks on the API
// and worker hosts disagree.
func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.pickupLag.WithLabelValues(service).Observe(lag.Seconds())
}
