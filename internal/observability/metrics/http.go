package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	respondTotal     *prometheus.CounterVec
	respondDuration  *prometheus.HistogramVec
	uploadCacheTotal *prometheus.CounterVec
	cancelTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tattva",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tattva",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tattva",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	respondTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tattva",
			Subsystem: "respond",
			Name:      "requests_total",
			Help:      "Total completed respond requests by answer path.",
		},
		[]string{"service", "path"},
	)
	respondDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tattva",
			Subsystem: "respond",
			Name:      "duration_seconds",
			Help:      "Respond pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	uploadCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tattva",
			Subsystem: "documents",
			Name:      "upload_cache_total",
			Help:      "Total document uploads by deduplication outcome.",
		},
		[]string{"service", "outcome"},
	)
	cancelTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tattva",
			Subsystem: "respond",
			Name:      "cancellations_total",
			Help:      "Total cancellation requests by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		respondTotal,
		respondDuration,
		uploadCacheTotal,
		cancelTotal,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		respondTotal:     respondTotal,
		respondDuration:  respondDuration,
		uploadCacheTotal: uploadCacheTotal,
		cancelTotal:      cancelTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/chats/"):
		return "/v1/chats/{chat_id}"
	default:
		return path
	}
}

// RecordRespond classifies a completed respond call: "metadata" answers came
// from the structural fast path, "generated" went through the full pipeline.
func (m *HTTPServerMetrics) RecordRespond(service string, fastPath bool, duration time.Duration) {
	path := "generated"
	if fastPath {
		path = "metadata"
	}
	m.respondTotal.WithLabelValues(service, path).Inc()
	m.respondDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordUploadCache(service string, cacheHit bool) {
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.uploadCacheTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordCancellation(service string, found bool) {
	result := "unknown_request"
	if found {
		result = "cancelled"
	}
	m.cancelTotal.WithLabelValues(service, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
