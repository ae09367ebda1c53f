package metrics

import (
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

	uploadRowsTotal   *prometheus.CounterVec
	uploadRowsDropped *prometheus.CounterVec
	uploadValuesTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chartrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chartrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chartrack",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadRowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chartrack",
			Subsystem: "ingest",
			Name:      "rows_total",
			Help:      "Total decoded rows across uploads.",
		},
		[]string{"service", "site"},
	)
	uploadRowsDropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chartrack",
			Subsystem: "ingest",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped during bucketing for lack of a resolvable day.",
		},
		[]string{"service", "site"},
	)
	uploadValuesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chartrack",
			Subsystem: "ingest",
			Name:      "values_total",
			Help:      "Temperature values appended to day buckets.",
		},
		[]string{"service", "site"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadRowsTotal,
		uploadRowsDropped,
		uploadValuesTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		uploadRowsTotal:   uploadRowsTotal,
		uploadRowsDropped: uploadRowsDropped,
		uploadValuesTotal: uploadValuesTotal,
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
	case strings.HasPrefix(path, "/v1/batches/"):
		return "/v1/batches/{batch_id}"
	case strings.HasPrefix(path, "/v1/sites/"):
		return "/v1/sites/{site}/statuses"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, site string, rowsTotal, rowsDropped, valuesAdded int) {
	m.uploadRowsTotal.WithLabelValues(service, site).Add(float64(rowsTotal))
	m.uploadRowsDropped.WithLabelValues(service, site).Add(float64(rowsDropped))
	m.uploadValuesTotal.WithLabelValues(service, site).Add(float64(valuesAdded))
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
