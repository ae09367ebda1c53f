package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type JobMetrics struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	entriesTotal *prometheus.CounterVec
	runsInFlight prometheus.Gauge
}

func NewJobMetrics(service string) *JobMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chartrack",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Total job runs by job name and outcome.",
		},
		[]string{"service", "job", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chartrack",
			Subsystem: "jobs",
			Name:      "run_duration_seconds",
			Help:      "Job run duration in seconds by job name and outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "job", "status"},
	)
	entriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chartrack",
			Subsystem: "jobs",
			Name:      "ledger_entries_appended_total",
			Help:      "Status ledger entries appended by automated jobs.",
		},
		[]string{"service", "job"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chartrack",
			Subsystem: "jobs",
			Name:      "runs_in_flight",
			Help:      "Number of in-flight job runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	registry.MustRegister(runsTotal, runDuration, entriesTotal, runsInFlight)

	return &JobMetrics{
		registry:     registry,
		runsTotal:    runsTotal,
		runDuration:  runDuration,
		entriesTotal: entriesTotal,
		runsInFlight: runsInFlight,
	}
}

func (m *JobMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *JobMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *JobMetrics) FinishRun(service, job string, duration time.Duration, appended int, err error) {
	m.runsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runsTotal.WithLabelValues(service, job, status).Inc()
	m.runDuration.WithLabelValues(service, job, status).Observe(duration.Seconds())
	if appended > 0 {
		m.entriesTotal.WithLabelValues(service, job).Add(float64(appended))
	}
}
