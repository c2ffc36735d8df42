package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors shared by the worker services.
type Metrics struct {
	transformTotal    *prometheus.CounterVec
	transformDuration *prometheus.HistogramVec
	batchFilesTotal   *prometheus.CounterVec
	jobsTotal         *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	httpRequestsTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transformTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filekit_transform_total",
				Help: "Count of file transformations by preset, transformer and outcome",
			},
			[]string{"preset", "transformer", "status"},
		),
		transformDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filekit_transform_duration_seconds",
				Help:    "Time spent in a single transformation, fallback copy included",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"transformer"},
		),
		batchFilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filekit_batch_files_total",
				Help: "Number of files handled by batch operations",
			},
			[]string{"operation"},
		),
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filekit_jobs_total",
				Help: "Queued compression jobs by terminal status",
			},
			[]string{"status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filekit_job_duration_seconds",
				Help:    "Time from delivery to acknowledgement of a queued job",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filekit_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.transformTotal,
			m.transformDuration,
			m.batchFilesTotal,
			m.jobsTotal,
			m.jobDuration,
			m.httpRequestsTotal,
		)
	}

	return m
}

// Nop returns collectors that are not registered anywhere.
func Nop() *Metrics {
	return New(nil)
}

func (m *Metrics) ObserveTransform(preset, transformer, status string, seconds float64) {
	m.transformTotal.WithLabelValues(preset, transformer, status).Inc()
	m.transformDuration.WithLabelValues(transformer).Observe(seconds)
}

func (m *Metrics) AddBatchFiles(operation string, n int) {
	m.batchFilesTotal.WithLabelValues(operation).Add(float64(n))
}

func (m *Metrics) IncJob(status string) {
	m.jobsTotal.WithLabelValues(status).Inc()
}

// ObserveJob counts a finished job and records how long it held a worker.
func (m *Metrics) ObserveJob(status string, seconds float64) {
	m.jobsTotal.WithLabelValues(status).Inc()
	m.jobDuration.WithLabelValues(status).Observe(seconds)
}

func (m *Metrics) IncHTTPRequest(method, route, status string) {
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
}
