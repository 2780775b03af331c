package worker

import (
	"credshield/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the health-check worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// worker-specific metrics for cron job execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: Total cron job runs by status (success/failure)
//   - worker_cron_job_duration_seconds: Duration histogram of cron job execution
//   - worker_cron_job_credentials_checked_total: Total credentials probed per job run
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts the total number of cron job runs.
	// Labels: status (success, failure)
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures the duration of one batch health run.
	// Buckets are tuned for parallel probe batches: sub-second for tiny
	// fleets, minutes when a provider times out.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobCredentialsCheckedTotal counts credentials probed across all runs.
	CronJobCredentialsCheckedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix timestamp of the last
	// successful run. A stale value is the alerting signal that the
	// scheduler has wedged.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics
// initialized. Registration with the default Prometheus registry happens
// automatically via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of one batch health-check run in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}),

		CronJobCredentialsCheckedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_credentials_checked_total",
			Help: "Total number of credentials probed across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the job run counter for the given status.
// Status should be either "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of one batch run, in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordCredentialsChecked adds the number of credentials probed in a run to
// the total counter.
func (m *WorkerMetrics) RecordCredentialsChecked(count int) {
	m.CronJobCredentialsCheckedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful job completion.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
