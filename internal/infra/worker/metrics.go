package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DepSpiel/telegram-pidrgpt/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the digest worker.
// It embeds the shared ConfigMetrics for configuration monitoring and adds
// worker-specific metrics for scheduled run tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_digest_runs_total: Total digest runs by status (started/success/failure)
//   - worker_digest_run_duration_seconds: Duration histogram of digest runs
//   - worker_digest_last_success_timestamp: Unix timestamp of the last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// DigestRunsTotal counts scheduled digest runs.
	// Type: Counter
	// Labels: status (started, success, failure)
	DigestRunsTotal *prometheus.CounterVec

	// DigestRunDurationSeconds measures the duration of digest runs.
	// Type: Histogram
	// Buckets: 1s to 5m, sized for one completion call plus dispatch
	DigestRunDurationSeconds prometheus.Histogram

	// DigestLastSuccessTimestamp records the Unix timestamp of the last
	// successful run.
	// Type: Gauge
	DigestLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a WorkerMetrics instance with all metrics
// initialized and registered via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		DigestRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_digest_runs_total",
			Help: "Total number of digest runs by status (started/success/failure)",
		}, []string{"status"}),

		DigestRunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_digest_run_duration_seconds",
			Help:    "Duration of digest runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),

		DigestLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_digest_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest run",
		}),
	}
}

// MustRegister is a no-op kept for the conventional initialization sequence;
// metrics register themselves via promauto in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordRun increments the run counter for the given status.
// Status should be "started", "success" or "failure".
func (m *WorkerMetrics) RecordRun(status string) {
	m.DigestRunsTotal.WithLabelValues(status).Inc()
}

// RecordRunDuration observes the duration of a digest run in seconds.
func (m *WorkerMetrics) RecordRunDuration(seconds float64) {
	m.DigestRunDurationSeconds.Observe(seconds)
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.DigestLastSuccessTimestamp.SetToCurrentTime()
}
