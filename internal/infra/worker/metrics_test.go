package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWorkerMetrics(t *testing.T) {
	// Verify that globalTestMetrics (created via NewWorkerMetrics) is initialized correctly
	// We use the global instance to avoid duplicate Prometheus registration
	metrics := globalTestMetrics

	if metrics == nil {
		t.Fatal("NewWorkerMetrics returned nil")
	}

	if metrics.ConfigMetrics == nil {
		t.Error("ConfigMetrics is nil")
	}

	if metrics.DigestRunsTotal == nil {
		t.Error("DigestRunsTotal is nil")
	}

	if metrics.DigestRunDurationSeconds == nil {
		t.Error("DigestRunDurationSeconds is nil")
	}

	if metrics.DigestLastSuccessTimestamp == nil {
		t.Error("DigestLastSuccessTimestamp is nil")
	}

	// Should not panic when calling MustRegister (metrics are auto-registered via promauto)
	metrics.MustRegister()
}

func TestWorkerMetrics_RecordRun(t *testing.T) {
	// Create a custom registry for isolated testing
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_digest_runs_total",
		Help: "Test counter",
	}, []string{"status"})
	reg.MustRegister(counter)

	metrics := &WorkerMetrics{
		DigestRunsTotal: counter,
	}

	metrics.RecordRun("started")
	metrics.RecordRun("started")
	metrics.RecordRun("success")
	metrics.RecordRun("failure")

	startedCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("started"))
	if startedCount != 2 {
		t.Errorf("Expected started count 2, got %f", startedCount)
	}

	successCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("success"))
	if successCount != 1 {
		t.Errorf("Expected success count 1, got %f", successCount)
	}

	failureCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("failure"))
	if failureCount != 1 {
		t.Errorf("Expected failure count 1, got %f", failureCount)
	}
}

func TestWorkerMetrics_RecordRunDuration(t *testing.T) {
	// Create a custom registry for isolated testing
	reg := prometheus.NewRegistry()

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_worker_digest_run_duration_seconds",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})
	reg.MustRegister(histogram)

	metrics := &WorkerMetrics{
		DigestRunDurationSeconds: histogram,
	}

	metrics.RecordRunDuration(3.2)
	metrics.RecordRunDuration(45.0)
	metrics.RecordRunDuration(118.7)

	// Histograms are not readable via testutil.ToFloat64; verify via Gather
	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_worker_digest_run_duration_seconds" {
			found = true
			if len(mf.GetMetric()) == 0 {
				t.Fatal("Expected metrics to be recorded")
			}
			if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 3 {
				t.Errorf("Expected 3 observations, got %d", mf.GetMetric()[0].GetHistogram().GetSampleCount())
			}
		}
	}

	if !found {
		t.Error("Histogram metric not found in registry")
	}
}

func TestWorkerMetrics_RecordLastSuccess(t *testing.T) {
	// Create a custom registry for isolated testing
	reg := prometheus.NewRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_worker_digest_last_success_timestamp",
		Help: "Test gauge",
	})
	reg.MustRegister(gauge)

	metrics := &WorkerMetrics{
		DigestLastSuccessTimestamp: gauge,
	}

	initialValue := testutil.ToFloat64(metrics.DigestLastSuccessTimestamp)
	if initialValue != 0 {
		t.Errorf("Expected initial value 0, got %f", initialValue)
	}

	before := float64(time.Now().Unix())
	metrics.RecordLastSuccess()

	afterValue := testutil.ToFloat64(metrics.DigestLastSuccessTimestamp)
	if afterValue < before {
		t.Errorf("Expected timestamp >= %f, got %f", before, afterValue)
	}
}

func TestWorkerMetrics_FullRunSequence(t *testing.T) {
	// Simulate the metric calls a digest run makes end to end
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_digest_runs_sequence",
		Help: "Test counter",
	}, []string{"status"})
	reg.MustRegister(counter)

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_worker_digest_duration_sequence",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})
	reg.MustRegister(histogram)

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_worker_digest_last_success_sequence",
		Help: "Test gauge",
	})
	reg.MustRegister(gauge)

	metrics := &WorkerMetrics{
		DigestRunsTotal:            counter,
		DigestRunDurationSeconds:   histogram,
		DigestLastSuccessTimestamp: gauge,
	}

	// Run 1: success
	metrics.RecordRun("started")
	metrics.RecordRun("success")
	metrics.RecordRunDuration(12.4)
	metrics.RecordLastSuccess()

	// Run 2: failure (no last-success update)
	metrics.RecordRun("started")
	metrics.RecordRun("failure")
	metrics.RecordRunDuration(2.1)

	startedCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("started"))
	if startedCount != 2 {
		t.Errorf("Expected 2 started runs, got %f", startedCount)
	}

	successCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("success"))
	if successCount != 1 {
		t.Errorf("Expected 1 successful run, got %f", successCount)
	}

	failureCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("failure"))
	if failureCount != 1 {
		t.Errorf("Expected 1 failed run, got %f", failureCount)
	}

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_worker_digest_duration_sequence" {
			if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 2 {
				t.Errorf("Expected 2 duration observations, got %d", mf.GetMetric()[0].GetHistogram().GetSampleCount())
			}
		}
	}

	lastSuccess := testutil.ToFloat64(metrics.DigestLastSuccessTimestamp)
	if lastSuccess <= 0 {
		t.Errorf("Expected positive last success timestamp, got %f", lastSuccess)
	}
}

func TestWorkerMetrics_ConcurrentAccess(t *testing.T) {
	// Concurrent updates should be safe due to the Prometheus implementation
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_digest_runs_concurrent",
		Help: "Test counter",
	}, []string{"status"})
	reg.MustRegister(counter)

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_worker_digest_duration_concurrent",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})
	reg.MustRegister(histogram)

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_worker_digest_last_success_concurrent",
		Help: "Test gauge",
	})
	reg.MustRegister(gauge)

	metrics := &WorkerMetrics{
		DigestRunsTotal:            counter,
		DigestRunDurationSeconds:   histogram,
		DigestLastSuccessTimestamp: gauge,
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			metrics.RecordRun("success")
			metrics.RecordRunDuration(10.0)
			metrics.RecordLastSuccess()
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	successCount := testutil.ToFloat64(metrics.DigestRunsTotal.WithLabelValues("success"))
	if successCount != 10 {
		t.Errorf("Expected 10 successful runs, got %f", successCount)
	}
}
