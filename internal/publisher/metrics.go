package publisher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for digest publishing.
var (
	// publishDispatchedTotal tracks total publishes dispatched per channel
	publishDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_publish_dispatched_total",
			Help: "Total number of digest publishes dispatched",
		},
		[]string{"channel"},
	)

	// publishSentTotal tracks publish results per channel
	publishSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_publish_sent_total",
			Help: "Total number of digest publish results",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	// publishDuration tracks publish duration per channel
	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_publish_duration_seconds",
			Help:    "Digest publish duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30}, // 100ms to 30s
		},
		[]string{"channel"},
	)

	// publishRateLimitHits tracks rate limit responses from the delivery API
	publishRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_publish_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"channel"},
	)

	// publishRateLimitWaitSeconds tracks time spent in the local rate limiter
	publishRateLimitWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_publish_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the local rate limiter in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"channel"},
	)

	// publishBreakerOpenTotal tracks circuit breaker open events
	publishBreakerOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_publish_circuit_breaker_open_total",
			Help: "Total number of circuit breaker open events",
		},
		[]string{"channel"},
	)

	// publishBreakerState tracks the current circuit breaker state per channel
	publishBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_publish_circuit_breaker_state",
			Help: "Circuit breaker state per channel (0=closed, 1=half-open, 2=open)",
		},
		[]string{"channel"},
	)

	// publishDroppedTotal tracks dropped publishes
	publishDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_publish_dropped_total",
			Help: "Total number of dropped digest publishes",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open|disabled
	)

	// activePublishes tracks currently active publish goroutines
	activePublishes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_publish_active_goroutines",
			Help: "Number of active publish goroutines",
		},
	)

	// publishChannelsEnabled tracks number of enabled channels
	publishChannelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_publish_channels_enabled",
			Help: "Number of enabled delivery channels",
		},
	)
)

// RecordDispatch records a publish dispatch attempt.
//
// This should be called when a digest is about to be sent to a channel.
func RecordDispatch(channel string) {
	publishDispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a successful publish.
//
// This increments the success counter and records the send duration.
func RecordSuccess(channel string, duration time.Duration) {
	publishSentTotal.WithLabelValues(channel, "success").Inc()
	publishDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed publish.
//
// This increments the failure counter and records the send duration.
func RecordFailure(channel string, duration time.Duration) {
	publishSentTotal.WithLabelValues(channel, "failure").Inc()
	publishDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped records a dropped publish.
//
// This is called when a publish is dropped before reaching the delivery API,
// for example because the worker pool is full or the circuit breaker is open.
//
// Parameters:
//   - channel: The name of the delivery channel
//   - reason: The reason for dropping (pool_full, circuit_open, disabled)
func RecordDropped(channel string, reason string) {
	publishDroppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordCircuitBreakerOpen records a circuit breaker open event.
func RecordCircuitBreakerOpen(channel string) {
	publishBreakerOpenTotal.WithLabelValues(channel).Inc()
}

// SetBreakerState sets the current circuit breaker state gauge for a channel.
//
// Parameters:
//   - channel: The name of the delivery channel
//   - state: Encoded state (0=closed, 1=half-open, 2=open)
func SetBreakerState(channel string, state float64) {
	publishBreakerState.WithLabelValues(channel).Set(state)
}

// RecordRateLimitHit records a rate limit response from the delivery API.
func RecordRateLimitHit(channel string) {
	publishRateLimitHits.WithLabelValues(channel).Inc()
}

// RecordRateLimitWait records the time spent waiting for the local rate limiter.
func RecordRateLimitWait(channel string, waitDuration time.Duration) {
	publishRateLimitWaitSeconds.WithLabelValues(channel).Observe(waitDuration.Seconds())
}

// IncrementActiveGoroutines increments the active publish goroutines gauge by 1.
func IncrementActiveGoroutines() {
	activePublishes.Inc()
}

// DecrementActiveGoroutines decrements the active publish goroutines gauge by 1.
func DecrementActiveGoroutines() {
	activePublishes.Dec()
}

// SetChannelsEnabled sets the number of enabled delivery channels.
//
// This should be called on every dispatch so the gauge follows
// configuration changes.
func SetChannelsEnabled(count float64) {
	publishChannelsEnabled.Set(count)
}
