package composer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ComposeMetricsRecorder defines the interface for recording digest
// composition metrics. Abstracting the recorder keeps Prometheus out of the
// formatting logic and lets tests inject a mock.
//
// Example usage:
//
//	type Perplexity struct {
//	    metricsRecorder ComposeMetricsRecorder
//	}
//
//	func (p *Perplexity) ComposeDigest(ctx context.Context) (*entity.Digest, error) {
//	    // ... API call and formatting ...
//	    p.metricsRecorder.RecordCaptionLength(digest.CharCount)
//	    return digest, nil
//	}
type ComposeMetricsRecorder interface {
	// RecordCaptionLength records the length of a composed caption in characters.
	RecordCaptionLength(length int)

	// RecordDuration records the time taken by the news request.
	RecordDuration(duration time.Duration)

	// RecordFallback increments the counter when a digest is built from
	// fallback content after a failed news request.
	RecordFallback()

	// RecordImageFallback increments the counter when a header image probe
	// fails and the fallback photo is used.
	RecordImageFallback()
}

// PrometheusComposeMetrics implements ComposeMetricsRecorder using
// Prometheus metrics. This is the production implementation.
type PrometheusComposeMetrics struct {
	captionLengthHistogram prometheus.Histogram
	durationHistogram      prometheus.Histogram
	fallbackCounter        prometheus.Counter
	imageFallbackCounter   prometheus.Counter
}

var (
	prometheusMetricsInstance *PrometheusComposeMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		// If it's not an AlreadyRegisteredError, use promauto which handles this gracefully
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounter gets an existing counter or creates a new one if it doesn't exist
func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

// NewPrometheusComposeMetrics creates a new Prometheus-based metrics recorder.
// It initializes and registers all required Prometheus metrics.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusComposeMetrics() *PrometheusComposeMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusComposeMetrics{
			captionLengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "digest_caption_length_characters",
				Help:    "Distribution of composed caption lengths in characters (Unicode runes)",
				Buckets: []float64{100, 200, 300, 400, 500, 600, 700, 800},
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "digest_compose_duration_seconds",
				Help:    "Time taken by the news request behind a digest",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
			}),
			fallbackCounter: getOrCreateCounter(prometheus.CounterOpts{
				Name: "digest_compose_fallback_total",
				Help: "Total number of digests built from fallback content after a failed news request",
			}),
			imageFallbackCounter: getOrCreateCounter(prometheus.CounterOpts{
				Name: "digest_image_fallback_total",
				Help: "Total number of header images replaced by the fallback photo after a failed probe",
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordCaptionLength implements ComposeMetricsRecorder.RecordCaptionLength
func (p *PrometheusComposeMetrics) RecordCaptionLength(length int) {
	p.captionLengthHistogram.Observe(float64(length))
}

// RecordDuration implements ComposeMetricsRecorder.RecordDuration
func (p *PrometheusComposeMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// RecordFallback implements ComposeMetricsRecorder.RecordFallback
func (p *PrometheusComposeMetrics) RecordFallback() {
	p.fallbackCounter.Inc()
}

// RecordImageFallback implements ComposeMetricsRecorder.RecordImageFallback
func (p *PrometheusComposeMetrics) RecordImageFallback() {
	p.imageFallbackCounter.Inc()
}
