package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration load state for one component. Because
// loading is fail-open, bad configuration never surfaces as an error; these
// metrics are how operators find out a deploy is running on defaults.
//
// Metrics generated, prefixed by component name:
//   - {component}_config_load_timestamp: Unix time of the last load
//   - {component}_config_validation_errors_total{field}: rejected values
//   - {component}_config_fallbacks_total{field}: defaults applied
//   - {component}_config_fallback_active: 1 while any fallback is in effect
//
// Example:
//
//	metrics := config.NewConfigMetrics("worker")
//	metrics.RecordValidationError("digest_schedule")
//	metrics.RecordFallback("digest_schedule", "default")
//	metrics.SetFallbackActive("", true)
//	metrics.RecordLoadTimestamp()
type ConfigMetrics struct {
	// LoadTimestamp is set to the current time on every configuration load.
	LoadTimestamp prometheus.Gauge

	// ValidationErrorsTotal counts rejected values per configuration field.
	ValidationErrorsTotal *prometheus.CounterVec

	// FallbacksTotal counts applied defaults per configuration field.
	FallbacksTotal *prometheus.CounterVec

	// FallbackActive is 1 while any field runs on its fallback default.
	FallbackActive prometheus.Gauge

	componentName string
}

// NewConfigMetrics registers the configuration metric set under the given
// component prefix with the default Prometheus registry. Component names
// must be unique per process; promauto panics on a duplicate registration.
func NewConfigMetrics(componentName string) *ConfigMetrics {
	return &ConfigMetrics{
		LoadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", componentName),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", componentName),
		}),

		ValidationErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration validation errors", componentName),
		}, []string{"field"}),

		FallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration fallback operations", componentName),
		}, []string{"field"}),

		FallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", componentName),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", componentName),
		}),

		componentName: componentName,
	}
}

// RecordLoadTimestamp marks the current time as the last configuration load.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordValidationError counts a rejected value for the named field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts an applied default for the named field. The
// fallbackType argument describes where the substitute came from; only
// "default" is in use today.
func (m *ConfigMetrics) RecordFallback(field, fallbackType string) {
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive flips the fallback-active gauge. Callers set it once
// per load with the aggregate across all fields; the field argument is kept
// for call-site context only.
func (m *ConfigMetrics) SetFallbackActive(field string, active bool) {
	if active {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}
