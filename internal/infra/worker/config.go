package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/DepSpiel/telegram-pidrgpt/internal/pkg/config"
)

// WorkerConfig holds the configuration for the digest worker.
// It controls the publish schedule, timezone, delivery concurrency, the
// per-run compose deadline, and the health server port.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Every field has a default and a validation rule, so the worker starts
// with a usable configuration even when the environment is wrong.
type WorkerConfig struct {
	// CronSchedule is the cron expression for the daily digest run.
	// Format: "minute hour day month weekday"
	// Example: "0 9 * * *" (every day at 09:00)
	// Default: "0 9 * * *"
	CronSchedule string

	// Timezone is the IANA timezone name the schedule is evaluated in.
	// Example: "UTC", "Europe/Berlin", "Asia/Tokyo"
	// Default: "UTC"
	Timezone string

	// PublishMaxConcurrent caps how many delivery channels publish at once.
	// Range: 1-50
	// Default: 4
	PublishMaxConcurrent int

	// ComposeTimeout bounds one compose-and-dispatch run. After this the
	// run is cancelled and counted as a failure.
	// Must be positive.
	// Default: 2 minutes
	ComposeTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: a daily
// 09:00 UTC run, four concurrent channel publishes, a two-minute run
// deadline, and the conventional exporter-adjacent health port.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:         "0 9 * * *",
		Timezone:             "UTC",
		PublishMaxConcurrent: 4,
		ComposeTimeout:       2 * time.Minute,
		HealthPort:           9091,
	}
}

// Validate checks the configuration values using the shared validators.
// All field errors are collected and returned together.
//
// Validation rules:
//   - CronSchedule: valid cron expression (robfig/cron parser)
//   - Timezone: loadable IANA timezone name
//   - PublishMaxConcurrent: between 1 and 50
//   - ComposeTimeout: positive
//   - HealthPort: between 1024 and 65535
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.PublishMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("publish max concurrent: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.ComposeTimeout); err != nil {
		errs = append(errs, fmt.Errorf("compose timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to defaults on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from its environment variable
//  3. Validate each loaded value
//  4. If validation fails: keep the default, log a warning, count the fallback
//  5. Never return an error - the worker always gets a valid configuration
//
// Environment variables:
//   - DIGEST_SCHEDULE: Cron expression (default: "0 9 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - PUBLISH_MAX_CONCURRENT: Integer 1-50 (default: 4)
//   - COMPOSE_TIMEOUT: Duration string between 30s and 10m (default: 2m)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Metrics updated:
//   - ValidationErrorsTotal and FallbacksTotal per failing field
//   - FallbackActive set to 1 when any fallback applied
//   - LoadTimestamp set after the load
//
// Parameters:
//   - logger: Structured logger for fallback warnings
//   - metrics: Worker metrics instance for fallback tracking
//
// Returns:
//   - *WorkerConfig: Valid configuration (never nil)
//   - error: Always nil (fail-open strategy)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("DIGEST_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("digest_schedule")
		metrics.RecordFallback("digest_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "CronSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("PUBLISH_MAX_CONCURRENT", cfg.PublishMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.PublishMaxConcurrent = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("publish_max_concurrent")
		metrics.RecordFallback("publish_max_concurrent", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "PublishMaxConcurrent"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("COMPOSE_TIMEOUT", cfg.ComposeTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 30*time.Second, 10*time.Minute)
	})
	cfg.ComposeTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("compose_timeout")
		metrics.RecordFallback("compose_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "ComposeTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
