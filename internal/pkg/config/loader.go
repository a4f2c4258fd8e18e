// Package config provides fail-open configuration loading for the digest
// worker: environment values are parsed and validated, and anything invalid
// is replaced by the caller's default with a warning instead of an error.
// The bot must keep publishing on a botched deploy, so configuration
// problems degrade the schedule or timeouts, never the process.
package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value.
//
// Fields:
//   - Value: the loaded value, or the default when loading fell back
//   - Warnings: one message per fallback applied
//   - FallbackApplied: true when the default replaced an invalid value
//
// Example:
//
//	result := LoadEnvDuration("COMPOSE_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)
//	if result.FallbackApplied {
//	    for _, warning := range result.Warnings {
//	        logger.Warn("Configuration fallback applied", slog.String("warning", warning))
//	    }
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvWithFallback loads a string from an environment variable, validates
// it, and falls back to the default when validation fails.
//
// Behavior:
//  1. Unset or empty variable: default, no warning.
//  2. Set and valid (or validator is nil): environment value.
//  3. Set but invalid: default plus a warning describing the rejection.
//
// It never returns an error; a misconfigured schedule must not stop the
// worker from running on the default one.
//
// Example:
//
//	result := LoadEnvWithFallback("DIGEST_SCHEDULE", "0 9 * * *", ValidateCronSchedule)
//	schedule := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)

	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fallbackWarning(envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a Go duration string ("35s", "2m", "1h30m") from an
// environment variable with parsing, validation, and fallback. Parse and
// validation failures both produce a warning and keep the default.
//
// Example:
//
//	result := LoadEnvDuration("COMPOSE_TIMEOUT", 2*time.Minute, func(d time.Duration) error {
//	    return ValidateDuration(d, 30*time.Second, 10*time.Minute)
//	})
//	timeout := result.Value.(time.Duration)
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)

	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fallbackWarning(envKey, valueStr, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fallbackWarning(envKey, valueStr, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt loads an integer from an environment variable with parsing,
// validation, and fallback. Used for ports and concurrency caps, always
// paired with a range validator.
//
// Example:
//
//	result := LoadEnvInt("WORKER_HEALTH_PORT", 9091, func(v int) error {
//	    return ValidateIntRange(v, 1024, 65535)
//	})
//	port := result.Value.(int)
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)

	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	var parsed int
	if _, err := fmt.Sscanf(valueStr, "%d", &parsed); err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fmt.Sprintf("Invalid %s='%s': invalid integer format, falling back to default '%d'", envKey, valueStr, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fallbackWarning(envKey, valueStr, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// fallbackWarning renders the single warning format shared by all loaders:
// "Invalid {key}='{value}': {err}, falling back to default '{default}'".
func fallbackWarning(envKey, value string, err error, defaultValue interface{}) string {
	return fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, value, err, defaultValue)
}
