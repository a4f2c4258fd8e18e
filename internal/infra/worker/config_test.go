package worker

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// globalTestMetrics is a shared metrics instance for tests to avoid
// duplicate Prometheus registration errors. In production, metrics are
// created once at startup, so this simulates that behavior.
var globalTestMetrics = NewWorkerMetrics()

// clearWorkerEnv blanks every worker environment variable for the test.
func clearWorkerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DIGEST_SCHEDULE",
		"WORKER_TIMEZONE",
		"PUBLISH_MAX_CONCURRENT",
		"COMPOSE_TIMEOUT",
		"WORKER_HEALTH_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CronSchedule != "0 9 * * *" {
		t.Errorf("Expected CronSchedule '0 9 * * *', got '%s'", config.CronSchedule)
	}

	if config.Timezone != "UTC" {
		t.Errorf("Expected Timezone 'UTC', got '%s'", config.Timezone)
	}

	if config.PublishMaxConcurrent != 4 {
		t.Errorf("Expected PublishMaxConcurrent 4, got %d", config.PublishMaxConcurrent)
	}

	if config.ComposeTimeout != 2*time.Minute {
		t.Errorf("Expected ComposeTimeout 2m, got %v", config.ComposeTimeout)
	}

	if config.HealthPort != 9091 {
		t.Errorf("Expected HealthPort 9091, got %d", config.HealthPort)
	}
}

func TestDefaultConfig_Immutability(t *testing.T) {
	// Each call to DefaultConfig should return a new instance
	config1 := DefaultConfig()
	config2 := DefaultConfig()

	config1.CronSchedule = "0 6 * * *"
	config1.PublishMaxConcurrent = 20

	if config2.CronSchedule != "0 9 * * *" {
		t.Error("DefaultConfig returned a shared instance instead of a new one")
	}

	if config2.PublishMaxConcurrent != 4 {
		t.Error("DefaultConfig returned a shared instance instead of a new one")
	}
}

func TestWorkerConfig_Validate_ValidConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got error: %v", err)
	}
}

func TestWorkerConfig_Validate_InvalidCronSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
	}{
		{"garbage expression", "invalid cron"},
		{"empty", ""},
		{"too few fields", "0 9 *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.CronSchedule = tt.schedule

			if err := config.Validate(); err == nil {
				t.Errorf("Expected validation error for schedule %q", tt.schedule)
			}
		})
	}
}

func TestWorkerConfig_Validate_InvalidTimezone(t *testing.T) {
	for _, timezone := range []string{"Invalid/Timezone", "", "+09:00"} {
		config := DefaultConfig()
		config.Timezone = timezone

		if err := config.Validate(); err == nil {
			t.Errorf("Expected validation error for timezone %q", timezone)
		}
	}
}

func TestWorkerConfig_Validate_PublishMaxConcurrentBoundary(t *testing.T) {
	tests := []struct {
		name  string
		value int
		valid bool
	}{
		{"Min valid (1)", 1, true},
		{"Max valid (50)", 50, true},
		{"Below min (0)", 0, false},
		{"Negative", -1, false},
		{"Above max (51)", 51, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.PublishMaxConcurrent = tt.value

			err := config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected validation error for value %d", tt.value)
			}
		})
	}
}

func TestWorkerConfig_Validate_ComposeTimeout(t *testing.T) {
	config := DefaultConfig()
	config.ComposeTimeout = 0
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error for ComposeTimeout = 0")
	}

	config.ComposeTimeout = -1 * time.Minute
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error for negative ComposeTimeout")
	}

	config.ComposeTimeout = 5 * time.Minute
	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid timeout, got error: %v", err)
	}
}

func TestWorkerConfig_Validate_HealthPortBoundary(t *testing.T) {
	tests := []struct {
		name  string
		port  int
		valid bool
	}{
		{"Min valid (1024)", 1024, true},
		{"Max valid (65535)", 65535, true},
		{"Below min (1023)", 1023, false},
		{"Above max (65536)", 65536, false},
		{"Zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.HealthPort = tt.port

			err := config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid port %d, got error: %v", tt.port, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected validation error for port %d", tt.port)
			}
		})
	}
}

func TestWorkerConfig_Validate_MultipleErrors(t *testing.T) {
	config := WorkerConfig{
		CronSchedule:         "invalid",
		Timezone:             "Invalid/Zone",
		PublishMaxConcurrent: 0,
		ComposeTimeout:       0,
		HealthPort:           100,
	}

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation errors for multiple invalid fields")
	}

	// All field failures should be collected into one error
	errStr := err.Error()
	for _, fragment := range []string{"cron schedule", "timezone", "publish max concurrent", "compose timeout", "health port"} {
		if !strings.Contains(errStr, fragment) {
			t.Errorf("Expected %q in aggregated error, got: %v", fragment, err)
		}
	}
}

func TestLoadConfigFromEnv_AllEnvVarsValid(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("DIGEST_SCHEDULE", "30 7 * * *")
	t.Setenv("WORKER_TIMEZONE", "Europe/Berlin")
	t.Setenv("PUBLISH_MAX_CONCURRENT", "8")
	t.Setenv("COMPOSE_TIMEOUT", "3m")
	t.Setenv("WORKER_HEALTH_PORT", "8080")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if config.CronSchedule != "30 7 * * *" {
		t.Errorf("Expected CronSchedule '30 7 * * *', got '%s'", config.CronSchedule)
	}
	if config.Timezone != "Europe/Berlin" {
		t.Errorf("Expected Timezone 'Europe/Berlin', got '%s'", config.Timezone)
	}
	if config.PublishMaxConcurrent != 8 {
		t.Errorf("Expected PublishMaxConcurrent 8, got %d", config.PublishMaxConcurrent)
	}
	if config.ComposeTimeout != 3*time.Minute {
		t.Errorf("Expected ComposeTimeout 3m, got %v", config.ComposeTimeout)
	}
	if config.HealthPort != 8080 {
		t.Errorf("Expected HealthPort 8080, got %d", config.HealthPort)
	}

	// No fallback warnings should be logged
	if buf.Len() > 0 {
		t.Errorf("Expected no warnings, got: %s", buf.String())
	}
}

func TestLoadConfigFromEnv_MissingEnvVars(t *testing.T) {
	clearWorkerEnv(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	defaults := DefaultConfig()
	if config.CronSchedule != defaults.CronSchedule {
		t.Errorf("Expected default CronSchedule, got '%s'", config.CronSchedule)
	}
	if config.Timezone != defaults.Timezone {
		t.Errorf("Expected default Timezone, got '%s'", config.Timezone)
	}
	if config.PublishMaxConcurrent != defaults.PublishMaxConcurrent {
		t.Errorf("Expected default PublishMaxConcurrent, got %d", config.PublishMaxConcurrent)
	}
	if config.ComposeTimeout != defaults.ComposeTimeout {
		t.Errorf("Expected default ComposeTimeout, got %v", config.ComposeTimeout)
	}
	if config.HealthPort != defaults.HealthPort {
		t.Errorf("Expected default HealthPort, got %d", config.HealthPort)
	}

	// Missing env vars do not count as fallbacks
	if buf.Len() > 0 {
		t.Errorf("Expected no warnings, got: %s", buf.String())
	}
}

func TestLoadConfigFromEnv_InvalidSchedule(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("DIGEST_SCHEDULE", "not a schedule")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if config.CronSchedule != DefaultConfig().CronSchedule {
		t.Errorf("Expected default CronSchedule, got '%s'", config.CronSchedule)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Configuration fallback applied") {
		t.Error("Expected fallback warning in logs")
	}
	if !strings.Contains(logOutput, "CronSchedule") {
		t.Error("Expected CronSchedule field in warning")
	}
}

func TestLoadConfigFromEnv_InvalidTimezone(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("WORKER_TIMEZONE", "Mars/Olympus_Mons")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if config.Timezone != DefaultConfig().Timezone {
		t.Errorf("Expected default Timezone, got '%s'", config.Timezone)
	}

	if !strings.Contains(buf.String(), "Configuration fallback applied") {
		t.Error("Expected fallback warning in logs")
	}
}

func TestLoadConfigFromEnv_InvalidPublishMaxConcurrent(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Zero", "0"},
		{"Negative", "-1"},
		{"Too high", "51"},
		{"Invalid format", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearWorkerEnv(t)
			t.Setenv("PUBLISH_MAX_CONCURRENT", tt.value)

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			config, err := LoadConfigFromEnv(logger, globalTestMetrics)

			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}

			if config.PublishMaxConcurrent != DefaultConfig().PublishMaxConcurrent {
				t.Errorf("Expected default PublishMaxConcurrent, got %d", config.PublishMaxConcurrent)
			}

			if !strings.Contains(buf.String(), "Configuration fallback applied") {
				t.Error("Expected fallback warning in logs")
			}
		})
	}
}

func TestLoadConfigFromEnv_InvalidComposeTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Zero", "0"},
		{"Negative", "-1s"},
		{"Invalid format", "soon"},
		{"Below range", "10s"},
		{"Above range", "20m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearWorkerEnv(t)
			t.Setenv("COMPOSE_TIMEOUT", tt.value)

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			config, err := LoadConfigFromEnv(logger, globalTestMetrics)

			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}

			if config.ComposeTimeout != DefaultConfig().ComposeTimeout {
				t.Errorf("Expected default ComposeTimeout, got %v", config.ComposeTimeout)
			}

			if !strings.Contains(buf.String(), "Configuration fallback applied") {
				t.Error("Expected fallback warning in logs")
			}
		})
	}
}

func TestLoadConfigFromEnv_InvalidHealthPort(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("WORKER_HEALTH_PORT", "80")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if config.HealthPort != DefaultConfig().HealthPort {
		t.Errorf("Expected default HealthPort, got %d", config.HealthPort)
	}

	if !strings.Contains(buf.String(), "Configuration fallback applied") {
		t.Error("Expected fallback warning in logs")
	}
}

func TestLoadConfigFromEnv_MixedValidAndInvalid(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("DIGEST_SCHEDULE", "15 8 * * 1-5")
	t.Setenv("WORKER_TIMEZONE", "Nowhere/Nothing")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	// Valid value kept, invalid value replaced by its default
	if config.CronSchedule != "15 8 * * 1-5" {
		t.Errorf("Expected CronSchedule '15 8 * * 1-5', got '%s'", config.CronSchedule)
	}
	if config.Timezone != DefaultConfig().Timezone {
		t.Errorf("Expected default Timezone, got '%s'", config.Timezone)
	}
}
