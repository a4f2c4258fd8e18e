package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================
// ValidateCronSchedule
// ============================================================

func TestValidateCronSchedule_Valid(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
	}{
		{"daily at 9 AM", "0 9 * * *"},
		{"daily at midnight", "0 0 * * *"},
		{"weekdays at 9", "0 9 * * 1-5"},
		{"every 6 hours", "0 */6 * * *"},
		{"first day of month", "0 0 1 * *"},
		{"two editions a day", "0 9,18 * * *"},
		{"every minute", "* * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			assert.NoError(t, err, "Expected valid cron schedule: %s", tt.schedule)
		})
	}
}

func TestValidateCronSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
	}{
		{"empty string", ""},
		{"too few fields", "0 9"},
		{"too many fields", "0 9 * * * * *"},
		{"invalid minute", "60 9 * * *"},
		{"invalid hour", "0 24 * * *"},
		{"invalid weekday", "0 9 * * 8"},
		{"random text", "every morning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			assert.Error(t, err, "Expected error for invalid schedule: %s", tt.schedule)
			assert.Contains(t, err.Error(), "invalid cron schedule")
		})
	}
}

func TestValidateCronSchedule_ErrorMessage(t *testing.T) {
	err := ValidateCronSchedule("every morning")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule 'every morning'", "Error should include the schedule value")
}

// ============================================================
// ValidateTimezone
// ============================================================

func TestValidateTimezone_Valid(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
	}{
		{"UTC", "UTC"},
		{"European", "Europe/Berlin"},
		{"American", "America/New_York"},
		{"Asian", "Asia/Tokyo"},
		{"Local", "Local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.timezone)
			assert.NoError(t, err, "Expected valid timezone: %s", tt.timezone)
		})
	}
}

func TestValidateTimezone_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
	}{
		{"empty string", ""},
		{"fictional place", "Atlantis/Lost_City"},
		{"UTC offset not IANA", "+09:00"},
		{"abbreviation typo", "UCT+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.timezone)
			assert.Error(t, err, "Expected error for invalid timezone: %s", tt.timezone)
			assert.Contains(t, err.Error(), "invalid timezone")
		})
	}
}

// ============================================================
// ValidateDuration
// ============================================================

func TestValidateDuration_Valid(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		min      time.Duration
		max      time.Duration
	}{
		{"middle of range", 2 * time.Minute, 30 * time.Second, 10 * time.Minute},
		{"exactly minimum", 30 * time.Second, 30 * time.Second, 10 * time.Minute},
		{"exactly maximum", 10 * time.Minute, 30 * time.Second, 10 * time.Minute},
		{"point range", time.Minute, time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.duration, tt.min, tt.max)
			assert.NoError(t, err)
		})
	}
}

func TestValidateDuration_BelowMin(t *testing.T) {
	err := ValidateDuration(10*time.Second, 30*time.Second, 10*time.Minute)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestValidateDuration_ExceedsMax(t *testing.T) {
	err := ValidateDuration(time.Hour, 30*time.Second, 10*time.Minute)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestValidateDuration_InvalidRange(t *testing.T) {
	// min greater than max is a programming error, reported as such
	err := ValidateDuration(time.Minute, 10*time.Minute, 30*time.Second)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
}

// ============================================================
// ValidateIntRange
// ============================================================

func TestValidateIntRange_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value int
		min   int
		max   int
	}{
		{"concurrency in range", 4, 1, 50},
		{"port at minimum", 1024, 1024, 65535},
		{"port at maximum", 65535, 1024, 65535},
		{"zero in zero-based range", 0, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIntRange(tt.value, tt.min, tt.max)
			assert.NoError(t, err)
		})
	}
}

func TestValidateIntRange_BelowMin(t *testing.T) {
	err := ValidateIntRange(80, 1024, 65535)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestValidateIntRange_ExceedsMax(t *testing.T) {
	err := ValidateIntRange(100, 1, 50)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestValidateIntRange_InvalidRange(t *testing.T) {
	err := ValidateIntRange(5, 50, 1)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
}

// ============================================================
// ValidatePositiveDuration
// ============================================================

func TestValidatePositiveDuration_Valid(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{"one nanosecond", time.Nanosecond},
		{"probe timeout", 10 * time.Second},
		{"request timeout", 35 * time.Second},
		{"compose timeout", 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositiveDuration(tt.duration)
			assert.NoError(t, err)
		})
	}
}

func TestValidatePositiveDuration_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{"zero", 0},
		{"negative", -30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositiveDuration(tt.duration)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "must be positive")
		})
	}
}
