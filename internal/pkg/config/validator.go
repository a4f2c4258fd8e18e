package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a five-field cron expression with the same
// robfig/cron parser the digest scheduler runs on, so anything accepted here
// is guaranteed to schedule.
//
// Format: "minute hour day month weekday", e.g. "0 9 * * *" (daily at 09:00)
// or "0 9 * * 1-5" (weekdays at 09:00).
//
// Returns nil when valid; otherwise an error naming the rejected expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	return nil
}

// ValidateTimezone validates an IANA timezone name ("UTC",
// "Europe/Berlin", "Asia/Tokyo") by loading it with time.LoadLocation.
//
// Loading depends on system timezone data; a valid name can still fail in a
// container image without the tzdata package, and the error says so. UTC
// offsets ("+09:00") are not IANA names and are rejected.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return nil
}

// ValidateDuration checks that a duration lies in the inclusive [min, max]
// range. Used for timeouts where both a too-short value (compose can never
// finish) and a too-long one (a hung run blocks the next tick) are wrong.
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if duration < min {
		return fmt.Errorf("duration %v is below minimum %v", duration, min)
	}

	if duration > max {
		return fmt.Errorf("duration %v exceeds maximum %v", duration, max)
	}

	return nil
}

// ValidateIntRange checks that an integer lies in the inclusive [min, max]
// range. Used for ports (1024-65535) and publish concurrency caps.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}

	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}

	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}

	return nil
}

// ValidatePositiveDuration checks that a duration is strictly positive.
// Zero usually means "disabled" in http.Client timeouts, which is never what
// a bounded compose run wants.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	return nil
}
