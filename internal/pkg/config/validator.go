package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a cron expression using the robfig/cron/v3
// parser, so anything accepted here is guaranteed to be schedulable.
//
// The expression must follow the standard five-field cron format:
//   - "minute hour day month weekday"
//   - Example: "*/5 * * * *" (every five minutes)
//   - Example: "0 */6 * * *" (every 6 hours)
//   - Example: "30 9 * * 1-5" (weekdays at 9:30)
//
// Error messages include the offending schedule, making them actionable for
// operators fixing configuration issues.
//
// Example:
//
//	err := ValidateCronSchedule("*/5 * * * *")
//	if err != nil {
//	    log.Error("Invalid cron schedule: %v", err)
//	}
//
// Validation tool: https://crontab.guru/
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	return nil
}

// ValidateTimezone validates a timezone string by attempting to load it with
// time.LoadLocation.
//
// The timezone must be a valid IANA timezone name:
//   - Example: "UTC"
//   - Example: "America/New_York"
//   - Example: "Asia/Tokyo"
//
// Loading depends on timezone data being available on the host. If tzdata is
// missing (common in minimal container images), this validation fails even
// for well-formed names.
//
// Common issues:
//   - Missing tzdata package in Docker image
//   - Typo in timezone name
//   - Using UTC offset instead of IANA name (e.g., "+09:00" instead of "Asia/Tokyo")
//
// Timezone database: https://www.iana.org/time-zones
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}

	_, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return nil
}

// ValidateDuration validates that a duration is within a range. Both bounds
// are inclusive, and min must not exceed max.
//
// Error messages include the actual value and the valid range.
//
// Example:
//
//	// Probe timeouts must stay between 10s and 30m
//	err := ValidateDuration(2*time.Minute, 10*time.Second, 30*time.Minute)
//	if err != nil {
//	    log.Error("Invalid duration: %v", err)
//	}
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

// ValidateIntRange validates that an integer value is within a range. Both
// bounds are inclusive, and min must not exceed max.
//
// Error messages include the actual value and the valid range.
//
// Example:
//
//	// Probe concurrency must stay between 1 and 50
//	err := ValidateIntRange(workers, 1, 50)
//	if err != nil {
//	    log.Error("Invalid concurrency: %v", err)
//	}
//
// Use cases:
//   - Concurrency validation (e.g., 1-50 in-flight probes)
//   - Port number validation (e.g., 1024-65535)
//   - Retry attempt validation (e.g., 0-10 retries)
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

// ValidatePositiveDuration validates that a duration is strictly greater
// than zero. Zero and negative timeouts usually mean a unit was forgotten in
// the environment value, so both are rejected.
//
// Example:
//
//	err := ValidatePositiveDuration(2 * time.Minute)
//	if err != nil {
//	    log.Error("Invalid timeout: %v", err)
//	}
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	return nil
}
