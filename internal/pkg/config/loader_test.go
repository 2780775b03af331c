package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Group 1: LoadEnvWithFallback - Basic Loading
// ============================================================================

func TestLoadEnvWithFallback_WithValidValue(t *testing.T) {
	t.Setenv("TEST_CRON", "0 6 * * *")

	result := LoadEnvWithFallback("TEST_CRON", "*/5 * * * *", ValidateCronSchedule)

	assert.Equal(t, "0 6 * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_WithoutValue(t *testing.T) {
	// Don't set TEST_CRON

	result := LoadEnvWithFallback("TEST_CRON", "*/5 * * * *", ValidateCronSchedule)

	assert.Equal(t, "*/5 * * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_EmptyValue(t *testing.T) {
	t.Setenv("TEST_CRON", "")

	result := LoadEnvWithFallback("TEST_CRON", "*/5 * * * *", ValidateCronSchedule)

	// Empty value should use default without warning
	assert.Equal(t, "*/5 * * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_NoValidator(t *testing.T) {
	t.Setenv("TEST_STRING", "any_value")

	result := LoadEnvWithFallback("TEST_STRING", "default", nil)

	// Without validator, any value should be accepted
	assert.Equal(t, "any_value", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 2: LoadEnvWithFallback - Validation Failure and Fallback
// ============================================================================

func TestLoadEnvWithFallback_InvalidCronSchedule(t *testing.T) {
	t.Setenv("TEST_CRON", "invalid format")

	result := LoadEnvWithFallback("TEST_CRON", "*/5 * * * *", ValidateCronSchedule)

	// Should fallback to default
	assert.Equal(t, "*/5 * * * *", result.Value)
	assert.True(t, result.FallbackApplied)

	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_CRON='invalid format'")
	assert.Contains(t, result.Warnings[0], "falling back to default '*/5 * * * *'")
}

func TestLoadEnvWithFallback_InvalidTimezone(t *testing.T) {
	t.Setenv("TEST_TZ", "Invalid/Timezone")

	result := LoadEnvWithFallback("TEST_TZ", "UTC", ValidateTimezone)

	// Should fallback to default
	assert.Equal(t, "UTC", result.Value)
	assert.True(t, result.FallbackApplied)

	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_TZ='Invalid/Timezone'")
	assert.Contains(t, result.Warnings[0], "falling back to default 'UTC'")
}

// ============================================================================
// Test Group 3: LoadEnvDuration - Basic Loading
// ============================================================================

func TestLoadEnvDuration_WithValidValue(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "5m")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)

	assert.Equal(t, 5*time.Minute, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_WithoutValue(t *testing.T) {
	// Don't set TEST_TIMEOUT

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)

	assert.Equal(t, 2*time.Minute, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_NoValidator(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "45s")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, nil)

	// Without validator, any valid duration should be accepted
	assert.Equal(t, 45*time.Second, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 4: LoadEnvDuration - Parse Error and Fallback
// ============================================================================

func TestLoadEnvDuration_InvalidFormat(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "not-a-duration")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)

	// Should fallback to default
	assert.Equal(t, 2*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)

	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_TIMEOUT='not-a-duration'")
	assert.Contains(t, result.Warnings[0], "falling back to default '2m0s'")
}

// ============================================================================
// Test Group 5: LoadEnvDuration - Validation Failure and Fallback
// ============================================================================

func TestLoadEnvDuration_NegativeDuration(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "-30m")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)

	assert.Equal(t, 2*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)

	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_TIMEOUT='-30m'")
}

func TestLoadEnvDuration_ZeroDuration(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "0s")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)

	// Should fallback to default (zero is not positive)
	assert.Equal(t, 2*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvDuration_WithRangeValidator(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "10h")

	validator := func(d time.Duration) error {
		return ValidateDuration(d, 10*time.Second, 30*time.Minute)
	}

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, validator)

	// Should fallback to default (10h exceeds max 30m)
	assert.Equal(t, 2*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "exceeds maximum")
}

// ============================================================================
// Test Group 6: LoadEnvInt - Basic Loading
// ============================================================================

func TestLoadEnvInt_WithValidValue(t *testing.T) {
	t.Setenv("TEST_PORT", "8080")

	result := LoadEnvInt("TEST_PORT", 9091, func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	})

	assert.Equal(t, 8080, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_WithoutValue(t *testing.T) {
	// Don't set TEST_PORT

	result := LoadEnvInt("TEST_PORT", 9091, func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	})

	assert.Equal(t, 9091, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_NoValidator(t *testing.T) {
	t.Setenv("TEST_COUNT", "42")

	result := LoadEnvInt("TEST_COUNT", 10, nil)

	// Without validator, any valid integer should be accepted
	assert.Equal(t, 42, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_NegativeValue(t *testing.T) {
	t.Setenv("TEST_RETRIES", "-5")

	result := LoadEnvInt("TEST_RETRIES", 3, nil)

	// Negative integers are valid integers (parsing succeeds)
	assert.Equal(t, -5, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 7: LoadEnvInt - Parse Error and Fallback
// ============================================================================

func TestLoadEnvInt_InvalidFormat(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")

	result := LoadEnvInt("TEST_PORT", 9091, func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	})

	assert.Equal(t, 9091, result.Value)
	assert.True(t, result.FallbackApplied)

	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_PORT='not-a-number'")
	assert.Contains(t, result.Warnings[0], "invalid integer format")
	assert.Contains(t, result.Warnings[0], "falling back to default '9091'")
}

func TestLoadEnvInt_DecimalFormat(t *testing.T) {
	t.Setenv("TEST_COUNT", "10.5")

	result := LoadEnvInt("TEST_COUNT", 100, nil)

	// fmt.Sscanf parses "10" from "10.5" (stops at decimal point)
	assert.Equal(t, 10, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 8: LoadEnvInt - Validation Failure and Fallback
// ============================================================================

func TestLoadEnvInt_BelowMinimum(t *testing.T) {
	t.Setenv("TEST_CONCURRENCY", "0")

	result := LoadEnvInt("TEST_CONCURRENCY", 5, func(v int) error {
		return ValidateIntRange(v, 1, 50)
	})

	assert.Equal(t, 5, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "below minimum")
}

func TestLoadEnvInt_AboveMaximum(t *testing.T) {
	t.Setenv("TEST_CONCURRENCY", "500")

	result := LoadEnvInt("TEST_CONCURRENCY", 5, func(v int) error {
		return ValidateIntRange(v, 1, 50)
	})

	assert.Equal(t, 5, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "exceeds maximum")
}

// ============================================================================
// Test Group 9: Edge Cases
// ============================================================================

func TestLoadEnvDuration_CompoundDuration(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "1h30m45s")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, nil)

	expected := 1*time.Hour + 30*time.Minute + 45*time.Second
	assert.Equal(t, expected, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_ComplexCronExpression(t *testing.T) {
	testCases := []struct {
		name     string
		schedule string
	}{
		{"hourly", "0 * * * *"},
		{"every 5 minutes", "*/5 * * * *"},
		{"weekdays at 9am", "0 9 * * 1-5"},
		{"weekend at noon", "0 12 * * 6,0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_CRON", tc.schedule)

			result := LoadEnvWithFallback("TEST_CRON", "*/5 * * * *", ValidateCronSchedule)

			assert.Equal(t, tc.schedule, result.Value)
			assert.Empty(t, result.Warnings)
			assert.False(t, result.FallbackApplied)
		})
	}
}

func TestLoadEnvWithFallback_VariousTimezones(t *testing.T) {
	testCases := []struct {
		name     string
		timezone string
	}{
		{"UTC", "UTC"},
		{"New York", "America/New_York"},
		{"Tokyo", "Asia/Tokyo"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_TZ", tc.timezone)

			result := LoadEnvWithFallback("TEST_TZ", "UTC", ValidateTimezone)

			assert.Equal(t, tc.timezone, result.Value)
			assert.Empty(t, result.Warnings)
			assert.False(t, result.FallbackApplied)
		})
	}
}

// ============================================================================
// Test Group 10: Multiple Fallbacks Scenario
// ============================================================================

func TestMultipleFallbacks_Simulation(t *testing.T) {
	// Simulate a worker booting with several bad environment values
	t.Setenv("HEALTH_CRON_SCHEDULE", "invalid")
	t.Setenv("WORKER_TIMEZONE", "Invalid/Zone")
	t.Setenv("PROBE_TIMEOUT", "-5m")

	var allWarnings []string
	fallbackCount := 0

	cronResult := LoadEnvWithFallback("HEALTH_CRON_SCHEDULE", "*/5 * * * *", ValidateCronSchedule)
	if cronResult.FallbackApplied {
		fallbackCount++
		allWarnings = append(allWarnings, cronResult.Warnings...)
	}

	tzResult := LoadEnvWithFallback("WORKER_TIMEZONE", "UTC", ValidateTimezone)
	if tzResult.FallbackApplied {
		fallbackCount++
		allWarnings = append(allWarnings, tzResult.Warnings...)
	}

	timeoutResult := LoadEnvDuration("PROBE_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)
	if timeoutResult.FallbackApplied {
		fallbackCount++
		allWarnings = append(allWarnings, timeoutResult.Warnings...)
	}

	// Verify all three fallbacks were applied
	assert.Equal(t, 3, fallbackCount)
	assert.Len(t, allWarnings, 3)

	// Verify default values were used
	assert.Equal(t, "*/5 * * * *", cronResult.Value)
	assert.Equal(t, "UTC", tzResult.Value)
	assert.Equal(t, 2*time.Minute, timeoutResult.Value)
}

// ============================================================================
// Test Group 11: Type Assertion Verification
// ============================================================================

func TestConfigLoadResult_TypeAssertion_String(t *testing.T) {
	t.Setenv("TEST_STRING", "test_value")

	result := LoadEnvWithFallback("TEST_STRING", "default", nil)

	value, ok := result.Value.(string)
	assert.True(t, ok)
	assert.Equal(t, "test_value", value)
}

func TestConfigLoadResult_TypeAssertion_Duration(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "1h")

	result := LoadEnvDuration("TEST_TIMEOUT", 2*time.Minute, nil)

	value, ok := result.Value.(time.Duration)
	assert.True(t, ok)
	assert.Equal(t, 1*time.Hour, value)
}

func TestConfigLoadResult_TypeAssertion_Int(t *testing.T) {
	t.Setenv("TEST_PORT", "8080")

	result := LoadEnvInt("TEST_PORT", 9091, nil)

	value, ok := result.Value.(int)
	assert.True(t, ok)
	assert.Equal(t, 8080, value)
}
