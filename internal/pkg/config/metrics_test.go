package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestNewConfigMetrics_Registration tests that metrics are registered correctly
func TestNewConfigMetrics_Registration(t *testing.T) {
	// Create metrics with unique component name to avoid conflicts
	componentName := "test_component_registration"
	metrics := NewConfigMetrics(componentName)

	// Verify all metrics are initialized
	assert.NotNil(t, metrics.LoadTimestamp, "LoadTimestamp should be initialized")
	assert.NotNil(t, metrics.ValidationErrorsTotal, "ValidationErrorsTotal should be initialized")
	assert.NotNil(t, metrics.FallbacksTotal, "FallbacksTotal should be initialized")
	assert.NotNil(t, metrics.FallbackActive, "FallbackActive should be initialized")

	// Verify component name is stored
	assert.Equal(t, componentName, metrics.componentName, "Component name should be stored")
}

// TestNewConfigMetrics_UniqueNames tests that different components create unique metrics
func TestNewConfigMetrics_UniqueNames(t *testing.T) {
	workerMetrics := NewConfigMetrics("test_worker")
	probeMetrics := NewConfigMetrics("test_probe")

	// Verify metrics are different instances
	assert.NotSame(t, workerMetrics.LoadTimestamp, probeMetrics.LoadTimestamp,
		"Different components should have different metric instances")

	// Both should be usable without panic
	workerMetrics.RecordLoadTimestamp()
	probeMetrics.RecordLoadTimestamp()
}

// TestRecordLoadTimestamp_UpdatesMetric tests that load timestamp is recorded
func TestRecordLoadTimestamp_UpdatesMetric(t *testing.T) {
	metrics := NewConfigMetrics("test_load_timestamp")

	metrics.RecordLoadTimestamp()

	value := testutil.ToFloat64(metrics.LoadTimestamp)
	assert.Greater(t, value, float64(0), "Load timestamp should be greater than 0")
}

// TestRecordValidationError_IncrementsCounter tests validation error recording
func TestRecordValidationError_IncrementsCounter(t *testing.T) {
	metrics := NewConfigMetrics("test_validation_error")

	initialValue := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("cron_schedule"))
	assert.Equal(t, float64(0), initialValue, "Initial validation error count should be 0")

	metrics.RecordValidationError("cron_schedule")

	newValue := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("cron_schedule"))
	assert.Equal(t, float64(1), newValue, "Validation error count should be 1 after recording")

	metrics.RecordValidationError("cron_schedule")

	finalValue := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("cron_schedule"))
	assert.Equal(t, float64(2), finalValue, "Validation error count should be 2 after second recording")
}

// TestRecordValidationError_DifferentFields tests that errors are tracked per field
func TestRecordValidationError_DifferentFields(t *testing.T) {
	metrics := NewConfigMetrics("test_validation_fields")

	metrics.RecordValidationError("cron_schedule")
	metrics.RecordValidationError("probe_timeout")
	metrics.RecordValidationError("cron_schedule")

	cronCount := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("cron_schedule"))
	timeoutCount := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("probe_timeout"))

	assert.Equal(t, float64(2), cronCount, "Cron schedule should have 2 errors")
	assert.Equal(t, float64(1), timeoutCount, "Probe timeout should have 1 error")
}

// TestRecordFallback_IncrementsCounter tests fallback recording
func TestRecordFallback_IncrementsCounter(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback")

	initialValue := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone"))
	assert.Equal(t, float64(0), initialValue, "Initial fallback count should be 0")

	metrics.RecordFallback("timezone", "default")

	newValue := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone"))
	assert.Equal(t, float64(1), newValue, "Fallback count should be 1 after recording")

	metrics.RecordFallback("timezone", "default")

	finalValue := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone"))
	assert.Equal(t, float64(2), finalValue, "Fallback count should be 2 after second recording")
}

// TestRecordFallback_DifferentFields tests that fallbacks are tracked per field
func TestRecordFallback_DifferentFields(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback_fields")

	metrics.RecordFallback("cron_schedule", "default")
	metrics.RecordFallback("timezone", "default")
	metrics.RecordFallback("probe_timeout", "default")
	metrics.RecordFallback("cron_schedule", "default")

	cronCount := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("cron_schedule"))
	timezoneCount := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone"))
	timeoutCount := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("probe_timeout"))

	assert.Equal(t, float64(2), cronCount, "Cron schedule should have 2 fallbacks")
	assert.Equal(t, float64(1), timezoneCount, "Timezone should have 1 fallback")
	assert.Equal(t, float64(1), timeoutCount, "Probe timeout should have 1 fallback")
}

// TestSetFallbackActive_True tests setting fallback active to true
func TestSetFallbackActive_True(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback_active_true")

	metrics.SetFallbackActive("any", true)

	value := testutil.ToFloat64(metrics.FallbackActive)
	assert.Equal(t, float64(1), value, "Fallback active should be 1 when set to true")
}

// TestSetFallbackActive_False tests setting fallback active to false
func TestSetFallbackActive_False(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback_active_false")

	metrics.SetFallbackActive("any", true)
	metrics.SetFallbackActive("any", false)

	value := testutil.ToFloat64(metrics.FallbackActive)
	assert.Equal(t, float64(0), value, "Fallback active should be 0 when set to false")
}

// TestSetFallbackActive_Toggle tests toggling fallback active status
func TestSetFallbackActive_Toggle(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback_toggle")

	metrics.SetFallbackActive("", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive), "Should start at 0")

	metrics.SetFallbackActive("", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive), "Should be 1 after setting true")

	metrics.SetFallbackActive("", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive), "Should be 0 after setting false")
}

// TestMetrics_Integration tests realistic usage scenario
func TestMetrics_Integration(t *testing.T) {
	metrics := NewConfigMetrics("test_integration")

	// Simulate a configuration load with two bad fields
	metrics.RecordLoadTimestamp()

	metrics.RecordValidationError("cron_schedule")
	metrics.RecordValidationError("probe_timeout")

	metrics.RecordFallback("cron_schedule", "default")
	metrics.RecordFallback("probe_timeout", "default")

	metrics.SetFallbackActive("multiple", true)

	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0),
		"Load timestamp should be recorded")

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("cron_schedule")),
		"Cron schedule validation error should be recorded")

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("probe_timeout")),
		"Probe timeout validation error should be recorded")

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("cron_schedule")),
		"Cron schedule fallback should be recorded")

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("probe_timeout")),
		"Probe timeout fallback should be recorded")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive),
		"Fallback active should be set")
}

// TestMetrics_NoErrorsScenario tests scenario with no validation errors
func TestMetrics_NoErrorsScenario(t *testing.T) {
	metrics := NewConfigMetrics("test_no_errors")

	metrics.RecordLoadTimestamp()
	metrics.SetFallbackActive("", false)

	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0),
		"Load timestamp should be recorded")

	assert.Equal(t, float64(0),
		testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("any_field")),
		"No validation errors should be recorded")

	assert.Equal(t, float64(0),
		testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("any_field")),
		"No fallbacks should be recorded")

	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive),
		"Fallback active should be 0")
}

// TestMetrics_ConcurrentAccess tests metrics are safe for concurrent access
func TestMetrics_ConcurrentAccess(t *testing.T) {
	metrics := NewConfigMetrics("test_concurrent")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			metrics.RecordLoadTimestamp()
			metrics.RecordValidationError("test_field")
			metrics.RecordFallback("test_field", "default")
			metrics.SetFallbackActive("test_field", true)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0),
		"Load timestamp should be recorded")

	validationErrors := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("test_field"))
	assert.Equal(t, float64(10), validationErrors,
		"Should have recorded 10 validation errors")

	fallbacks := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("test_field"))
	assert.Equal(t, float64(10), fallbacks,
		"Should have recorded 10 fallbacks")
}

// TestMetrics_EdgeCases tests edge cases and boundary conditions
func TestMetrics_EdgeCases(t *testing.T) {
	metrics := NewConfigMetrics("test_edge_cases")

	// Empty field names are valid label values
	metrics.RecordValidationError("")
	metrics.RecordFallback("", "default")

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("")),
		"Should handle empty field name")

	// Setting fallback active repeatedly to the same value is idempotent
	metrics.SetFallbackActive("", true)
	metrics.SetFallbackActive("", true)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive),
		"Multiple sets to same value should work")
}
