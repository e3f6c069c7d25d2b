package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "health.interval_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateHealth()...)
	errors = append(errors, c.validateTasks()...)
	errors = append(errors, c.validateUI()...)
	errors = append(errors, c.validateDemo()...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateHealth validates the HealthConfig
func (c *Config) validateHealth() []ValidationError {
	var errors []ValidationError

	if c.Health.IntervalSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "health.interval_seconds",
			Value:   c.Health.IntervalSeconds,
			Message: "must be positive",
		})
	}

	if c.Health.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "health.timeout_seconds",
			Value:   c.Health.TimeoutSeconds,
			Message: "must be positive",
		})
	} else if c.Health.IntervalSeconds > 0 && c.Health.TimeoutSeconds > c.Health.IntervalSeconds {
		errors = append(errors, ValidationError{
			Field:   "health.timeout_seconds",
			Value:   c.Health.TimeoutSeconds,
			Message: "must not exceed health.interval_seconds",
		})
	}

	return errors
}

// validateTasks validates the TasksConfig
func (c *Config) validateTasks() []ValidationError {
	if c.Tasks.ShutdownTimeoutSeconds < 0 {
		return []ValidationError{{
			Field:   "tasks.shutdown_timeout_seconds",
			Value:   c.Tasks.ShutdownTimeoutSeconds,
			Message: "must be non-negative",
		}}
	}
	return nil
}

// validateUI validates the UIConfig
func (c *Config) validateUI() []ValidationError {
	var errors []ValidationError

	if c.UI.MaxStatusLines < 1 || c.UI.MaxStatusLines > 50 {
		errors = append(errors, ValidationError{
			Field:   "ui.max_status_lines",
			Value:   c.UI.MaxStatusLines,
			Message: "must be between 1 and 50",
		})
	}

	if c.UI.Theme != "" && !slices.Contains(ValidThemes(), c.UI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "ui.theme",
			Value:   c.UI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	return errors
}

// validateDemo validates the DemoConfig
func (c *Config) validateDemo() []ValidationError {
	const minIntervalMs = 50
	if c.Demo.Enabled && c.Demo.MessageIntervalMs < minIntervalMs {
		return []ValidationError{{
			Field:   "demo.message_interval_ms",
			Value:   c.Demo.MessageIntervalMs,
			Message: fmt.Sprintf("must be at least %d when demo is enabled", minIntervalMs),
		}}
	}
	return nil
}
