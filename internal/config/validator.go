package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/ratestub/internal/output"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate validates the whole configuration.
//
// Returns nil if valid, or a ValidationErrors containing every problem found.
// It never touches the network, so a bad configuration is always reported
// before any port is bound.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Port < 0 || c.Port > 65535 {
		errs.Add("port", fmt.Sprintf("port must be between 0 and 65535, got %d", c.Port))
	}

	if _, err := ParseDelay(c.Delay); err != nil {
		errs.Add("delay", err.Error())
	}

	if _, err := output.ParseFormat(c.Format); err != nil {
		errs.Add("format", err.Error())
	}

	if c.EventBuffer < 1 {
		errs.Add("eventBuffer", "eventBuffer must be at least 1")
	}

	validateDashboard(&c.Dashboard, errs)
	validateLog(&c.Log, errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateDashboard(d *DashboardConfig, errs *ValidationErrors) {
	if d.RecentEntries < 1 {
		errs.Add("dashboard.recentEntries", "recentEntries must be at least 1")
	}
	validatePositiveDuration("dashboard.refreshInterval", d.RefreshInterval, errs)
	validatePositiveDuration("dashboard.summaryInterval", d.SummaryInterval, errs)
}

func validateLog(l *LogConfig, errs *ValidationErrors) {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs.Add("log.level", fmt.Sprintf("unknown log level: %s", l.Level))
	}
}

func validatePositiveDuration(field, value string, errs *ValidationErrors) {
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		errs.Add(field, fmt.Sprintf("invalid duration: %v", err))
		return
	}
	if d <= 0 {
		errs.Add(field, "duration must be positive")
	}
}

// IsValidationError reports whether err came from configuration validation.
func IsValidationError(err error) bool {
	var one *ValidationError
	var many *ValidationErrors
	return errors.As(err, &one) || errors.As(err, &many)
}
