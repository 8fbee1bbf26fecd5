package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validate validates the configuration and returns validation errors.
func (c *Config) Validate() []error {
	var errs []error

	if c.Input.Path == "" {
		errs = append(errs, &ValidationError{
			Field:   "input.path",
			Message: "input path is required",
		})
	}

	if c.Detectors.ZScore.Threshold <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "detectors.zscore.threshold",
			Message: fmt.Sprintf("threshold must be positive, got %v", c.Detectors.ZScore.Threshold),
		})
	}

	iso := c.Detectors.IsolationForest
	if iso.Contamination < 0 || iso.Contamination > 0.5 {
		errs = append(errs, &ValidationError{
			Field:   "detectors.isolation_forest.contamination",
			Message: fmt.Sprintf("contamination must be in [0, 0.5], got %v", iso.Contamination),
		})
	}
	if iso.Trees < 1 {
		errs = append(errs, &ValidationError{
			Field:   "detectors.isolation_forest.trees",
			Message: fmt.Sprintf("trees must be at least 1, got %d", iso.Trees),
		})
	}
	if iso.Subsample < 2 {
		errs = append(errs, &ValidationError{
			Field:   "detectors.isolation_forest.subsample",
			Message: fmt.Sprintf("subsample must be at least 2, got %d", iso.Subsample),
		})
	}

	if c.Detectors.Residual.Sigma <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "detectors.residual.sigma",
			Message: fmt.Sprintf("sigma must be positive, got %v", c.Detectors.Residual.Sigma),
		})
	}

	if c.Report.OutputDir == "" {
		errs = append(errs, &ValidationError{
			Field:   "report.output_dir",
			Message: "output directory is required",
		})
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, &ValidationError{
			Field:   "history.path",
			Message: "history path is required when history is enabled",
		})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("level must be one of debug, info, warn, error; got %q", c.Logging.Level),
		})
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("format must be json or console, got %q", c.Logging.Format),
		})
	}

	return errs
}
