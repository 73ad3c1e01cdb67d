package composer

import (
	"errors"
	"fmt"
)

var (
	ErrNoMergeableContent = errors.New("no mergeable content found in the supplied configurations")
	ErrEmptyOutput        = errors.New("merged document is empty")
	ErrMissingName        = errors.New("metadata name is required")
	ErrMissingContent     = errors.New("content is required")
)

// ConfigError reports input that cannot be merged at all. Merging stops at
// the first ConfigError.
type ConfigError struct {
	Field  string // Optional: offending field, e.g. "metadata.name"
	Bundle string // Optional: name of the offending bundle
	Err    error
}

func (e *ConfigError) Error() string {
	var prefix string
	switch {
	case e.Bundle != "" && e.Field != "":
		prefix = fmt.Sprintf("configuration %q: %s", e.Bundle, e.Field)
	case e.Bundle != "":
		prefix = fmt.Sprintf("configuration %q", e.Bundle)
	case e.Field != "":
		prefix = "configuration: " + e.Field
	default:
		prefix = "configuration"
	}
	return prefix + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError describes a malformed metadata shape. It is always
// delivered wrapped in a ConfigError.
type ValidationError struct {
	Field  string
	Bundle string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Bundle != "" {
		return fmt.Sprintf("invalid %s in %q: %s", e.Field, e.Bundle, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(bundle, field, reason string) *ConfigError {
	return &ConfigError{
		Field:  field,
		Bundle: bundle,
		Err:    &ValidationError{Field: field, Bundle: bundle, Reason: reason},
	}
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
