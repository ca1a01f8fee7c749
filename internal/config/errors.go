package config

import "fmt"

// ConfigurationError is fatal: the run stops before any table is touched.
type ConfigurationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error [%s]: %s", e.Field, e.Reason)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

func newConfigError(field, reason string, cause error) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason, Cause: cause}
}
