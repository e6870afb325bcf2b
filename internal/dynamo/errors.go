package dynamo

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a configuration that must not be used until it
// is corrected: zero bodies, an inverted range, a non-finite parameter, an
// unknown model name. It is the only error class the simulation core has.
var ErrInvalidConfig = errors.New("dynamo: invalid configuration")

// ConfigError wraps ErrInvalidConfig with the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Invalid is shorthand for building a *ConfigError.
func Invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
