package aggregate

import (
	"errors"
	"fmt"
)

// ErrUnknownFunction is returned by Engine.Run when the requested result
// function is not registered. No aggregation is performed.
var ErrUnknownFunction = errors.New("unknown result function")

// ConfigError reports chain configuration that a query requires but that is
// missing, such as the iteration module of a chain. The query is aborted.
type ConfigError struct {
	// Chain is the chain being queried.
	Chain string

	// Function is the result function that needed the configuration.
	Function string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("chain %s: %s (function %q)", e.Chain, e.Message, e.Function)
	}
	return fmt.Sprintf("chain %s: %s", e.Chain, e.Message)
}

// IsConfigError returns true if err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
