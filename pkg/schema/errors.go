package schema

import (
	"errors"
	"fmt"
)

// CoercionError represents a parameter value that does not match its declared type.
type CoercionError struct {
	Key    string // Parameter name
	Type   string // Declared type
	Raw    string // Resolved text
	Reason string // Human-readable reason for failure
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("parameter %q: cannot read %q as %s: %s", e.Key, e.Raw, e.Type, e.Reason)
}

// IsCoercionError reports whether err wraps a CoercionError.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}
