package launch

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedVariable is returned when a launch configuration is read before it is set.
	ErrUndefinedVariable = errors.New("launch configuration not set")
	// ErrUnsupportedSubstitution is returned for substitutions that would execute code.
	ErrUnsupportedSubstitution = errors.New("substitution not supported")
	// ErrUnknownSubstitution is returned for substitution names the engine does not know.
	ErrUnknownSubstitution = errors.New("unknown substitution")
	// ErrInvalidCondition is returned when a condition does not resolve to a boolean.
	ErrInvalidCondition = errors.New("invalid condition value")
	// ErrMissingArgument is returned when a declared argument has no value and no default.
	ErrMissingArgument = errors.New("required launch argument not provided")
	// ErrInvalidChoice is returned when an argument value is not one of its choices.
	ErrInvalidChoice = errors.New("launch argument value not in choices")
	// ErrUnsupportedEntity is returned when the engine is asked to expand a family it does not implement.
	ErrUnsupportedEntity = errors.New("unsupported entity")
	// ErrNoLoader is returned when an include is expanded without a source loader.
	ErrNoLoader = errors.New("no source loader configured")
)

// SubstitutionError reports a failure while resolving one substitution.
type SubstitutionError struct {
	Expr string
	Err  error
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("substitution %s: %v", e.Expr, e.Err)
}

func (e *SubstitutionError) Unwrap() error {
	return e.Err
}
