package frontend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for launch files the frontend cannot read (e.g. Python).
	ErrUnsupportedFormat = errors.New("unsupported launch file format")
	// ErrSubstitutionSyntax is returned for malformed "$(...)" expressions.
	ErrSubstitutionSyntax = errors.New("malformed substitution")
)

// ParseError locates a syntax problem in a launch file.
type ParseError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
