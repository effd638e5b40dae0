package leases

import (
	"errors"
	"fmt"
)

// Error kinds returned by Parse. Use errors.Is to test for them.
var (
	ErrMalformedDate      = errors.New("malformed date")
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrUnexpectedOption   = errors.New("unexpected option")
	ErrMissingField       = errors.New("missing field")
	ErrExpectedTerminator = errors.New("expected terminator")
	ErrUnterminatedBlock  = errors.New("unterminated block")
	ErrMalformedInput     = errors.New("malformed input")
)

// ParseError is the single failure value returned by Parse and ParseDate
type ParseError struct {
	Kind error
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newError(kind error, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}
