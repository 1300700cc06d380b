package domain

import (
	"errors"
	"fmt"
)

// ErrToolNotFound is returned when a tool name is not part of the registry.
var ErrToolNotFound = errors.New("tool not found")

// ErrMissingArgument is returned when a required tool argument is absent or empty.
var ErrMissingArgument = errors.New("missing argument")

// ErrInvalidArgument is returned when an argument has the wrong shape.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrIndexNotAllowed is returned when a concrete index fails the allow-list.
var ErrIndexNotAllowed = errors.New("index not allowed")

// ErrForbiddenKeyword is returned when a pipe query contains a mutating verb.
var ErrForbiddenKeyword = errors.New("forbidden keyword")

// ValidationError is a request rejected by argument validation or query mediation.
// Msg carries the triggering detail and is what callers see.
type ValidationError struct {
	Err error
	Msg string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError around one of the sentinels above.
func NewValidationError(sentinel error, format string, args ...any) *ValidationError {
	return &ValidationError{Err: sentinel, Msg: fmt.Sprintf(format, args...)}
}

// BackendError is a failure reported by the search backend.
type BackendError struct {
	Op     string
	Status int
	Msg    string
	Err    error
}

func (e *BackendError) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("%s: [%d] %s", e.Op, e.Status, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *BackendError) Unwrap() error { return e.Err }

// ErrorKind classifies a ToolError for transports and metrics.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindBackend    ErrorKind = "backend"
	KindInternal   ErrorKind = "internal"
)

// ToolError is the only error a tool call ever returns to a transport.
type ToolError struct {
	Tool  ToolName
	Kind  ErrorKind
	Cause error
}

func (e *ToolError) Error() string { return e.Cause.Error() }

func (e *ToolError) Unwrap() error { return e.Cause }

// Trace returns the chain of wrapped error messages, outermost first.
func (e *ToolError) Trace() []string {
	var trace []string
	for err := e.Cause; err != nil; err = errors.Unwrap(err) {
		trace = append(trace, fmt.Sprintf("%T: %v", err, err))
	}
	return trace
}

// NewToolError classifies err and wraps it.
func NewToolError(tool ToolName, err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	kind := KindInternal
	var ve *ValidationError
	var be *BackendError
	switch {
	case errors.As(err, &ve):
		kind = KindValidation
	case errors.As(err, &be):
		kind = KindBackend
	}
	return &ToolError{Tool: tool, Kind: kind, Cause: err}
}
