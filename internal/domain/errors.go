package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound signals an undeclared resource name.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidFilterFormat signals an unparseable filter or group specification.
	ErrInvalidFilterFormat = errors.New("invalid filter format")
	// ErrInvalidParams signals malformed listing parameters (page, sort direction, ...).
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrUnknownField signals a reference to a field the resource does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrBackendFailure signals that the query executor failed or was cancelled.
	ErrBackendFailure = errors.New("backend failure")
	// ErrInvalidSchema signals an invalid resource definition.
	ErrInvalidSchema = errors.New("invalid schema")
)

// ErrorKind classifies engine errors.
type ErrorKind string

const (
	// KindInvalidFilterFormat is a caller error detected before any query runs.
	KindInvalidFilterFormat ErrorKind = "invalid_filter_format"
	// KindUnknownField is recovered locally; only surfaced for observability.
	KindUnknownField ErrorKind = "unknown_field"
	// KindBackendFailure is fatal for the current request.
	KindBackendFailure ErrorKind = "backend_failure"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidFilterFormat:
		return ErrInvalidFilterFormat
	case KindUnknownField:
		return ErrUnknownField
	default:
		return ErrBackendFailure
	}
}

// EngineError is returned by the listing pipeline. It unwraps to both the
// sentinel for its kind and the underlying cause.
type EngineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind.sentinel(), e.Err)
}

func (e *EngineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// NewBackendFailure wraps an executor error.
func NewBackendFailure(op string, err error) error {
	return &EngineError{Kind: KindBackendFailure, Op: op, Err: err}
}

// NewInvalidFilterFormat wraps a parse error for a filter or group parameter.
func NewInvalidFilterFormat(op string, err error) error {
	return &EngineError{Kind: KindInvalidFilterFormat, Op: op, Err: err}
}

// UnknownFieldError describes a dropped reference.
type UnknownFieldError struct {
	Resource string
	Field    string
	Context  string // filter, sort, column, group, summary
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s %q on resource %q: %s", e.Context, e.Field, e.Resource, ErrUnknownField)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }
