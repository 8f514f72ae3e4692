package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// TransportError wraps a message-delivery failure with its classification.
// Transient failures (timeouts, temporary connection loss, throttling) may be
// retried; permanent ones (invalid address, rejected credentials) may not.
type TransportError struct {
	Err       error
	Transient bool
}

func NewTransportError(err error, transient bool) error {
	return &TransportError{Err: err, Transient: transient}
}

func (err TransportError) Error() string {
	if err.Err == nil {
		return "transport error"
	}
	return err.Err.Error()
}

func (err TransportError) Unwrap() error { return err.Err }

// IsTransient reports whether err is a delivery failure worth retrying.
func IsTransient(err error) bool {
	if terr, ok := errors.Cause(err).(*TransportError); ok {
		return terr.Transient
	}
	return false
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
