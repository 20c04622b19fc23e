package calendar

import (
	"errors"
	"fmt"
)

// ErrorCode identifies why a candidate could not be resolved.
type ErrorCode string

const (
	// ErrCodeInvalidDate indicates a well-formed field set that is not a real calendar date.
	ErrCodeInvalidDate ErrorCode = "INVALID_DATE"
	// ErrCodeAmbiguousDateUnresolved indicates that no ordering of bare numeric tokens yields a valid date.
	ErrCodeAmbiguousDateUnresolved ErrorCode = "AMBIGUOUS_DATE_UNRESOLVED"
	// ErrCodeFieldConflict indicates two certain values for the same field disagreed during a merge.
	ErrCodeFieldConflict ErrorCode = "FIELD_CONFLICT"
)

// Error is the structured error returned by the resolution engine.
// Every code is recoverable: callers treat it as "this candidate is not a match".
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// InvalidDate creates an invalid date error.
func InvalidDate(msg string) *Error {
	return &Error{Code: ErrCodeInvalidDate, Message: msg}
}

// AmbiguousDateUnresolved creates an unresolved ambiguous date error.
func AmbiguousDateUnresolved(msg string) *Error {
	return &Error{Code: ErrCodeAmbiguousDateUnresolved, Message: msg}
}

// FieldConflict creates a field conflict error.
func FieldConflict(field Field, current, incoming int) *Error {
	return &Error{
		Code:    ErrCodeFieldConflict,
		Message: fmt.Sprintf("conflicting certain values for %s: %d vs %d", field, current, incoming),
	}
}

// IsCode checks if an error, or any error it wraps, carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNoMatch reports whether err is one of the engine's recoverable errors.
func IsNoMatch(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
