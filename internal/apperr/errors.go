// Package apperr defines the closed set of error kinds surfaced by the case
// query core.
//
// Every failure crossing a package boundary is one of two kinds:
//   - KindValidation: a bad filter value, bad write input or unknown identifier.
//     Raised before any statement is built; callers map it to a client error.
//   - KindDataLayer: constraint violation, malformed SQL, connection loss.
//     Wraps the driver error unmodified so errors.Is/As still reach it.
//
// Nothing in this layer retries. Callers own retry and backoff policy.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an Error.
type Kind string

const (
	// KindValidation marks caller input that cannot be turned into a query or write.
	KindValidation Kind = "VALIDATION"

	// KindDataLayer marks failures reported by the store or its driver.
	KindDataLayer Kind = "DATA_LAYER"
)

// Error is the typed failure returned by the core.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Op names the operation that failed (e.g. "parse filter", "upsert case").
	Op string

	// Value is the offending input for validation errors.
	Value string

	// Message is a human-readable description.
	Message string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error naming the offending value.
func Validation(op, value, format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// DataLayer wraps a store or driver error. Returns nil for a nil err.
func DataLayer(op string, err error) error {
	if err == nil {
		return nil
	}
	// Already classified: keep the innermost classification.
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{
		Kind:    KindDataLayer,
		Op:      op,
		Message: "data layer failure",
		Err:     err,
	}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsDataLayer reports whether err is a data-layer error.
func IsDataLayer(err error) bool {
	return KindOf(err) == KindDataLayer
}
