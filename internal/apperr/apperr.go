// Package apperr defines the per-request error taxonomy of the booking core.
// Every error here is a normal request outcome; none is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError covers malformed input and references to entities that do
// not exist or are inactive. Correct the input and resubmit; never retried
// automatically.
type ValidationError struct {
	Code string
}

func (e ValidationError) Error() string {
	return e.Code
}

func Validation(code string) error {
	return ValidationError{Code: code}
}

func IsValidation(err error, code string) bool {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

// ConflictError means the requested slot is no longer available at commit
// time, or the per-staff critical section could not be acquired in time.
// The caller must re-fetch availability; retrying with a fresh slot is safe.
type ConflictError struct {
	Code      string
	Retryable bool
}

func (e ConflictError) Error() string {
	return e.Code
}

func Conflict(code string) error {
	return ConflictError{Code: code}
}

func RetryableConflict(code string) error {
	return ConflictError{Code: code, Retryable: true}
}

func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// StateError rejects an illegal appointment lifecycle transition. It names
// both ends so the caller can show a meaningful message; it is never coerced
// into a silent no-op.
type StateError struct {
	From string
	To   string
}

func (e StateError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

func State(from, to string) error {
	return StateError{From: from, To: to}
}

func IsState(err error) bool {
	var se StateError
	return errors.As(err, &se)
}
