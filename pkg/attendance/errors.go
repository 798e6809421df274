// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

package attendance

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for attendance operations.
var (
	// ErrEmployeeNotFound is returned when an employee cannot be found.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordNotFound is returned when an attendance record cannot be found.
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrValidation is the sentinel all ValidationError values match.
	ErrValidation = errors.New("validation failed")
)

// ValidationError aggregates every rule a record or request violated. The
// messages are user-correctable and safe to return to the client.
type ValidationError struct {
	Violations []string
}

// Error returns all violation messages joined, matching the single-message
// shape callers expect.
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}

// Is reports whether the target error matches.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Error wraps an error with the operation that produced it.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error with an operation name if it's not nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
