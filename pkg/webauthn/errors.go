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

package webauthn

import (
	"errors"
	"fmt"
)

// Sentinel errors for ceremony operations.
var (
	// ErrCredentialNotFound is returned when a credential cannot be found.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrNoCredentials is returned when an employee has no registered credentials.
	ErrNoCredentials = errors.New("no credentials found for employee")

	// ErrSessionNotFound is returned when no ceremony session matches the
	// presented challenge.
	ErrSessionNotFound = errors.New("ceremony session not found")

	// ErrSessionExpired is returned when a ceremony session has expired.
	ErrSessionExpired = errors.New("ceremony session expired")

	// ErrVerificationFailed is returned when credential verification fails.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrEncoding is returned when a credential identifier cannot be
	// normalized from any accepted representation.
	ErrEncoding = errors.New("unable to normalize credential identifier")

	// ErrNotConfigured is returned when the service is not properly configured.
	ErrNotConfigured = errors.New("webauthn service not configured")
)

// CeremonyError wraps an error with the operation that produced it.
type CeremonyError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

// Error returns the error message.
func (e *CeremonyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CeremonyError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches.
func (e *CeremonyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error with an operation name if it's not nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CeremonyError{Op: op, Err: err}
}

// IsEncoding returns true if the error indicates a normalization failure.
func IsEncoding(err error) bool {
	return errors.Is(err, ErrEncoding)
}

// IsVerificationFailed returns true if the error indicates verification failed.
func IsVerificationFailed(err error) bool {
	return errors.Is(err, ErrVerificationFailed)
}

// IsCredentialNotFound returns true if the error indicates a credential was
// not found.
func IsCredentialNotFound(err error) bool {
	return errors.Is(err, ErrCredentialNotFound)
}

// IsSessionNotFound returns true if the error indicates no session matched
// the presented challenge.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
