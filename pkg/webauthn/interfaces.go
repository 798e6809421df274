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
	"context"

	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

// EmployeeStore looks up provisioned employees. Employees are created by an
// external process; the attendance service only reads them.
type EmployeeStore interface {
	// GetByEmployeeID retrieves an employee by their provisioned identifier.
	// Returns attendance.ErrEmployeeNotFound if the employee does not exist.
	GetByEmployeeID(ctx context.Context, employeeID string) (*attendance.Employee, error)
}

// CredentialStore manages enrolled credential persistence. Credentials are
// created by the registration ceremony and touched by the authentication
// ceremony; they are never deleted here.
type CredentialStore interface {
	// Create validates and inserts a credential. The insert is an upsert
	// keyed by credential_id: on conflict only sign_count and last_used_at
	// change, identity fields are immutable once written.
	Create(ctx context.Context, cred *Credential) error

	// GetByEmployeeID retrieves all credentials for an employee. Returns an
	// empty slice if the employee has none.
	GetByEmployeeID(ctx context.Context, employeeID string) ([]*Credential, error)

	// GetByCredentialID retrieves a credential by its identifier. When
	// alreadyNormalized is false the identifier is normalized through the
	// codec before lookup, since the submitting client and the original
	// registration may have encoded the same identifier differently.
	// Returns ErrCredentialNotFound if no credential matches.
	GetByCredentialID(ctx context.Context, credentialID string, alreadyNormalized bool) (*Credential, error)

	// RecordUse stamps last_used_at and advances the stored sign counter,
	// but only if newCounter is strictly greater than the stored value.
	RecordUse(ctx context.Context, credentialID CanonicalID, newCounter uint32) error
}

// SessionStore holds in-flight ceremony state between the options step and
// the finish step, keyed by the issued challenge. Sessions are single-use:
// Consume removes the session it returns.
type SessionStore interface {
	// Save stores ceremony session data keyed by its challenge and returns
	// the key.
	Save(ctx context.Context, data *webauthn.SessionData) (string, error)

	// Consume retrieves and deletes session data by challenge. Returns
	// ErrSessionNotFound for an unknown challenge and ErrSessionExpired for
	// one past its TTL.
	Consume(ctx context.Context, challenge string) (*webauthn.SessionData, error)
}
