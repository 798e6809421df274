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
	"time"

	"github.com/google/uuid"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

// Credential is one enrolled authenticator bound to exactly one employee. An
// employee may hold several credentials (one per device). Identifier and
// public key are stored in canonical form only.
type Credential struct {
	// ID is the row identifier.
	ID uuid.UUID `json:"id"`

	// EmployeeID is the owning employee's provisioned identifier.
	EmployeeID string `json:"employee_id"`

	// CredentialID is the canonical encoding of the authenticator-assigned
	// credential identifier. Globally unique.
	CredentialID CanonicalID `json:"credential_id"`

	// PublicKey is the canonical encoding of the COSE public key.
	PublicKey CanonicalID `json:"public_key"`

	// SignCount is the authenticator's signature counter, monotonic
	// non-decreasing. Used for cloned-credential detection.
	SignCount uint32 `json:"sign_count"`

	// AAGUID identifies the authenticator model, when attested.
	AAGUID *string `json:"aaguid,omitempty"`

	// Platform records the authenticator attachment reported at enrollment.
	Platform *string `json:"platform,omitempty"`

	// CreatedAt is when the credential was registered.
	CreatedAt time.Time `json:"created_at"`

	// LastUsedAt is when the credential last verified an attendance event.
	// Nil until first use.
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Validate checks the required credential fields. All violations are
// reported, not just the first.
func (c *Credential) Validate() error {
	var violations []string
	if c.EmployeeID == "" {
		violations = append(violations, "employee ID is required")
	}
	if c.CredentialID == "" {
		violations = append(violations, "credential ID is required")
	}
	if c.PublicKey == "" {
		violations = append(violations, "public key is required")
	}
	if len(violations) > 0 {
		return &attendance.ValidationError{Violations: violations}
	}
	return nil
}

// ToLibrary converts the stored credential to the protocol library's type,
// decoding the canonical identifier and key back to raw bytes.
func (c *Credential) ToLibrary() (webauthn.Credential, error) {
	id, err := c.CredentialID.Bytes()
	if err != nil {
		return webauthn.Credential{}, err
	}
	key, err := c.PublicKey.Bytes()
	if err != nil {
		return webauthn.Credential{}, err
	}
	return webauthn.Credential{
		ID:        id,
		PublicKey: key,
		Authenticator: webauthn.Authenticator{
			SignCount: c.SignCount,
		},
	}, nil
}

// CredentialSummary is the client-facing shape of an enrolled credential.
type CredentialSummary struct {
	CredID      string     `json:"credId"`
	PublicKey   string     `json:"publicKey"`
	PrevCounter uint32     `json:"prevCounter"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsed    *time.Time `json:"lastUsed"`
}

// Summary formats the credential for API responses.
func (c *Credential) Summary() CredentialSummary {
	return CredentialSummary{
		CredID:      c.CredentialID.String(),
		PublicKey:   c.PublicKey.String(),
		PrevCounter: c.SignCount,
		CreatedAt:   c.CreatedAt,
		LastUsed:    c.LastUsedAt,
	}
}

// employeeUser adapts an employee and their stored credentials to the
// protocol library's user model. The WebAuthn user handle is the UTF-8
// employee identifier, so user handles returned by discoverable credentials
// map straight back to employees.
type employeeUser struct {
	employee    *attendance.Employee
	credentials []*Credential
}

func (u *employeeUser) WebAuthnID() []byte {
	return []byte(u.employee.EmployeeID)
}

func (u *employeeUser) WebAuthnName() string {
	return u.employee.EmployeeID
}

func (u *employeeUser) WebAuthnDisplayName() string {
	if u.employee.Name == "" {
		return u.employee.EmployeeID
	}
	return u.employee.Name
}

func (u *employeeUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.credentials))
	for _, c := range u.credentials {
		lc, err := c.ToLibrary()
		if err != nil {
			// A stored credential that no longer decodes cannot verify
			// anything; skip it rather than fail the whole ceremony.
			continue
		}
		creds = append(creds, lc)
	}
	return creds
}
