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

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

// CredentialStore persists enrolled credentials in postgres.
type CredentialStore struct {
	db DB
}

// NewCredentialStore creates a postgres credential store.
func NewCredentialStore(db DB) *CredentialStore {
	return &CredentialStore{db: db}
}

const selectCredential = `
SELECT id, employee_id, credential_id, public_key, sign_count, aaguid, platform, created_at, last_used_at
FROM webauthn_credentials
`

// Create validates and inserts a credential. On credential_id conflict only
// sign_count and last_used_at change; the identity columns stay as written.
func (s *CredentialStore) Create(ctx context.Context, cred *webauthn.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, `
INSERT INTO webauthn_credentials (id, employee_id, credential_id, public_key, sign_count, aaguid, platform, created_at, last_used_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (credential_id)
DO UPDATE SET sign_count = EXCLUDED.sign_count, last_used_at = EXCLUDED.last_used_at
`, cred.ID, cred.EmployeeID, cred.CredentialID.String(), cred.PublicKey.String(),
		int64(cred.SignCount), cred.AAGUID, cred.Platform, cred.CreatedAt, cred.LastUsedAt)
	return err
}

// GetByEmployeeID retrieves all credentials for an employee, oldest first.
func (s *CredentialStore) GetByEmployeeID(ctx context.Context, employeeID string) ([]*webauthn.Credential, error) {
	rows, err := s.db.Query(ctx, selectCredential+"WHERE employee_id = $1 ORDER BY created_at", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := make([]*webauthn.Credential, 0)
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// GetByCredentialID retrieves a credential by its identifier, normalizing
// first unless the caller already has the canonical form.
func (s *CredentialStore) GetByCredentialID(ctx context.Context, credentialID string, alreadyNormalized bool) (*webauthn.Credential, error) {
	key := credentialID
	if !alreadyNormalized {
		normalized, err := webauthn.NormalizeString(credentialID)
		if err != nil {
			return nil, err
		}
		key = normalized.String()
	}

	row := s.db.QueryRow(ctx, selectCredential+"WHERE credential_id = $1", key)
	cred, err := scanCredential(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, webauthn.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// RecordUse stamps last_used_at and advances the counter monotonically.
func (s *CredentialStore) RecordUse(ctx context.Context, credentialID webauthn.CanonicalID, newCounter uint32) error {
	tag, err := s.db.Exec(ctx, `
UPDATE webauthn_credentials
SET last_used_at = NOW(), sign_count = GREATEST(sign_count, $2)
WHERE credential_id = $1
`, credentialID.String(), int64(newCounter))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return webauthn.ErrCredentialNotFound
	}
	return nil
}

func scanCredential(row pgx.Row) (*webauthn.Credential, error) {
	var (
		cred         webauthn.Credential
		credentialID string
		publicKey    string
		signCount    int64
	)
	err := row.Scan(
		&cred.ID,
		&cred.EmployeeID,
		&credentialID,
		&publicKey,
		&signCount,
		&cred.AAGUID,
		&cred.Platform,
		&cred.CreatedAt,
		&cred.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	cred.CredentialID = webauthn.CanonicalID(credentialID)
	cred.PublicKey = webauthn.CanonicalID(publicKey)
	cred.SignCount = uint32(signCount)
	return &cred, nil
}
