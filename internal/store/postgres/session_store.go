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
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	libwebauthn "github.com/go-webauthn/webauthn/webauthn"

	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

// SessionStore keeps in-flight ceremony sessions in postgres so a ceremony
// can begin on one instance and finish on another.
type SessionStore struct {
	db  DB
	ttl time.Duration
}

// NewSessionStore creates a postgres session store with the given TTL.
func NewSessionStore(db DB, ttl time.Duration) *SessionStore {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{db: db, ttl: ttl}
}

// Save stores session data keyed by its challenge.
func (s *SessionStore) Save(ctx context.Context, data *libwebauthn.SessionData) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO webauthn_sessions (challenge, data, created_at, expires_at)
VALUES ($1, $2, NOW(), $3)
ON CONFLICT (challenge) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at
`, data.Challenge, payload, time.Now().UTC().Add(s.ttl))
	if err != nil {
		return "", err
	}
	return data.Challenge, nil
}

// Consume retrieves and deletes session data by challenge. The delete happens
// whether or not the session is expired, so a challenge is redeemable at most
// once.
func (s *SessionStore) Consume(ctx context.Context, challenge string) (*libwebauthn.SessionData, error) {
	row := s.db.QueryRow(ctx, `
DELETE FROM webauthn_sessions
WHERE challenge = $1
RETURNING data, expires_at
`, challenge)

	var (
		payload   []byte
		expiresAt time.Time
	)
	err := row.Scan(&payload, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, webauthn.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(expiresAt) {
		return nil, webauthn.ErrSessionExpired
	}

	var data libwebauthn.SessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CleanupExpired removes sessions past their expiry and returns how many were
// removed.
func (s *SessionStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM webauthn_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
