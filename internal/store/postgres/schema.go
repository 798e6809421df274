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

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id            UUID PRIMARY KEY,
		employee_id   TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		department    TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS webauthn_credentials (
		id            UUID PRIMARY KEY,
		employee_id   TEXT NOT NULL REFERENCES employees(employee_id),
		credential_id TEXT NOT NULL UNIQUE,
		public_key    TEXT NOT NULL,
		sign_count    BIGINT NOT NULL DEFAULT 0,
		aaguid        TEXT,
		platform      TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_used_at  TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_webauthn_credentials_employee
		ON webauthn_credentials (employee_id)`,

	`CREATE TABLE IF NOT EXISTS attendance_records (
		id            UUID PRIMARY KEY,
		employee_id   TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		type          TEXT NOT NULL,
		timestamp     TIMESTAMPTZ NOT NULL,
		location_type TEXT NOT NULL,
		site_id       TEXT,
		latitude      DOUBLE PRECISION,
		longitude     DOUBLE PRECISION,
		address       TEXT,
		notes         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attendance_records_employee_ts
		ON attendance_records (employee_id, timestamp)`,

	`CREATE INDEX IF NOT EXISTS idx_attendance_records_ts
		ON attendance_records (timestamp)`,

	`CREATE TABLE IF NOT EXISTS webauthn_sessions (
		challenge     TEXT PRIMARY KEY,
		data          JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at    TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the attendance schema if it does not exist. Statements are
// idempotent so Migrate is safe to run at every startup.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
