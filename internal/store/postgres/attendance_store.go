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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

// AttendanceStore persists attendance records in postgres. Records are
// append-only; there are no update or delete paths.
type AttendanceStore struct {
	db     DB
	logger *slog.Logger
}

// NewAttendanceStore creates a postgres attendance store.
func NewAttendanceStore(db DB) *AttendanceStore {
	return &AttendanceStore{db: db, logger: slog.Default()}
}

// WithLogger sets a custom logger for the store.
func (s *AttendanceStore) WithLogger(logger *slog.Logger) *AttendanceStore {
	s.logger = logger
	return s
}

const selectRecord = `
SELECT id, employee_id, name, type, timestamp, location_type, site_id, latitude, longitude, address, notes, created_at
FROM attendance_records
`

const insertRecord = `
INSERT INTO attendance_records (id, employee_id, name, type, timestamp, location_type, site_id, latitude, longitude, address, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Create validates and inserts a record.
func (s *AttendanceStore) Create(ctx context.Context, rec *attendance.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	prepareRecord(rec)
	_, err := s.db.Exec(ctx, insertRecord, recordArgs(rec)...)
	return err
}

// CreateResolved decides the event type from the most recent same-day record
// for (employee, location type) and inserts, inside one transaction holding a
// per-key advisory lock. Two devices finishing a ceremony for the same
// employee at the same moment therefore serialize instead of both resolving
// to sign-in.
func (s *AttendanceStore) CreateResolved(ctx context.Context, rec *attendance.Record) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	start, end := attendance.DayBounds(rec.Timestamp)
	lockKey := fmt.Sprintf("%s:%s:%s", rec.EmployeeID, rec.LocationType, start.Format("2006-01-02"))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return err
	}

	rec.Type = s.resolveType(ctx, tx, rec, start, end)

	if err := rec.Validate(); err != nil {
		return err
	}
	prepareRecord(rec)
	if _, err := tx.Exec(ctx, insertRecord, recordArgs(rec)...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// resolveType reads the employee's latest same-day record for the location
// type within the transaction. A read failure resolves to sign-in rather than
// failing the check-in.
func (s *AttendanceStore) resolveType(ctx context.Context, tx pgx.Tx, rec *attendance.Record, start, end time.Time) attendance.EventType {
	row := tx.QueryRow(ctx, `
SELECT type
FROM attendance_records
WHERE employee_id = $1 AND location_type = $2 AND timestamp >= $3 AND timestamp < $4
ORDER BY timestamp DESC
LIMIT 1
`, rec.EmployeeID, string(rec.LocationType), start, end)

	var latest string
	err := row.Scan(&latest)
	switch {
	case err == pgx.ErrNoRows:
		return attendance.SignIn
	case err != nil:
		return attendance.FailOpen(s.logger, rec.EmployeeID, rec.LocationType, err)
	default:
		return attendance.EventType(latest).Opposite()
	}
}

// FindByDateRange returns records with start <= timestamp < end ordered by
// timestamp ascending. An empty employeeID matches all employees.
func (s *AttendanceStore) FindByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]*attendance.Record, error) {
	query := selectRecord + "WHERE timestamp >= $1 AND timestamp < $2"
	args := []interface{}{start, end}
	if employeeID != "" {
		query += " AND employee_id = $3"
		args = append(args, employeeID)
	}
	query += " ORDER BY timestamp"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0)
	for rows.Next() {
		var rec attendance.Record
		var typ, loc string
		err := rows.Scan(
			&rec.ID,
			&rec.EmployeeID,
			&rec.Name,
			&typ,
			&rec.Timestamp,
			&loc,
			&rec.SiteID,
			&rec.Latitude,
			&rec.Longitude,
			&rec.Address,
			&rec.Notes,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.Type = attendance.EventType(typ)
		rec.LocationType = attendance.LocationType(loc)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func prepareRecord(rec *attendance.Record) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

func recordArgs(rec *attendance.Record) []interface{} {
	return []interface{}{
		rec.ID,
		rec.EmployeeID,
		rec.Name,
		string(rec.Type),
		rec.Timestamp,
		string(rec.LocationType),
		rec.SiteID,
		rec.Latitude,
		rec.Longitude,
		rec.Address,
		rec.Notes,
		rec.CreatedAt,
	}
}
