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

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

// EmployeeStore reads provisioned employees from postgres.
type EmployeeStore struct {
	db DB
}

// NewEmployeeStore creates a postgres employee store.
func NewEmployeeStore(db DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

const selectEmployee = `
SELECT id, employee_id, name, email, department, role, active, created_at, updated_at
FROM employees
`

// GetByEmployeeID retrieves an employee by their provisioned identifier.
func (s *EmployeeStore) GetByEmployeeID(ctx context.Context, employeeID string) (*attendance.Employee, error) {
	row := s.db.QueryRow(ctx, selectEmployee+"WHERE employee_id = $1", employeeID)
	return scanEmployee(row)
}

// Create inserts a new employee. Used by provisioning tooling, not the
// attendance flow itself.
func (s *EmployeeStore) Create(ctx context.Context, emp *attendance.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	_, err := s.db.Exec(ctx, `
INSERT INTO employees (id, employee_id, name, email, department, role, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, emp.ID, emp.EmployeeID, emp.Name, emp.Email, emp.Department, emp.Role, emp.Active, emp.CreatedAt, emp.UpdatedAt)
	return err
}

func scanEmployee(row pgx.Row) (*attendance.Employee, error) {
	var emp attendance.Employee
	err := row.Scan(
		&emp.ID,
		&emp.EmployeeID,
		&emp.Name,
		&emp.Email,
		&emp.Department,
		&emp.Role,
		&emp.Active,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, attendance.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}
