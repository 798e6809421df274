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
	"regexp"
	"time"

	"github.com/google/uuid"
)

// EmployeeIDPattern matches the provisioned employee identifier format,
// e.g. "AFG-A001" or "AFG-B1234".
var EmployeeIDPattern = regexp.MustCompile(`^AFG-[A-Z]\d{3,4}$`)

// EventType is the kind of attendance event.
type EventType string

// Attendance event types.
const (
	SignIn  EventType = "sign-in"
	SignOut EventType = "sign-out"
)

// Valid reports whether the event type is a known value.
func (t EventType) Valid() bool {
	return t == SignIn || t == SignOut
}

// Opposite returns the flipped event type.
func (t EventType) Opposite() EventType {
	if t == SignIn {
		return SignOut
	}
	return SignIn
}

// LocationType describes where an attendance event took place.
type LocationType string

// Location types. Office and site events carry coordinates; remote events
// never do.
const (
	LocationOffice LocationType = "office"
	LocationSite   LocationType = "site"
	LocationRemote LocationType = "remote"
)

// Valid reports whether the location type is a known value.
func (l LocationType) Valid() bool {
	switch l {
	case LocationOffice, LocationSite, LocationRemote:
		return true
	}
	return false
}

// RequiresCoordinates reports whether latitude/longitude are mandatory for
// this location type.
func (l LocationType) RequiresCoordinates() bool {
	return l == LocationOffice || l == LocationSite
}

// Employee is the immutable identity anchor for attendance and credential
// records. Employees are provisioned externally and only looked up here.
type Employee struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Record is a single check-in/out event. Records are append-only; they are
// never updated or deleted once written.
type Record struct {
	ID           uuid.UUID    `json:"id"`
	EmployeeID   string       `json:"employee_id"`
	Name         string       `json:"name"`
	Type         EventType    `json:"type"`
	Timestamp    time.Time    `json:"timestamp"`
	LocationType LocationType `json:"location_type"`
	SiteID       *string      `json:"site_id,omitempty"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	Address      *string      `json:"address,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Validate checks the record against the required-field and enum-membership
// rules. All violations are reported, not just the first.
func (r *Record) Validate() error {
	var violations []string

	if r.EmployeeID == "" {
		violations = append(violations, "employee ID is required")
	}
	if !r.Type.Valid() {
		violations = append(violations, "invalid attendance type")
	}
	if !r.LocationType.Valid() {
		violations = append(violations, "invalid location type")
	}
	if r.LocationType.RequiresCoordinates() {
		if r.Latitude == nil {
			violations = append(violations, "latitude is required for office and site locations")
		}
		if r.Longitude == nil {
			violations = append(violations, "longitude is required for office and site locations")
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// NewRecord builds a record with generated ID and creation time. The caller
// supplies the event timestamp; it comes from the server clock, never from
// client input.
func NewRecord(employeeID, name string, typ EventType, ts time.Time, loc LocationType) *Record {
	return &Record{
		ID:           uuid.New(),
		EmployeeID:   employeeID,
		Name:         name,
		Type:         typ,
		Timestamp:    ts,
		LocationType: loc,
		CreatedAt:    time.Now().UTC(),
	}
}
