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

package rest

import (
	"time"

	"github.com/mcyouniverse/attendance/pkg/attendance"
	"github.com/mcyouniverse/attendance/pkg/health"
	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

// EmployeeLookupRequest is the body for POST /auth/employee.
type EmployeeLookupRequest struct {
	EmployeeID string `json:"employee_id"`
}

// EmployeeResponse is the employee profile plus formatted credential list.
type EmployeeResponse struct {
	EmployeeID  string                       `json:"employee_id"`
	Name        string                       `json:"name"`
	Email       string                       `json:"email,omitempty"`
	Department  string                       `json:"department,omitempty"`
	Role        string                       `json:"role,omitempty"`
	Active      bool                         `json:"active"`
	Credentials []webauthn.CredentialSummary `json:"credentials"`
}

// RegisterRequestBody is the body for POST /auth/registerRequest.
type RegisterRequestBody struct {
	EmployeeID string `json:"employeeId"`
}

// RegisterResponseMeta carries the non-credential fields of the
// registerResponse body; the credential itself is parsed from the same raw
// body by the protocol library.
type RegisterResponseMeta struct {
	EmployeeID string `json:"employeeId"`
	Challenge  string `json:"challenge"`
}

// RegisterResult is the response for a completed registration.
type RegisterResult struct {
	Success      bool   `json:"success"`
	CredentialID string `json:"credentialId"`
}

// SigninRequestBody is the body for POST /auth/signinRequest.
type SigninRequestBody struct {
	EmployeeID string `json:"employeeId"`
	Type       string `json:"type"`
}

// SigninRequestResult wraps the assertion options with the intended event
// type echoed back to the client.
type SigninRequestResult struct {
	PublicKey any    `json:"publicKey"`
	SignType  string `json:"signType"`
}

// SigninResponseMeta carries the attendance context fields of the
// signinResponse body; the assertion is parsed from the same raw body.
type SigninResponseMeta struct {
	EmployeeID         string   `json:"employeeId"`
	Challenge          string   `json:"challenge"`
	ID                 string   `json:"id"`
	AuthenticationType string   `json:"authenticationType"`
	LocationType       string   `json:"locationType"`
	SiteID             *string  `json:"siteId"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	Address            *string  `json:"address"`
	Notes              string   `json:"notes"`
}

// SigninResult is the response for a completed authentication.
type SigninResult struct {
	Success   bool                 `json:"success"`
	Type      attendance.EventType `json:"type"`
	Message   string               `json:"message"`
	Timestamp string               `json:"timestamp"`
}

// RecordView is an attendance record with its timestamp formatted in the
// server time zone.
type RecordView struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Timestamp    string   `json:"timestamp"`
	LocationType string   `json:"location_type"`
	SiteID       *string  `json:"site_id,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func newRecordView(rec *attendance.Record) RecordView {
	return RecordView{
		ID:           rec.ID.String(),
		EmployeeID:   rec.EmployeeID,
		Name:         rec.Name,
		Type:         string(rec.Type),
		Timestamp:    attendance.FormatTimestamp(rec.Timestamp),
		LocationType: string(rec.LocationType),
		SiteID:       rec.SiteID,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Address:      rec.Address,
		Notes:        rec.Notes,
	}
}

func newRecordViews(records []*attendance.Record) []RecordView {
	views := make([]RecordView, len(records))
	for i, rec := range records {
		views[i] = newRecordView(rec)
	}
	return views
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status string               `json:"status"`
	Time   time.Time            `json:"time"`
	Checks []health.CheckResult `json:"checks,omitempty"`
}

// ErrorResponse is the response format for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes returned in ErrorResponse.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidSession     = "invalid_session"
	ErrorCodeSessionExpired     = "session_expired"
	ErrorCodeEmployeeNotFound   = "employee_not_found"
	ErrorCodeNoCredentials      = "no_credentials"
	ErrorCodeCredentialNotFound = "credential_not_found"
	ErrorCodeVerificationFailed = "verification_failed"
	ErrorCodeInternalError      = "internal_error"
)
