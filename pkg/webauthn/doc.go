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

// Package webauthn runs the passkey ceremonies that gate attendance events.
//
// This package wraps the go-webauthn/webauthn library and provides:
//   - Registration and authentication ceremonies bound to provisioned employees
//   - A canonical credential-identifier codec (CanonicalID) so identifiers
//     submitted in any base64 variant or byte-array wrapper compare equal
//   - Pluggable storage interfaces for employees, credentials, and ceremony
//     sessions, with in-memory implementations for development and testing
//
// # Architecture
//
// The package is designed with a layered architecture:
//
//  1. Service layer (Service) - ceremony orchestration and attendance writes
//  2. Codec layer (CanonicalID, Normalize) - identifier normalization
//  3. Storage layer (EmployeeStore, CredentialStore, SessionStore) - pluggable
//     persistence
//
// # Usage
//
// Basic usage with in-memory storage (for development):
//
//	svc, err := webauthn.NewService(webauthn.ServiceParams{
//	    Config: &webauthn.Config{
//	        RPID:          "attendance.example.com",
//	        RPDisplayName: "Attendance Gate",
//	        RPOrigins:     []string{"https://attendance.example.com"},
//	    },
//	    EmployeeStore:   webauthn.NewMemoryEmployeeStore(),
//	    CredentialStore: webauthn.NewMemoryCredentialStore(),
//	    SessionStore:    webauthn.NewMemorySessionStore(0),
//	    AttendanceStore: attendance.NewMemoryStore(),
//	})
//
// For production, use the postgres-backed stores in internal/store/postgres.
//
// # Authenticator policy
//
// Registration always demands a platform authenticator, user verification and
// a resident key. Authentication uses discoverable login: the options carry no
// allow list and the authenticator's user handle identifies the employee.
//
// A successful authentication ceremony writes exactly one attendance record;
// failed verification writes nothing.
package webauthn
