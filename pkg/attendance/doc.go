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

// Package attendance holds the domain model for employee attendance: events,
// records, the sign-in/sign-out resolver and reporting.
//
// Records are append-only sign-in/sign-out events per employee, timestamped by
// the server clock in the Africa/Lagos zone. The resolver decides the type of
// the next event from the employee's same-day records per location type,
// defaulting to sign-in when no prior record exists or the store is degraded.
// Office and site events carry coordinates; remote events need none.
package attendance
