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
	"context"
	"log/slog"
	"time"
)

// Resolver decides whether the next attendance event for an employee is a
// sign-in or a sign-out, from the most recent same-day record per location
// type.
//
// Lookup failures classify as sign-in rather than propagating: the physical
// gate must stay available even when the store is degraded. Every fail-open
// decision is logged and counted so operators can detect an outage being
// masked.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{
		store:  store,
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the resolver.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	r.logger = logger
	return r
}

// NextType returns the next event type for the employee at the given
// location type, based on records from the calendar day containing now.
func (r *Resolver) NextType(ctx context.Context, employeeID string, loc LocationType, now time.Time) EventType {
	start, end := DayBounds(now)
	records, err := r.store.FindByDateRange(ctx, "", start, end)
	if err != nil {
		return FailOpen(r.logger, employeeID, loc, err)
	}

	var sameLocation []*Record
	for _, rec := range records {
		if rec.LocationType == loc {
			sameLocation = append(sameLocation, rec)
		}
	}
	return NextTypeFrom(sameLocation, employeeID)
}

// FailOpen logs and counts a failed type lookup and returns the sign-in
// default. Store implementations that resolve inside a transaction use this
// for the same degraded-store behavior as Resolver.NextType.
func FailOpen(logger *slog.Logger, employeeID string, loc LocationType, err error) EventType {
	resolverFailOpenTotal.Inc()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("attendance type lookup failed, defaulting to sign-in",
		"employee_id", employeeID,
		"location_type", string(loc),
		"error", err)
	return SignIn
}
