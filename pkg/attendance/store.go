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
	"sort"
	"sync"
	"time"
)

// Store manages attendance record persistence. Records are append-only.
type Store interface {
	// Create validates and inserts a record. On any validation violation the
	// record is rejected with a ValidationError and nothing is persisted.
	Create(ctx context.Context, rec *Record) error

	// CreateResolved determines rec.Type from the most recent same-day record
	// for (employee, location type) and inserts, atomically with respect to
	// concurrent CreateResolved calls for the same key. Any rec.Type set by
	// the caller is overwritten.
	CreateResolved(ctx context.Context, rec *Record) error

	// FindByDateRange returns records with start <= timestamp < end ordered
	// by timestamp ascending. An empty employeeID matches all employees.
	FindByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]*Record, error)
}

// NextTypeFrom decides the next event type for an employee from that
// employee's same-day, same-location-type records. No prior record means
// sign-in; otherwise the most recent record's type is flipped. An employee
// may cycle sign-in/sign-out several times a day per location type.
func NextTypeFrom(records []*Record, employeeID string) EventType {
	var latest *Record
	for _, rec := range records {
		if rec.EmployeeID != employeeID {
			continue
		}
		if latest == nil || rec.Timestamp.After(latest.Timestamp) {
			latest = rec
		}
	}
	if latest == nil {
		return SignIn
	}
	return latest.Type.Opposite()
}

// MemoryStore is an in-memory implementation of Store for development and
// testing.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStore creates a new in-memory attendance store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Create validates and appends a record.
func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *rec
	s.records = append(s.records, &stored)
	return nil
}

// CreateResolved decides the event type and appends under a single lock.
func (s *MemoryStore) CreateResolved(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := DayBounds(rec.Timestamp)
	var today []*Record
	for _, r := range s.records {
		if r.LocationType == rec.LocationType && inRange(r.Timestamp, start, end) {
			today = append(today, r)
		}
	}
	rec.Type = NextTypeFrom(today, rec.EmployeeID)

	if err := rec.Validate(); err != nil {
		return err
	}
	stored := *rec
	s.records = append(s.records, &stored)
	return nil
}

// FindByDateRange returns matching records ordered by timestamp ascending.
func (s *MemoryStore) FindByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, r := range s.records {
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}
		if inRange(r.Timestamp, start, end) {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear removes all records from the store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
