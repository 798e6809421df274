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

package webauthn

import (
	"context"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

// MemoryEmployeeStore is an in-memory implementation of EmployeeStore.
// This is intended for development and testing only.
type MemoryEmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]*attendance.Employee
}

// NewMemoryEmployeeStore creates a new in-memory employee store.
func NewMemoryEmployeeStore() *MemoryEmployeeStore {
	return &MemoryEmployeeStore{
		employees: make(map[string]*attendance.Employee),
	}
}

// Seed adds an employee, standing in for the external provisioning process.
func (s *MemoryEmployeeStore) Seed(emp *attendance.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.EmployeeID] = emp
}

// GetByEmployeeID retrieves an employee by their provisioned identifier.
func (s *MemoryEmployeeStore) GetByEmployeeID(ctx context.Context, employeeID string) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[employeeID]
	if !ok {
		return nil, attendance.ErrEmployeeNotFound
	}
	copied := *emp
	return &copied, nil
}

// MemoryCredentialStore is an in-memory implementation of CredentialStore.
// This is intended for development and testing only.
type MemoryCredentialStore struct {
	mu         sync.RWMutex
	byID       map[CanonicalID]*Credential
	byEmployee map[string][]CanonicalID
}

// NewMemoryCredentialStore creates a new in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		byID:       make(map[CanonicalID]*Credential),
		byEmployee: make(map[string][]CanonicalID),
	}
}

// Create validates and stores a credential, upserting on credential ID.
func (s *MemoryCredentialStore) Create(ctx context.Context, cred *Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byID[cred.CredentialID]; ok {
		// Identity fields are immutable on conflict.
		existing.SignCount = cred.SignCount
		existing.LastUsedAt = cred.LastUsedAt
		return nil
	}

	stored := *cred
	s.byID[cred.CredentialID] = &stored
	s.byEmployee[cred.EmployeeID] = append(s.byEmployee[cred.EmployeeID], cred.CredentialID)
	return nil
}

// GetByEmployeeID retrieves all credentials for an employee.
func (s *MemoryCredentialStore) GetByEmployeeID(ctx context.Context, employeeID string) ([]*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byEmployee[employeeID]
	out := make([]*Credential, 0, len(ids))
	for _, id := range ids {
		if cred, ok := s.byID[id]; ok {
			copied := *cred
			out = append(out, &copied)
		}
	}
	return out, nil
}

// GetByCredentialID retrieves a credential by its identifier, normalizing
// first unless the caller already has the canonical form.
func (s *MemoryCredentialStore) GetByCredentialID(ctx context.Context, credentialID string, alreadyNormalized bool) (*Credential, error) {
	key := CanonicalID(credentialID)
	if !alreadyNormalized {
		normalized, err := NormalizeString(credentialID)
		if err != nil {
			return nil, err
		}
		key = normalized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.byID[key]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	copied := *cred
	return &copied, nil
}

// RecordUse stamps last_used_at and advances the counter monotonically.
func (s *MemoryCredentialStore) RecordUse(ctx context.Context, credentialID CanonicalID, newCounter uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.byID[credentialID]
	if !ok {
		return ErrCredentialNotFound
	}
	now := time.Now().UTC()
	cred.LastUsedAt = &now
	if newCounter > cred.SignCount {
		cred.SignCount = newCounter
	}
	return nil
}

// Count returns the number of credentials in the store.
func (s *MemoryCredentialStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// MemorySessionStore is an in-memory implementation of SessionStore keyed by
// challenge. This is intended for development and testing only.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
}

type sessionEntry struct {
	data      *webauthn.SessionData
	createdAt time.Time
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &MemorySessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
	}
}

// Save stores session data keyed by its challenge.
func (s *MemorySessionStore) Save(ctx context.Context, data *webauthn.SessionData) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[data.Challenge] = &sessionEntry{
		data:      data,
		createdAt: time.Now(),
	}
	return data.Challenge, nil
}

// Consume retrieves and deletes session data by challenge.
func (s *MemorySessionStore) Consume(ctx context.Context, challenge string) (*webauthn.SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[challenge]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(s.sessions, challenge)

	if time.Since(entry.createdAt) > s.ttl {
		return nil, ErrSessionExpired
	}
	return entry.data, nil
}

// Cleanup removes expired sessions and returns how many were removed.
func (s *MemorySessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for challenge, entry := range s.sessions {
		if now.Sub(entry.createdAt) > s.ttl {
			delete(s.sessions, challenge)
			removed++
		}
	}
	return removed
}

// Count returns the number of in-flight sessions.
func (s *MemorySessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
