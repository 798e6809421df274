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
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

func testCredential(employeeID string, credentialID CanonicalID) *Credential {
	return &Credential{
		ID:           uuid.New(),
		EmployeeID:   employeeID,
		CredentialID: credentialID,
		PublicKey:    "cHVibGljLWtleQ",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestMemoryEmployeeStore(t *testing.T) {
	store := NewMemoryEmployeeStore()
	ctx := context.Background()

	_, err := store.GetByEmployeeID(ctx, "AFG-A001")
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)

	store.Seed(&attendance.Employee{EmployeeID: "AFG-A001", Name: "Ada Obi"})
	emp, err := store.GetByEmployeeID(ctx, "AFG-A001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", emp.Name)

	// Callers get a copy, not the stored value.
	emp.Name = "changed"
	again, err := store.GetByEmployeeID(ctx, "AFG-A001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", again.Name)
}

func TestMemoryCredentialStoreCreateAndGet(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	cred := testCredential("AFG-A001", "Y3JlZC0x")
	require.NoError(t, store.Create(ctx, cred))
	assert.Equal(t, 1, store.Count())

	creds, err := store.GetByEmployeeID(ctx, "AFG-A001")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, cred.CredentialID, creds[0].CredentialID)

	got, err := store.GetByCredentialID(ctx, "Y3JlZC0x", true)
	require.NoError(t, err)
	assert.Equal(t, cred.EmployeeID, got.EmployeeID)

	_, err = store.GetByCredentialID(ctx, "bWlzc2luZw", true)
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestMemoryCredentialStoreCreateValidates(t *testing.T) {
	store := NewMemoryCredentialStore()

	err := store.Create(context.Background(), &Credential{EmployeeID: "AFG-A001"})
	require.Error(t, err)
	assert.True(t, attendance.IsValidation(err))
	assert.Equal(t, 0, store.Count())
}

func TestMemoryCredentialStoreUpsert(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	cred := testCredential("AFG-A001", "Y3JlZC0x")
	require.NoError(t, store.Create(ctx, cred))

	// Re-creating the same credential ID updates counter state only.
	now := time.Now().UTC()
	update := testCredential("AFG-B002", "Y3JlZC0x")
	update.SignCount = 7
	update.LastUsedAt = &now
	require.NoError(t, store.Create(ctx, update))
	assert.Equal(t, 1, store.Count())

	got, err := store.GetByCredentialID(ctx, "Y3JlZC0x", true)
	require.NoError(t, err)
	assert.Equal(t, "AFG-A001", got.EmployeeID)
	assert.Equal(t, uint32(7), got.SignCount)
	assert.NotNil(t, got.LastUsedAt)
}

func TestMemoryCredentialStoreGetNormalizes(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	raw := []byte{0xfb, 0xef, 0x01}
	canonical, err := NormalizeBytes(raw)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, testCredential("AFG-A001", canonical)))

	// Lookup succeeds with the standard-alphabet padded form.
	got, err := store.GetByCredentialID(ctx, "++8B", false)
	require.NoError(t, err)
	assert.Equal(t, canonical, got.CredentialID)
}

func TestMemoryCredentialStoreRecordUse(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	cred := testCredential("AFG-A001", "Y3JlZC0x")
	cred.SignCount = 5
	require.NoError(t, store.Create(ctx, cred))

	require.NoError(t, store.RecordUse(ctx, "Y3JlZC0x", 9))
	got, _ := store.GetByCredentialID(ctx, "Y3JlZC0x", true)
	assert.Equal(t, uint32(9), got.SignCount)
	assert.NotNil(t, got.LastUsedAt)

	// The counter never moves backwards.
	require.NoError(t, store.RecordUse(ctx, "Y3JlZC0x", 3))
	got, _ = store.GetByCredentialID(ctx, "Y3JlZC0x", true)
	assert.Equal(t, uint32(9), got.SignCount)

	assert.ErrorIs(t, store.RecordUse(ctx, "bWlzc2luZw", 1), ErrCredentialNotFound)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	data := &webauthn.SessionData{Challenge: "challenge-1"}
	challenge, err := store.Save(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, "challenge-1", challenge)
	assert.Equal(t, 1, store.Count())

	got, err := store.Consume(ctx, challenge)
	require.NoError(t, err)
	assert.Equal(t, data.Challenge, got.Challenge)
	assert.Equal(t, 0, store.Count())

	// Single use.
	_, err = store.Consume(ctx, challenge)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(-time.Second)
	ctx := context.Background()

	challenge, err := store.Save(ctx, &webauthn.SessionData{Challenge: "stale"})
	require.NoError(t, err)

	_, err = store.Consume(ctx, challenge)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// An expired session is gone after the failed consume.
	_, err = store.Consume(ctx, challenge)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreCleanup(t *testing.T) {
	store := NewMemorySessionStore(-time.Second)
	ctx := context.Background()

	_, err := store.Save(ctx, &webauthn.SessionData{Challenge: "a"})
	require.NoError(t, err)
	_, err = store.Save(ctx, &webauthn.SessionData{Challenge: "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Cleanup())
	assert.Equal(t, 0, store.Count())
}
