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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore returns an error from every lookup.
type failingStore struct {
	Store
}

func (failingStore) FindByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]*Record, error) {
	return nil, errors.New("store unavailable")
}

func TestResolverNextType(t *testing.T) {
	store := NewMemoryStore()
	resolver := NewResolver(store)
	ctx := context.Background()
	now := time.Date(2025, time.June, 2, 8, 0, 0, 0, ServerLocation())

	assert.Equal(t, SignIn, resolver.NextType(ctx, "AFG-A001", LocationOffice, now))

	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignIn, now)))
	assert.Equal(t, SignOut, resolver.NextType(ctx, "AFG-A001", LocationOffice, now.Add(time.Hour)))

	// A different location type has its own sequence.
	assert.Equal(t, SignIn, resolver.NextType(ctx, "AFG-A001", LocationRemote, now.Add(time.Hour)))

	// Yesterday's records do not carry over.
	assert.Equal(t, SignIn, resolver.NextType(ctx, "AFG-A001", LocationOffice, now.AddDate(0, 0, 1)))

	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignOut, now.Add(9*time.Hour))))
	assert.Equal(t, SignIn, resolver.NextType(ctx, "AFG-A001", LocationOffice, now.Add(10*time.Hour)))
}

func TestResolverFailsOpen(t *testing.T) {
	resolver := NewResolver(failingStore{})

	// A degraded store must not block the gate; the lookup failure resolves
	// to sign-in.
	got := resolver.NextType(context.Background(), "AFG-A001", LocationOffice, Now())
	assert.Equal(t, SignIn, got)
}

func TestFailOpen(t *testing.T) {
	got := FailOpen(nil, "AFG-A001", LocationSite, errors.New("timeout"))
	assert.Equal(t, SignIn, got)
}
