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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeOpposite(t *testing.T) {
	assert.Equal(t, SignOut, SignIn.Opposite())
	assert.Equal(t, SignIn, SignOut.Opposite())
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, SignIn.Valid())
	assert.True(t, SignOut.Valid())
	assert.False(t, EventType("").Valid())
	assert.False(t, EventType("lunch").Valid())
}

func TestLocationTypeValid(t *testing.T) {
	assert.True(t, LocationOffice.Valid())
	assert.True(t, LocationSite.Valid())
	assert.True(t, LocationRemote.Valid())
	assert.False(t, LocationType("warehouse").Valid())
	assert.False(t, LocationType("").Valid())
}

func TestLocationTypeRequiresCoordinates(t *testing.T) {
	assert.True(t, LocationOffice.RequiresCoordinates())
	assert.True(t, LocationSite.RequiresCoordinates())
	assert.False(t, LocationRemote.RequiresCoordinates())
}

func TestEmployeeIDPattern(t *testing.T) {
	valid := []string{"AFG-A001", "AFG-Z9999", "AFG-B123"}
	for _, id := range valid {
		assert.True(t, EmployeeIDPattern.MatchString(id), id)
	}

	invalid := []string{"", "AFG-a001", "AFG-A01", "AFG-A00011", "afg-A001", "AFG-1001", "XYZ-A001", " AFG-A001"}
	for _, id := range invalid {
		assert.False(t, EmployeeIDPattern.MatchString(id), id)
	}
}

func TestRecordValidate(t *testing.T) {
	lat, long := 6.5, 3.3

	t.Run("valid office record", func(t *testing.T) {
		rec := NewRecord("AFG-A001", "Ada Obi", SignIn, Now(), LocationOffice)
		rec.Latitude = &lat
		rec.Longitude = &long
		assert.NoError(t, rec.Validate())
	})

	t.Run("remote record needs no coordinates", func(t *testing.T) {
		rec := NewRecord("AFG-A001", "Ada Obi", SignOut, Now(), LocationRemote)
		assert.NoError(t, rec.Validate())
	})

	t.Run("office record without latitude", func(t *testing.T) {
		rec := NewRecord("AFG-A001", "Ada Obi", SignIn, Now(), LocationOffice)
		rec.Longitude = &long
		err := rec.Validate()
		require.Error(t, err)
		assert.True(t, IsValidation(err))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 1)
		assert.Contains(t, verr.Violations[0], "latitude")
	})

	t.Run("all violations reported together", func(t *testing.T) {
		rec := &Record{LocationType: LocationSite}
		err := rec.Validate()
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 4)
	})
}

func TestNewRecord(t *testing.T) {
	ts := time.Date(2025, time.June, 2, 9, 0, 0, 0, ServerLocation())
	rec := NewRecord("AFG-A001", "Ada Obi", SignIn, ts, LocationRemote)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rec.ID.String())
	assert.Equal(t, "AFG-A001", rec.EmployeeID)
	assert.Equal(t, "Ada Obi", rec.Name)
	assert.Equal(t, SignIn, rec.Type)
	assert.Equal(t, ts, rec.Timestamp)
	assert.False(t, rec.CreatedAt.IsZero())
}
