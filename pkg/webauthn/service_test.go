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
	"encoding/base64"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

func testConfig() *Config {
	return &Config{
		RPID:          "attendance.example.com",
		RPDisplayName: "Attendance Gate",
		RPOrigins:     []string{"https://attendance.example.com"},
	}
}

func testParams() ServiceParams {
	return ServiceParams{
		Config:          testConfig(),
		EmployeeStore:   NewMemoryEmployeeStore(),
		CredentialStore: NewMemoryCredentialStore(),
		SessionStore:    NewMemorySessionStore(0),
		AttendanceStore: attendance.NewMemoryStore(),
	}
}

func TestNewService(t *testing.T) {
	svc, err := NewService(testParams())
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 30*time.Minute, svc.Config().Timeout)
}

func TestNewServiceMissingDependencies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServiceParams)
	}{
		{"nil config", func(p *ServiceParams) { p.Config = nil }},
		{"nil employee store", func(p *ServiceParams) { p.EmployeeStore = nil }},
		{"nil credential store", func(p *ServiceParams) { p.CredentialStore = nil }},
		{"nil session store", func(p *ServiceParams) { p.SessionStore = nil }},
		{"nil attendance store", func(p *ServiceParams) { p.AttendanceStore = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams()
			tc.mutate(&params)
			svc, err := NewService(params)
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestNewServiceInvalidConfig(t *testing.T) {
	params := testParams()
	params.Config.RPID = ""
	_, err := NewService(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPID")
}

func TestValidateAssertionParams(t *testing.T) {
	response := &protocol.ParsedCredentialAssertionData{}
	response.RawID = []byte{1, 2, 3}

	lat, long := 6.5, 3.3
	valid := FinishAuthenticationParams{
		EmployeeID:   "AFG-A001",
		Challenge:    "challenge",
		Response:     response,
		LocationType: attendance.LocationOffice,
		Latitude:     &lat,
		Longitude:    &long,
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validateAssertionParams(valid))
	})

	t.Run("remote without coordinates", func(t *testing.T) {
		params := valid
		params.LocationType = attendance.LocationRemote
		params.Latitude = nil
		params.Longitude = nil
		assert.NoError(t, validateAssertionParams(params))
	})

	t.Run("office without coordinates", func(t *testing.T) {
		params := valid
		params.Latitude = nil
		params.Longitude = nil
		err := validateAssertionParams(params)
		require.Error(t, err)
		var verr *attendance.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 2)
	})

	t.Run("all violations reported together", func(t *testing.T) {
		err := validateAssertionParams(FinishAuthenticationParams{
			LocationType: attendance.LocationType("warehouse"),
			Type:         attendance.EventType("nap"),
		})
		require.Error(t, err)
		var verr *attendance.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 5)
	})
}

func TestValidateCreationResponse(t *testing.T) {
	t.Run("missing everything", func(t *testing.T) {
		err := validateCreationResponse("", "", nil)
		require.Error(t, err)
		var verr *attendance.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 3)
	})

	t.Run("missing attestation object", func(t *testing.T) {
		response := &protocol.ParsedCredentialCreationData{}
		response.Raw.AttestationResponse.ClientDataJSON = []byte("{}")
		err := validateCreationResponse("AFG-A001", "challenge", response)
		require.Error(t, err)
		var verr *attendance.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 1)
		assert.Contains(t, verr.Violations[0], "attestationObject")
	})
}

func TestMatchCredential(t *testing.T) {
	raw := []byte{0xfb, 0xef, 0x10, 0x20, 0x30}
	canonical, err := NormalizeBytes(raw)
	require.NoError(t, err)

	stored := []*Credential{
		{EmployeeID: "AFG-A001", CredentialID: "other-credential"},
		{EmployeeID: "AFG-A001", CredentialID: canonical},
	}

	t.Run("exact canonical match", func(t *testing.T) {
		response := &protocol.ParsedCredentialAssertionData{}
		response.ID = canonical.String()
		response.RawID = raw

		matched, err := matchCredential(stored, response)
		require.NoError(t, err)
		assert.Equal(t, canonical, matched.CredentialID)
	})

	t.Run("cross-encoding match via raw id", func(t *testing.T) {
		// The client re-encoded the identifier with the standard alphabet;
		// only the raw bytes still match.
		response := &protocol.ParsedCredentialAssertionData{}
		response.ID = base64.StdEncoding.EncodeToString(raw)
		response.RawID = raw

		matched, err := matchCredential(stored, response)
		require.NoError(t, err)
		assert.Equal(t, canonical, matched.CredentialID)
	})

	t.Run("unknown credential", func(t *testing.T) {
		response := &protocol.ParsedCredentialAssertionData{}
		response.ID = "unknown"
		response.RawID = []byte{9, 9, 9}

		_, err := matchCredential(stored, response)
		assert.ErrorIs(t, err, ErrCredentialNotFound)
	})
}

func TestCredentialUsed(t *testing.T) {
	now := time.Now()
	assert.False(t, credentialUsed(&Credential{}))
	assert.True(t, credentialUsed(&Credential{SignCount: 1}))
	assert.True(t, credentialUsed(&Credential{LastUsedAt: &now}))
}

func TestAttendanceMessage(t *testing.T) {
	ts := time.Date(2025, time.March, 3, 9, 15, 0, 0, attendance.ServerLocation())
	rec := &attendance.Record{Type: attendance.SignIn, Timestamp: ts}
	msg := attendanceMessage("Ada Obi", rec)
	assert.Contains(t, msg, "Ada Obi signed in at")
	assert.Contains(t, msg, "Monday, March 3, 2025")

	rec.Type = attendance.SignOut
	assert.Contains(t, attendanceMessage("Ada Obi", rec), "signed out")
}
