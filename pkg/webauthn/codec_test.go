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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCrossEncoding(t *testing.T) {
	// 0xfb 0xef guarantees the standard and URL-safe alphabets differ
	// ("++" vs "--").
	raw := []byte{0xfb, 0xef, 0x01, 0x02, 0xff, 0xfe, 0x7f}

	representations := map[string]any{
		"raw bytes":         raw,
		"standard base64":   base64.StdEncoding.EncodeToString(raw),
		"base64url padded":  base64.URLEncoding.EncodeToString(raw),
		"base64url raw":     base64.RawURLEncoding.EncodeToString(raw),
		"buffer wrapper":    ByteArray{Type: "Buffer", Data: raw},
		"wrapper pointer":   &ByteArray{Type: "Buffer", Data: raw},
		"canonical id type": CanonicalID(base64.RawURLEncoding.EncodeToString(raw)),
	}

	want := CanonicalID(base64.RawURLEncoding.EncodeToString(raw))
	for name, rep := range representations {
		got, err := Normalize(rep)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestNormalizeUntypedWrapper(t *testing.T) {
	raw := []byte{1, 2, 3, 250}

	// Generic JSON decoding turns the wrapper into map[string]any with
	// float64 elements.
	encoded, err := json.Marshal(ByteArray{Type: "Buffer", Data: raw})
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(encoded, &generic))

	// The []byte field marshals as base64 text, so rebuild the untyped
	// shape clients actually send.
	generic["data"] = []any{float64(1), float64(2), float64(3), float64(250)}

	got, err := Normalize(generic)
	require.NoError(t, err)

	want, err := NormalizeBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNormalizeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"empty string", ""},
		{"empty bytes", []byte{}},
		{"not base64", "!!not-base64!!"},
		{"unsupported type", 42},
		{"wrapper wrong tag", ByteArray{Type: "Array", Data: []byte{1}}},
		{"wrapper empty data", ByteArray{Type: "Buffer"}},
		{"nil wrapper pointer", (*ByteArray)(nil)},
		{"untyped wrapper wrong tag", map[string]any{"type": "Array", "data": []any{float64(1)}}},
		{"untyped wrapper bad element", map[string]any{"type": "Buffer", "data": []any{"x"}}},
		{"untyped wrapper out of range", map[string]any{"type": "Buffer", "data": []any{float64(300)}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestCanonicalIDRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x10, 0xab, 0xcd, 0xef}

	id, err := NormalizeBytes(raw)
	require.NoError(t, err)

	decoded, err := id.Bytes()
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	// Normalizing the canonical form again is a no-op.
	again, err := Normalize(id)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestCanonicalIDBytesInvalid(t *testing.T) {
	_, err := CanonicalID("***").Bytes()
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestNormalizeStringEquivalence(t *testing.T) {
	// Padded standard base64 with both special characters.
	raw := []byte{0xfb, 0xff, 0xbf}
	std := base64.StdEncoding.EncodeToString(raw)
	require.Contains(t, std, "+")
	require.Contains(t, std, "/")

	fromStd, err := NormalizeString(std)
	require.NoError(t, err)
	fromURL, err := NormalizeString(base64.RawURLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, fromURL, fromStd)
}
