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
	"strings"
)

// CanonicalID is the single normalized textual encoding used for storage and
// comparison of credential IDs and public keys: unpadded URL-safe base64.
//
// Registration-time and authentication-time transports encode the same raw
// identifier differently (raw bytes, standard base64, base64url, or a
// JSON-serialized byte-array wrapper), so two identifiers must never be
// compared without normalizing both first.
type CanonicalID string

// String returns the canonical text form.
func (c CanonicalID) String() string {
	return string(c)
}

// Bytes decodes the canonical form back to the raw identifier bytes.
// Bytes(Normalize(x)) is byte-equal to the raw identifier of x for every
// representation Normalize accepts.
func (c CanonicalID) Bytes() ([]byte, error) {
	raw, err := decodeLoose(string(c))
	if err != nil {
		return nil, WrapError("decode canonical id", ErrEncoding)
	}
	return raw, nil
}

// ByteArray is the tagged byte-array wrapper some clients submit for
// credential IDs (the JSON serialization of a Node Buffer).
type ByteArray struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

// Normalize converts any accepted identifier representation to canonical
// form. Accepted representations: raw bytes, standard base64 text, base64url
// text (padded or unpadded), and the tagged byte-array wrapper. The
// representation is detected by structural inspection; nil, empty and
// unrecognized inputs fail with ErrEncoding.
func Normalize(input any) (CanonicalID, error) {
	switch v := input.(type) {
	case nil:
		return "", WrapError("normalize", ErrEncoding)
	case []byte:
		return NormalizeBytes(v)
	case string:
		return NormalizeString(v)
	case CanonicalID:
		return NormalizeString(string(v))
	case ByteArray:
		if v.Type != "Buffer" || len(v.Data) == 0 {
			return "", WrapError("normalize byte array", ErrEncoding)
		}
		return NormalizeBytes(v.Data)
	case *ByteArray:
		if v == nil {
			return "", WrapError("normalize", ErrEncoding)
		}
		return Normalize(*v)
	case map[string]any:
		return normalizeUntypedWrapper(v)
	default:
		return "", WrapError("normalize", ErrEncoding)
	}
}

// NormalizeString converts base64 or base64url text to canonical form.
func NormalizeString(s string) (CanonicalID, error) {
	if s == "" {
		return "", WrapError("normalize string", ErrEncoding)
	}
	raw, err := decodeLoose(s)
	if err != nil {
		return "", WrapError("normalize string", ErrEncoding)
	}
	return NormalizeBytes(raw)
}

// NormalizeBytes encodes raw identifier bytes to canonical form.
func NormalizeBytes(b []byte) (CanonicalID, error) {
	if len(b) == 0 {
		return "", WrapError("normalize bytes", ErrEncoding)
	}
	return CanonicalID(base64.RawURLEncoding.EncodeToString(b)), nil
}

// normalizeUntypedWrapper handles the byte-array wrapper after generic JSON
// decoding, where the data field arrives as []any of float64.
func normalizeUntypedWrapper(m map[string]any) (CanonicalID, error) {
	if t, _ := m["type"].(string); t != "Buffer" {
		return "", WrapError("normalize", ErrEncoding)
	}
	data, ok := m["data"].([]any)
	if !ok || len(data) == 0 {
		return "", WrapError("normalize byte array", ErrEncoding)
	}
	raw := make([]byte, len(data))
	for i, e := range data {
		n, ok := e.(float64)
		if !ok || n < 0 || n > 255 {
			return "", WrapError("normalize byte array", ErrEncoding)
		}
		raw[i] = byte(n)
	}
	return NormalizeBytes(raw)
}

// decodeLoose decodes base64 text regardless of alphabet and padding.
func decodeLoose(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	s = strings.ReplaceAll(s, "+", "-")
	s = strings.ReplaceAll(s, "/", "_")
	return base64.RawURLEncoding.DecodeString(s)
}
