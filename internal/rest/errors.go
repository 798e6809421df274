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

package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcyouniverse/attendance/pkg/attendance"
	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status)
	}
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// handleServiceError maps ceremony and store errors to HTTP responses.
// Employee lookups on ceremony routes report 400 rather than 404; only the
// profile lookup route treats an unknown employee as 404.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var validation *attendance.ValidationError
	switch {
	case errors.As(err, &validation):
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, validation.Error())
	case errors.Is(err, webauthn.ErrSessionNotFound):
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidSession, "ceremony session not found")
	case errors.Is(err, webauthn.ErrSessionExpired):
		h.writeError(w, http.StatusBadRequest, ErrorCodeSessionExpired, "ceremony session expired")
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		h.writeError(w, http.StatusBadRequest, ErrorCodeEmployeeNotFound, "employee not found")
	case errors.Is(err, webauthn.ErrNoCredentials):
		h.writeError(w, http.StatusBadRequest, ErrorCodeNoCredentials, "no credentials found for employee")
	case errors.Is(err, webauthn.ErrCredentialNotFound):
		h.writeError(w, http.StatusBadRequest, ErrorCodeCredentialNotFound, "credential not found for this employee")
	case errors.Is(err, webauthn.ErrEncoding):
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "unable to normalize credential identifier")
	case errors.Is(err, webauthn.ErrVerificationFailed):
		h.writeError(w, http.StatusBadRequest, ErrorCodeVerificationFailed, "verification failed")
	default:
		h.logger.Error("internal error", "error", err)
		h.writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal server error")
	}
}
