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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/mcyouniverse/attendance/pkg/attendance"
	"github.com/mcyouniverse/attendance/pkg/health"
	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

// Handler provides the HTTP handlers for the attendance API.
type Handler struct {
	service  *webauthn.Service
	reporter *attendance.Reporter
	sessions *SessionManager
	checker  *health.Checker
	logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(service *webauthn.Service, reporter *attendance.Reporter, sessions *SessionManager) *Handler {
	return &Handler{
		service:  service,
		reporter: reporter,
		sessions: sessions,
		checker:  health.NewChecker(),
		logger:   slog.Default(),
	}
}

// WithLogger sets a custom logger for the handler.
func (h *Handler) WithLogger(logger *slog.Logger) *Handler {
	h.logger = logger
	return h
}

// WithHealthChecker replaces the health checker backing GET /health.
func (h *Handler) WithHealthChecker(checker *health.Checker) *Handler {
	if checker != nil {
		h.checker = checker
	}
	return h
}

// EmployeeLookup handles POST /auth/employee.
//
// Returns the employee profile and formatted credential list, and binds the
// employee to the session cookie for the history and report routes.
func (h *Handler) EmployeeLookup(w http.ResponseWriter, r *http.Request) {
	var req EmployeeLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid request body")
		return
	}
	if !attendance.EmployeeIDPattern.MatchString(req.EmployeeID) {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid employee ID format")
		return
	}

	emp, creds, err := h.service.Credentials(r.Context(), req.EmployeeID)
	if err != nil {
		if errors.Is(err, attendance.ErrEmployeeNotFound) {
			h.writeError(w, http.StatusNotFound, ErrorCodeEmployeeNotFound, "employee not found")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	if err := h.sessions.Issue(w, emp.EmployeeID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	summaries := make([]webauthn.CredentialSummary, len(creds))
	for i, cred := range creds {
		summaries[i] = cred.Summary()
	}
	h.writeJSON(w, http.StatusOK, EmployeeResponse{
		EmployeeID:  emp.EmployeeID,
		Name:        emp.Name,
		Email:       emp.Email,
		Department:  emp.Department,
		Role:        emp.Role,
		Active:      emp.Active,
		Credentials: summaries,
	})
}

// RegisterRequest handles POST /auth/registerRequest.
//
// Returns the credential creation options. The challenge inside the options
// is the key the client must echo back to registerResponse.
func (h *Handler) RegisterRequest(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid request body")
		return
	}
	if req.EmployeeID == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "employee ID is required")
		return
	}

	options, _, err := h.service.BeginRegistration(r.Context(), req.EmployeeID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, options)
}

// RegisterResponse handles POST /auth/registerResponse.
//
// The body carries employeeId and challenge alongside the attestation
// response fields; the attestation is parsed from the same raw body.
func (h *Handler) RegisterResponse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "unable to read request body")
		return
	}

	var meta RegisterResponseMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid request body")
		return
	}
	if meta.EmployeeID == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "employee ID is required")
		return
	}
	if meta.Challenge == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "challenge is missing")
		return
	}

	response, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(body))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid attestation response")
		return
	}

	cred, err := h.service.FinishRegistration(r.Context(), meta.EmployeeID, meta.Challenge, response)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, RegisterResult{
		Success:      true,
		CredentialID: cred.CredentialID.String(),
	})
}

// SigninRequest handles POST /auth/signinRequest.
//
// Returns the assertion options plus the intended event type echoed back. An
// empty type leaves the decision to the server at signinResponse time.
func (h *Handler) SigninRequest(w http.ResponseWriter, r *http.Request) {
	var req SigninRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid request body")
		return
	}
	if req.EmployeeID == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "employee ID is required")
		return
	}

	options, _, err := h.service.BeginAuthentication(r.Context(), req.EmployeeID, attendance.EventType(req.Type))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, SigninRequestResult{
		PublicKey: options.Response,
		SignType:  req.Type,
	})
}

// SigninResponse handles POST /auth/signinResponse.
//
// The body carries employeeId, challenge and the attendance context alongside
// the assertion fields; the assertion is parsed from the same raw body.
func (h *Handler) SigninResponse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "unable to read request body")
		return
	}

	var meta SigninResponseMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid request body")
		return
	}
	if meta.EmployeeID == "" || meta.Challenge == "" || meta.ID == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "missing required parameters")
		return
	}

	response, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(body))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid assertion response")
		return
	}

	result, err := h.service.FinishAuthentication(r.Context(), webauthn.FinishAuthenticationParams{
		EmployeeID:   meta.EmployeeID,
		Challenge:    meta.Challenge,
		Response:     response,
		Type:         attendance.EventType(meta.AuthenticationType),
		LocationType: attendance.LocationType(meta.LocationType),
		SiteID:       meta.SiteID,
		Latitude:     meta.Latitude,
		Longitude:    meta.Longitude,
		Address:      meta.Address,
		Notes:        meta.Notes,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, SigninResult{
		Success:   true,
		Type:      result.Record.Type,
		Message:   result.Message,
		Timestamp: attendance.FormatTimestamp(result.Record.Timestamp),
	})
}

// Signout handles GET /auth/signout.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Daily handles GET /attendance/daily?date=YYYY-MM-DD.
//
// Returns all employees' records for the requested calendar day, bounded in
// the server time zone. The date defaults to today.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	day := attendance.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, attendance.ServerLocation())
		if err != nil {
			h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	records, err := h.reporter.Daily(r.Context(), day)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newRecordViews(records))
}

// History handles GET /attendance/history?startDate&endDate for the session
// employee. The range defaults to the current month.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.sessions.EmployeeID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidSession, "no employee ID in session")
		return
	}

	now := attendance.Now()
	start, end := attendance.MonthBounds(now.Year(), now.Month())

	if s := r.URL.Query().Get("startDate"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, attendance.ServerLocation())
		if err != nil {
			h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if e := r.URL.Query().Get("endDate"); e != "" {
		parsed, err := time.ParseInLocation("2006-01-02", e, attendance.ServerLocation())
		if err != nil {
			h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		// endDate is inclusive.
		end = parsed.AddDate(0, 0, 1)
	}

	records, err := h.reporter.History(r.Context(), employeeID, start, end)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newRecordViews(records))
}

// Report handles GET /attendance/report?month&year for the session employee.
// Month and year default to the current month.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.sessions.EmployeeID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidSession, "no employee ID in session")
		return
	}

	now := attendance.Now()
	month := int(now.Month())
	year := now.Year()

	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid month")
			return
		}
		month = parsed
	}
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid year")
			return
		}
		year = parsed
	}

	report, err := h.reporter.MonthlyReport(r.Context(), employeeID, year, time.Month(month))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// Health handles GET /health. It reports unhealthy with a 503 when any
// registered dependency check fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := h.checker.Check(ctx)
	status := health.AggregateStatus(results)

	code := http.StatusOK
	if status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, HealthResponse{
		Status: string(status),
		Time:   time.Now().UTC(),
		Checks: results,
	})
}
