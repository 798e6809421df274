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
	"fmt"
	"log/slog"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"github.com/mcyouniverse/attendance/pkg/attendance"
)

// Service runs the passkey ceremonies that gate attendance events. A
// registration ceremony enrolls a platform authenticator for an employee; an
// authentication ceremony verifies an assertion and, on success, writes
// exactly one attendance record.
type Service struct {
	webauthn   *webauthn.WebAuthn
	config     *Config
	employees  EmployeeStore
	creds      CredentialStore
	sessions   SessionStore
	attendance attendance.Store
	logger     *slog.Logger
	configured bool
}

// ServiceParams holds the dependencies for creating a Service.
type ServiceParams struct {
	Config          *Config
	EmployeeStore   EmployeeStore
	CredentialStore CredentialStore
	SessionStore    SessionStore
	AttendanceStore attendance.Store
	Logger          *slog.Logger
}

// NewService creates a ceremony service from the given parameters.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if params.EmployeeStore == nil {
		return nil, fmt.Errorf("employee store is required")
	}
	if params.CredentialStore == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if params.SessionStore == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.AttendanceStore == nil {
		return nil, fmt.Errorf("attendance store is required")
	}

	params.Config.SetDefaults()
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	wa, err := webauthn.New(params.Config.ToWebAuthnConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create webauthn instance: %w", err)
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		webauthn:   wa,
		config:     params.Config,
		employees:  params.EmployeeStore,
		creds:      params.CredentialStore,
		sessions:   params.SessionStore,
		attendance: params.AttendanceStore,
		logger:     logger,
		configured: true,
	}, nil
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Credentials returns the employee's enrolled credentials. The employee must
// exist.
func (s *Service) Credentials(ctx context.Context, employeeID string) (*attendance.Employee, []*Credential, error) {
	emp, err := s.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, nil, WrapError("get employee", err)
	}
	creds, err := s.creds.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, nil, WrapError("get credentials", err)
	}
	return emp, creds, nil
}

// BeginRegistration starts the registration ceremony for an employee.
// Returns the creation options for the client and the challenge under which
// the ceremony session was stored. Existing credentials become the exclusion
// list so the same authenticator cannot be enrolled twice.
func (s *Service) BeginRegistration(ctx context.Context, employeeID string) (*protocol.CredentialCreation, string, error) {
	if !s.configured {
		return nil, "", ErrNotConfigured
	}

	emp, err := s.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, "", WrapError("get employee", err)
	}

	existing, err := s.creds.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, "", WrapError("get credentials", err)
	}

	excludeList := make([]protocol.CredentialDescriptor, 0, len(existing))
	for _, cred := range existing {
		raw, decErr := cred.CredentialID.Bytes()
		if decErr != nil {
			continue
		}
		excludeList = append(excludeList, protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: raw,
		})
	}

	user := &employeeUser{employee: emp, credentials: existing}
	options, session, err := s.webauthn.BeginRegistration(user,
		webauthn.WithExclusions(excludeList),
		webauthn.WithCredentialParameters(s.config.credentialParameters()),
	)
	if err != nil {
		return nil, "", WrapError("begin registration", err)
	}

	challenge, err := s.sessions.Save(ctx, session)
	if err != nil {
		return nil, "", WrapError("save session", err)
	}

	return options, challenge, nil
}

// FinishRegistration completes the registration ceremony: the attestation
// response is verified against the stored session, the new credential's
// identifier and public key are normalized to canonical form and the
// credential is persisted. Nothing is written when verification fails.
func (s *Service) FinishRegistration(ctx context.Context, employeeID, challenge string, response *protocol.ParsedCredentialCreationData) (*Credential, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	if err := validateCreationResponse(employeeID, challenge, response); err != nil {
		return nil, err
	}

	session, err := s.sessions.Consume(ctx, challenge)
	if err != nil {
		return nil, WrapError("consume session", err)
	}

	emp, err := s.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, WrapError("get employee", err)
	}

	user := &employeeUser{employee: emp}
	libCred, err := s.webauthn.CreateCredential(user, *session, response)
	if err != nil {
		s.logger.Warn("attestation verification failed",
			"employee_id", employeeID,
			"error", err)
		return nil, WrapError("verify attestation", ErrVerificationFailed)
	}

	credID, err := NormalizeBytes(libCred.ID)
	if err != nil {
		return nil, WrapError("normalize credential id", err)
	}
	publicKey, err := NormalizeBytes(libCred.PublicKey)
	if err != nil {
		return nil, WrapError("normalize public key", err)
	}

	cred := &Credential{
		ID:           uuid.New(),
		EmployeeID:   emp.EmployeeID,
		CredentialID: credID,
		PublicKey:    publicKey,
		SignCount:    libCred.Authenticator.SignCount,
		CreatedAt:    time.Now().UTC(),
	}
	if aaguid, err := uuid.FromBytes(libCred.Authenticator.AAGUID); err == nil && aaguid != uuid.Nil {
		str := aaguid.String()
		cred.AAGUID = &str
	}
	if att := string(response.AuthenticatorAttachment); att != "" {
		cred.Platform = &att
	}

	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, WrapError("save credential", err)
	}

	s.logger.Info("credential registered",
		"employee_id", emp.EmployeeID,
		"credential_id", cred.CredentialID.String())

	return cred, nil
}

// BeginAuthentication starts the authentication ceremony. The options carry
// no credential allow list; the authenticator selects a discoverable
// credential and its user handle identifies the employee at finish time.
// Whether the employee actually has credentials is checked at finish.
func (s *Service) BeginAuthentication(ctx context.Context, employeeID string, intendedType attendance.EventType) (*protocol.CredentialAssertion, string, error) {
	if !s.configured {
		return nil, "", ErrNotConfigured
	}

	options, session, err := s.webauthn.BeginDiscoverableLogin(
		webauthn.WithUserVerification(protocol.VerificationRequired),
	)
	if err != nil {
		return nil, "", WrapError("begin authentication", err)
	}

	challenge, err := s.sessions.Save(ctx, session)
	if err != nil {
		return nil, "", WrapError("save session", err)
	}

	s.logger.Debug("authentication ceremony started",
		"employee_id", employeeID,
		"intended_type", string(intendedType))

	return options, challenge, nil
}

// FinishAuthenticationParams carries the assertion and the attendance context
// submitted at the gate.
type FinishAuthenticationParams struct {
	EmployeeID string
	Challenge  string
	Response   *protocol.ParsedCredentialAssertionData

	// Type fixes the event type when set. When empty the type is resolved
	// from the employee's same-day records for the location type.
	Type attendance.EventType

	LocationType attendance.LocationType
	SiteID       *string
	Latitude     *float64
	Longitude    *float64
	Address      *string
	Notes        string
}

// AuthenticationResult is the outcome of a successful authentication
// ceremony.
type AuthenticationResult struct {
	Record     *attendance.Record `json:"record"`
	Credential *Credential        `json:"credential"`
	Message    string             `json:"message"`
}

// FinishAuthentication completes the authentication ceremony and records the
// attendance event. On success exactly one attendance record is written and
// at most one credential row is touched.
func (s *Service) FinishAuthentication(ctx context.Context, params FinishAuthenticationParams) (*AuthenticationResult, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	if err := validateAssertionParams(params); err != nil {
		return nil, err
	}

	session, err := s.sessions.Consume(ctx, params.Challenge)
	if err != nil {
		return nil, WrapError("consume session", err)
	}

	emp, err := s.employees.GetByEmployeeID(ctx, params.EmployeeID)
	if err != nil {
		return nil, WrapError("get employee", err)
	}

	stored, err := s.creds.GetByEmployeeID(ctx, params.EmployeeID)
	if err != nil {
		return nil, WrapError("get credentials", err)
	}
	if len(stored) == 0 {
		return nil, WrapError("get credentials", ErrNoCredentials)
	}

	matched, err := matchCredential(stored, params.Response)
	if err != nil {
		return nil, err
	}

	user := &employeeUser{employee: emp, credentials: []*Credential{matched}}
	handler := func(rawID, userHandle []byte) (webauthn.User, error) {
		return user, nil
	}
	libCred, err := s.webauthn.ValidateDiscoverableLogin(handler, *session, params.Response)
	if err != nil {
		s.logger.Warn("assertion verification failed",
			"employee_id", params.EmployeeID,
			"error", err)
		return nil, WrapError("verify assertion", ErrVerificationFailed)
	}

	newCounter := libCred.Authenticator.SignCount
	if newCounter <= matched.SignCount && credentialUsed(matched) {
		signCountRegressionTotal.Inc()
		s.logger.Warn("signature counter did not increase",
			"employee_id", params.EmployeeID,
			"credential_id", matched.CredentialID.String(),
			"stored", matched.SignCount,
			"presented", newCounter)
		if s.config.StrictSignCount {
			return nil, WrapError("verify sign count", ErrVerificationFailed)
		}
	}
	if err := s.creds.RecordUse(ctx, matched.CredentialID, newCounter); err != nil {
		return nil, WrapError("record credential use", err)
	}
	matched.SignCount = max(matched.SignCount, newCounter)
	now := time.Now().UTC()
	matched.LastUsedAt = &now

	// The event timestamp comes from the server clock, never from the client.
	rec := attendance.NewRecord(emp.EmployeeID, emp.Name, params.Type, attendance.Now(), params.LocationType)
	rec.SiteID = params.SiteID
	rec.Latitude = params.Latitude
	rec.Longitude = params.Longitude
	rec.Address = params.Address
	rec.Notes = params.Notes

	if params.Type.Valid() {
		err = s.attendance.Create(ctx, rec)
	} else {
		err = s.attendance.CreateResolved(ctx, rec)
	}
	if err != nil {
		return nil, WrapError("create attendance record", err)
	}

	s.logger.Info("attendance recorded",
		"employee_id", rec.EmployeeID,
		"type", string(rec.Type),
		"location_type", string(rec.LocationType))

	return &AuthenticationResult{
		Record:     rec,
		Credential: matched,
		Message:    attendanceMessage(emp.Name, rec),
	}, nil
}

// validateCreationResponse checks the finish-registration inputs before any
// verification or store access. All violations are reported together.
func validateCreationResponse(employeeID, challenge string, response *protocol.ParsedCredentialCreationData) error {
	var violations []string
	if employeeID == "" {
		violations = append(violations, "employee ID is required")
	}
	if challenge == "" {
		violations = append(violations, "challenge is required")
	}
	if response == nil {
		violations = append(violations, "credential response is required")
	} else {
		if len(response.Raw.AttestationResponse.AttestationObject) == 0 {
			violations = append(violations, "attestationObject is required")
		}
		if len(response.Raw.AttestationResponse.ClientDataJSON) == 0 {
			violations = append(violations, "clientDataJSON is required")
		}
	}
	if len(violations) > 0 {
		return &attendance.ValidationError{Violations: violations}
	}
	return nil
}

// validateAssertionParams checks the finish-authentication inputs. Coordinate
// requirements mirror record validation so a bad request fails before the
// ceremony is consumed.
func validateAssertionParams(params FinishAuthenticationParams) error {
	var violations []string
	if params.EmployeeID == "" {
		violations = append(violations, "employee ID is required")
	}
	if params.Challenge == "" {
		violations = append(violations, "challenge is required")
	}
	if params.Response == nil || len(params.Response.RawID) == 0 {
		violations = append(violations, "assertion credential ID is required")
	}
	if !params.LocationType.Valid() {
		violations = append(violations, "invalid location type")
	} else if params.LocationType.RequiresCoordinates() {
		if params.Latitude == nil {
			violations = append(violations, "latitude is required for office and site locations")
		}
		if params.Longitude == nil {
			violations = append(violations, "longitude is required for office and site locations")
		}
	}
	if params.Type != "" && !params.Type.Valid() {
		violations = append(violations, "invalid attendance type")
	}
	if len(violations) > 0 {
		return &attendance.ValidationError{Violations: violations}
	}
	return nil
}

// matchCredential resolves the asserted credential against the stored set:
// first by exact identifier text, then by canonical form. The second pass
// covers clients that re-encode the identifier between registration and
// authentication.
func matchCredential(stored []*Credential, response *protocol.ParsedCredentialAssertionData) (*Credential, error) {
	submitted := response.ParsedCredential.ID
	for _, cred := range stored {
		if cred.CredentialID.String() == submitted {
			return cred, nil
		}
	}

	normalized, err := NormalizeBytes(response.RawID)
	if err != nil {
		return nil, err
	}
	for _, cred := range stored {
		if cred.CredentialID == normalized {
			return cred, nil
		}
	}
	return nil, WrapError("match credential", ErrCredentialNotFound)
}

// credentialUsed reports whether the credential has verified an assertion
// before. A fresh credential with a zero counter is allowed to stay at zero;
// authenticators without counters always report zero.
func credentialUsed(cred *Credential) bool {
	return cred.LastUsedAt != nil || cred.SignCount > 0
}

func attendanceMessage(name string, rec *attendance.Record) string {
	verb := "signed in"
	if rec.Type == attendance.SignOut {
		verb = "signed out"
	}
	return fmt.Sprintf("%s %s at %s", name, verb, attendance.FormatTimestamp(rec.Timestamp))
}
