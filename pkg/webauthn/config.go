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
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/go-webauthn/webauthn/webauthn"
)

// Config holds the Relying Party settings for attendance ceremonies.
//
// Authenticator policy is not configurable: registration always requires
// platform attachment, user verification and a resident key. The gate binds
// attendance to a biometric-capable device; relaxing any of these would let a
// roaming key check someone else in.
type Config struct {
	// RPID is the Relying Party identifier, typically the domain name.
	RPID string `yaml:"id" json:"id" mapstructure:"id"`

	// RPDisplayName is the human-readable name of the Relying Party.
	RPDisplayName string `yaml:"display_name" json:"display_name" mapstructure:"display_name"`

	// RPOrigins are the allowed origins for WebAuthn operations.
	RPOrigins []string `yaml:"origins" json:"origins" mapstructure:"origins"`

	// Timeout is the ceremony timeout. Default: 30 minutes, long enough for
	// a queue at the physical gate.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// SupportedAlgorithms lists the COSE algorithm identifiers offered at
	// registration. Default: ES256 (-7) and RS256 (-257).
	SupportedAlgorithms []int64 `yaml:"supported_algorithms" json:"supported_algorithms" mapstructure:"supported_algorithms"`

	// StrictSignCount makes a non-increasing signature counter on a
	// previously-used credential fail authentication instead of only being
	// logged and counted.
	StrictSignCount bool `yaml:"strict_sign_count" json:"strict_sign_count" mapstructure:"strict_sign_count"`

	// SessionTTL bounds how long an issued challenge stays redeemable.
	// Defaults to Timeout.
	SessionTTL time.Duration `yaml:"session_ttl" json:"session_ttl" mapstructure:"session_ttl"`

	// Debug enables debug logging in the underlying protocol library.
	Debug bool `yaml:"debug" json:"debug" mapstructure:"debug"`
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.RPID == "" {
		return fmt.Errorf("RPID is required")
	}
	if c.RPDisplayName == "" {
		return fmt.Errorf("RPDisplayName is required")
	}
	if len(c.RPOrigins) == 0 {
		return fmt.Errorf("at least one RPOrigin is required")
	}
	for _, alg := range c.SupportedAlgorithms {
		switch webauthncose.COSEAlgorithmIdentifier(alg) {
		case webauthncose.AlgES256, webauthncose.AlgES384, webauthncose.AlgES512,
			webauthncose.AlgRS256, webauthncose.AlgRS384, webauthncose.AlgRS512,
			webauthncose.AlgEdDSA:
			// Valid
		default:
			return fmt.Errorf("unsupported COSE algorithm: %d", alg)
		}
	}
	return nil
}

// SetDefaults sets default values for unset configuration fields.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Minute
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = c.Timeout
	}
	if len(c.SupportedAlgorithms) == 0 {
		c.SupportedAlgorithms = []int64{
			int64(webauthncose.AlgES256),
			int64(webauthncose.AlgRS256),
		}
	}
}

// ToWebAuthnConfig converts the Config to the go-webauthn library's
// configuration.
func (c *Config) ToWebAuthnConfig() *webauthn.Config {
	cfg := &webauthn.Config{
		RPID:                  c.RPID,
		RPDisplayName:         c.RPDisplayName,
		RPOrigins:             c.RPOrigins,
		AttestationPreference: protocol.PreferNoAttestation,
		Debug:                 c.Debug,
	}

	if c.Timeout > 0 {
		cfg.Timeouts = webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    c.Timeout,
				TimeoutUVD: c.Timeout,
			},
			Registration: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    c.Timeout,
				TimeoutUVD: c.Timeout,
			},
		}
	}

	// Fixed authenticator policy: on-device biometrics, verified user,
	// discoverable credential.
	cfg.AuthenticatorSelection = protocol.AuthenticatorSelection{
		AuthenticatorAttachment: protocol.Platform,
		UserVerification:        protocol.VerificationRequired,
		RequireResidentKey:      protocol.ResidentKeyRequired(),
		ResidentKey:             protocol.ResidentKeyRequirementRequired,
	}

	return cfg
}

// credentialParameters maps the configured algorithms to protocol credential
// parameters for registration options.
func (c *Config) credentialParameters() []protocol.CredentialParameter {
	params := make([]protocol.CredentialParameter, len(c.SupportedAlgorithms))
	for i, alg := range c.SupportedAlgorithms {
		params[i] = protocol.CredentialParameter{
			Type:      protocol.PublicKeyCredentialType,
			Algorithm: webauthncose.COSEAlgorithmIdentifier(alg),
		}
	}
	return params
}
