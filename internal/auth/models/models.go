// Package models holds the data types the OAuth2 session manager persists
// and exchanges. Storage of these records lives behind the store interfaces.
package models

import (
	"strings"
	"time"

	dErrors "walletgate/pkg/domain-errors"
)

// Config captures the immutable OAuth2 client settings supplied at
// construction. RedirectURI must exactly match the value registered with the
// authorization server.
type Config struct {
	ClientID     string
	AuthorityURL string
	RedirectURI  string
	Scopes       []string
}

// Validate rejects configs with empty fields before any flow can start.
func (c Config) Validate() error {
	switch {
	case c.ClientID == "":
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	case c.AuthorityURL == "":
		return dErrors.New(dErrors.CodeValidation, "authority URL is required")
	case c.RedirectURI == "":
		return dErrors.New(dErrors.CodeValidation, "redirect URI is required")
	case len(c.Scopes) == 0:
		return dErrors.New(dErrors.CodeValidation, "at least one scope is required")
	}
	for _, scope := range c.Scopes {
		if strings.TrimSpace(scope) == "" {
			return dErrors.New(dErrors.CodeValidation, "scopes must be non-empty")
		}
	}
	return nil
}

// ScopeParam renders the scope list the way the wire format wants it.
func (c Config) ScopeParam() string {
	return strings.Join(c.Scopes, " ")
}

// Provenance records how a token set entered the session.
type Provenance string

const (
	// ProvenancePKCE marks tokens obtained through the full
	// authorization-code-with-PKCE exchange.
	ProvenancePKCE Provenance = "pkce"
	// ProvenanceNative marks tokens injected by a native wrapper. These
	// bypassed state/verifier checks, so audit trails distinguish them.
	ProvenanceNative Provenance = "native"
)

// TokenSet is the durable record of one successful token exchange. ExpiresAt
// is always derived at receipt time from ExpiresIn, never trusted from input.
type TokenSet struct {
	AccessToken string     `json:"access_token"`
	IDToken     string     `json:"id_token"`
	ExpiresIn   int64      `json:"expires_in"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Provenance  Provenance `json:"provenance,omitempty"`
}

// UserInfo carries the identity claims decoded from an ID token. Cached
// durably so it can be served without re-decoding.
type UserInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	UPN        string `json:"upn,omitempty"`
}
