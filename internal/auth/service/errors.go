package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for callback validation failures. They are wrapped with
// domain-error codes before leaving the service, so both errors.Is and
// dErrors.Is work on the result.
var (
	// ErrStateMismatch means the callback state did not match the stored
	// one. The request is abandoned before any token-endpoint call.
	ErrStateMismatch = errors.New("state mismatch, possible CSRF")

	// ErrMissingVerifier means transient storage lost the code verifier,
	// typically a callback landing in a different process than the one
	// that initiated the flow.
	ErrMissingVerifier = errors.New("code verifier not found")

	// ErrInvalidTokenFormat means an ID token was not a three-part signed
	// token or its payload did not decode.
	ErrInvalidTokenFormat = errors.New("invalid ID token format")
)

// AuthorizationError reports that the authorization server redirected back
// with an error instead of a code.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = "unknown error"
	}
	return fmt.Sprintf("authorization failed: %s - %s", e.Code, desc)
}

// TokenExchangeError reports a failed code-for-tokens exchange, either a
// non-success response from the token endpoint or a transport failure.
type TokenExchangeError struct {
	Code        string
	Description string
	cause       error
}

func (e *TokenExchangeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("token exchange failed: %v", e.cause)
	}
	return fmt.Sprintf("token exchange failed: %s - %s", e.Code, e.Description)
}

func (e *TokenExchangeError) Unwrap() error { return e.cause }
