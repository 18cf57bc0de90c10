package service

import (
	"context"
	"net/url"

	"walletgate/internal/auth/store"
	dErrors "walletgate/pkg/domain-errors"
	audit "walletgate/pkg/platform/audit"
)

// BeginLogin prepares one login attempt: it generates the PKCE triple,
// stores the verifier and state transiently, and returns the authorization
// URL the user agent must navigate to. Navigation itself is the caller's
// side effect and is irreversible once issued.
//
// A previous abandoned attempt is overwritten, never cleaned up explicitly.
func (s *Service) BeginLogin(ctx context.Context) (string, error) {
	challenge, err := s.pkce.NewChallenge()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate login challenge", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate login challenge")
	}

	if err := s.transient.Set(ctx, store.KeyCodeVerifier, challenge.Verifier); err != nil {
		s.logger.ErrorContext(ctx, "failed to store code verifier", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code verifier")
	}
	if err := s.transient.Set(ctx, store.KeyState, challenge.State); err != nil {
		s.logger.ErrorContext(ctx, "failed to store state", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store state")
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("scope", s.cfg.ScopeParam())
	params.Set("code_challenge", challenge.Challenge)
	params.Set("code_challenge_method", challenge.Method)
	params.Set("state", challenge.State)
	params.Set("prompt", "select_account")

	loginURL := s.cfg.AuthorityURL + "/oauth2/v2.0/authorize?" + params.Encode()

	if s.metrics != nil {
		s.metrics.LoginsInitiated.Inc()
	}
	s.emit(ctx, audit.Event{Action: string(audit.EventLoginInitiated)})
	s.logger.InfoContext(ctx, "login initiated", "authority", s.cfg.AuthorityURL)

	return loginURL, nil
}
