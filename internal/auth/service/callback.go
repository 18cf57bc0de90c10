package service

import (
	"context"
	"errors"
	"net/url"

	"walletgate/internal/auth/models"
	"walletgate/internal/auth/store"
	dErrors "walletgate/pkg/domain-errors"
	audit "walletgate/pkg/platform/audit"
)

// HandleCallback processes the authorization server's redirect back. The
// query is the callback request's query string.
//
// A (nil, nil) return means the query carried no code at all: nothing to do,
// not a failure. Callers use that to distinguish a fresh page load from a
// real callback. On success the transient verifier/state are consumed and
// the exchanged token set is persisted and returned.
func (s *Service) HandleCallback(ctx context.Context, query url.Values) (*models.TokenSet, error) {
	if errCode := query.Get("error"); errCode != "" {
		authErr := &AuthorizationError{
			Code:        errCode,
			Description: query.Get("error_description"),
		}
		s.logger.WarnContext(ctx, "authorization server returned error",
			"error_code", errCode,
			"description", authErr.Description,
		)
		s.emit(ctx, audit.Event{
			Action: string(audit.EventAuthFailed),
			Reason: authErr.Error(),
		})
		return nil, dErrors.Wrap(authErr, dErrors.CodeUnauthorized, "authorization rejected")
	}

	code := query.Get("code")
	if code == "" {
		return nil, nil
	}

	storedState, err := s.transient.Get(ctx, store.KeyState)
	if err != nil || storedState != query.Get("state") {
		s.logger.WarnContext(ctx, "callback state mismatch")
		s.emit(ctx, audit.Event{
			Action: string(audit.EventAuthFailed),
			Reason: ErrStateMismatch.Error(),
		})
		return nil, dErrors.Wrap(ErrStateMismatch, dErrors.CodeUnauthorized, "callback rejected")
	}

	verifier, err := s.transient.Get(ctx, store.KeyCodeVerifier)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read code verifier")
		}
		s.emit(ctx, audit.Event{
			Action: string(audit.EventAuthFailed),
			Reason: ErrMissingVerifier.Error(),
		})
		return nil, dErrors.Wrap(ErrMissingVerifier, dErrors.CodeUnauthorized, "callback rejected")
	}

	tokens, err := s.exchangeCode(ctx, code, verifier)
	if err != nil {
		s.emit(ctx, audit.Event{
			Action: string(audit.EventAuthFailed),
			Reason: err.Error(),
		})
		return nil, err
	}

	if err := s.StoreTokens(ctx, tokens); err != nil {
		return nil, err
	}

	// Consume the pending authorization; best effort, an orphaned key is
	// overwritten by the next attempt anyway.
	if err := s.transient.Delete(ctx, store.KeyCodeVerifier); err != nil {
		s.logger.WarnContext(ctx, "failed to clear code verifier", "error", err)
	}
	if err := s.transient.Delete(ctx, store.KeyState); err != nil {
		s.logger.WarnContext(ctx, "failed to clear state", "error", err)
	}

	s.emit(ctx, audit.Event{
		Action:     string(audit.EventTokenExchanged),
		Provenance: string(models.ProvenancePKCE),
	})
	s.logger.InfoContext(ctx, "token exchange completed")

	return tokens, nil
}
