package service

import (
	"context"
	"encoding/json"
	"errors"

	"walletgate/internal/auth/models"
	"walletgate/internal/auth/store"
	dErrors "walletgate/pkg/domain-errors"
	audit "walletgate/pkg/platform/audit"
)

// StoreTokens persists a token set durably, replacing any previous one.
// Exported so the native bridge can persist injected token sets through the
// same single owner of the storage keys.
func (s *Service) StoreTokens(ctx context.Context, tokens *models.TokenSet) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode tokens")
	}
	if err := s.durable.Put(ctx, store.KeyTokens, raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist tokens")
	}
	return nil
}

// Tokens returns the stored token set, or (nil, nil) when none exists.
func (s *Service) Tokens(ctx context.Context) (*models.TokenSet, error) {
	raw, err := s.durable.Get(ctx, store.KeyTokens)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read tokens")
	}
	var tokens models.TokenSet
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode stored tokens")
	}
	return &tokens, nil
}

// TokenValid reports whether the set expires more than the safety margin
// from now. A token expiring exactly now, or inside the margin, is invalid.
func (s *Service) TokenValid(tokens *models.TokenSet) bool {
	if tokens == nil {
		return false
	}
	return tokens.ExpiresAt.After(s.clock.Now().Add(tokenValidityMargin))
}

// IsAuthenticated reports whether valid, non-expired tokens are persisted.
// Cached user info is deliberately irrelevant here; only tokens count.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	tokens, err := s.Tokens(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load tokens", "error", err)
		return false
	}
	return s.TokenValid(tokens)
}

// AccessToken returns the access token only while it is valid; an expired
// token is never handed out.
func (s *Service) AccessToken(ctx context.Context) (string, bool) {
	tokens, err := s.Tokens(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load tokens", "error", err)
		return "", false
	}
	if !s.TokenValid(tokens) {
		return "", false
	}
	return tokens.AccessToken, true
}

// AuthorizationHeader returns a ready-to-use Bearer header value, or false
// when unauthenticated.
func (s *Service) AuthorizationHeader(ctx context.Context) (string, bool) {
	token, ok := s.AccessToken(ctx)
	if !ok {
		return "", false
	}
	return "Bearer " + token, true
}

// UserInfo returns the cached identity claims, deriving and caching them
// from the stored ID token on first access. (nil, nil) means neither a
// cache nor tokens are available.
//
// The cache is cleared by Logout, not by token expiry: identity display can
// outlive an expired access token by design.
func (s *Service) UserInfo(ctx context.Context) (*models.UserInfo, error) {
	raw, err := s.durable.Get(ctx, store.KeyUserInfo)
	if err == nil {
		var info models.UserInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode cached user info")
		}
		return &info, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read user info")
	}

	tokens, err := s.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	if tokens == nil || tokens.IDToken == "" {
		return nil, nil
	}

	info, err := s.DecodeIDToken(tokens.IDToken)
	if err != nil {
		return nil, err
	}
	if cacheErr := s.storeUserInfo(ctx, info); cacheErr != nil {
		s.logger.WarnContext(ctx, "failed to cache user info", "error", cacheErr)
	}
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventUserInfoAccessed),
		Subject: info.ID,
	})
	return info, nil
}

func (s *Service) storeUserInfo(ctx context.Context, info *models.UserInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode user info")
	}
	return s.durable.Put(ctx, store.KeyUserInfo, raw)
}

// Logout deletes tokens, cached user info, and any leftover transient
// verifier/state. Idempotent: a second call finds nothing and still
// succeeds.
func (s *Service) Logout(ctx context.Context) error {
	for _, key := range []string{store.KeyTokens, store.KeyUserInfo} {
		if err := s.durable.Delete(ctx, key); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear session")
		}
	}
	for _, key := range []string{store.KeyCodeVerifier, store.KeyState} {
		if err := s.transient.Delete(ctx, key); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear pending authorization")
		}
	}
	if s.metrics != nil {
		s.metrics.Logouts.Inc()
	}
	s.emit(ctx, audit.Event{Action: string(audit.EventLoggedOut)})
	s.logger.InfoContext(ctx, "session cleared")
	return nil
}
