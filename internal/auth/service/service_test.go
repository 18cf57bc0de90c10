package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletgate/internal/auth/models"
	"walletgate/internal/auth/store"
	dErrors "walletgate/pkg/domain-errors"
	"walletgate/pkg/platform/audit/publisher"
	"walletgate/pkg/platform/audit/store/memory"
)

func jsonResponse(status int, body map[string]any) *http.Response {
	raw, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(raw)),
	}
}

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Doer,Emitter

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig() models.Config {
	return models.Config{
		ClientID:     "client-123",
		AuthorityURL: "https://login.example.com/common",
		RedirectURI:  "https://app.example.com/auth/callback",
		Scopes:       []string{"openid", "profile"},
	}
}

type fixture struct {
	svc       *Service
	transient *store.MemoryTransient
	durable   *store.MemoryDurable
	clock     *fixedClock
}

func newFixture(t *testing.T, mutate func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		transient: store.NewMemoryTransient(),
		durable:   store.NewMemoryDurable(),
		clock:     &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	deps := Deps{
		Transient: f.transient,
		Durable:   f.durable,
		Clock:     f.clock,
		HTTP: doerFunc(func(*http.Request) (*http.Response, error) {
			t.Fatal("unexpected token endpoint call")
			return nil, nil
		}),
	}
	if mutate != nil {
		mutate(&deps)
	}
	svc, err := New(testConfig(), deps)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ClientID = ""
	_, err := New(cfg, Deps{
		Transient: store.NewMemoryTransient(),
		Durable:   store.NewMemoryDurable(),
	})
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

	_, err = New(testConfig(), Deps{})
	assert.True(t, dErrors.Is(err, dErrors.CodeInvariantViolation))
}

func TestBeginLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	loginURL, err := f.svc.BeginLogin(ctx)
	require.NoError(t, err)

	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "/common/oauth2/v2.0/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://app.example.com/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid profile", q.Get("scope"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.NotEmpty(t, q.Get("code_challenge"))

	verifier, err := f.transient.Get(ctx, store.KeyCodeVerifier)
	require.NoError(t, err)
	assert.Len(t, verifier, 43)

	state, err := f.transient.Get(ctx, store.KeyState)
	require.NoError(t, err)
	assert.Equal(t, state, q.Get("state"))
}

func TestHandleCallback_NotACallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tokens, err := f.svc.HandleCallback(ctx, url.Values{})
	assert.NoError(t, err)
	assert.Nil(t, tokens)

	// No storage mutation either way.
	_, err = f.transient.Get(ctx, store.KeyState)
	assert.ErrorIs(t, err, store.ErrNotFound)
	stored, err := f.svc.Tokens(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestHandleCallback_AuthorizationError(t *testing.T) {
	f := newFixture(t, nil)

	query := url.Values{}
	query.Set("error", "access_denied")
	query.Set("error_description", "User cancelled")

	_, err := f.svc.HandleCallback(context.Background(), query)
	require.Error(t, err)

	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, err.Error(), "access_denied")
	assert.Contains(t, err.Error(), "User cancelled")
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil) // default doer fails the test if the endpoint is hit

	_, err := f.svc.BeginLogin(ctx)
	require.NoError(t, err)

	query := url.Values{}
	query.Set("code", "ABC123")
	query.Set("state", "forged-state")

	_, err = f.svc.HandleCallback(ctx, query)
	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestHandleCallback_MissingVerifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// State present but verifier lost, e.g. a cross-process callback.
	require.NoError(t, f.transient.Set(ctx, store.KeyState, "S1"))

	query := url.Values{}
	query.Set("code", "ABC123")
	query.Set("state", "S1")

	_, err := f.svc.HandleCallback(ctx, query)
	assert.ErrorIs(t, err, ErrMissingVerifier)
}

func b64url(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func makeIDToken(claims map[string]any) string {
	header := b64url(map[string]any{"alg": "RS256", "typ": "JWT"})
	return header + "." + b64url(claims) + ".c2lnbmF0dXJl"
}

func TestHandleCallback_EndToEnd(t *testing.T) {
	ctx := context.Background()

	idToken := makeIDToken(map[string]any{
		"oid":                "user-oid-1",
		"preferred_username": "ada@example.com",
		"name":               "Ada Lovelace",
		"upn":                "ada@corp.example.com",
	})

	var gotForm url.Values
	auditStore := memory.NewInMemoryStore()
	auditPub := publisher.NewPublisher(auditStore)
	defer auditPub.Close()
	f := newFixture(t, func(d *Deps) {
		d.Audit = auditPub
		d.HTTP = doerFunc(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
			assert.Equal(t, "https://login.example.com/common/oauth2/v2.0/token", req.URL.String())
			require.NoError(t, req.ParseForm())
			gotForm = req.PostForm
			return jsonResponse(http.StatusOK, map[string]any{
				"access_token": "AT1",
				"id_token":     idToken,
				"expires_in":   3600,
			}), nil
		})
	})

	_, err := f.svc.BeginLogin(ctx)
	require.NoError(t, err)
	state, err := f.transient.Get(ctx, store.KeyState)
	require.NoError(t, err)
	verifier, err := f.transient.Get(ctx, store.KeyCodeVerifier)
	require.NoError(t, err)

	query := url.Values{}
	query.Set("code", "ABC123")
	query.Set("state", state)

	tokens, err := f.svc.HandleCallback(ctx, query)
	require.NoError(t, err)
	require.NotNil(t, tokens)

	// The exchange proved possession of the verifier from BeginLogin.
	assert.Equal(t, "ABC123", gotForm.Get("code"))
	assert.Equal(t, verifier, gotForm.Get("code_verifier"))
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "https://app.example.com/auth/callback", gotForm.Get("redirect_uri"))

	assert.Equal(t, "AT1", tokens.AccessToken)
	assert.Equal(t, models.ProvenancePKCE, tokens.Provenance)
	assert.Equal(t, f.clock.now.Add(time.Hour), tokens.ExpiresAt)

	assert.True(t, f.svc.IsAuthenticated(ctx))
	at, ok := f.svc.AccessToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "AT1", at)

	info, err := f.svc.UserInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "user-oid-1", info.ID)
	assert.Equal(t, "ada@corp.example.com", info.UPN)

	// Transient keys consumed.
	_, err = f.transient.Get(ctx, store.KeyCodeVerifier)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.transient.Get(ctx, store.KeyState)
	assert.ErrorIs(t, err, store.ErrNotFound)

	events, err := auditStore.ListAll(ctx)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "login_initiated")
	assert.Contains(t, actions, "token_exchanged")
}

func TestHandleCallback_ServerRejectsExchange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(d *Deps) {
		d.HTTP = doerFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, map[string]any{
				"error":             "invalid_grant",
				"error_description": "code expired",
			}), nil
		})
	})

	_, err := f.svc.BeginLogin(ctx)
	require.NoError(t, err)
	state, _ := f.transient.Get(ctx, store.KeyState)

	query := url.Values{}
	query.Set("code", "STALE")
	query.Set("state", state)

	_, err = f.svc.HandleCallback(ctx, query)
	require.Error(t, err)

	var exchErr *TokenExchangeError
	require.ErrorAs(t, err, &exchErr)
	assert.Equal(t, "invalid_grant", exchErr.Code)
	assert.Contains(t, err.Error(), "code expired")

	// A failed exchange leaves no session behind.
	assert.False(t, f.svc.IsAuthenticated(ctx))
}

func TestTokenValid_Boundaries(t *testing.T) {
	f := newFixture(t, nil)
	now := f.clock.now

	cases := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"expired exactly now", now, false},
		{"expires in 4 minutes", now.Add(4 * time.Minute), false},
		{"expires at the margin", now.Add(5 * time.Minute), false},
		{"expires in 10 minutes", now.Add(10 * time.Minute), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &models.TokenSet{AccessToken: "AT", ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.want, f.svc.TokenValid(tokens))
		})
	}

	assert.False(t, f.svc.TokenValid(nil))
}

func TestTokens_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	in := &models.TokenSet{
		AccessToken: "AT1",
		IDToken:     "h.p.s",
		ExpiresIn:   3600,
		ExpiresAt:   f.clock.now.Add(time.Hour),
		Provenance:  models.ProvenancePKCE,
	}
	require.NoError(t, f.svc.StoreTokens(ctx, in))

	out, err := f.svc.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAccessToken_NeverReturnsExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	require.NoError(t, f.svc.StoreTokens(ctx, &models.TokenSet{
		AccessToken: "OLD",
		ExpiresAt:   f.clock.now.Add(-time.Minute),
	}))

	_, ok := f.svc.AccessToken(ctx)
	assert.False(t, ok)
	_, ok = f.svc.AuthorizationHeader(ctx)
	assert.False(t, ok)
	assert.False(t, f.svc.IsAuthenticated(ctx))
}

func TestAuthorizationHeader(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	require.NoError(t, f.svc.StoreTokens(ctx, &models.TokenSet{
		AccessToken: "AT1",
		ExpiresAt:   f.clock.now.Add(time.Hour),
	}))

	header, ok := f.svc.AuthorizationHeader(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Bearer AT1", header)
}

func TestDecodeIDToken(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("maps claims with oid preferred over sub", func(t *testing.T) {
		token := makeIDToken(map[string]any{
			"oid":         "oid-1",
			"sub":         "sub-1",
			"email":       "e@example.com",
			"name":        "E Example",
			"given_name":  "E",
			"family_name": "Example",
		})
		info, err := f.svc.DecodeIDToken(token)
		require.NoError(t, err)
		assert.Equal(t, "oid-1", info.ID)
		assert.Equal(t, "e@example.com", info.Email)
		assert.Equal(t, "E", info.GivenName)
		assert.Equal(t, "Example", info.FamilyName)
	})

	t.Run("falls back to sub and email", func(t *testing.T) {
		token := makeIDToken(map[string]any{"sub": "sub-2", "email": "s@example.com"})
		info, err := f.svc.DecodeIDToken(token)
		require.NoError(t, err)
		assert.Equal(t, "sub-2", info.ID)
		assert.Equal(t, "s@example.com", info.Email)
	})

	t.Run("rejects wrong segment count", func(t *testing.T) {
		_, err := f.svc.DecodeIDToken("only.two")
		assert.ErrorIs(t, err, ErrInvalidTokenFormat)
	})

	t.Run("rejects garbage payload", func(t *testing.T) {
		_, err := f.svc.DecodeIDToken("aGVhZGVy.!!!.c2ln")
		assert.ErrorIs(t, err, ErrInvalidTokenFormat)
	})
}

func TestUserInfo_DecoupledFromTokenExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	idToken := makeIDToken(map[string]any{"oid": "u1", "name": "U One"})
	require.NoError(t, f.svc.StoreTokens(ctx, &models.TokenSet{
		AccessToken: "AT1",
		IDToken:     idToken,
		ExpiresAt:   f.clock.now.Add(time.Hour),
	}))

	info, err := f.svc.UserInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)

	// Tokens expire; cached identity stays until logout.
	f.clock.now = f.clock.now.Add(2 * time.Hour)
	assert.False(t, f.svc.IsAuthenticated(ctx))

	info, err = f.svc.UserInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "u1", info.ID)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	idToken := makeIDToken(map[string]any{"oid": "u1"})
	require.NoError(t, f.svc.StoreTokens(ctx, &models.TokenSet{
		AccessToken: "AT1",
		IDToken:     idToken,
		ExpiresAt:   f.clock.now.Add(time.Hour),
	}))
	_, err := f.svc.UserInfo(ctx) // prime the cache
	require.NoError(t, err)
	require.NoError(t, f.transient.Set(ctx, store.KeyState, "leftover"))

	require.NoError(t, f.svc.Logout(ctx))

	assert.False(t, f.svc.IsAuthenticated(ctx))
	info, err := f.svc.UserInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)
	_, err = f.transient.Get(ctx, store.KeyState)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Idempotent.
	assert.NoError(t, f.svc.Logout(ctx))
}
