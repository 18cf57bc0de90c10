package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"walletgate/internal/auth/models"
	dErrors "walletgate/pkg/domain-errors"
	"walletgate/pkg/platform/httputil"
	"walletgate/pkg/requestcontext"
)

// Session is the slice of the auth service the HTTP layer consumes.
type Session interface {
	BeginLogin(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, query url.Values) (*models.TokenSet, error)
	IsAuthenticated(ctx context.Context) bool
	UserInfo(ctx context.Context) (*models.UserInfo, error)
	Logout(ctx context.Context) error
}

// InjectionGate reports whether a native token injection already produced a
// session, in which case login skips the redirect dance entirely.
type InjectionGate interface {
	Injected() bool
}

// AuthHandler wires the login, callback, and session endpoints to the auth
// service.
type AuthHandler struct {
	session       Session
	gate          InjectionGate
	logger        *slog.Logger
	postLoginPath string
}

// NewAuthHandler constructs an auth handler. postLoginPath is where the
// browser lands after a completed (or empty) callback, with the code and
// state stripped from the visible URL.
func NewAuthHandler(session Session, gate InjectionGate, logger *slog.Logger, postLoginPath string) *AuthHandler {
	if postLoginPath == "" {
		postLoginPath = "/"
	}
	return &AuthHandler{
		session:       session,
		gate:          gate,
		logger:        logger,
		postLoginPath: postLoginPath,
	}
}

// Register mounts the auth endpoints on the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Get("/auth/login", h.HandleLogin)
	r.Get("/auth/callback", h.HandleCallback)
	r.Get("/auth/status", h.HandleStatus)
	r.Get("/auth/userinfo", h.HandleUserInfo)
	r.Post("/auth/logout", h.HandleLogout)
}

// HandleLogin handles GET /auth/login requests. A prior native injection
// wins over a fresh redirect.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.gate != nil && h.gate.Injected() {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"source":        string(models.ProvenanceNative),
		})
		return
	}

	loginURL, err := h.session.BeginLogin(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to begin login",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	http.Redirect(w, r, loginURL, http.StatusFound)
}

// HandleCallback handles GET /auth/callback requests from the authorization
// server. The redirect target never carries the code or state, so a reload
// of the landing page cannot replay the exchange.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	tokens, err := h.session.HandleCallback(ctx, r.URL.Query())
	if err != nil {
		h.logger.ErrorContext(ctx, "callback handling failed",
			"request_id", requestID,
			"device", requestcontext.Device(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if tokens == nil {
		// Not a callback at all, just a page load on the callback path.
		http.Redirect(w, r, h.postLoginPath, http.StatusFound)
		return
	}

	h.logger.InfoContext(ctx, "login completed",
		"request_id", requestID,
		"device", requestcontext.Device(ctx),
		"provenance", tokens.Provenance,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	http.Redirect(w, r, h.postLoginPath, http.StatusFound)
}

// HandleStatus handles GET /auth/status requests.
func (h *AuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	injected := h.gate != nil && h.gate.Injected()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated":  h.session.IsAuthenticated(ctx),
		"token_injected": injected,
	})
}

// HandleUserInfo handles GET /auth/userinfo requests.
func (h *AuthHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.session.UserInfo(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load user info",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if info == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no user info available"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

// HandleLogout handles POST /auth/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.session.Logout(ctx); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}
