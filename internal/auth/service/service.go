// Package service implements the OAuth2 authorization-code-with-PKCE session
// manager. One Service instance owns the persisted session state for a
// process; construct it once and pass it by reference.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"walletgate/internal/auth/models"
	"walletgate/internal/auth/store"
	"walletgate/internal/pkce"
	"walletgate/internal/platform/metrics"
	dErrors "walletgate/pkg/domain-errors"
	audit "walletgate/pkg/platform/audit"
)

// tokenValidityMargin is the early-refresh safety margin: tokens count as
// expired this long before their actual expiry.
const tokenValidityMargin = 5 * time.Minute

// Doer issues the token-exchange HTTP request. No retry or timeout is layered
// on here; a network failure surfaces immediately and callers add their own
// backoff if they want one.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock abstracts time so expiry checks are testable.
type Clock interface {
	Now() time.Time
}

// Emitter publishes audit events.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Deps bundles the capabilities the session manager needs. Transient and
// Durable are required; everything else has a sensible default.
type Deps struct {
	Transient store.TransientStore
	Durable   store.DurableStore
	HTTP      Doer
	Clock     Clock
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Audit     Emitter
	PKCE      *pkce.Generator
}

// Service is the OAuth2 session manager. All state lives in the injected
// stores; the struct itself is immutable after construction and safe to
// share within a process, though callback handling is expected to run one
// login attempt at a time.
type Service struct {
	cfg       models.Config
	transient store.TransientStore
	durable   store.DurableStore
	http      Doer
	clock     Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     Emitter
	pkce      *pkce.Generator
}

// New validates the config and builds a Service.
func New(cfg models.Config, deps Deps) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Transient == nil || deps.Durable == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "transient and durable stores are required")
	}
	if deps.HTTP == nil {
		deps.HTTP = http.DefaultClient
	}
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PKCE == nil {
		deps.PKCE = pkce.NewGenerator()
	}
	return &Service{
		cfg:       cfg,
		transient: deps.Transient,
		durable:   deps.Durable,
		http:      deps.HTTP,
		clock:     deps.Clock,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		audit:     deps.Audit,
		pkce:      deps.PKCE,
	}, nil
}

// Config exposes the immutable client settings.
func (s *Service) Config() models.Config { return s.cfg }

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
