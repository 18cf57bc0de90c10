// Package bridge accepts token sets handed over by a native host shell and
// persists them through the regular session storage, so the rest of the
// application cannot tell an injected session from an interactive login
// except by provenance.
package bridge

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"walletgate/internal/auth/models"
	"walletgate/internal/platform/metrics"
	dErrors "walletgate/pkg/domain-errors"
	audit "walletgate/pkg/platform/audit"
)

// Injection is a token set delivered by the native host.
type Injection struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Notice is delivered to subscribers after each successful injection.
type Notice struct {
	InjectedAt time.Time
	Provenance models.Provenance
}

// TokenWriter persists a token set. Satisfied by the auth service, which
// stays the single owner of the session storage keys.
type TokenWriter interface {
	StoreTokens(ctx context.Context, tokens *models.TokenSet) error
}

// Clock abstracts time for expiry computation.
type Clock interface {
	Now() time.Time
}

// Emitter records audit events.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Injector receives native token handovers and fans out notifications.
type Injector struct {
	writer  TokenWriter
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   Emitter

	injected atomic.Bool

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Notice
}

// Deps carries the Injector's collaborators. Writer is required; the rest
// default to working zero-cost implementations.
type Deps struct {
	Writer  TokenWriter
	Clock   Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Audit   Emitter
}

// New builds an Injector.
func New(deps Deps) (*Injector, error) {
	if deps.Writer == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "bridge requires a token writer")
	}
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Injector{
		writer:  deps.Writer,
		clock:   deps.Clock,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		audit:   deps.Audit,
		subs:    make(map[int]chan Notice),
	}, nil
}

// Inject validates and persists a native token set, then notifies every
// subscriber exactly once. Later injections overwrite earlier sessions.
func (i *Injector) Inject(ctx context.Context, in Injection) error {
	if in.AccessToken == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "injection missing access token")
	}

	now := i.clock.Now()
	tokens := &models.TokenSet{
		AccessToken: in.AccessToken,
		IDToken:     in.IDToken,
		ExpiresIn:   in.ExpiresIn,
		ExpiresAt:   now.Add(time.Duration(in.ExpiresIn) * time.Second),
		Provenance:  models.ProvenanceNative,
	}
	if err := i.writer.StoreTokens(ctx, tokens); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist injected tokens")
	}

	i.injected.Store(true)
	if i.metrics != nil {
		i.metrics.TokensInjected.Inc()
	}
	if i.audit != nil {
		if err := i.audit.Emit(ctx, audit.Event{
			Action:     string(audit.EventTokenInjected),
			Provenance: string(models.ProvenanceNative),
		}); err != nil {
			i.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
		}
	}
	i.logger.InfoContext(ctx, "native tokens injected", "expires_at", tokens.ExpiresAt)

	i.notify(Notice{InjectedAt: now, Provenance: models.ProvenanceNative})
	return nil
}

// Injected reports whether at least one injection succeeded since startup.
func (i *Injector) Injected() bool {
	return i.injected.Load()
}

// Subscribe registers for injection notices. The returned cancel func must
// be called to release the subscription; after cancel the channel is closed.
func (i *Injector) Subscribe() (<-chan Notice, func()) {
	i.mu.Lock()
	defer i.mu.Unlock()

	id := i.nextID
	i.nextID++
	ch := make(chan Notice, 1)
	i.subs[id] = ch

	cancel := func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if sub, ok := i.subs[id]; ok {
			delete(i.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// notify delivers one notice per subscriber without blocking; a subscriber
// that has not drained its previous notice misses this one.
func (i *Injector) notify(n Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, ch := range i.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
