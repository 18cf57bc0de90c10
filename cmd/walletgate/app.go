package main

import (
	"context"
	"log/slog"
	"time"

	"walletgate/internal/auth/models"
	"walletgate/internal/auth/service"
	"walletgate/internal/auth/store"
	"walletgate/internal/bridge"
	"walletgate/internal/platform/config"
	"walletgate/internal/platform/logger"
	"walletgate/internal/platform/metrics"
	platformredis "walletgate/internal/platform/redis"
	audit "walletgate/pkg/platform/audit"
	"walletgate/pkg/platform/audit/publisher"
	auditkafka "walletgate/pkg/platform/audit/sink/kafka"
	auditmemory "walletgate/pkg/platform/audit/store/memory"
)

// app bundles the wired dependency graph shared by the CLI commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	svc      *service.Service
	injector *bridge.Injector
	audit    *publisher.Publisher

	closers []func()
}

type buildOptions struct {
	metrics    bool
	asyncAudit bool
}

// buildApp wires config, stores, audit, the auth service, and the bridge.
// The durable store is selected by configuration: Redis when REDIS_URL is
// set, else Postgres when POSTGRES_DSN is set, else process memory.
func buildApp(ctx context.Context, opts buildOptions) (*app, error) {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	a := &app{cfg: cfg, logger: log}

	durable, err := a.buildDurable(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if opts.metrics {
		m = metrics.New()
	}

	a.audit = a.buildAudit(cfg, opts.asyncAudit)

	svc, err := service.New(models.Config{
		ClientID:     cfg.OAuth.ClientID,
		AuthorityURL: cfg.OAuth.AuthorityURL,
		RedirectURI:  cfg.OAuth.RedirectURI,
		Scopes:       cfg.OAuth.Scopes,
	}, service.Deps{
		Transient: store.NewMemoryTransient(),
		Durable:   durable,
		Logger:    log,
		Metrics:   m,
		Audit:     a.audit,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.svc = svc

	injector, err := bridge.New(bridge.Deps{
		Writer:  svc,
		Logger:  log,
		Metrics: m,
		Audit:   a.audit,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.injector = injector

	return a, nil
}

func (a *app) buildDurable(ctx context.Context, cfg config.Config) (store.DurableStore, error) {
	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.logger.Info("using redis durable store")
		return store.NewRedisDurable(client.Client), nil
	}

	if cfg.PostgresDSN != "" {
		db, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		pg := store.NewPostgresDurable(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("using postgres durable store")
		return pg, nil
	}

	a.logger.Info("using in-memory durable store; session will not survive restarts")
	return store.NewMemoryDurable(), nil
}

func (a *app) buildAudit(cfg config.Config, async bool) *publisher.Publisher {
	var sink audit.Store
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			a.logger.Warn("kafka audit sink unavailable, falling back to memory", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := kafkaSink.EnsureTopic(ctx, 1); err != nil {
				a.logger.Warn("failed to ensure audit topic", "topic", cfg.AuditTopic, "error", err)
			}
			cancel()
			a.closers = append(a.closers, kafkaSink.Close)
			sink = kafkaSink
		}
	}
	if sink == nil {
		sink = auditmemory.NewInMemoryStore()
	}

	pubOpts := []publisher.Option{publisher.WithLogger(a.logger)}
	if async {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(256))
	}
	return publisher.NewPublisher(sink, pubOpts...)
}

// Close drains the audit publisher and releases store connections.
func (a *app) Close() {
	if a.audit != nil {
		a.audit.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
