// Package httptransport is the HTTP edge of the demo client: the OAuth2
// callback, session endpoints, and the native bridge entry point. Handlers
// delegate to the auth service and injector without embedding flow logic.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"walletgate/pkg/platform/middleware/device"
	"walletgate/pkg/platform/middleware/metadata"
	"walletgate/pkg/platform/middleware/requestid"
	"walletgate/pkg/platform/middleware/requesttime"
)

// RouterDeps carries the collaborators the router mounts.
type RouterDeps struct {
	Session       Session
	Injector      Injector
	Logger        *slog.Logger
	PostLoginPath string
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)

	NewAuthHandler(deps.Session, deps.Injector, logger, deps.PostLoginPath).Register(r)
	if deps.Injector != nil {
		NewBridgeHandler(deps.Injector, logger).Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
