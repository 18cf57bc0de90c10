package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walletgate/internal/bridge"
	"walletgate/pkg/platform/httputil"
	"walletgate/pkg/requestcontext"
)

// Injector is the slice of the native bridge the HTTP layer consumes.
type Injector interface {
	Inject(ctx context.Context, in bridge.Injection) error
	Injected() bool
}

// BridgeHandler accepts token handovers from the native host shell.
type BridgeHandler struct {
	injector Injector
	logger   *slog.Logger
}

// NewBridgeHandler constructs a bridge handler.
func NewBridgeHandler(injector Injector, logger *slog.Logger) *BridgeHandler {
	return &BridgeHandler{injector: injector, logger: logger}
}

// Register mounts the bridge endpoints on the router.
func (h *BridgeHandler) Register(r chi.Router) {
	r.Post("/bridge/tokens", h.HandleInject)
}

// HandleInject handles POST /bridge/tokens requests.
func (h *BridgeHandler) HandleInject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	in, ok := httputil.DecodeAndPrepare[bridge.Injection](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.injector.Inject(ctx, in); err != nil {
		h.logger.ErrorContext(ctx, "token injection failed",
			"request_id", requestID,
			"device", requestcontext.Device(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "native tokens accepted",
		"request_id", requestID,
		"device", requestcontext.Device(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
