package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/observability"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime, liveness and readiness.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
	log       *observability.Logger
}

// NewHealthHandler creates the operational endpoints handler.
func NewHealthHandler(startedAt time.Time, store Pinger, log *observability.Logger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store, log: log}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ping", h.handlePing)
	mux.HandleFunc("GET /ready", h.handleReady)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *HealthHandler) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Pong"))
}

func (h *HealthHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithContext(r.Context()).StorageError("ping", err)
		respond.Error(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
