package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	serviceName    = "content-processor"
	serviceVersion = "1.0.0"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *slog.Logger
}

func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{store: store, logger: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{Status: "healthy", Service: serviceName, Version: serviceVersion, Database: "connected"}
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		resp.Status, resp.Database = "unhealthy", "disconnected"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
