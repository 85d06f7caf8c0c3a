package handlers

import (
	"context"
	"moving-quote-service/internal/platform/obs"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, when a database is attached, its reachability.
type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		if err := h.DB.PingContext(ctx); err != nil {
			zap.L().Warn("health check: database unreachable", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
