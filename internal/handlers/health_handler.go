package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"natours-api/internal/utils"
)

// HealthHandler reports liveness and whether the database answers.
type HealthHandler struct {
	Ping    func(ctx context.Context) error
	Timeout time.Duration
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		timeout := h.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := h.Ping(ctx); err != nil {
			log.Printf("health check: database ping failed: %v", err)
			utils.JSONError(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}
