package handler

import (
	"context"
	"net/http"
	"time"

	"portfolio-api/internal/model"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	Services    map[string]string `json:"services"`
}

// HealthHandler reports the database and, when configured, the cache. Only
// the database decides the status code.
type HealthHandler struct {
	db    pinger
	cache pinger
	env   string
	now   func() time.Time
}

// NewHealthHandler accepts a nil cache when no Redis is configured.
func NewHealthHandler(db pinger, cache pinger, env string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, env: env, now: time.Now}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Timestamp:   h.now().UTC(),
		Environment: h.env,
		Services:    map[string]string{"database": "connected", "cache": "not configured"},
	}

	code := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		status.Services["database"] = "disconnected"
		code = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		status.Services["cache"] = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			status.Services["cache"] = "disconnected"
		}
	}

	if code != http.StatusOK {
		writeJSON(w, code, model.APIResponse{
			Success: false,
			Message: "Database unavailable",
			Data:    status,
			Error:   &model.APIError{Code: "SERVICE_UNAVAILABLE", Message: "Database unavailable"},
		})
		return
	}

	writeSuccess(w, code, "Server is running", status, nil)
}
