// internal/handler/health_handler.go

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db   HealthChecker
	mqtt HealthChecker // nil when the bridge is disabled
}

func NewHealthHandler(db, mqtt HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, mqtt: mqtt}
}

// Live always succeeds while the process is up.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Ready reports dependency health; 503 when the database is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	}
	resp.Services.Database = h.db.Health(r.Context()) == nil
	if h.mqtt != nil {
		resp.Services.MQTT = h.mqtt.Health(r.Context()) == nil
	}

	code := http.StatusOK
	if !resp.Services.Database {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, envelope{Status: "success", Data: resp})
}
