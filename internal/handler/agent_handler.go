// internal/handler/agent_handler.go

package handler

import (
	"net/http"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/middleware"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

// AgentHandler serves the api-key authenticated endpoints agents push to.
type AgentHandler struct {
	devices *service.DeviceService
	stats   *service.StatService
}

func NewAgentHandler(devices *service.DeviceService, stats *service.StatService) *AgentHandler {
	return &AgentHandler{devices: devices, stats: stats}
}

// SyncDevices reconciles a scan batch under the agent owner's account.
// Re-sending the same batch is harmless.
func (h *AgentHandler) SyncDevices(w http.ResponseWriter, r *http.Request) {
	agent, ok := middleware.AgentFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "agent context missing")
		return
	}
	var req models.SyncDevicesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.devices.SyncDevices(r.Context(), agent.OwnerID, req.Devices)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to sync devices")
		return
	}
	respondSuccess(w, http.StatusOK, result)
}

// IngestStats stores a stats batch and triggers alert evaluation for the
// touched devices. Samples for unknown macs are dropped, not rejected.
func (h *AgentHandler) IngestStats(w http.ResponseWriter, r *http.Request) {
	var req models.IngestStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.stats.IngestStats(r.Context(), req.Stats)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to ingest stats")
		return
	}
	respondSuccess(w, http.StatusCreated, result)
}

func (h *AgentHandler) Ping(w http.ResponseWriter, r *http.Request) {
	agent, _ := middleware.AgentFrom(r.Context())
	respondSuccess(w, http.StatusOK, map[string]any{
		"agent_id": agent.ID,
		"time":     time.Now().UTC(),
	})
}
