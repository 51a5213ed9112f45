// internal/handler/device_handler.go

package handler

import (
	"errors"
	"net/http"

	"github.com/dhananjayaaps/wifi-monitor/internal/middleware"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

type DeviceHandler struct {
	devices *service.DeviceService
}

func NewDeviceHandler(devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	devices, err := h.devices.List(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}
	respondSuccess(w, http.StatusOK, devices)
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	deviceID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}
	device, err := h.devices.Get(r.Context(), userID, deviceID)
	if err != nil {
		respondDeviceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, device)
}

func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	deviceID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}
	var req models.UpdateDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	device, err := h.devices.Update(r.Context(), userID, deviceID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDataCap) {
			respondError(w, http.StatusBadRequest, "data cap must be non-negative")
			return
		}
		respondDeviceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, device)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	deviceID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}
	if err := h.devices.Delete(r.Context(), userID, deviceID); err != nil {
		respondDeviceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"message": "device deleted"})
}

func respondDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		respondError(w, http.StatusNotFound, "device not found")
	case errors.Is(err, service.ErrNotDeviceOwner):
		respondError(w, http.StatusForbidden, "device belongs to another user")
	default:
		respondError(w, http.StatusInternalServerError, "device operation failed")
	}
}
