// internal/handler/usage_handler.go

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/middleware"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

type UsageHandler struct {
	usage *service.UsageService
}

func NewUsageHandler(usage *service.UsageService) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// DeviceUsage aggregates one device over the optional start/end query
// window (RFC 3339, both bounds inclusive).
func (h *UsageHandler) DeviceUsage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	deviceID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.usage.DeviceUsage(r.Context(), userID, deviceID, start, end)
	if err != nil {
		respondDeviceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, summary)
}

func (h *UsageHandler) RecentSamples(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	deviceID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}
	samples, err := h.usage.RecentSamples(r.Context(), userID, deviceID, queryInt(r, "limit", 100))
	if err != nil {
		respondDeviceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, samples)
}

// Report streams a PDF usage summary for all of the user's devices.
func (h *UsageHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	start, end, err := parseWindow(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pdf, err := h.usage.UsageReport(r.Context(), userID, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="usage-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func parseWindow(r *http.Request) (start, end *time.Time, err error) {
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid start time %q", raw)
		}
		start = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid end time %q", raw)
		}
		end = &t
	}
	return start, end, nil
}
