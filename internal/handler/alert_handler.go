// internal/handler/alert_handler.go

package handler

import (
	"errors"
	"net/http"

	"github.com/dhananjayaaps/wifi-monitor/internal/middleware"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

type AlertHandler struct {
	alerts *service.AlertService
}

func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	var req models.CreateAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	alert, err := h.alerts.Create(r.Context(), userID, &req)
	if err != nil {
		respondAlertError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, alert)
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	alerts, err := h.alerts.List(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	respondSuccess(w, http.StatusOK, alerts)
}

func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	alertID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	var req models.UpdateAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	alert, err := h.alerts.Update(r.Context(), userID, alertID, &req)
	if err != nil {
		respondAlertError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, alert)
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	alertID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := h.alerts.Delete(r.Context(), userID, alertID); err != nil {
		respondAlertError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"message": "alert deleted"})
}

func (h *AlertHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	history, err := h.alerts.History(r.Context(), userID,
		queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list alert history")
		return
	}
	respondSuccess(w, http.StatusOK, history)
}

func (h *AlertHandler) HistoryForAlert(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	alertID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	history, err := h.alerts.HistoryForAlert(r.Context(), userID, alertID, queryInt(r, "limit", 50))
	if err != nil {
		respondAlertError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, history)
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	triggerID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid trigger id")
		return
	}
	if err := h.alerts.Resolve(r.Context(), userID, triggerID); err != nil {
		respondAlertError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"message": "alert resolved"})
}

func respondAlertError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAlertNotFound):
		respondError(w, http.StatusNotFound, "alert not found")
	case errors.Is(err, service.ErrNotAlertOwner):
		respondError(w, http.StatusForbidden, "alert belongs to another user")
	case errors.Is(err, service.ErrDataCapReserved), errors.Is(err, service.ErrInvalidAlert):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "alert operation failed")
	}
}
