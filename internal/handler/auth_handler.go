// internal/handler/auth_handler.go

package handler

import (
	"errors"
	"net/http"

	"github.com/dhananjayaaps/wifi-monitor/internal/middleware"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}
	respondSuccess(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// RegisterAgent mints an agent api key. The key appears in this response
// and nowhere else.
func (h *AuthHandler) RegisterAgent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())

	var req models.RegisterAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	agent, err := h.auth.RegisterAgent(r.Context(), userID, req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register agent")
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]any{
		"agent":   agent,
		"api_key": agent.APIKey,
	})
}

func (h *AuthHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFrom(r.Context())
	notifications, err := h.auth.Notifications(r.Context(), userID, queryInt(r, "limit", 50))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	respondSuccess(w, http.StatusOK, notifications)
}
