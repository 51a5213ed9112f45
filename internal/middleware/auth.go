// internal/middleware/auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	agentKey  contextKey = "agent"
)

// UserAuth requires a valid bearer token and stashes the user id in the
// request context.
func UserAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AgentAuth requires a valid agent api key header and stashes the agent in
// the request context.
func AgentAuth(auth *service.AuthService, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent, err := auth.AuthenticateAgent(r.Context(), r.Header.Get(headerName))
			if err != nil {
				unauthorized(w, "invalid agent api key")
				return
			}
			ctx := context.WithValue(r.Context(), agentKey, agent)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated user id, or false outside UserAuth.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// AgentFrom returns the authenticated agent, or false outside AgentAuth.
func AgentFrom(ctx context.Context) (*models.Agent, bool) {
	agent, ok := ctx.Value(agentKey).(*models.Agent)
	return agent, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"status":"error","message":"` + message + `"}`))
}
