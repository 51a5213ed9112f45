// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dhananjayaaps/wifi-monitor/internal/config"
	"github.com/dhananjayaaps/wifi-monitor/internal/handler"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/middleware"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
	"github.com/dhananjayaaps/wifi-monitor/internal/websocket"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Agent  *handler.AgentHandler
	Device *handler.DeviceHandler
	Alert  *handler.AlertHandler
	Usage  *handler.UsageHandler
	Health *handler.HealthHandler
}

type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

func New(cfg *config.Config, auth *service.AuthService, hub *websocket.Hub, handlers Handlers, log *logger.Logger) *Server {
	router := mux.NewRouter()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.Security.CORSAllowedOrigins, cfg.Security.CORSAllowedMethods))
	if cfg.Security.EnableRateLimit {
		router.Use(middleware.RateLimit(cfg.Security.RateLimitPerMinute))
	}

	// Health endpoints stay outside auth so probes work unauthenticated.
	router.HandleFunc("/health", handlers.Health.Live).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", handlers.Health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", handlers.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", handlers.Auth.Login).Methods(http.MethodPost)

	userAuth := middleware.UserAuth(auth)

	user := api.NewRoute().Subrouter()
	user.Use(userAuth)
	user.HandleFunc("/agents/register", handlers.Auth.RegisterAgent).Methods(http.MethodPost)
	user.HandleFunc("/devices", handlers.Device.List).Methods(http.MethodGet)
	user.HandleFunc("/devices/{id:[0-9]+}", handlers.Device.Get).Methods(http.MethodGet)
	user.HandleFunc("/devices/{id:[0-9]+}", handlers.Device.Update).Methods(http.MethodPut)
	user.HandleFunc("/devices/{id:[0-9]+}", handlers.Device.Delete).Methods(http.MethodDelete)
	user.HandleFunc("/devices/{id:[0-9]+}/usage", handlers.Usage.DeviceUsage).Methods(http.MethodGet)
	user.HandleFunc("/devices/{id:[0-9]+}/stats", handlers.Usage.RecentSamples).Methods(http.MethodGet)
	user.HandleFunc("/usage/report", handlers.Usage.Report).Methods(http.MethodGet)
	user.HandleFunc("/alerts", handlers.Alert.Create).Methods(http.MethodPost)
	user.HandleFunc("/alerts", handlers.Alert.List).Methods(http.MethodGet)
	user.HandleFunc("/alerts/{id:[0-9]+}", handlers.Alert.Update).Methods(http.MethodPut)
	user.HandleFunc("/alerts/{id:[0-9]+}", handlers.Alert.Delete).Methods(http.MethodDelete)
	user.HandleFunc("/alerts/history", handlers.Alert.History).Methods(http.MethodGet)
	user.HandleFunc("/alerts/{id:[0-9]+}/history", handlers.Alert.HistoryForAlert).Methods(http.MethodGet)
	user.HandleFunc("/alerts/history/{id:[0-9]+}/resolve", handlers.Alert.Resolve).Methods(http.MethodPost)
	user.HandleFunc("/notifications", handlers.Auth.Notifications).Methods(http.MethodGet)

	agent := api.NewRoute().Subrouter()
	agent.Use(middleware.AgentAuth(auth, cfg.Security.AgentKeyHeader))
	agent.HandleFunc("/agents/devices", handlers.Agent.SyncDevices).Methods(http.MethodPost)
	agent.HandleFunc("/agents/stats", handlers.Agent.IngestStats).Methods(http.MethodPost)
	agent.HandleFunc("/agents/ping", handlers.Agent.Ping).Methods(http.MethodGet)

	// Live alert feed; token comes via the Authorization header like every
	// other user route.
	ws := router.NewRoute().Subrouter()
	ws.Use(userAuth)
	ws.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFrom(r.Context())
		hub.ServeWS(w, r, userID)
	}).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
