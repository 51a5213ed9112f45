// cmd/api/main.go

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/config"
	"github.com/dhananjayaaps/wifi-monitor/internal/database"
	"github.com/dhananjayaaps/wifi-monitor/internal/handler"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/mqtt"
	"github.com/dhananjayaaps/wifi-monitor/internal/repository"
	"github.com/dhananjayaaps/wifi-monitor/internal/server"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
	"github.com/dhananjayaaps/wifi-monitor/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("%v", err)
	}
	cfg.Print()

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Mode:        cfg.Logging.Mode,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		logger.Fatal("failed to initialize logger: %v", err)
	}
	defer log.Close()

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database: %v", err)
	}
	defer db.Close()

	deviceRepo := repository.NewDeviceRepository(db.DB)
	statRepo := repository.NewStatRepository(db.DB)
	alertRepo := repository.NewAlertRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)

	clk := clock.RealClock{}

	hub := websocket.NewHub(log)
	go hub.Run()

	// Fired alerts always reach the websocket hub; with the broker
	// enabled they are mirrored onto the per-user mqtt topic too.
	var broadcaster service.AlertBroadcaster = hub
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient = mqtt.NewClient(&cfg.MQTT, log)
		if err := mqttClient.Connect(); err != nil {
			log.Fatal("failed to connect to mqtt broker: %v", err)
		}
		defer mqttClient.Disconnect()
		broadcaster = service.FanoutBroadcaster{
			hub,
			mqtt.NewAlertPublisher(mqttClient, cfg.MQTT.QoS, log),
		}
	}

	authService := service.NewAuthService(userRepo, cfg.Security.JWTSecret,
		time.Duration(cfg.Security.JWTExpirationHours)*time.Hour, clk, log)
	alertService := service.NewAlertService(alertRepo, userRepo, broadcaster, clk, log)
	deviceService := service.NewDeviceService(deviceRepo, clk, log)
	statService := service.NewStatService(statRepo, deviceRepo, alertService, clk, log)
	usageService := service.NewUsageService(statRepo, deviceRepo, clk, log)

	if mqttClient != nil {
		bridge := mqtt.NewBridge(mqttClient, authService, deviceService, statService, cfg.MQTT.QoS, log)
		if err := bridge.Start(); err != nil {
			log.Fatal("failed to start mqtt bridge: %v", err)
		}
	}

	handlers := server.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Agent:  handler.NewAgentHandler(deviceService, statService),
		Device: handler.NewDeviceHandler(deviceService),
		Alert:  handler.NewAlertHandler(alertService),
		Usage:  handler.NewUsageHandler(usageService),
		Health: newHealthHandler(db, mqttClient),
	}

	srv := server.New(cfg, authService, hub, handlers, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server error: %v", err)
		}
	case sig := <-quit:
		log.Info("received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed: %v", err)
	}
}

// newHealthHandler avoids handing a typed-nil mqtt client to the handler
// when the bridge is disabled.
func newHealthHandler(db *database.Database, mqttClient *mqtt.Client) *handler.HealthHandler {
	if mqttClient == nil {
		return handler.NewHealthHandler(db, nil)
	}
	return handler.NewHealthHandler(db, mqttClient)
}
