// cmd/agent/main.go

package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/agent"
	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/config"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
)

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		logger.Fatal("failed to load agent configuration: %v", err)
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

	client := agent.NewClient(cfg.APIBaseURL, "X-Agent-API-Key", &http.Client{
		Timeout: cfg.RequestTimeout,
	})

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var (
		scanner   agent.Scanner
		collector agent.Collector
	)
	if cfg.SimulationMode {
		scanner = agent.NewSimulatedScanner(cfg.SimDeviceCount, rng)
		collector = agent.NewSimulatedCollector(cfg.SimMinBytes, cfg.SimMaxBytes, cfg.SimAlertProbability, rng)
	} else {
		scanner = agent.NewARPScanner()
		collector = agent.NewInterfaceCollector()
	}

	a := agent.New(client, scanner, collector, cfg, clock.RealClock{}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Bootstrap(ctx); err != nil {
		log.Fatal("agent bootstrap failed: %v", err)
	}
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("agent loop failed: %v", err)
	}
	log.Info("agent stopped")
}
