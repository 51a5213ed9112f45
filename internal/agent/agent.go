// internal/agent/agent.go

package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/config"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// tickQuantum is the loop's polling resolution. Both intervals are
// checked against it, so neither interval needs to divide the other.
const tickQuantum = time.Second

// Agent runs the scan/collect/sync loop against a collector.
type Agent struct {
	client    *Client
	scanner   Scanner
	collector Collector
	cfg       *config.AgentConfig
	clk       clock.Clock
	log       *logger.Logger

	devices   []models.DeviceSnapshot
	lastScan  time.Time
	lastStats time.Time
}

func New(client *Client, scanner Scanner, collector Collector, cfg *config.AgentConfig, clk clock.Clock, log *logger.Logger) *Agent {
	return &Agent{
		client:    client,
		scanner:   scanner,
		collector: collector,
		cfg:       cfg,
		clk:       clk,
		log:       log,
	}
}

// Bootstrap performs the startup handshake. Every step is fatal: an agent
// that cannot reach, authenticate against, or register with the collector
// has nothing useful to do.
func (a *Agent) Bootstrap(ctx context.Context) error {
	a.log.Info("checking collector at %s", a.cfg.APIBaseURL)
	if err := a.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := a.client.Login(ctx, a.cfg.AuthEmail, a.cfg.AuthPassword); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := a.client.RegisterAgent(ctx, a.cfg.Name); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := a.client.Ping(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	a.log.Info("agent %q registered and verified", a.cfg.Name)
	return nil
}

// Run drives the loop until the context is cancelled. Transport failures
// after bootstrap are soft: they are logged and the next due tick retries.
func (a *Agent) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickQuantum)
	defer ticker.Stop()

	// First pass runs immediately so the collector sees devices before
	// the first full interval elapses.
	a.Tick(ctx, a.clk.Now())

	for {
		select {
		case <-ctx.Done():
			a.log.Info("agent loop stopping")
			return ctx.Err()
		case <-ticker.C:
			a.Tick(ctx, a.clk.Now())
		}
	}
}

// Tick runs whichever phases are due at now. Scan is checked before
// stats so a brand-new agent discovers devices before it measures them.
func (a *Agent) Tick(ctx context.Context, now time.Time) {
	if a.lastScan.IsZero() || now.Sub(a.lastScan) >= a.cfg.ScanInterval {
		a.lastScan = now
		a.runScan(ctx)
	}
	if a.lastStats.IsZero() || now.Sub(a.lastStats) >= a.cfg.StatsInterval {
		a.lastStats = now
		a.runStats(ctx)
	}
}

// runScan scans and pushes the result. The local set is replaced only
// once the collector has accepted it; on a failed sync stats keep using
// the previous, collector-registered set.
func (a *Agent) runScan(ctx context.Context) {
	devices, err := a.scanner.Scan()
	if err != nil {
		a.log.Error("scan failed: %v", err)
		return
	}

	result, err := a.client.SyncDevices(ctx, devices)
	if err != nil {
		a.log.Error("device sync failed: %v", err)
		return
	}
	a.devices = devices
	a.log.Debug("synced %d devices", result.SyncedCount)
}

func (a *Agent) runStats(ctx context.Context) {
	if len(a.devices) == 0 {
		a.log.Debug("no devices known yet, skipping stats collection")
		return
	}
	samples, err := a.collector.Collect(a.devices)
	if err != nil {
		a.log.Error("stats collection failed: %v", err)
		return
	}
	if len(samples) == 0 {
		return
	}
	result, err := a.client.IngestStats(ctx, samples)
	if err != nil {
		a.log.Error("stats ingest failed: %v", err)
		return
	}
	a.log.Debug("ingested %d stats", result.IngestedCount)
}

// Devices exposes the current local device set.
func (a *Agent) Devices() []models.DeviceSnapshot {
	return a.devices
}
