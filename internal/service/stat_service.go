// internal/service/stat_service.go

package service

import (
	"context"
	"fmt"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type StatService struct {
	stats   models.StatRepository
	devices models.DeviceRepository
	alerts  *AlertService
	clk     clock.Clock
	log     *logger.Logger
}

func NewStatService(stats models.StatRepository, devices models.DeviceRepository, alerts *AlertService, clk clock.Clock, log *logger.Logger) *StatService {
	return &StatService{stats: stats, devices: devices, alerts: alerts, clk: clk, log: log}
}

// IngestStats resolves a stats batch against known devices, stores the
// accepted samples, then re-aggregates each touched device and runs its
// owner's alert rules against the new total. Samples for macs no scan has
// ever reported are dropped, never stored.
func (s *StatService) IngestStats(ctx context.Context, samples []models.StatSample) (*models.IngestResult, error) {
	now := s.clk.Now().UTC()

	resolved := make([]models.DeviceStat, 0, len(samples))
	touched := make(map[int64]*models.Device)
	macs := []string{}
	for _, sample := range samples {
		device, err := s.devices.GetByMAC(ctx, sample.MACAddress)
		if err != nil {
			return nil, fmt.Errorf("resolve mac %s: %w", sample.MACAddress, err)
		}
		if device == nil {
			s.log.Warn("dropping stat for unknown mac %s", sample.MACAddress)
			continue
		}
		resolved = append(resolved, models.DeviceStat{
			DeviceID:        device.ID,
			Timestamp:       now,
			BytesUploaded:   sample.BytesUploaded,
			BytesDownloaded: sample.BytesDownloaded,
		})
		touched[device.ID] = device
		macs = append(macs, sample.MACAddress)
	}

	result := &models.IngestResult{IngestedMACs: []string{}}
	if len(resolved) == 0 {
		return result, nil
	}

	if err := s.stats.InsertBatch(ctx, resolved); err != nil {
		return nil, fmt.Errorf("ingest stats: %w", err)
	}
	result.IngestedCount = len(resolved)
	result.IngestedMACs = macs

	for _, device := range touched {
		summary, err := s.stats.Aggregate(ctx, device.ID, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("aggregate after ingest: %w", err)
		}
		if err := s.alerts.EvaluateUsage(ctx, device, summary.TotalBytes); err != nil {
			// Samples are already stored; evaluation failure must not
			// make the agent re-send the batch.
			s.log.Error("evaluate alerts for device %d: %v", device.ID, err)
		}
	}

	s.log.Debug("ingested %d stats across %d devices", len(resolved), len(touched))
	return result, nil
}
