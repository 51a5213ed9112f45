// internal/service/usage_service.go

package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type UsageService struct {
	stats   models.StatRepository
	devices models.DeviceRepository
	clk     clock.Clock
	log     *logger.Logger
}

func NewUsageService(stats models.StatRepository, devices models.DeviceRepository, clk clock.Clock, log *logger.Logger) *UsageService {
	return &UsageService{stats: stats, devices: devices, clk: clk, log: log}
}

// DeviceUsage aggregates one owned device over an optional inclusive
// window. Nil bounds leave that side of the window open.
func (s *UsageService) DeviceUsage(ctx context.Context, ownerID, deviceID int64, start, end *time.Time) (*models.UsageSummary, error) {
	if _, err := s.ownedDevice(ctx, ownerID, deviceID); err != nil {
		return nil, err
	}
	return s.stats.Aggregate(ctx, deviceID, start, end)
}

func (s *UsageService) RecentSamples(ctx context.Context, ownerID, deviceID int64, limit int) ([]models.DeviceStat, error) {
	if _, err := s.ownedDevice(ctx, ownerID, deviceID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.stats.GetLatest(ctx, deviceID, limit)
}

// UsageReport renders a per-device usage summary for all of the user's
// devices as a PDF.
func (s *UsageService) UsageReport(ctx context.Context, ownerID int64, start, end *time.Time) ([]byte, error) {
	devices, err := s.devices.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list devices for report: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Network Usage Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", s.clk.Now().UTC().Format(time.RFC1123)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(55, 8, "Device", "1", 0, "", false, 0, "")
	pdf.CellFormat(45, 8, "MAC Address", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Uploaded", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Downloaded", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, device := range devices {
		summary, err := s.stats.Aggregate(ctx, device.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("aggregate device %d for report: %w", device.ID, err)
		}
		name := device.MACAddress
		if device.Hostname != nil {
			name = *device.Hostname
		}
		pdf.CellFormat(55, 8, name, "1", 0, "", false, 0, "")
		pdf.CellFormat(45, 8, device.MACAddress, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, formatBytes(summary.BytesUploaded), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, formatBytes(summary.BytesDownloaded), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, formatBytes(summary.TotalBytes), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render usage report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *UsageService) ownedDevice(ctx context.Context, ownerID, deviceID int64) (*models.Device, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, ErrDeviceNotFound
	}
	if device.OwnerID != ownerID {
		return nil, ErrNotDeviceOwner
	}
	return device, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
