// internal/service/device_service.go

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrNotDeviceOwner = errors.New("device belongs to another user")
	ErrInvalidDataCap = errors.New("data cap must be non-negative")
)

type DeviceService struct {
	devices models.DeviceRepository
	clk     clock.Clock
	log     *logger.Logger
}

func NewDeviceService(devices models.DeviceRepository, clk clock.Clock, log *logger.Logger) *DeviceService {
	return &DeviceService{devices: devices, clk: clk, log: log}
}

// SyncDevices reconciles an agent scan batch. Snapshots with an empty mac
// are dropped before the batch hits the database; the whole remaining
// batch is applied in one transaction, so replaying it is idempotent.
func (s *DeviceService) SyncDevices(ctx context.Context, ownerID int64, snapshots []models.DeviceSnapshot) (*models.SyncResult, error) {
	valid := make([]models.DeviceSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.MACAddress == "" {
			s.log.Warn("skipping device snapshot with empty mac address")
			continue
		}
		valid = append(valid, snap)
	}

	result := &models.SyncResult{SyncedMACs: []string{}}
	if len(valid) == 0 {
		return result, nil
	}

	macs, err := s.devices.UpsertBatch(ctx, ownerID, valid, s.clk.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("sync devices: %w", err)
	}
	result.SyncedCount = len(macs)
	result.SyncedMACs = macs
	s.log.Debug("synced %d devices for user %d", len(macs), ownerID)
	return result, nil
}

func (s *DeviceService) List(ctx context.Context, ownerID int64) ([]models.Device, error) {
	return s.devices.ListByOwner(ctx, ownerID)
}

func (s *DeviceService) Get(ctx context.Context, ownerID, deviceID int64) (*models.Device, error) {
	return s.ownedDevice(ctx, ownerID, deviceID)
}

func (s *DeviceService) Update(ctx context.Context, ownerID, deviceID int64, req *models.UpdateDeviceRequest) (*models.Device, error) {
	if _, err := s.ownedDevice(ctx, ownerID, deviceID); err != nil {
		return nil, err
	}
	if req.DataCap != nil && *req.DataCap < 0 {
		return nil, ErrInvalidDataCap
	}
	if err := s.devices.Update(ctx, deviceID, req); err != nil {
		return nil, err
	}
	return s.devices.GetByID(ctx, deviceID)
}

func (s *DeviceService) Delete(ctx context.Context, ownerID, deviceID int64) error {
	if _, err := s.ownedDevice(ctx, ownerID, deviceID); err != nil {
		return err
	}
	return s.devices.Delete(ctx, deviceID)
}

func (s *DeviceService) ownedDevice(ctx context.Context, ownerID, deviceID int64) (*models.Device, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, ErrDeviceNotFound
	}
	if device.OwnerID != ownerID {
		return nil, ErrNotDeviceOwner
	}
	return device, nil
}
