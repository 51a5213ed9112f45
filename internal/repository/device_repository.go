// internal/repository/device_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type DeviceRepository struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

const deviceColumns = `id, owner_id, mac_address, ip_address, hostname, manufacturer,
	device_type, first_seen, last_seen, is_active, data_cap, created_at, updated_at`

// UpsertBatch reconciles a scan batch inside a single transaction. Known
// macs merge non-null snapshot fields over existing values and keep
// first_seen; every row gets last_seen = seenAt and is_active = TRUE.
func (r *DeviceRepository) UpsertBatch(ctx context.Context, ownerID int64, snapshots []models.DeviceSnapshot, seenAt time.Time) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO devices (owner_id, mac_address, ip_address, hostname, manufacturer,
			device_type, first_seen, last_seen, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, TRUE, $7, $7)
		ON CONFLICT (mac_address) DO UPDATE SET
			ip_address   = COALESCE(EXCLUDED.ip_address, devices.ip_address),
			hostname     = COALESCE(EXCLUDED.hostname, devices.hostname),
			manufacturer = COALESCE(EXCLUDED.manufacturer, devices.manufacturer),
			device_type  = COALESCE(EXCLUDED.device_type, devices.device_type),
			last_seen    = EXCLUDED.last_seen,
			is_active    = TRUE,
			updated_at   = EXCLUDED.updated_at`)
	if err != nil {
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	macs := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		if _, err := stmt.ExecContext(ctx, ownerID, snap.MACAddress, snap.IPAddress,
			snap.Hostname, snap.Manufacturer, snap.DeviceType, seenAt); err != nil {
			return nil, fmt.Errorf("upsert device %s: %w", snap.MACAddress, err)
		}
		macs = append(macs, snap.MACAddress)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert tx: %w", err)
	}
	return macs, nil
}

// GetByMAC returns nil, nil when no device carries the mac.
func (r *DeviceRepository) GetByMAC(ctx context.Context, mac string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE mac_address = $1`
	device, err := r.scanDevice(r.db.QueryRowContext(ctx, query, mac))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return device, err
}

func (r *DeviceRepository) GetByID(ctx context.Context, id int64) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	return r.scanDevice(r.db.QueryRowContext(ctx, query, id))
}

func (r *DeviceRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE owner_id = $1 ORDER BY last_seen DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		device, err := r.scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *device)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) Update(ctx context.Context, id int64, updates *models.UpdateDeviceRequest) error {
	query := `
		UPDATE devices SET
			ip_address   = COALESCE($2, ip_address),
			hostname     = COALESCE($3, hostname),
			manufacturer = COALESCE($4, manufacturer),
			device_type  = COALESCE($5, device_type),
			data_cap     = COALESCE($6, data_cap),
			is_active    = COALESCE($7, is_active),
			updated_at   = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, updates.IPAddress, updates.Hostname,
		updates.Manufacturer, updates.DeviceType, updates.DataCap, updates.IsActive)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	return requireRowAffected(result)
}

func (r *DeviceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DeviceRepository) scanDevice(row rowScanner) (*models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.OwnerID, &d.MACAddress, &d.IPAddress, &d.Hostname,
		&d.Manufacturer, &d.DeviceType, &d.FirstSeen, &d.LastSeen, &d.IsActive,
		&d.DataCap, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
