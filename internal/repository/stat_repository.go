// internal/repository/stat_repository.go

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type StatRepository struct {
	db *sql.DB
}

func NewStatRepository(db *sql.DB) *StatRepository {
	return &StatRepository{db: db}
}

func (r *StatRepository) InsertBatch(ctx context.Context, stats []models.DeviceStat) error {
	if len(stats) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO device_stats (device_id, timestamp, bytes_uploaded, bytes_downloaded)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare stats insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.ExecContext(ctx, s.DeviceID, s.Timestamp, s.BytesUploaded, s.BytesDownloaded); err != nil {
			return fmt.Errorf("insert stat for device %d: %w", s.DeviceID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats tx: %w", err)
	}
	return nil
}

// Aggregate sums a device's samples over an optional inclusive window.
// Both bounds are inclusive; a device with no matching samples aggregates
// to zeros.
func (r *StatRepository) Aggregate(ctx context.Context, deviceID int64, start, end *time.Time) (*models.UsageSummary, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT COALESCE(SUM(bytes_uploaded), 0), COALESCE(SUM(bytes_downloaded), 0)
		FROM device_stats WHERE device_id = $1`)
	args := []any{deviceID}
	if start != nil {
		args = append(args, *start)
		fmt.Fprintf(&sb, " AND timestamp >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		fmt.Fprintf(&sb, " AND timestamp <= $%d", len(args))
	}

	summary := &models.UsageSummary{DeviceID: deviceID}
	err := r.db.QueryRowContext(ctx, sb.String(), args...).
		Scan(&summary.BytesUploaded, &summary.BytesDownloaded)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage for device %d: %w", deviceID, err)
	}
	summary.TotalBytes = summary.BytesUploaded + summary.BytesDownloaded
	return summary, nil
}

func (r *StatRepository) GetLatest(ctx context.Context, deviceID int64, limit int) ([]models.DeviceStat, error) {
	query := `
		SELECT id, device_id, timestamp, bytes_uploaded, bytes_downloaded
		FROM device_stats WHERE device_id = $1
		ORDER BY timestamp DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}
	defer rows.Close()

	stats := []models.DeviceStat{}
	for rows.Next() {
		var s models.DeviceStat
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Timestamp, &s.BytesUploaded, &s.BytesDownloaded); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
