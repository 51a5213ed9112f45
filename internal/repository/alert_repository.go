// internal/repository/alert_repository.go

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, user_id, device_id, alert_type, threshold_value, is_enabled, created_at, updated_at`

const historyColumns = `id, alert_id, device_id, value_at_trigger, triggered_at, resolved_at`

func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (user_id, device_id, alert_type, threshold_value, is_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, alert.UserID, alert.DeviceID, alert.AlertType,
		alert.ThresholdValue, alert.IsEnabled).
		Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	return scanAlert(r.db.QueryRowContext(ctx, query, id))
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID int64) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryAlerts(ctx, query, userID)
}

// ListEnabledForDevice returns the user's enabled rules that apply to the
// device, either via an explicit device_id or via NULL (all devices).
func (r *AlertRepository) ListEnabledForDevice(ctx context.Context, userID, deviceID int64) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE user_id = $1 AND is_enabled = TRUE
		AND (device_id IS NULL OR device_id = $2)
		ORDER BY id`
	return r.queryAlerts(ctx, query, userID, deviceID)
}

func (r *AlertRepository) Update(ctx context.Context, id int64, updates *models.UpdateAlertRequest) error {
	query := `
		UPDATE alerts SET
			threshold_value = COALESCE($2, threshold_value),
			is_enabled      = COALESCE($3, is_enabled),
			updated_at      = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, updates.ThresholdValue, updates.IsEnabled)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	return requireRowAffected(result)
}

// UpsertDataCapRule finds or creates the single data_cap rule for
// (userID, deviceID), refreshing its threshold to the current cap. The
// partial unique index on (user_id, device_id, alert_type) makes this
// safe when two evaluations of the same device race.
func (r *AlertRepository) UpsertDataCapRule(ctx context.Context, userID, deviceID, threshold int64) (*models.Alert, error) {
	query := `
		INSERT INTO alerts (user_id, device_id, alert_type, threshold_value, is_enabled)
		VALUES ($1, $2, 'data_cap', $3, TRUE)
		ON CONFLICT (user_id, device_id, alert_type) WHERE alert_type = 'data_cap'
		DO UPDATE SET threshold_value = EXCLUDED.threshold_value, updated_at = NOW()
		RETURNING ` + alertColumns
	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, userID, deviceID, threshold))
	if err != nil {
		return nil, fmt.Errorf("upsert data cap rule: %w", err)
	}
	return alert, nil
}

func (r *AlertRepository) AppendTrigger(ctx context.Context, trigger *models.AlertHistory) error {
	query := `
		INSERT INTO alert_history (alert_id, device_id, value_at_trigger, triggered_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, trigger.AlertID, trigger.DeviceID,
		trigger.ValueAtTrigger, trigger.TriggeredAt).Scan(&trigger.ID)
	if err != nil {
		return fmt.Errorf("append alert trigger: %w", err)
	}
	return nil
}

func (r *AlertRepository) ListHistoryByUser(ctx context.Context, userID int64, limit, offset int) ([]models.AlertHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM alert_history
		WHERE alert_id IN (SELECT id FROM alerts WHERE user_id = $1)
		ORDER BY triggered_at DESC
		LIMIT $2 OFFSET $3`
	return r.queryHistory(ctx, query, userID, limit, offset)
}

func (r *AlertRepository) ListHistoryByAlert(ctx context.Context, alertID int64, limit int) ([]models.AlertHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM alert_history
		WHERE alert_id = $1
		ORDER BY triggered_at DESC
		LIMIT $2`
	return r.queryHistory(ctx, query, alertID, limit)
}

func (r *AlertRepository) ResolveTrigger(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE alert_history SET resolved_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("resolve trigger: %w", err)
	}
	return requireRowAffected(result)
}

func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	return requireRowAffected(result)
}

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func (r *AlertRepository) queryHistory(ctx context.Context, query string, args ...any) ([]models.AlertHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alert history: %w", err)
	}
	defer rows.Close()

	history := []models.AlertHistory{}
	for rows.Next() {
		var h models.AlertHistory
		if err := rows.Scan(&h.ID, &h.AlertID, &h.DeviceID, &h.ValueAtTrigger,
			&h.TriggeredAt, &h.ResolvedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.UserID, &a.DeviceID, &a.AlertType, &a.ThresholdValue,
		&a.IsEnabled, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
