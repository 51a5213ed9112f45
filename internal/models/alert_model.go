// internal/models/alert_model.go

package models

import "time"

const (
	// AlertTypeUsageThreshold fires when a device's total usage reaches a
	// user-configured byte threshold.
	AlertTypeUsageThreshold = "usage_threshold"
	// AlertTypeDataCap is system-managed: one rule per (user, device),
	// derived from the device's data_cap column.
	AlertTypeDataCap = "data_cap"
)

// Alert is a threshold rule. Rules are stateless: a rule that stays over
// its threshold fires again on every evaluation pass.
type Alert struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	DeviceID       *int64    `json:"device_id" db:"device_id"`
	AlertType      string    `json:"alert_type" db:"alert_type"`
	ThresholdValue int64     `json:"threshold_value" db:"threshold_value"`
	IsEnabled      bool      `json:"is_enabled" db:"is_enabled"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AlertHistory is one recorded trigger of a rule. A trigger is resolved
// when resolved_at is set; there is no separate flag.
type AlertHistory struct {
	ID             int64      `json:"id" db:"id"`
	AlertID        int64      `json:"alert_id" db:"alert_id"`
	DeviceID       int64      `json:"device_id" db:"device_id"`
	ValueAtTrigger int64      `json:"value_at_trigger" db:"value_at_trigger"`
	TriggeredAt    time.Time  `json:"triggered_at" db:"triggered_at"`
	ResolvedAt     *time.Time `json:"resolved_at" db:"resolved_at"`
}

type CreateAlertRequest struct {
	DeviceID       *int64 `json:"device_id"`
	AlertType      string `json:"alert_type"`
	ThresholdValue int64  `json:"threshold_value"`
	IsEnabled      *bool  `json:"is_enabled"`
}

type UpdateAlertRequest struct {
	ThresholdValue *int64 `json:"threshold_value"`
	IsEnabled      *bool  `json:"is_enabled"`
}

// AlertTrigger is the payload pushed to websocket subscribers when a rule
// fires.
type AlertTrigger struct {
	AlertID        int64     `json:"alert_id"`
	AlertType      string    `json:"alert_type"`
	DeviceID       int64     `json:"device_id"`
	MACAddress     string    `json:"mac_address"`
	ThresholdValue int64     `json:"threshold_value"`
	TriggeredValue int64     `json:"triggered_value"`
	TriggeredAt    time.Time `json:"triggered_at"`
}
