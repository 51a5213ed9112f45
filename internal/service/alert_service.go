// internal/service/alert_service.go

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
	ErrAlertNotFound   = errors.New("alert not found")
	ErrNotAlertOwner   = errors.New("alert belongs to another user")
	ErrInvalidAlert    = errors.New("invalid alert rule")
	ErrDataCapReserved = errors.New("data_cap rules are managed automatically")
)

// AlertBroadcaster pushes fired triggers to live subscribers.
type AlertBroadcaster interface {
	BroadcastAlert(userID int64, trigger *models.AlertTrigger)
}

// FanoutBroadcaster relays each trigger to every sink, so the websocket
// hub and the mqtt feed can be driven by one evaluation pass.
type FanoutBroadcaster []AlertBroadcaster

func (f FanoutBroadcaster) BroadcastAlert(userID int64, trigger *models.AlertTrigger) {
	for _, b := range f {
		b.BroadcastAlert(userID, trigger)
	}
}

type AlertService struct {
	alerts models.AlertRepository
	users  models.UserRepository
	hub    AlertBroadcaster
	clk    clock.Clock
	log    *logger.Logger
}

func NewAlertService(alerts models.AlertRepository, users models.UserRepository, hub AlertBroadcaster, clk clock.Clock, log *logger.Logger) *AlertService {
	return &AlertService{alerts: alerts, users: users, hub: hub, clk: clk, log: log}
}

// EvaluateUsage runs the device owner's enabled usage_threshold rules
// against the device's usage total, then checks the device's data cap.
// Rules are stateless: any rule at or over its threshold fires on every
// pass. The cap's managed rule is found or created only when the cap is
// actually breached; data_cap rows returned by the rule listing are left
// to that path so a stale threshold never fires on its own.
func (s *AlertService) EvaluateUsage(ctx context.Context, device *models.Device, totalBytes int64) error {
	rules, err := s.alerts.ListEnabledForDevice(ctx, device.OwnerID, device.ID)
	if err != nil {
		return fmt.Errorf("list rules for device %d: %w", device.ID, err)
	}
	for i := range rules {
		if rules[i].AlertType != models.AlertTypeUsageThreshold {
			continue
		}
		if err := s.evaluateRule(ctx, &rules[i], device, totalBytes); err != nil {
			return err
		}
	}

	if device.DataCap != nil && *device.DataCap >= 0 && totalBytes >= *device.DataCap {
		capRule, err := s.alerts.UpsertDataCapRule(ctx, device.OwnerID, device.ID, *device.DataCap)
		if err != nil {
			return fmt.Errorf("ensure data cap rule: %w", err)
		}
		if err := s.evaluateRule(ctx, capRule, device, totalBytes); err != nil {
			return err
		}
	}
	return nil
}

func (s *AlertService) evaluateRule(ctx context.Context, rule *models.Alert, device *models.Device, totalBytes int64) error {
	if totalBytes < rule.ThresholdValue {
		return nil
	}

	now := s.clk.Now().UTC()
	trigger := &models.AlertHistory{
		AlertID:        rule.ID,
		DeviceID:       device.ID,
		ValueAtTrigger: totalBytes,
		TriggeredAt:    now,
	}
	if err := s.alerts.AppendTrigger(ctx, trigger); err != nil {
		return fmt.Errorf("record trigger for alert %d: %w", rule.ID, err)
	}

	notification := &models.Notification{
		UserID: device.OwnerID,
		Message: fmt.Sprintf("Device %s exceeded %s threshold: %d of %d bytes",
			device.MACAddress, rule.AlertType, totalBytes, rule.ThresholdValue),
		NotificationType: rule.AlertType,
	}
	if err := s.users.CreateNotification(ctx, notification); err != nil {
		// Trigger is already durable; a lost notification is not fatal.
		s.log.Error("create notification for alert %d: %v", rule.ID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastAlert(device.OwnerID, &models.AlertTrigger{
			AlertID:        rule.ID,
			AlertType:      rule.AlertType,
			DeviceID:       device.ID,
			MACAddress:     device.MACAddress,
			ThresholdValue: rule.ThresholdValue,
			TriggeredValue: totalBytes,
			TriggeredAt:    now,
		})
	}

	s.log.Info("alert %d (%s) fired for device %s: %d >= %d",
		rule.ID, rule.AlertType, device.MACAddress, totalBytes, rule.ThresholdValue)
	return nil
}

func (s *AlertService) Create(ctx context.Context, userID int64, req *models.CreateAlertRequest) (*models.Alert, error) {
	if req.AlertType == models.AlertTypeDataCap {
		return nil, ErrDataCapReserved
	}
	if req.AlertType != models.AlertTypeUsageThreshold {
		return nil, fmt.Errorf("%w: unknown alert type %q", ErrInvalidAlert, req.AlertType)
	}
	if req.ThresholdValue < 0 {
		return nil, fmt.Errorf("%w: threshold must be non-negative", ErrInvalidAlert)
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	alert := &models.Alert{
		UserID:         userID,
		DeviceID:       req.DeviceID,
		AlertType:      req.AlertType,
		ThresholdValue: req.ThresholdValue,
		IsEnabled:      enabled,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *AlertService) List(ctx context.Context, userID int64) ([]models.Alert, error) {
	return s.alerts.ListByUser(ctx, userID)
}

func (s *AlertService) Update(ctx context.Context, userID, alertID int64, req *models.UpdateAlertRequest) (*models.Alert, error) {
	if _, err := s.ownedAlert(ctx, userID, alertID); err != nil {
		return nil, err
	}
	if req.ThresholdValue != nil && *req.ThresholdValue < 0 {
		return nil, fmt.Errorf("%w: threshold must be non-negative", ErrInvalidAlert)
	}
	if err := s.alerts.Update(ctx, alertID, req); err != nil {
		return nil, err
	}
	return s.alerts.GetByID(ctx, alertID)
}

func (s *AlertService) Delete(ctx context.Context, userID, alertID int64) error {
	if _, err := s.ownedAlert(ctx, userID, alertID); err != nil {
		return err
	}
	return s.alerts.Delete(ctx, alertID)
}

func (s *AlertService) History(ctx context.Context, userID int64, limit, offset int) ([]models.AlertHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.alerts.ListHistoryByUser(ctx, userID, limit, offset)
}

func (s *AlertService) HistoryForAlert(ctx context.Context, userID, alertID int64, limit int) ([]models.AlertHistory, error) {
	if _, err := s.ownedAlert(ctx, userID, alertID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.alerts.ListHistoryByAlert(ctx, alertID, limit)
}

func (s *AlertService) Resolve(ctx context.Context, userID, triggerID int64) error {
	// Ownership is enforced by the user-scoped history join; a trigger id
	// outside the user's history resolves to zero rows.
	history, err := s.alerts.ListHistoryByUser(ctx, userID, 200, 0)
	if err != nil {
		return err
	}
	for _, h := range history {
		if h.ID == triggerID {
			return s.alerts.ResolveTrigger(ctx, triggerID, s.clk.Now().UTC())
		}
	}
	return ErrAlertNotFound
}

func (s *AlertService) ownedAlert(ctx context.Context, userID, alertID int64) (*models.Alert, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, ErrAlertNotFound
	}
	if alert.UserID != userID {
		return nil, ErrNotAlertOwner
	}
	return alert, nil
}
