// internal/service/alert_service_test.go

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type alertFixture struct {
	svc       *AlertService
	alerts    *fakeAlertRepo
	users     *fakeUserRepo
	broadcast *fakeBroadcaster
	clk       *clock.FakeClock
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()
	alerts := newFakeAlertRepo()
	users := newFakeUserRepo()
	broadcast := &fakeBroadcaster{}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return &alertFixture{
		svc:       NewAlertService(alerts, users, broadcast, clk, testLogger(t)),
		alerts:    alerts,
		users:     users,
		broadcast: broadcast,
		clk:       clk,
	}
}

func testDevice(id, ownerID int64, dataCap *int64) *models.Device {
	return &models.Device{
		ID:         id,
		OwnerID:    ownerID,
		MACAddress: "aa:bb:cc:dd:ee:ff",
		DataCap:    dataCap,
	}
}

func TestEvaluateUsageThresholdIsInclusive(t *testing.T) {
	f := newAlertFixture(t)
	_, err := f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      models.AlertTypeUsageThreshold,
		ThresholdValue: 100,
	})
	require.NoError(t, err)
	device := testDevice(10, 1, nil)

	require.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 99))
	assert.Empty(t, f.alerts.allHistory(), "below threshold must not fire")

	require.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 100))
	history := f.alerts.allHistory()
	require.Len(t, history, 1, "exactly at threshold fires")
	assert.Equal(t, int64(100), history[0].ValueAtTrigger)
	assert.Equal(t, int64(10), history[0].DeviceID)
}

func TestEvaluateUsageRefiresEveryPass(t *testing.T) {
	f := newAlertFixture(t)
	_, err := f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      models.AlertTypeUsageThreshold,
		ThresholdValue: 50,
	})
	require.NoError(t, err)
	device := testDevice(10, 1, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 80))
	}
	assert.Len(t, f.alerts.allHistory(), 3, "rules have no latched state")
	assert.Len(t, f.broadcast.fired(), 3)
}

func TestEvaluateUsageSkipsDisabledAndOtherDevices(t *testing.T) {
	f := newAlertFixture(t)
	disabled := false
	_, err := f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      models.AlertTypeUsageThreshold,
		ThresholdValue: 10,
		IsEnabled:      &disabled,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		DeviceID:       i64Ptr(99),
		AlertType:      models.AlertTypeUsageThreshold,
		ThresholdValue: 10,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.EvaluateUsage(context.Background(), testDevice(10, 1, nil), 1000))
	assert.Empty(t, f.alerts.allHistory())
}

func TestEvaluateUsageUnderCapCreatesNothing(t *testing.T) {
	f := newAlertFixture(t)
	device := testDevice(10, 1, i64Ptr(500))

	require.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 100))

	rules, err := f.alerts.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, rules, "the managed rule only appears once the cap is breached")
	assert.Empty(t, f.alerts.allHistory())
}

func TestEvaluateUsageOverCapReusesManagedRule(t *testing.T) {
	f := newAlertFixture(t)
	device := testDevice(10, 1, i64Ptr(500))

	require.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 500))
	require.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 600))

	rules, err := f.alerts.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rules, 1, "repeated breaches reuse the managed rule")
	assert.Equal(t, models.AlertTypeDataCap, rules[0].AlertType)
	assert.Equal(t, int64(500), rules[0].ThresholdValue)
	assert.Len(t, f.alerts.allHistory(), 2, "each breached pass records its trigger")
}

func TestEvaluateUsageDataCapRuleTracksCapChanges(t *testing.T) {
	f := newAlertFixture(t)

	require.NoError(t, f.svc.EvaluateUsage(context.Background(), testDevice(10, 1, i64Ptr(500)), 600))
	require.NoError(t, f.svc.EvaluateUsage(context.Background(), testDevice(10, 1, i64Ptr(200)), 600))

	rules, err := f.alerts.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(200), rules[0].ThresholdValue, "threshold follows the cap")
}

func TestEvaluateUsageConcurrentDataCapDedup(t *testing.T) {
	f := newAlertFixture(t)
	device := testDevice(10, 1, i64Ptr(100))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.EvaluateUsage(context.Background(), device, 150))
		}()
	}
	wg.Wait()

	rules, err := f.alerts.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, rules, 1, "concurrent evaluations share one managed rule")
	assert.Len(t, f.alerts.allHistory(), 5, "each pass still records its trigger")
}

func TestEvaluateUsageNotifiesOwner(t *testing.T) {
	f := newAlertFixture(t)
	require.NoError(t, f.svc.EvaluateUsage(context.Background(), testDevice(10, 7, i64Ptr(100)), 150))

	notifications, err := f.users.ListNotificationsByUser(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.AlertTypeDataCap, notifications[0].NotificationType)

	fired := f.broadcast.fired()
	require.Len(t, fired, 1)
	assert.Equal(t, int64(150), fired[0].TriggeredValue)
	assert.Equal(t, int64(100), fired[0].ThresholdValue)
}

func TestCreateAlertValidation(t *testing.T) {
	f := newAlertFixture(t)

	_, err := f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      models.AlertTypeDataCap,
		ThresholdValue: 10,
	})
	assert.ErrorIs(t, err, ErrDataCapReserved)

	_, err = f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      "bogus",
		ThresholdValue: 10,
	})
	assert.ErrorIs(t, err, ErrInvalidAlert)

	_, err = f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      models.AlertTypeUsageThreshold,
		ThresholdValue: -1,
	})
	assert.ErrorIs(t, err, ErrInvalidAlert)
}

func TestAlertOwnershipEnforced(t *testing.T) {
	f := newAlertFixture(t)
	alert, err := f.svc.Create(context.Background(), 1, &models.CreateAlertRequest{
		AlertType:      models.AlertTypeUsageThreshold,
		ThresholdValue: 10,
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), 2, alert.ID, &models.UpdateAlertRequest{ThresholdValue: i64Ptr(20)})
	assert.ErrorIs(t, err, ErrNotAlertOwner)

	err = f.svc.Delete(context.Background(), 2, alert.ID)
	assert.ErrorIs(t, err, ErrNotAlertOwner)
}

func TestHistoryForAlertScopedToOwner(t *testing.T) {
	f := newAlertFixture(t)
	require.NoError(t, f.svc.EvaluateUsage(context.Background(), testDevice(10, 1, i64Ptr(100)), 150))

	rules, err := f.alerts.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	history, err := f.svc.HistoryForAlert(context.Background(), 1, rules[0].ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = f.svc.HistoryForAlert(context.Background(), 2, rules[0].ID, 10)
	assert.ErrorIs(t, err, ErrNotAlertOwner)
}

func TestFanoutBroadcasterReachesEverySink(t *testing.T) {
	ws, broker := &fakeBroadcaster{}, &fakeBroadcaster{}
	fan := FanoutBroadcaster{ws, broker}

	fan.BroadcastAlert(1, &models.AlertTrigger{AlertID: 9, TriggeredValue: 150})

	require.Len(t, ws.fired(), 1)
	require.Len(t, broker.fired(), 1)
	assert.Equal(t, ws.fired(), broker.fired())
}

func TestResolveTrigger(t *testing.T) {
	f := newAlertFixture(t)
	require.NoError(t, f.svc.EvaluateUsage(context.Background(), testDevice(10, 1, i64Ptr(100)), 150))

	history := f.alerts.allHistory()
	require.Len(t, history, 1)

	require.NoError(t, f.svc.Resolve(context.Background(), 1, history[0].ID))
	resolved := f.alerts.allHistory()
	require.NotNil(t, resolved[0].ResolvedAt)

	assert.ErrorIs(t, f.svc.Resolve(context.Background(), 2, history[0].ID), ErrAlertNotFound)
}
