// internal/service/stat_service_test.go

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type statFixture struct {
	stats     *StatService
	devices   *DeviceService
	statRepo  *fakeStatRepo
	alertRepo *fakeAlertRepo
	broadcast *fakeBroadcaster
	clk       *clock.FakeClock
}

func newStatFixture(t *testing.T) *statFixture {
	t.Helper()
	deviceRepo := newFakeDeviceRepo()
	statRepo := newFakeStatRepo()
	alertRepo := newFakeAlertRepo()
	userRepo := newFakeUserRepo()
	broadcast := &fakeBroadcaster{}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := testLogger(t)

	alertSvc := NewAlertService(alertRepo, userRepo, broadcast, clk, log)
	return &statFixture{
		stats:     NewStatService(statRepo, deviceRepo, alertSvc, clk, log),
		devices:   NewDeviceService(deviceRepo, clk, log),
		statRepo:  statRepo,
		alertRepo: alertRepo,
		broadcast: broadcast,
		clk:       clk,
	}
}

func (f *statFixture) syncDevice(t *testing.T, mac string) {
	t.Helper()
	_, err := f.devices.SyncDevices(context.Background(), 1, []models.DeviceSnapshot{{MACAddress: mac}})
	require.NoError(t, err)
}

func TestIngestStatsStoresKnownMACs(t *testing.T) {
	f := newStatFixture(t)
	f.syncDevice(t, "aa:bb:cc:dd:ee:01")

	result, err := f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesUploaded: 100, BytesDownloaded: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.IngestedCount)
	assert.Equal(t, []string{"aa:bb:cc:dd:ee:01"}, result.IngestedMACs)
}

func TestIngestStatsDropsUnknownMACs(t *testing.T) {
	f := newStatFixture(t)
	f.syncDevice(t, "aa:bb:cc:dd:ee:01")

	result, err := f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "ff:ff:ff:ff:ff:01", BytesUploaded: 100},
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesUploaded: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.IngestedCount)
	assert.Equal(t, []string{"aa:bb:cc:dd:ee:01"}, result.IngestedMACs)

	// The unknown mac's sample must never reach storage.
	summary, err := f.statRepo.Aggregate(context.Background(), 999, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBytes)
}

func TestIngestStatsStampsCollectorTime(t *testing.T) {
	f := newStatFixture(t)
	f.syncDevice(t, "aa:bb:cc:dd:ee:01")

	_, err := f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesUploaded: 1},
	})
	require.NoError(t, err)

	samples, err := f.statRepo.GetLatest(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, f.clk.Now().UTC(), samples[0].Timestamp)
}

func TestIngestStatsAllUnknown(t *testing.T) {
	f := newStatFixture(t)
	result, err := f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "ff:ff:ff:ff:ff:01"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.IngestedCount)
	assert.Empty(t, result.IngestedMACs)
}

// Cumulative ingestion crossing a data cap must fire with the running
// total, not the last sample's size.
func TestIngestStatsAccumulatesAcrossBatchesAndFiresCap(t *testing.T) {
	f := newStatFixture(t)
	f.syncDevice(t, "aa:bb:cc:dd:ee:01")
	_, err := f.devices.Update(context.Background(), 1, 1, &models.UpdateDeviceRequest{DataCap: i64Ptr(100)})
	require.NoError(t, err)

	_, err = f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesUploaded: 30, BytesDownloaded: 30},
	})
	require.NoError(t, err)
	assert.Empty(t, f.alertRepo.allHistory(), "60 of 100 must not fire")

	f.clk.Advance(time.Minute)
	_, err = f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesUploaded: 25, BytesDownloaded: 25},
	})
	require.NoError(t, err)

	history := f.alertRepo.allHistory()
	require.Len(t, history, 1)
	assert.Equal(t, int64(110), history[0].ValueAtTrigger, "trigger carries the running total")

	fired := f.broadcast.fired()
	require.Len(t, fired, 1)
	assert.Equal(t, models.AlertTypeDataCap, fired[0].AlertType)
}

func TestIngestStatsEvaluatesEachTouchedDeviceOnce(t *testing.T) {
	f := newStatFixture(t)
	f.syncDevice(t, "aa:bb:cc:dd:ee:01")
	_, err := f.devices.Update(context.Background(), 1, 1, &models.UpdateDeviceRequest{DataCap: i64Ptr(10)})
	require.NoError(t, err)

	// Two samples for the same device in one batch: one aggregate pass,
	// one trigger.
	_, err = f.stats.IngestStats(context.Background(), []models.StatSample{
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesUploaded: 20},
		{MACAddress: "aa:bb:cc:dd:ee:01", BytesDownloaded: 30},
	})
	require.NoError(t, err)

	history := f.alertRepo.allHistory()
	require.Len(t, history, 1)
	assert.Equal(t, int64(50), history[0].ValueAtTrigger)
}
