// internal/mqtt/publisher_test.go

package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

type capturedPublish struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	published []capturedPublish
	err       error
}

func (f *fakePublisher) Publish(topic string, qos byte, payload []byte) error {
	f.published = append(f.published, capturedPublish{topic, qos, payload})
	return f.err
}

func testMQTTLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.FATAL, Mode: logger.MINIMAL})
	require.NoError(t, err)
	return log
}

func TestAlertPublisherRoutesPerUser(t *testing.T) {
	fake := &fakePublisher{}
	p := &AlertPublisher{pub: fake, qos: 1, log: testMQTTLogger(t)}

	trigger := &models.AlertTrigger{
		AlertID:        3,
		AlertType:      models.AlertTypeDataCap,
		DeviceID:       10,
		MACAddress:     "aa:bb:cc:dd:ee:01",
		ThresholdValue: 100,
		TriggeredValue: 150,
		TriggeredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	p.BroadcastAlert(7, trigger)

	require.Len(t, fake.published, 1)
	assert.Equal(t, "wifi/users/7/alerts", fake.published[0].topic)
	assert.Equal(t, byte(1), fake.published[0].qos)

	var decoded models.AlertTrigger
	require.NoError(t, json.Unmarshal(fake.published[0].payload, &decoded))
	assert.Equal(t, *trigger, decoded)
}

func TestAlertPublisherSwallowsBrokerErrors(t *testing.T) {
	fake := &fakePublisher{err: errors.New("broker gone")}
	p := &AlertPublisher{pub: fake, qos: 0, log: testMQTTLogger(t)}

	// Must not panic or block; the trigger is already durable upstream.
	p.BroadcastAlert(7, &models.AlertTrigger{AlertID: 1})
	assert.Len(t, fake.published, 1)
}
