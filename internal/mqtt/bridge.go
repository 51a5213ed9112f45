// internal/mqtt/bridge.go

package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/service"
)

const (
	topicDevices = "wifi/agents/+/devices"
	topicStats   = "wifi/agents/+/stats"

	handleTimeout = 30 * time.Second
)

// Bridge accepts the same batches as the HTTP agent endpoints over MQTT.
// Each payload carries the agent api key; messages that fail auth are
// dropped with a warning, never retried.
type Bridge struct {
	client  *Client
	auth    *service.AuthService
	devices *service.DeviceService
	stats   *service.StatService
	qos     byte
	log     *logger.Logger
}

type devicesPayload struct {
	APIKey  string                  `json:"api_key"`
	Devices []models.DeviceSnapshot `json:"devices"`
}

type statsPayload struct {
	APIKey string              `json:"api_key"`
	Stats  []models.StatSample `json:"stats"`
}

func NewBridge(client *Client, auth *service.AuthService, devices *service.DeviceService, stats *service.StatService, qos byte, log *logger.Logger) *Bridge {
	return &Bridge{client: client, auth: auth, devices: devices, stats: stats, qos: qos, log: log}
}

func (b *Bridge) Start() error {
	if err := b.client.Subscribe(topicDevices, b.qos, b.handleDevices); err != nil {
		return err
	}
	return b.client.Subscribe(topicStats, b.qos, b.handleStats)
}

func (b *Bridge) handleDevices(_ paho.Client, msg paho.Message) {
	var payload devicesPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		b.log.Warn("mqtt devices payload on %s: %v", msg.Topic(), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	agent, err := b.auth.AuthenticateAgent(ctx, payload.APIKey)
	if err != nil {
		b.log.Warn("mqtt devices message on %s rejected: %v", msg.Topic(), err)
		return
	}
	result, err := b.devices.SyncDevices(ctx, agent.OwnerID, payload.Devices)
	if err != nil {
		b.log.Error("mqtt device sync for agent %d: %v", agent.ID, err)
		return
	}
	b.log.Debug("mqtt synced %d devices for agent %d", result.SyncedCount, agent.ID)
}

func (b *Bridge) handleStats(_ paho.Client, msg paho.Message) {
	var payload statsPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		b.log.Warn("mqtt stats payload on %s: %v", msg.Topic(), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	agent, err := b.auth.AuthenticateAgent(ctx, payload.APIKey)
	if err != nil {
		b.log.Warn("mqtt stats message on %s rejected: %v", msg.Topic(), err)
		return
	}
	result, err := b.stats.IngestStats(ctx, payload.Stats)
	if err != nil {
		b.log.Error("mqtt stat ingest for agent %d: %v", agent.ID, err)
		return
	}
	b.log.Debug("mqtt ingested %d stats for agent %d", result.IngestedCount, agent.ID)
}
