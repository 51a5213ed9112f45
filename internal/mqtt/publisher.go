// internal/mqtt/publisher.go

package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

func alertTopic(userID int64) string {
	return fmt.Sprintf("wifi/users/%d/alerts", userID)
}

type publisher interface {
	Publish(topic string, qos byte, payload []byte) error
}

// AlertPublisher mirrors fired triggers onto a per-user broker topic, the
// outbound counterpart of the bridge's inbound feeds. Delivery is best
// effort: a failed publish is logged and the trigger is not retried, the
// durable copy lives in alert_history.
type AlertPublisher struct {
	pub publisher
	qos byte
	log *logger.Logger
}

func NewAlertPublisher(client *Client, qos byte, log *logger.Logger) *AlertPublisher {
	return &AlertPublisher{pub: client, qos: qos, log: log}
}

func (p *AlertPublisher) BroadcastAlert(userID int64, trigger *models.AlertTrigger) {
	payload, err := json.Marshal(trigger)
	if err != nil {
		p.log.Error("encode alert %d for user %d: %v", trigger.AlertID, userID, err)
		return
	}
	if err := p.pub.Publish(alertTopic(userID), p.qos, payload); err != nil {
		p.log.Warn("mqtt alert publish for user %d: %v", userID, err)
	}
}
