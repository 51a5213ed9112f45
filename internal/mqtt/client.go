// internal/mqtt/client.go

package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dhananjayaaps/wifi-monitor/internal/config"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
)

type Client struct {
	client paho.Client
	cfg    *config.MQTTConfig
	log    *logger.Logger
}

func NewClient(cfg *config.MQTTConfig, log *logger.Logger) *Client {
	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL()).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(cfg.AutoReconnect).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetKeepAlive(cfg.KeepAlive)

	opts.OnConnect = func(paho.Client) {
		log.Info("mqtt connected to %s", cfg.BrokerURL())
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warn("mqtt connection lost: %v", err)
	}

	return &Client{client: paho.NewClient(opts), cfg: cfg, log: log}
}

func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}

func (c *Client) Subscribe(topic string, qos byte, handler paho.MessageHandler) error {
	token := c.client.Subscribe(topic, qos, handler)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt subscribe to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe to %s: %w", topic, err)
	}
	c.log.Debug("mqtt subscribed to %s", topic)
	return nil
}

func (c *Client) Publish(topic string, qos byte, payload []byte) error {
	token := c.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	return token.Error()
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

func (c *Client) Health(_ context.Context) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	return nil
}
