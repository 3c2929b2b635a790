package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/models"
)

// Publisher delivers alerts to subscribers.
type Publisher interface {
	Publish(group string, alert models.Alert) error
}

// Topic returns the MQTT topic alerts of a group are published on.
func Topic(group string) string {
	return fmt.Sprintf("fleet/%s/alerts", group)
}

// MQTTPublisher publishes alerts as JSON over MQTT.
type MQTTPublisher struct {
	client  mqtt.Client
	timeout time.Duration
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			log.WithField("broker", broker).Info("Connected to MQTT broker")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTPublisher{client: client, timeout: 5 * time.Second}, nil
}

// Publish sends the alert with QoS 1.
func (p *MQTTPublisher) Publish(group string, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	token := p.client.Publish(Topic(group), 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt publish timed out")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
