package mqttbus

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/firewatch/firewatch/internal/logger"
)

// IPublisher is the publishing side used by the services.
type IPublisher interface {
	PublishMessage(payload string) error
	PublishToQos(topic string, qos byte, retained bool, payload string) error
	Close()
}

// Publisher publishes to a fixed topic on the shared client. PublishToQos
// allows per-message topic/QoS overrides for safety-relevant events.
type Publisher struct {
	client mqtt.Client
	topic  string
}

var _ IPublisher = (*Publisher)(nil)

// NewPublisher creates a Publisher bound to topic.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// PublishMessage publishes payload to the bound topic at the topic's default QoS.
func (p *Publisher) PublishMessage(payload string) error {
	return p.PublishToQos(p.topic, QosFor(p.topic), false, payload)
}

// PublishToQos publishes payload to an explicit topic and QoS.
func (p *Publisher) PublishToQos(topic string, qos byte, retained bool, payload string) error {
	token := p.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		logger.Logger().Info("MQTT publisher disconnected")
	}
}
