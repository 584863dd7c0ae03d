package mqttbus

import (
	"context"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/firewatch/firewatch/internal/logger"
)

// IConsumer subscribes to one or more topics and hands messages of type T to
// an injected handler.
type IConsumer[T any] interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler func(topic string, message mqtt.Message) error)
}

// QosFor maps a topic to its delivery guarantee. Verdicts, actuation results
// and alerts must survive a flaky link (QoS 1); raw sensor data is streamed
// at QoS 0 since the next sample supersedes it anyway.
func QosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "telemetry/verdict") ||
		strings.HasPrefix(t, "event/actuationResult") ||
		strings.HasPrefix(t, "event/alert") ||
		strings.HasPrefix(t, "control/") {
		return 1
	}
	return 0
}

// Consumer subscribes to a single topic filter.
type Consumer struct {
	client  mqtt.Client
	handler func(topic string, message mqtt.Message) error
	topic   string
}

var _ IConsumer[struct{}] = (*Consumer)(nil)

// NewConsumer creates a Consumer on the shared client.
func NewConsumer(client mqtt.Client, topic string, handler func(topic string, message mqtt.Message) error) *Consumer {
	return &Consumer{client: client, topic: topic, handler: handler}
}

func (c *Consumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	c.handler = handler
}

// ConsumeMessage subscribes and blocks until ctx is cancelled.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	token := c.client.Subscribe(c.topic, QosFor(c.topic), func(_ mqtt.Client, message mqtt.Message) {
		if c.handler == nil {
			logger.Logger().Warnf("no handler set for topic %s", c.topic)
			return
		}
		if err := c.handler(message.Topic(), message); err != nil {
			logger.Logger().Errorf("error handling message on %s: %v", message.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		logger.Logger().Errorf("error subscribing to topic %s: %v", c.topic, token.Error())
		return
	}
	logger.Logger().Infof("subscribed to topic %s", c.topic)

	<-ctx.Done()

	unsubToken := c.client.Unsubscribe(c.topic)
	unsubToken.Wait()
}

// MultiConsumer subscribes to several topic filters with one handler.
type MultiConsumer struct {
	client  mqtt.Client
	topics  []string
	handler func(topic string, message mqtt.Message) error
}

var _ IConsumer[struct{}] = (*MultiConsumer)(nil)

func NewMultiConsumer(client mqtt.Client, topics []string, handler func(topic string, message mqtt.Message) error) *MultiConsumer {
	return &MultiConsumer{client: client, topics: topics, handler: handler}
}

func (m *MultiConsumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	m.handler = handler
}

func (m *MultiConsumer) ConsumeMessage(ctx context.Context) {
	for _, topic := range m.topics {
		token := m.client.Subscribe(topic, QosFor(topic), func(_ mqtt.Client, msg mqtt.Message) {
			if m.handler == nil {
				logger.Logger().Warnf("no handler set for topic %s", msg.Topic())
				return
			}
			if err := m.handler(msg.Topic(), msg); err != nil {
				logger.Logger().Errorf("error handling message on %s: %v", msg.Topic(), err)
			}
		})
		token.Wait()
		if token.Error() != nil {
			logger.Logger().Errorf("error subscribing to topic %s: %v", topic, token.Error())
		} else {
			logger.Logger().Infof("subscribed to topic %s", topic)
		}
	}

	<-ctx.Done()

	for _, topic := range m.topics {
		m.client.Unsubscribe(topic)
	}
}
