package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = "strobed"
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{client: client}, nil
}

// PublishTorch sends a retained torch state message.
func (p *RealPublisher) PublishTorch(msg TorchMessage) error {
	payload, err := FormatTorchPayload(msg)
	if err != nil {
		return fmt.Errorf("format torch payload: %w", err)
	}

	// QoS 1, retained: consumers must see the current torch state
	return p.publish(TopicTorch, 1, true, payload)
}

// PublishState sends a retained engine state message.
func (p *RealPublisher) PublishState(msg StateMessage) error {
	payload, err := FormatStatePayload(msg)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}

	return p.publish(TopicState, 1, true, payload)
}

// PublishEvent sends an effect lifecycle or error message.
func (p *RealPublisher) PublishEvent(msg EventMessage) error {
	payload, err := FormatEventPayload(msg)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}

	// QoS 0, not retained: the event stream is fire-and-forget
	return p.publish(TopicEvents, 0, false, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
