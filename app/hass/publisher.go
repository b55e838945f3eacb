// Package hass exposes the occupancy sensor to Home Assistant through
// MQTT discovery.
package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alcortesm/physiofit-radar/app/sensor"
)

var ErrTimeout = errors.New("mqtt operation timed out")

// Client is the subset of mqtt.Client the publisher uses.
type Client interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Attributes are published on the json attributes topic of the sensor.
type Attributes struct {
	Source  string `json:"source"`
	Error   string `json:"error,omitempty"`
	Updated string `json:"updated"`
}

// Publisher announces the sensor and publishes its state.
type Publisher struct {
	logger  *zap.Logger
	topics  Topics
	timeout time.Duration
	client  Client
}

// NewPublisher validates the topics in config and creates the MQTT
// client with newClient. Every time the client connects, the discovery
// config and the online availability are published.
func NewPublisher(
	logger *zap.Logger,
	config Config,
	newClient func(*mqtt.ClientOptions) Client,
) (*Publisher, error) {
	base, err := CheckTopic(config.BaseTopic)
	if err != nil {
		return nil, fmt.Errorf("base topic %q: %w", config.BaseTopic, err)
	}

	prefix, err := CheckTopic(config.DiscoveryPrefix)
	if err != nil {
		return nil, fmt.Errorf("discovery prefix %q: %w", config.DiscoveryPrefix, err)
	}

	p := &Publisher{
		logger:  logger.Named("hass"),
		topics:  Topics{Base: base, Discovery: prefix},
		timeout: config.Timeout,
	}

	p.client = newClient(p.options(config))

	return p, nil
}

func (p *Publisher) options(config Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", config.Host, config.Port))
	opts.SetClientID(fmt.Sprintf("%s_%s", p.topics.Base, uuid.NewString()[:8]))

	if config.Username != "" && config.Password != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}

	opts.SetWill(p.topics.Availability(), PayloadOffline, 0, true)
	opts.SetAutoReconnect(true)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		go func() {
			if err := p.Announce(); err != nil {
				p.logger.Error("announcing sensor", zap.Error(err))
			}
		}()
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.logger.Warn("connection lost", zap.Error(err))
	})

	return opts
}

// Topics returns the topics the publisher writes to.
func (p *Publisher) Topics() Topics {
	return p.topics
}

// Run connects to the broker and stays connected until ctx is done.
// Before disconnecting the sensor is marked offline.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.wait(p.client.Connect()); err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}

	p.logger.Info("connected to broker")

	<-ctx.Done()

	if err := p.publish(p.topics.Availability(), true, PayloadOffline); err != nil {
		p.logger.Warn("publishing offline availability", zap.Error(err))
	}

	p.client.Disconnect(uint(p.timeout.Milliseconds()))
	p.logger.Info("disconnected from broker")

	return nil
}

// Announce publishes the retained discovery config of the sensor and
// marks it online.
func (p *Publisher) Announce() error {
	payload, err := json.Marshal(SensorDiscovery(p.topics))
	if err != nil {
		return fmt.Errorf("encoding discovery config: %w", err)
	}

	if err := p.publish(p.topics.Config(sensor.UniqueID), true, payload); err != nil {
		return fmt.Errorf("publishing discovery config: %w", err)
	}

	if err := p.publish(p.topics.Availability(), true, PayloadOnline); err != nil {
		return fmt.Errorf("publishing availability: %w", err)
	}

	p.logger.Debug("sensor announced")

	return nil
}

// Update publishes a new sensor state. Errors are logged, the next
// update is published anyway.
func (p *Publisher) Update(state sensor.State) {
	if !state.Available {
		return
	}

	value := strconv.FormatFloat(state.Value, 'f', -1, 64)
	if err := p.publish(p.topics.State(state.UniqueID), false, value); err != nil {
		p.logger.Warn("publishing state", zap.Error(err))
		return
	}

	attributes := Attributes{
		Source:  string(state.Source),
		Error:   string(state.Error),
		Updated: state.Updated.Format(time.RFC3339),
	}

	payload, err := json.Marshal(attributes)
	if err != nil {
		p.logger.Error("encoding attributes", zap.Error(err))
		return
	}

	if err := p.publish(p.topics.Attributes(state.UniqueID), false, payload); err != nil {
		p.logger.Warn("publishing attributes", zap.Error(err))
	}
}

func (p *Publisher) publish(topic string, retained bool, payload interface{}) error {
	return p.wait(p.client.Publish(topic, 0, retained, payload))
}

func (p *Publisher) wait(token mqtt.Token) error {
	if !token.WaitTimeout(p.timeout) {
		return ErrTimeout
	}

	return token.Error()
}
