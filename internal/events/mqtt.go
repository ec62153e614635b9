package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	qosAtLeastOnce  byte = 1
	disconnectQuiet      = 250
)

type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
	Timeout     time.Duration
}

type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
}

func NewMQTTPublisher(cfg MQTTConfig, log zerolog.Logger) (*MQTTPublisher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info().Str("broker", cfg.BrokerURL).Msg("mqtt connected")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out after %s", cfg.BrokerURL, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.BrokerURL, err)
	}

	return &MQTTPublisher{
		client:  client,
		prefix:  cfg.TopicPrefix,
		timeout: timeout,
	}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	token := p.client.Publish(Topic(p.prefix, evt.Type), qosAtLeastOnce, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish %s: timed out after %s", evt.Type, p.timeout)
	}
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectQuiet)
}
