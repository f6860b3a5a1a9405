package ingest

import (
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/printfarm/dashboard-server/internal/config"
	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/printer"
)

// MQTTSource subscribes to the broker's MQTT telemetry topics and feeds
// the raw payloads through the same normalization pipeline as the
// sockets. Farms that publish sensor readings to MQTT as well as to the
// per-printer WebSockets can enable this as an extra source; it is off
// by default.
type MQTTSource struct {
	cfg      *config.MQTTConfig
	registry *printer.Registry
	client   mqtt.Client

	// endpoint alias -> printer id, from the seeded fleet
	aliases map[string]string

	topic   string
	started bool
}

// NewMQTTSource builds an MQTT source for the configured fleet.
func NewMQTTSource(cfg *config.MQTTConfig, printers []config.PrinterConfig, reg *printer.Registry) *MQTTSource {
	aliases := make(map[string]string, len(printers))
	for _, p := range printers {
		aliases[p.Endpoint] = p.ID
	}

	return &MQTTSource{
		cfg:      cfg,
		registry: reg,
		aliases:  aliases,
		topic:    cfg.TopicPrefix + "/+",
	}
}

// Start connects to the MQTT broker and subscribes to the telemetry
// topics. The paho client reconnects on its own after connection loss.
func (s *MQTTSource) Start() error {
	if s.started {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.BrokerURL)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetUsername(s.cfg.Username)
	opts.SetPassword(s.cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", s.cfg.BrokerURL))
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})

	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to mqtt broker: %w", err)
	}

	token = s.client.Subscribe(s.topic, s.cfg.QoS, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		s.client.Disconnect(250)
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}

	logger.Info("listening for mqtt telemetry", zap.String("topic", s.topic))
	s.started = true
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (s *MQTTSource) Stop() {
	if !s.started {
		return
	}

	if token := s.client.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
		logger.Warn("mqtt unsubscribe failed", zap.Error(token.Error()))
	}
	s.client.Disconnect(250)
	s.started = false
}

// handleMessage maps the topic's endpoint alias to a printer id and
// applies the payload. Messages for unknown aliases are dropped.
func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	alias := parts[len(parts)-1]

	id, ok := s.aliases[alias]
	if !ok {
		logger.Debug("mqtt message for unknown endpoint", zap.String("topic", msg.Topic()))
		return
	}

	reading := printer.Normalize(msg.Payload())
	s.registry.Upsert(id, reading)
}
