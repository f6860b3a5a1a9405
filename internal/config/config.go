package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Broker     BrokerConfig    `yaml:"broker"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Printers   []PrinterConfig `yaml:"printers"`
	CORS       CORSConfig      `yaml:"cors"`
	MQTT       MQTTConfig      `yaml:"mqtt"`
	Discord    DiscordConfig   `yaml:"discord"`

	// Environment selects the logger profile ("production" or "development")
	Environment string `yaml:"environment"`

	// ConfigPath is the path to the config file (not serialized)
	ConfigPath string `yaml:"-"`
}

// ServerConfig represents the local HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// BrokerConfig represents the automation-broker connection configuration.
// The broker exposes one snapshot endpoint for polling and one WebSocket
// endpoint per printer at <ws_base_url>/<endpoint alias>.
type BrokerConfig struct {
	APIURL           string `yaml:"api_url"`
	WSBaseURL        string `yaml:"ws_base_url"`
	UseWebSocket     bool   `yaml:"use_websocket"`
	PollIntervalMs   int    `yaml:"poll_interval_ms"`
	ReconnectDelayMs int    `yaml:"ws_reconnect_delay_ms"`
}

// PollInterval returns the polling interval as a duration.
func (b *BrokerConfig) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalMs) * time.Millisecond
}

// ReconnectDelay returns the per-socket reconnect delay as a duration.
func (b *BrokerConfig) ReconnectDelay() time.Duration {
	return time.Duration(b.ReconnectDelayMs) * time.Millisecond
}

// ThresholdConfig holds the distance cutoffs used when a payload carries
// no usable status string.
type ThresholdConfig struct {
	PrintingMm float64 `yaml:"printing_mm"`
	OfflineMm  float64 `yaml:"offline_mm"`
}

// PrinterConfig seeds one printer in the registry. Endpoint is the
// per-printer WebSocket path segment on the broker.
type PrinterConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
}

// CORSConfig represents allowed cross-origin access for the dashboard API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MQTTConfig represents the optional MQTT ingest source
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BrokerURL   string `yaml:"broker_url"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

// DiscordConfig represents optional webhook notifications
type DiscordConfig struct {
	Enabled              bool   `yaml:"enabled"`
	WebhookURL           string `yaml:"webhook_url"`
	NotifyOnStatusChange bool   `yaml:"notify_on_status_change"`
	NotifyOnOffline      bool   `yaml:"notify_on_offline"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Broker: BrokerConfig{
			APIURL:           "http://127.0.0.1:1880/api/printers",
			WSBaseURL:        "ws://127.0.0.1:1880/ws",
			UseWebSocket:     true,
			PollIntervalMs:   5000,
			ReconnectDelayMs: 5000,
		},
		Thresholds: ThresholdConfig{
			PrintingMm: 50,
			OfflineMm:  500,
		},
		Printers: []PrinterConfig{
			{ID: "printer-1", Name: "Impressora 1", Endpoint: "impressora1"},
			{ID: "printer-2", Name: "Impressora 2", Endpoint: "impressora2"},
			{ID: "printer-3", Name: "Impressora 3", Endpoint: "impressora3"},
			{ID: "printer-4", Name: "Impressora 4", Endpoint: "impressora4"},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			ClientID:    "printer-dashboard",
			TopicPrefix: "printers",
			QoS:         0,
		},
		Discord: DiscordConfig{
			Enabled:              false,
			NotifyOnStatusChange: true,
			NotifyOnOffline:      true,
		},
		Environment: "development",
	}
}

// Load loads configuration from the config file
func Load() (*Config, error) {
	// Try to find config file in common locations
	configPaths := []string{
		"config.yaml",
		"configs/config.yaml",
		"/etc/printer-dashboard/config.yaml",
	}

	var data []byte
	var err error
	var loadedPath string

	for _, path := range configPaths {
		data, err = os.ReadFile(path)
		if err == nil {
			loadedPath = path
			break
		}
	}

	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", loadedPath, err)
	}

	cfg.ConfigPath = loadedPath
	return cfg, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
