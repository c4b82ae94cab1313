package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Powerwall monitor.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Powerwall PowerwallConfig `yaml:"powerwall"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Collector CollectorConfig `yaml:"collector"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PowerwallConfig contains Powerwall gateway connection settings.
type PowerwallConfig struct {
	// Host is the gateway hostname or IP (the local gateway address, not the cloud API).
	Host string `yaml:"host"`

	// Email and Password are the customer credentials accepted by the
	// gateway's local login endpoint.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// InsecureTLS skips certificate verification. Gateways serve a
	// self-signed certificate, so this defaults to true.
	InsecureTLS bool `yaml:"insecure_tls"`
}

// InfluxDBConfig contains InfluxDB v2 connection settings.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// MQTTConfig contains settings for the optional MQTT telemetry mirror.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`

	// TopicPrefix is prepended to the telemetry topic (default "powerwall").
	TopicPrefix string `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CollectorConfig contains collection loop settings.
type CollectorConfig struct {
	// Interval is the polling interval in seconds.
	Interval int `yaml:"interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads, parses, and validates the configuration file at path.
//
// Values start from defaults, are overlaid by the YAML file, and finally by
// environment variable overrides (pattern: PWMON_SECTION_KEY, e.g.
// PWMON_POWERWALL_PASSWORD, PWMON_INFLUXDB_TOKEN).
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Powerwall: PowerwallConfig{
			Timeout:     10,
			InsecureTLS: true,
		},
		InfluxDB: InfluxDBConfig{
			URL:    "http://localhost:8086",
			Bucket: "powerwall",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "powerwall-monitor",
			},
			QoS:         1,
			TopicPrefix: "powerwall",
		},
		Collector: CollectorConfig{
			Interval: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PWMON_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Powerwall
	if v := os.Getenv("PWMON_POWERWALL_HOST"); v != "" {
		cfg.Powerwall.Host = v
	}
	if v := os.Getenv("PWMON_POWERWALL_EMAIL"); v != "" {
		cfg.Powerwall.Email = v
	}
	if v := os.Getenv("PWMON_POWERWALL_PASSWORD"); v != "" {
		cfg.Powerwall.Password = v
	}

	// InfluxDB
	if v := os.Getenv("PWMON_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("PWMON_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// MQTT
	if v := os.Getenv("PWMON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PWMON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Powerwall validation
	if c.Powerwall.Host == "" {
		errs = append(errs, "powerwall.host is required")
	}
	if c.Powerwall.Password == "" {
		errs = append(errs, "powerwall.password is required (set PWMON_POWERWALL_PASSWORD environment variable)")
	}
	if c.Powerwall.Timeout <= 0 {
		errs = append(errs, "powerwall.timeout must be positive")
	}

	// InfluxDB validation
	if c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required")
	}
	if c.InfluxDB.Token == "" {
		errs = append(errs, "influxdb.token is required (set PWMON_INFLUXDB_TOKEN environment variable)")
	}
	if c.InfluxDB.Org == "" {
		errs = append(errs, "influxdb.org is required")
	}
	if c.InfluxDB.Bucket == "" {
		errs = append(errs, "influxdb.bucket is required")
	}

	// Collector validation
	if c.Collector.Interval <= 0 {
		errs = append(errs, "collector.interval must be positive")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetInterval returns the polling interval as a Duration.
func (c *Config) GetInterval() time.Duration {
	return time.Duration(c.Collector.Interval) * time.Second
}

// GetRequestTimeout returns the Powerwall per-request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Powerwall.Timeout) * time.Second
}
