// Powerwall monitor - home energy telemetry collector
//
// This is the main entry point for the monitor. It polls a Tesla Powerwall
// local gateway at a fixed interval and records the power flow and battery
// level in InfluxDB, optionally mirroring each reading over MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"powerwall-monitor/internal/collector"
	"powerwall-monitor/internal/infrastructure/config"
	"powerwall-monitor/internal/infrastructure/influxdb"
	"powerwall-monitor/internal/infrastructure/logging"
	"powerwall-monitor/internal/infrastructure/mqtt"
	"powerwall-monitor/internal/powerwall"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM); the collector exits
	// at the next state boundary and the deferred closes run.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Every startup failure (config, gateway, sink, enabled mirror) is fatal
// here; once the loop starts, nothing is.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing the startup failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Powerwall monitor",
		"version", version,
		"commit", commit,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to the Powerwall gateway
	gateway, err := powerwall.Connect(powerwall.Config{
		Host:        cfg.Powerwall.Host,
		Email:       cfg.Powerwall.Email,
		Password:    cfg.Powerwall.Password,
		Timeout:     cfg.GetRequestTimeout(),
		InsecureTLS: cfg.Powerwall.InsecureTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to Powerwall: %w", err)
	}
	log.Info("Powerwall connected", "host", cfg.Powerwall.Host)

	// Connect to InfluxDB
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	if err != nil {
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	defer func() {
		log.Info("closing InfluxDB connection")
		influxClient.Close()
	}()
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)

	// Build the collector; wire the MQTT mirror only when enabled
	opts := []collector.Option{
		collector.WithInterval(cfg.GetInterval()),
		collector.WithLogger(log),
	}

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			mqttClient.Disconnect()
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		opts = append(opts, collector.WithMirror(
			mqttClient,
			mqtt.TelemetryTopic(cfg.MQTT.TopicPrefix),
			byte(cfg.MQTT.QoS),
		))
	} else {
		log.Info("MQTT mirror disabled")
	}

	coll := collector.New(gateway, influxClient, opts...)

	// Run until the shutdown signal; per-cycle failures never surface here.
	if err := coll.Run(ctx); err != nil {
		return fmt.Errorf("collector: %w", err)
	}

	log.Info("Powerwall monitor stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PWMON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PWMON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
