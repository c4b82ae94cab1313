// Package logging provides structured logging for the Powerwall monitor.
//
// This package wraps Go's standard log/slog package so every log line is
// machine-parsable and carries the service identity. The collector's whole
// operational story (one line per successful cycle, one line per failure
// category) flows through this package, so the failure lines must carry
// enough context to diagnose without structured log parsing.
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("cycle complete", "grid_w", 1500, "solar_w", 801)
//	logger.Error("sink write failed", "error", err)
//
// # Security
//
// Never log the gateway password, InfluxDB token, or MQTT credentials.
package logging
