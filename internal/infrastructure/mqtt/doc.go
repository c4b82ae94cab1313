// Package mqtt provides the optional live-telemetry mirror for the
// Powerwall monitor.
//
// The mirror is publish-only: when enabled, each collection cycle's record
// is published as JSON to <prefix>/telemetry so dashboards and other
// home-automation services can follow live readings without polling the
// time-series sink. A retained status message on <prefix>/status (backed by
// a Last Will) reports whether the monitor is online.
//
// The mirror is strictly best-effort. A failed publish is logged by the
// collector and never affects the sink write or the polling cadence, and
// the monitor runs fine with the mirror disabled entirely.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    // startup failure (only when the mirror is enabled in config)
//	}
//	defer client.Disconnect()
//
//	err = client.Publish(mqtt.TelemetryTopic(cfg.MQTT.TopicPrefix), payload, 1, false)
//
// # Error Handling
//
// Sentinel errors (ErrNotConnected, ErrPublishFailed, ...) compose with
// errors.Is. Reconnection after a broker outage is handled by paho's
// auto-reconnect; publishes during the outage fail fast with ErrNotConnected.
package mqtt
