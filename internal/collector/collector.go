package collector

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"powerwall-monitor/internal/infrastructure/logging"
	"powerwall-monitor/internal/powerwall"
)

// defaultInterval is the polling interval when no option overrides it.
const defaultInterval = 60 * time.Second

// ReadingSource is the device side of the collector: something that can be
// polled for an instantaneous power snapshot and a battery charge level.
// powerwall.Client satisfies it.
type ReadingSource interface {
	PowerFlow(ctx context.Context) (powerwall.PowerFlow, error)
	BatteryLevel(ctx context.Context) (float64, error)
}

// PointWriter is the sink side of the collector: something that durably
// accepts a cycle's 1-or-2 points in one atomic call. influxdb.Client
// satisfies it.
type PointWriter interface {
	WritePoints(ctx context.Context, points ...*write.Point) error
}

// Publisher mirrors records to a live-telemetry channel. mqtt.Client
// satisfies it. The mirror is optional and strictly best-effort.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Collector drives the unbounded poll→normalize→write→sleep loop.
//
// Every per-cycle failure (source poll, battery poll, sink write, mirror
// publish) is absorbed at the cycle boundary: it costs at most that cycle's
// data point and never the loop. The fixed interval doubles as the retry
// delay, so there is no backoff state to manage. The only exit is context
// cancellation.
type Collector struct {
	source   ReadingSource
	sink     PointWriter
	interval time.Duration
	logger   *logging.Logger

	// Optional mirror; nil when MQTT is disabled.
	publisher Publisher
	topic     string
	qos       byte
}

// Option configures a Collector.
type Option func(*Collector)

// WithInterval overrides the default 60s polling interval.
func WithInterval(interval time.Duration) Option {
	return func(c *Collector) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithLogger sets the collector's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithMirror publishes each cycle's record to topic after the sink write
// attempt. Publish failures are logged and never affect the cycle outcome.
func WithMirror(publisher Publisher, topic string, qos byte) Option {
	return func(c *Collector) {
		c.publisher = publisher
		c.topic = topic
		c.qos = qos
	}
}

// New creates a Collector polling source and writing to sink.
//
// Parameters:
//   - source: The device being polled (long-lived, opened by the caller)
//   - sink: The time-series store (long-lived, opened by the caller)
//   - opts: Interval, logger, and mirror configuration
func New(source ReadingSource, sink PointWriter, opts ...Option) *Collector {
	c := &Collector{
		source:   source,
		sink:     sink,
		interval: defaultInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.Default()
	}
	c.logger = c.logger.With("component", "collector")

	return c
}

// Run executes collection cycles until ctx is cancelled.
//
// Each cycle fully resolves (poll, normalize, write attempt) before the
// interval sleep begins; cycles never overlap. Cancellation is observed at
// both state boundaries: it interrupts the sleep promptly and aborts
// in-flight source/sink calls through ctx.
//
// Returns:
//   - error: Always nil; cancellation is the loop's one clean exit
func (c *Collector) Run(ctx context.Context) error {
	c.logger.Info("collector started", "interval", c.interval.String())

	for {
		if ctx.Err() != nil {
			c.logger.Info("collector stopped")
			return nil
		}

		c.runCycle(ctx)

		select {
		case <-ctx.Done():
			c.logger.Info("collector stopped")
			return nil
		case <-time.After(c.interval):
		}
	}
}

// runCycle performs one poll→normalize→write pass. It never returns an
// error: every failure is logged with its phase and absorbed here.
func (c *Collector) runCycle(ctx context.Context) {
	flow, err := c.source.PowerFlow(ctx)
	if err != nil {
		// No partial write: without the power snapshot the cycle
		// produces nothing, battery level included.
		c.logger.Error("power poll failed, skipping cycle",
			"phase", "source_read",
			"error", err,
		)
		return
	}

	rec := Record{
		Time:  time.Now(),
		Power: normalize(flow),
	}

	if percent, err := c.source.BatteryLevel(ctx); err != nil {
		c.logger.Warn("battery level poll failed, writing power only",
			"phase", "battery_read",
			"error", err,
		)
	} else {
		level := roundLevel(percent)
		rec.Level = &level
	}

	wrote := true
	if err := c.sink.WritePoints(ctx, rec.points()...); err != nil {
		// The data point is lost; there is no queue and no retry.
		// The next tick is the retry.
		wrote = false
		c.logger.Error("record write failed, data point lost",
			"phase", "sink_write",
			"error", err,
		)
	}

	c.mirror(rec)

	if wrote {
		c.logCycle(rec)
	}
}

// mirror publishes the record to the optional live-telemetry channel.
func (c *Collector) mirror(rec Record) {
	if c.publisher == nil {
		return
	}

	payload, err := rec.payload()
	if err != nil {
		c.logger.Warn("mirror payload encoding failed",
			"phase", "mirror_publish",
			"error", err,
		)
		return
	}

	if err := c.publisher.Publish(c.topic, payload, c.qos, false); err != nil {
		c.logger.Warn("mirror publish failed",
			"phase", "mirror_publish",
			"error", err,
		)
	}
}

// logCycle emits the one success line per cycle, carrying all four power
// fields so a plain log tail is enough to watch the system.
func (c *Collector) logCycle(rec Record) {
	args := []any{
		"grid_w", rec.Power.Grid,
		"battery_w", rec.Power.Battery,
		"solar_w", rec.Power.Solar,
		"home_w", rec.Power.Home,
	}
	if rec.Level != nil {
		args = append(args, "battery_level_pct", *rec.Level)
	}
	c.logger.Info("cycle complete", args...)
}
