// Package influxdb provides the time-series sink for the Powerwall monitor.
//
// It wraps the official influxdb-client-go v2 library with the monitor's
// connection management and write semantics.
//
// # Write semantics
//
// The monitor writes one small record per polling cycle and must know,
// within that cycle, whether the record was persisted (a failed write is a
// logged, accepted data loss; there is no queue or retry). The client
// therefore uses WriteAPIBlocking: each cycle's 1-or-2 points are submitted
// in a single synchronous call whose error is returned to the caller.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // startup failure, do not start the loop
//	}
//	defer client.Close()
//
//	err = client.WritePoints(ctx, powerPoint, batteryPoint)
//
// # Error Handling
//
// Connect failures wrap ErrConnectionFailed (fatal), write failures wrap
// ErrWriteFailed (recoverable per cycle). Both compose with errors.Is.
package influxdb
