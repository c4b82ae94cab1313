package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrWriteFailed) {
//	    // the cycle's record was lost
//	}
var (
	// ErrConnectionFailed indicates the initial connection attempt failed.
	// This is a startup error: the process must not start the loop.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a blocking write did not reach the server.
	// This is a per-cycle error: the record is lost, the loop continues.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
