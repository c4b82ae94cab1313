package powerwall

import "errors"

// Sentinel errors for gateway operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, powerwall.ErrReadFailed) {
//	    // skip this cycle, poll again next tick
//	}
var (
	// ErrConnectionFailed indicates the gateway could not be reached or
	// authenticated at construction time. This is a startup error: the
	// process must not start the loop.
	ErrConnectionFailed = errors.New("powerwall: connection failed")

	// ErrAuthFailed indicates the gateway rejected the credentials.
	ErrAuthFailed = errors.New("powerwall: authentication failed")

	// ErrReadFailed indicates a poll failed mid-run. This is a per-cycle
	// error: the reading is absent, the loop continues.
	ErrReadFailed = errors.New("powerwall: read failed")
)
