// Package powerwall reads instantaneous telemetry from a Tesla Powerwall
// local gateway.
//
// The gateway exposes a small HTTPS API on the home network: a login
// endpoint that issues a session cookie, /api/meters/aggregates for the
// instantaneous power of the four meters (site, battery, solar, load), and
// /api/system_status/soe for the battery charge percentage. Certificates
// are self-signed, so verification is typically disabled in config.
//
// Sessions expire server-side after a while; every read re-authenticates
// transparently (once) when the gateway answers 401/403, so a long-running
// poll loop never has to care about session lifetime.
//
// # Usage
//
//	client, err := powerwall.Connect(powerwall.Config{
//	    Host:        "192.168.91.1",
//	    Email:       "owner@example.com",
//	    Password:    "...",
//	    InsecureTLS: true,
//	})
//	if err != nil {
//	    // startup failure, do not start the loop
//	}
//
//	flow, err := client.PowerFlow(ctx)   // watts, floats
//	level, err := client.BatteryLevel(ctx) // percent, float
//
// # Error Handling
//
// Connect failures wrap ErrConnectionFailed (fatal at startup); poll
// failures wrap ErrReadFailed (recoverable per cycle). Both compose with
// errors.Is.
package powerwall
