// Package collector is the core of the Powerwall monitor: the loop that
// polls the gateway, normalizes the readings, and writes one record per
// cycle to the time-series sink.
//
// # Failure model
//
// The loop assumes both collaborators are unreliable and isolates every
// cycle's failures from all others:
//
//   - power poll fails: the cycle is skipped entirely (no partial write)
//   - battery poll fails: the record degrades to power-only
//   - sink write fails: the data point is lost, logged, and that is all
//   - mirror publish fails: logged, nothing else
//
// Nothing retries within a cycle and nothing is queued across cycles; the
// fixed polling interval already rate-limits, so the next tick is the
// retry. A transient gateway or sink outage therefore costs data points,
// never the service. The only exit is context cancellation, observed at the
// sleep boundary and propagated into in-flight collaborator calls.
//
// # Collaborators
//
// The loop owns no connections. The gateway client and sink client are
// injected through the ReadingSource and PointWriter interfaces, opened
// once by the process entry point and reused for the life of the loop;
// reconnection, where it exists, is the collaborator's concern.
//
// # Normalization
//
// Raw float watts become signed integer watts through one rounding rule,
// math.Round (halves away from zero), applied independently per field.
// Battery level rounds the same way and is never clamped.
package collector
