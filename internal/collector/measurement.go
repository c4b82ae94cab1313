package collector

import (
	"math"

	"powerwall-monitor/internal/powerwall"
)

// Measurement is one polling cycle's normalized power snapshot, in whole
// watts. A Measurement is all-or-nothing: if the power poll fails there is
// no Measurement and the cycle is skipped, never a partial one.
//
// Sign conventions:
//   - Grid: positive = importing from the utility grid, negative = exporting
//   - Battery: positive = discharging, negative = charging
//   - Solar: positive = generating
//   - Home: positive = consumption
type Measurement struct {
	Grid    int `json:"grid"`
	Battery int `json:"battery"`
	Solar   int `json:"solar"`
	Home    int `json:"home"`
}

// normalize converts the gateway's float readings into a Measurement.
//
// Each field is rounded independently with math.Round, which rounds half
// away from zero (-300.5 becomes -301). The rule matters at zero-crossings
// because the sign carries meaning, so it is fixed here rather than left to
// the sink.
func normalize(flow powerwall.PowerFlow) Measurement {
	return Measurement{
		Grid:    round(flow.Site),
		Battery: round(flow.Battery),
		Solar:   round(flow.Solar),
		Home:    round(flow.Load),
	}
}

// roundLevel normalizes a battery charge percentage.
//
// Out-of-range values pass through rounded; the gateway is authoritative,
// so no clamping is invented here.
func roundLevel(percent float64) int {
	return round(percent)
}

// round is the single rounding rule for the whole package: nearest integer,
// halves away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
