package powerwall

// PowerFlow is one instantaneous snapshot of the four gateway meters,
// in watts, as floats straight off the wire.
//
// Sign conventions (as reported by the gateway):
//   - Site: positive = importing from the grid, negative = exporting
//   - Battery: positive = discharging, negative = charging
//   - Solar: positive = generating
//   - Load: positive = home consumption
type PowerFlow struct {
	Site    float64
	Battery float64
	Solar   float64
	Load    float64
}

// aggregatesResponse mirrors the /api/meters/aggregates payload; only the
// instantaneous power of each meter is of interest.
type aggregatesResponse struct {
	Site    meterAggregate `json:"site"`
	Battery meterAggregate `json:"battery"`
	Solar   meterAggregate `json:"solar"`
	Load    meterAggregate `json:"load"`
}

type meterAggregate struct {
	InstantPower float64 `json:"instant_power"`
}

// soeResponse mirrors the /api/system_status/soe payload.
type soeResponse struct {
	Percentage float64 `json:"percentage"`
}

// loginRequest is the body for /api/login/Basic.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}
