package collector

import (
	"encoding/json"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Series names in the sink.
const (
	powerSeries   = "power"
	batterySeries = "battery"
)

// Record is the unit written to the sink per cycle: the power Measurement
// plus, when the battery poll succeeded, the charge level. A nil Level
// degrades the record to power-only rather than blocking it.
//
// Records live for exactly one cycle. They are built fresh from the polls,
// written (or lost), and discarded; the collector keeps no history.
type Record struct {
	Time  time.Time
	Power Measurement
	Level *int
}

// points builds the record's write batch: one "power" point and, when the
// level is present, one "battery" point sharing the record timestamp.
// Both points go to the sink in a single call so the two series stay
// temporally coincident.
func (r Record) points() []*write.Point {
	points := []*write.Point{
		write.NewPoint(
			powerSeries,
			nil,
			map[string]interface{}{
				"grid":    r.Power.Grid,
				"battery": r.Power.Battery,
				"solar":   r.Power.Solar,
				"home":    r.Power.Home,
			},
			r.Time,
		),
	}

	if r.Level != nil {
		points = append(points, write.NewPoint(
			batterySeries,
			nil,
			map[string]interface{}{
				"level": *r.Level,
			},
			r.Time,
		))
	}

	return points
}

// recordPayload is the JSON shape published to the telemetry mirror.
type recordPayload struct {
	Time  string      `json:"time"`
	Power Measurement `json:"power"`
	Level *int        `json:"battery_level,omitempty"`
}

// payload marshals the record for the mirror.
func (r Record) payload() ([]byte, error) {
	return json.Marshal(recordPayload{
		Time:  r.Time.UTC().Format(time.RFC3339),
		Power: r.Power,
		Level: r.Level,
	})
}
