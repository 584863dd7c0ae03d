package messages

import (
	"time"

	"github.com/firewatch/firewatch/internal/model/entities"
)

// TelemetryRecord is the per-zone snapshot uploaded for dashboard display:
// zone identity, latest per-sensor values and the confirmed status.
type TelemetryRecord struct {
	ZoneID    string                                  `json:"zone_id"`
	Level     entities.Level                          `json:"level"`
	Readings  map[entities.SensorType]ReadingSnapshot `json:"readings"`
	Timestamp time.Time                               `json:"timestamp"`
}

// ReadingSnapshot is the last-known-good value of one sensor type. Observed
// is false when the channel is currently silent or invalid; the value then
// is display continuity only, not decision input.
type ReadingSnapshot struct {
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Observed  bool      `json:"observed"`
	Timestamp time.Time `json:"timestamp"`
}
