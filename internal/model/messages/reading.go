package messages

import (
	"time"

	"github.com/firewatch/firewatch/internal/model/entities"
)

// NormalizedReading is a calibrated reading in physical units. Valid=false
// marks a sample that is out of the channel's domain or stale; the evaluator
// treats it as "no new information", never as zero.
type NormalizedReading struct {
	ChannelID  string              `json:"channel_id"`
	ZoneID     string              `json:"zone_id"`
	SensorType entities.SensorType `json:"sensor_type"`
	Value      float64             `json:"value"`
	Unit       string              `json:"unit,omitempty"`
	Valid      bool                `json:"valid"`
	Timestamp  time.Time           `json:"timestamp"`
}
