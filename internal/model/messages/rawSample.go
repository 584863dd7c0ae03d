package messages

import "time"

// RawSample is one uncalibrated reading event as produced by a sensor
// gateway. Monotonic per channel, unordered across channels.
type RawSample struct {
	ChannelID string    `json:"channel_id"`
	ZoneID    string    `json:"zone_id,omitempty"`
	RawValue  float64   `json:"raw_value"`
	Seq       uint64    `json:"seq,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
