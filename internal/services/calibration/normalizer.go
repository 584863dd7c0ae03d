// Package calibration converts raw gateway samples into normalized readings
// in physical units. It is a pure transform: out-of-domain input produces a
// reading marked invalid, never an error and never a default value.
package calibration

import (
	"github.com/firewatch/firewatch/internal/model"
)

// Normalizer maps raw samples onto their channels' physical units.
type Normalizer struct {
	channels map[string]model.SensorChannel
}

// NewNormalizer builds a Normalizer over the configured channel list.
func NewNormalizer(channels map[string]model.SensorChannel) *Normalizer {
	return &Normalizer{channels: channels}
}

// Channel looks up a configured channel by id.
func (n *Normalizer) Channel(id string) (model.SensorChannel, bool) {
	ch, ok := n.channels[id]
	return ch, ok
}

// Normalize converts one raw sample. A sample from an unknown channel or
// outside the channel's physical domain yields Valid=false; the value carried
// by an invalid reading must not be used for decisions. Staleness is judged
// later, at evaluation time, because producer/consumer clock skew is expected.
func (n *Normalizer) Normalize(sample model.RawSample) model.NormalizedReading {
	reading := model.NormalizedReading{
		ChannelID: sample.ChannelID,
		ZoneID:    sample.ZoneID,
		Timestamp: sample.Timestamp,
	}

	ch, ok := n.channels[sample.ChannelID]
	if !ok {
		return reading
	}
	reading.ZoneID = ch.ZoneID
	reading.SensorType = ch.Type
	reading.Unit = ch.Unit

	if sample.RawValue < ch.DomainMin || sample.RawValue > ch.DomainMax {
		return reading
	}

	scale := ch.Scale
	if scale == 0 {
		scale = 1
	}
	reading.Value = sample.RawValue*scale + ch.Offset
	reading.Valid = true
	return reading
}
