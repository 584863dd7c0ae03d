package entities

// SensorType identifies the physical quantity a channel measures.
type SensorType string

const (
	SensorSmoke      SensorType = "smoke"
	SensorCO2        SensorType = "co2"
	SensorFire       SensorType = "fire"
	SensorEngineTemp SensorType = "engine_temp"
)

// SensorTypes lists every supported type in a stable order, used for
// deterministic tie-breaking when two sensors report the same severity.
var SensorTypes = []SensorType{SensorSmoke, SensorCO2, SensorFire, SensorEngineTemp}

func (t SensorType) Valid() bool {
	switch t {
	case SensorSmoke, SensorCO2, SensorFire, SensorEngineTemp:
		return true
	}
	return false
}

// SensorChannel describes one physical sensor wired into a zone.
// Immutable once loaded from configuration.
type SensorChannel struct {
	ID     string     `json:"id" yaml:"id"`
	ZoneID string     `json:"zone_id" yaml:"zone_id"`
	Type   SensorType `json:"sensor_type" yaml:"sensor_type"`
	Unit   string     `json:"unit" yaml:"unit"`
	// Physical domain of the raw signal; values outside are marked invalid.
	DomainMin float64 `json:"domain_min" yaml:"domain_min"`
	DomainMax float64 `json:"domain_max" yaml:"domain_max"`
	// Linear calibration applied to the raw value: value = raw*Scale + Offset.
	Scale  float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Offset float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
}
