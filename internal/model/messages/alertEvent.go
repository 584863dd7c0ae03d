package messages

import "time"

// AlertEvent surfaces an operational emergency that is not itself a zone
// transition, e.g. an actuator that could not be commanded after all retries.
type AlertEvent struct {
	ZoneID    string    `json:"zone_id"`
	Kind      string    `json:"kind"`     // "actuator_unreachable" | ...
	Severity  string    `json:"severity"` // "warning" | "critical"
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert kinds raised by the dispatcher.
const (
	AlertActuatorUnreachable = "actuator_unreachable"
)
