package messages

import (
	"time"

	"github.com/firewatch/firewatch/internal/model/entities"
)

// Verdict records one confirmed zone transition. Immutable once emitted;
// the dispatcher consumes it exactly once, collaborators may keep copies.
type Verdict struct {
	ZoneID        string         `json:"zone_id"`
	Level         entities.Level `json:"level"`
	PreviousLevel entities.Level `json:"previous_level"`
	// TriggeringSensorType names the sensor that caused an escalation;
	// empty on de-escalation and Unknown transitions.
	TriggeringSensorType entities.SensorType `json:"triggering_sensor_type,omitempty"`
	// ActuationRequired is edge-triggered: true only when this verdict enters
	// Critical from a lower level.
	ActuationRequired bool      `json:"actuation_required"`
	Timestamp         time.Time `json:"timestamp"`
}

// CriticalExit reports whether this verdict confirms leaving Critical for a
// known-safe level. Collaborators may release the actuator on it. A drop to
// Unknown is not an exit: absence of data is never treated as safe.
func (v Verdict) CriticalExit() bool {
	return v.PreviousLevel == entities.LevelCritical &&
		(v.Level == entities.LevelNormal || v.Level == entities.LevelWarning)
}
