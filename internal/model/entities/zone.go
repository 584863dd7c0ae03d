package entities

import "time"

// Level is the confirmed status of a zone, ordered by severity.
// Unknown is distinguished: it means "no valid data", never "safe".
type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// severity ranks levels for escalation comparisons. Unknown ranks lowest so
// that any sensor with valid data dominates a silent one.
var severity = map[Level]int{
	LevelUnknown:  0,
	LevelNormal:   1,
	LevelWarning:  2,
	LevelCritical: 3,
}

func (l Level) Severity() int { return severity[l] }

// MoreSevere reports whether l outranks other.
func (l Level) MoreSevere(other Level) bool { return severity[l] > severity[other] }

func (l Level) String() string { return string(l) }

// ZoneState is the evaluator-owned state of one zone. Exactly one instance
// exists per configured zone; only that zone's evaluator may mutate it.
type ZoneState struct {
	ZoneID       string    `json:"zone_id"`
	CurrentLevel Level     `json:"current_level"`
	PendingLevel Level     `json:"pending_level,omitempty"`
	PendingSince time.Time `json:"pending_since,omitempty"`
	// PendingTrigger is the sensor type whose reading produced the pending
	// candidate; empty for de-escalations and Unknown transitions.
	PendingTrigger SensorType `json:"pending_trigger,omitempty"`
}

// Pending reports whether an unconfirmed transition is being debounced.
func (s ZoneState) Pending() bool { return s.PendingLevel != "" }

// ClearPending drops the unconfirmed candidate (observed level reverted).
func (s *ZoneState) ClearPending() {
	s.PendingLevel = ""
	s.PendingSince = time.Time{}
	s.PendingTrigger = ""
}
