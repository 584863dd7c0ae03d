package messages

import "time"

// ActuationAction is the command verb sent to an actuator.
type ActuationAction string

const (
	ActionActivate ActuationAction = "activate"
	ActionRelease  ActuationAction = "release"
)

// TargetWater is the only actuation target deployed today.
const TargetWater = "water"

// ActuationResultEvent is published by the actuator service when a command
// completes (or fails), mirroring the style of the other events.
type ActuationResultEvent struct {
	ZoneID    string          `json:"zone_id"`
	Action    ActuationAction `json:"action"`
	Target    string          `json:"target"`
	TicketID  string          `json:"ticket_id"`
	Status    string          `json:"status"` // "OK" | "FAIL"
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
