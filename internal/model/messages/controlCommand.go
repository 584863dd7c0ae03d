package messages

import "time"

// ControlCommand is sent from the cloud side to sensor gateways: pause or
// resume publication, or switch the simulated scenario.
type ControlCommand struct {
	Command   string            `json:"command"` // "PAUSE" | "RESUME" | "SCENARIO"
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
