package evaluator

import (
	"time"

	"github.com/firewatch/firewatch/internal/model"
)

// PolicyStore holds the per-sensor-type threshold policies. Loaded once at
// startup, read-only afterwards, safe for concurrent reads by all zone
// evaluators.
type PolicyStore struct {
	policies map[model.SensorType]model.ThresholdPolicy
}

// NewPolicyStore wraps an already validated policy table.
func NewPolicyStore(policies map[model.SensorType]model.ThresholdPolicy) *PolicyStore {
	return &PolicyStore{policies: policies}
}

// Get returns the policy for a sensor type. Coverage of every deployed
// channel is enforced at startup by config validation, so a miss here means
// the caller is asking about a type that was never wired.
func (s *PolicyStore) Get(t model.SensorType) (model.ThresholdPolicy, bool) {
	p, ok := s.policies[t]
	return p, ok
}

// MaxDebounce returns the longest debounce among the given sensor types,
// used for de-escalation and Unknown transitions where no single sensor is
// the trigger.
func (s *PolicyStore) MaxDebounce(types []model.SensorType) time.Duration {
	var max time.Duration
	for _, t := range types {
		if p, ok := s.policies[t]; ok && p.DebounceDuration > max {
			max = p.DebounceDuration
		}
	}
	return max
}
