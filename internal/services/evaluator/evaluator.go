// Package evaluator implements the per-zone threshold decision engine: it
// folds normalized readings into a zone status and confirms transitions with
// debounce and hysteresis so a noisy sensor cannot flap the suppression
// actuator.
package evaluator

import (
	"sync"
	"time"

	"github.com/firewatch/firewatch/internal/model"
)

// ZoneEvaluator owns one zone's state. It is the sole mutator of that state;
// ingestion is serialized by an internal lock, and zones never coordinate.
//
// Debounce timing runs on reading timestamps (event time), so the same input
// sequence always yields the same decisions regardless of scheduling.
type ZoneEvaluator struct {
	zoneID       string
	policies     *PolicyStore
	maxSampleAge time.Duration
	maxDebounce  time.Duration
	emit         func(model.Verdict)
	now          func() time.Time // wall clock, only for staleness

	mu       sync.Mutex
	state    model.ZoneState
	types    []model.SensorType // sensor types wired in this zone, stable order
	lastGood map[model.SensorType]model.NormalizedReading
	observed map[model.SensorType]bool
	anchor   map[model.SensorType]model.Level // previous candidate, hysteresis anchor
}

// NewZoneEvaluator builds the evaluator for one zone. emit is called with
// every confirmed verdict; it must not block (the caller hands verdicts off
// asynchronously).
func NewZoneEvaluator(
	zoneID string,
	channels []model.SensorChannel,
	policies *PolicyStore,
	maxSampleAge time.Duration,
	emit func(model.Verdict),
) *ZoneEvaluator {
	var types []model.SensorType
	seen := make(map[model.SensorType]bool)
	for _, t := range model.SensorTypes {
		for _, ch := range channels {
			if ch.Type == t && !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}

	return &ZoneEvaluator{
		zoneID:       zoneID,
		policies:     policies,
		maxSampleAge: maxSampleAge,
		maxDebounce:  policies.MaxDebounce(types),
		emit:         emit,
		now:          time.Now,
		state: model.ZoneState{
			ZoneID:       zoneID,
			CurrentLevel: model.LevelNormal,
		},
		types:    types,
		lastGood: make(map[model.SensorType]model.NormalizedReading, len(types)),
		observed: make(map[model.SensorType]bool, len(types)),
		anchor:   make(map[model.SensorType]model.Level, len(types)),
	}
}

// Ingest folds one normalized reading into the zone state. Invalid or stale
// readings never overwrite the last-known-good value; they only mark the
// channel as currently unobserved.
func (e *ZoneEvaluator) Ingest(reading model.NormalizedReading) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reading.SensorType
	if !t.Valid() || !e.wired(t) {
		return
	}

	valid := reading.Valid
	if valid && e.now().Sub(reading.Timestamp) > e.maxSampleAge {
		valid = false
	}

	if valid {
		e.lastGood[t] = reading
		e.observed[t] = true
	} else {
		e.observed[t] = false
	}

	e.evaluate(reading.Timestamp)
}

// Sweep retires readings older than the staleness cutoff and re-evaluates
// the zone at now. A zone whose channels all went silent reaches Unknown
// through here even when no new samples arrive.
func (e *ZoneEvaluator) Sweep(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for t, r := range e.lastGood {
		if e.observed[t] && now.Sub(r.Timestamp) > e.maxSampleAge {
			e.observed[t] = false
		}
	}
	e.evaluate(now)
}

// State returns a copy of the zone state.
func (e *ZoneEvaluator) State() model.ZoneState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot builds the telemetry record for this zone: confirmed level plus
// the last-known-good value per sensor type. Unobserved values are display
// continuity only.
func (e *ZoneEvaluator) Snapshot(now time.Time) model.TelemetryRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	readings := make(map[model.SensorType]model.ReadingSnapshot, len(e.lastGood))
	for t, r := range e.lastGood {
		readings[t] = model.ReadingSnapshot{
			Value:     r.Value,
			Unit:      r.Unit,
			Observed:  e.observed[t],
			Timestamp: r.Timestamp,
		}
	}
	return model.TelemetryRecord{
		ZoneID:    e.zoneID,
		Level:     e.state.CurrentLevel,
		Readings:  readings,
		Timestamp: now,
	}
}

func (e *ZoneEvaluator) wired(t model.SensorType) bool {
	for _, wt := range e.types {
		if wt == t {
			return true
		}
	}
	return false
}

// zoneCandidate computes the zone's observed level: the maximum severity
// among sensor types currently contributing valid readings, or Unknown when
// none do. The returned trigger is the highest-severity contributor.
func (e *ZoneEvaluator) zoneCandidate() (model.Level, model.SensorType) {
	level := model.LevelUnknown
	var trigger model.SensorType

	for _, t := range e.types {
		if !e.observed[t] {
			continue
		}
		policy, ok := e.policies.Get(t)
		if !ok {
			continue
		}
		lvl := policy.LevelFor(e.lastGood[t].Value, e.anchor[t])
		e.anchor[t] = lvl
		if lvl.MoreSevere(level) {
			level = lvl
			trigger = t
		}
	}
	if level == model.LevelUnknown {
		return level, ""
	}
	return level, trigger
}

// evaluate runs the debounced transition logic at evaluation time `at`.
func (e *ZoneEvaluator) evaluate(at time.Time) {
	candidate, trigger := e.zoneCandidate()
	current := e.state.CurrentLevel

	if candidate == current {
		// Noise reverted before debounce completed.
		if e.state.Pending() {
			e.state.ClearPending()
		}
		return
	}

	escalating := candidate.MoreSevere(current) && candidate != model.LevelUnknown
	if !escalating {
		trigger = ""
	}

	if e.state.PendingLevel != candidate {
		e.state.PendingLevel = candidate
		e.state.PendingSince = at
		e.state.PendingTrigger = trigger
		return
	}

	if at.Sub(e.state.PendingSince) < e.debounceFor(e.state.PendingTrigger) {
		return // still accumulating debounce time
	}

	previous := current
	e.state.CurrentLevel = candidate
	e.state.ClearPending()

	verdict := model.Verdict{
		ZoneID:               e.zoneID,
		Level:                candidate,
		PreviousLevel:        previous,
		TriggeringSensorType: trigger,
		// Edge-triggered: one activation per escalation into Critical.
		ActuationRequired: candidate == model.LevelCritical && previous != model.LevelCritical,
		Timestamp:         at,
	}
	if e.emit != nil {
		e.emit(verdict)
	}
}

// debounceFor picks the confirmation window: the triggering sensor's policy
// on escalation, the most conservative policy in the zone otherwise.
func (e *ZoneEvaluator) debounceFor(trigger model.SensorType) time.Duration {
	if trigger != "" {
		if p, ok := e.policies.Get(trigger); ok {
			return p.DebounceDuration
		}
	}
	return e.maxDebounce
}
