// Package sensor_simulator emulates a field gateway: it synthesizes raw
// samples for every channel of its zone and reacts to cloud-side control
// commands (pause, resume, scenario injection).
package sensor_simulator

import (
	"math/rand"
	"sync"

	"github.com/firewatch/firewatch/internal/model"
)

// Scenario names accepted over the control topic.
const (
	ScenarioNormal   = "normal"
	ScenarioFire     = "fire"
	ScenarioCO2High  = "co2_high"
	ScenarioEngineOn = "engine_on"
)

// Baseline resting values per sensor type.
var baselines = map[model.SensorType]float64{
	model.SensorSmoke:      45.0,
	model.SensorCO2:        850.0,
	model.SensorFire:       35.0,
	model.SensorEngineTemp: 25.0,
}

// DataGenerator keeps the synthetic value of each channel and advances it
// once per tick: small random noise at rest, a steady ramp under an active
// scenario.
type DataGenerator struct {
	mu       sync.Mutex
	values   map[string]float64 // channel id -> current raw value
	channels []model.SensorChannel
	scenario string
	rng      *rand.Rand
}

// NewDataGenerator seeds every channel at its type's baseline.
func NewDataGenerator(channels []model.SensorChannel, seed int64) *DataGenerator {
	values := make(map[string]float64, len(channels))
	for _, ch := range channels {
		values[ch.ID] = baselines[ch.Type]
	}
	return &DataGenerator{
		values:   values,
		channels: channels,
		scenario: ScenarioNormal,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// SetScenario switches the active scenario. "normal" also resets all
// channels to their baselines, matching how a drill is cleared.
func (g *DataGenerator) SetScenario(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.scenario = name
	if name == ScenarioNormal {
		for _, ch := range g.channels {
			g.values[ch.ID] = baselines[ch.Type]
		}
	}
}

// Scenario returns the active scenario name.
func (g *DataGenerator) Scenario() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scenario
}

// Tick advances every channel one step and returns the new raw values.
func (g *DataGenerator) Tick() map[string]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]float64, len(g.channels))
	for _, ch := range g.channels {
		v := g.values[ch.ID]

		switch ch.Type {
		case model.SensorSmoke:
			v += g.uniform(-0.5, 0.7)
			if g.scenario == ScenarioFire {
				v += 0.9
			}
			v = clamp(v, 0, 100)
		case model.SensorCO2:
			v += g.uniform(-5, 8)
			switch g.scenario {
			case ScenarioFire:
				v += 15
			case ScenarioCO2High:
				v += 25
			}
			v = clamp(v, 350, 3000)
		case model.SensorFire:
			v += g.uniform(-0.3, 0.5)
			if g.scenario == ScenarioFire {
				v += 0.7
			}
			v = clamp(v, 20, 120)
		case model.SensorEngineTemp:
			if g.scenario == ScenarioEngineOn {
				v += g.uniform(0.4, 1.4)
				v = clamp(v, 35, 130)
			} else {
				v -= g.uniform(0.2, 0.5)
				v = clamp(v, 20, 130)
			}
		}

		g.values[ch.ID] = v
		out[ch.ID] = v
	}
	return out
}

func (g *DataGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
