package sensor_simulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firewatch/firewatch/internal/model"
)

func testChannels() []model.SensorChannel {
	return []model.SensorChannel{
		{ID: "smoke-1", ZoneID: "room-a", Type: model.SensorSmoke, Unit: "%obs/m"},
		{ID: "co2-1", ZoneID: "room-a", Type: model.SensorCO2, Unit: "ppm"},
		{ID: "fire-1", ZoneID: "room-a", Type: model.SensorFire, Unit: "C"},
	}
}

func TestGeneratorStartsAtBaseline(t *testing.T) {
	g := NewDataGenerator(testChannels(), 1)
	require.Equal(t, ScenarioNormal, g.Scenario())

	vals := g.Tick()
	require.InDelta(t, 45.0, vals["smoke-1"], 1.0)
	require.InDelta(t, 850.0, vals["co2-1"], 10.0)
	require.InDelta(t, 35.0, vals["fire-1"], 1.0)
}

func TestGeneratorStaysInDomainUnderNoise(t *testing.T) {
	g := NewDataGenerator(testChannels(), 7)
	for i := 0; i < 500; i++ {
		vals := g.Tick()
		require.GreaterOrEqual(t, vals["smoke-1"], 0.0)
		require.LessOrEqual(t, vals["smoke-1"], 100.0)
		require.GreaterOrEqual(t, vals["co2-1"], 350.0)
		require.LessOrEqual(t, vals["co2-1"], 3000.0)
		require.GreaterOrEqual(t, vals["fire-1"], 20.0)
		require.LessOrEqual(t, vals["fire-1"], 120.0)
	}
}

func TestFireScenarioRampsAllFireChannels(t *testing.T) {
	g := NewDataGenerator(testChannels(), 42)
	g.SetScenario(ScenarioFire)

	var vals map[string]float64
	for i := 0; i < 60; i++ {
		vals = g.Tick()
	}
	// 60 ticks of +0.9 smoke, +15 co2, +0.7 fire dominate the noise
	require.Greater(t, vals["smoke-1"], 75.0)
	require.Greater(t, vals["co2-1"], 1500.0)
	require.Greater(t, vals["fire-1"], 60.0)
}

func TestCO2ScenarioOnlyRampsCO2(t *testing.T) {
	g := NewDataGenerator(testChannels(), 42)
	g.SetScenario(ScenarioCO2High)

	var vals map[string]float64
	for i := 0; i < 40; i++ {
		vals = g.Tick()
	}
	require.Greater(t, vals["co2-1"], 1500.0)
	require.Less(t, vals["smoke-1"], 60.0)
}

func TestNormalScenarioResetsBaselines(t *testing.T) {
	g := NewDataGenerator(testChannels(), 42)
	g.SetScenario(ScenarioFire)
	for i := 0; i < 60; i++ {
		g.Tick()
	}

	g.SetScenario(ScenarioNormal)
	vals := g.Tick()
	require.InDelta(t, 45.0, vals["smoke-1"], 1.0)
	require.InDelta(t, 850.0, vals["co2-1"], 10.0)
}

func TestScenarioNameAcceptsLegacyDrillNames(t *testing.T) {
	require.Equal(t, ScenarioFire, scenarioName("fire1"))
	require.Equal(t, ScenarioFire, scenarioName("fire2"))
	require.Equal(t, ScenarioFire, scenarioName("fire"))
	require.Equal(t, ScenarioCO2High, scenarioName("co2_high"))
	require.Equal(t, "firedrill", scenarioName("firedrill")) // not a numeric suffix
}

func TestEngineTempCoolsWhenOff(t *testing.T) {
	chs := []model.SensorChannel{
		{ID: "engine-1", ZoneID: "garage", Type: model.SensorEngineTemp, Unit: "C"},
	}
	g := NewDataGenerator(chs, 3)

	var vals map[string]float64
	for i := 0; i < 30; i++ {
		vals = g.Tick()
	}
	require.Equal(t, 20.0, vals["engine-1"]) // drained to the floor

	g.SetScenario(ScenarioEngineOn)
	for i := 0; i < 30; i++ {
		vals = g.Tick()
	}
	require.Greater(t, vals["engine-1"], 30.0)
}
