package evaluator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firewatch/firewatch/internal/model"
)

var testBase = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func smokePolicy() model.ThresholdPolicy {
	return model.ThresholdPolicy{
		SensorType:       model.SensorSmoke,
		WarningLevel:     0.5,
		CriticalLevel:    0.85,
		HysteresisMargin: 0.1,
		DebounceDuration: time.Second,
	}
}

func co2Policy() model.ThresholdPolicy {
	return model.ThresholdPolicy{
		SensorType:       model.SensorCO2,
		WarningLevel:     1500,
		CriticalLevel:    2000,
		HysteresisMargin: 100,
		DebounceDuration: 2 * time.Second,
	}
}

func newTestEvaluator(t *testing.T, types ...model.SensorType) (*ZoneEvaluator, *[]model.Verdict) {
	t.Helper()

	policies := map[model.SensorType]model.ThresholdPolicy{
		model.SensorSmoke: smokePolicy(),
		model.SensorCO2:   co2Policy(),
	}
	var channels []model.SensorChannel
	for _, typ := range types {
		channels = append(channels, model.SensorChannel{
			ID: string(typ) + "-ch", ZoneID: "room-a", Type: typ, DomainMin: 0, DomainMax: 5000,
		})
	}

	verdicts := &[]model.Verdict{}
	ev := NewZoneEvaluator("room-a", channels, NewPolicyStore(policies), 30*time.Second,
		func(v model.Verdict) { *verdicts = append(*verdicts, v) })
	// pin the wall clock so staleness never interferes with event-time tests
	ev.now = func() time.Time { return testBase }
	return ev, verdicts
}

func smokeReading(value float64, at time.Time) model.NormalizedReading {
	return model.NormalizedReading{
		ChannelID:  "smoke-ch",
		ZoneID:     "room-a",
		SensorType: model.SensorSmoke,
		Value:      value,
		Valid:      true,
		Timestamp:  at,
	}
}

func invalidSmokeReading(at time.Time) model.NormalizedReading {
	return model.NormalizedReading{
		ChannelID:  "smoke-ch",
		ZoneID:     "room-a",
		SensorType: model.SensorSmoke,
		Valid:      false,
		Timestamp:  at,
	}
}

func TestBelowWarningStaysNormal(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	for i := 0; i < 10; i++ {
		ev.Ingest(smokeReading(0.2, testBase.Add(time.Duration(i)*time.Second)))
	}

	require.Empty(t, *verdicts)
	require.Equal(t, model.LevelNormal, ev.State().CurrentLevel)
}

func TestSingleSpikeDoesNotConfirmCritical(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.95, testBase))

	require.Empty(t, *verdicts)
	st := ev.State()
	require.Equal(t, model.LevelNormal, st.CurrentLevel)
	require.Equal(t, model.LevelCritical, st.PendingLevel)
	require.Equal(t, model.SensorSmoke, st.PendingTrigger)
}

func TestSpikeRevertsBeforeDebounce(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.95, testBase))
	ev.Ingest(smokeReading(0.2, testBase.Add(500*time.Millisecond)))

	require.Empty(t, *verdicts)
	st := ev.State()
	require.Equal(t, model.LevelNormal, st.CurrentLevel)
	require.False(t, st.Pending())
}

func TestDebouncedCriticalConfirmation(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.2, testBase))
	ev.Ingest(smokeReading(0.9, testBase.Add(time.Second)))
	ev.Ingest(smokeReading(0.95, testBase.Add(2*time.Second)))

	require.Len(t, *verdicts, 1)
	v := (*verdicts)[0]
	require.Equal(t, model.LevelCritical, v.Level)
	require.Equal(t, model.LevelNormal, v.PreviousLevel)
	require.Equal(t, model.SensorSmoke, v.TriggeringSensorType)
	require.True(t, v.ActuationRequired)
	require.Equal(t, testBase.Add(2*time.Second), v.Timestamp)
}

func TestExactlyOneActivationPerCriticalEntry(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	for i := 0; i < 20; i++ {
		ev.Ingest(smokeReading(0.95, testBase.Add(time.Duration(i)*time.Second)))
	}

	require.Len(t, *verdicts, 1)
	require.True(t, (*verdicts)[0].ActuationRequired)
	require.Equal(t, model.LevelCritical, ev.State().CurrentLevel)
}

func TestHysteresisHoldsCriticalOnBoundaryDither(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.9, testBase))
	ev.Ingest(smokeReading(0.9, testBase.Add(time.Second)))
	require.Len(t, *verdicts, 1)

	// 0.80 is below the critical threshold but above critical-margin (0.75):
	// the zone must hold Critical, no matter how long it dithers there.
	for i := 2; i < 12; i++ {
		ev.Ingest(smokeReading(0.80, testBase.Add(time.Duration(i)*time.Second)))
	}

	require.Len(t, *verdicts, 1)
	require.Equal(t, model.LevelCritical, ev.State().CurrentLevel)
}

func TestCriticalExitEmitsReleaseVerdict(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.9, testBase))
	ev.Ingest(smokeReading(0.9, testBase.Add(time.Second)))
	require.Len(t, *verdicts, 1)

	ev.Ingest(smokeReading(0.3, testBase.Add(2*time.Second)))
	ev.Ingest(smokeReading(0.3, testBase.Add(3*time.Second)))

	require.Len(t, *verdicts, 2)
	v := (*verdicts)[1]
	require.Equal(t, model.LevelNormal, v.Level)
	require.Equal(t, model.LevelCritical, v.PreviousLevel)
	require.False(t, v.ActuationRequired)
	require.True(t, v.CriticalExit())
	require.Empty(t, v.TriggeringSensorType)
}

func TestAllInvalidConfirmsUnknownWithoutActuation(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.2, testBase))
	ev.Ingest(invalidSmokeReading(testBase.Add(time.Second)))
	ev.Ingest(invalidSmokeReading(testBase.Add(2*time.Second)))

	require.Len(t, *verdicts, 1)
	v := (*verdicts)[0]
	require.Equal(t, model.LevelUnknown, v.Level)
	require.False(t, v.ActuationRequired)
	require.False(t, v.CriticalExit())
	require.Empty(t, v.TriggeringSensorType)
}

func TestUnknownFromCriticalIsNotARelease(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.9, testBase))
	ev.Ingest(smokeReading(0.9, testBase.Add(time.Second)))
	require.Len(t, *verdicts, 1)

	// Sensor goes dark while the zone is Critical. Absence of data must not
	// release the suppression system.
	ev.Ingest(invalidSmokeReading(testBase.Add(2*time.Second)))
	ev.Ingest(invalidSmokeReading(testBase.Add(3*time.Second)))

	require.Len(t, *verdicts, 2)
	v := (*verdicts)[1]
	require.Equal(t, model.LevelUnknown, v.Level)
	require.Equal(t, model.LevelCritical, v.PreviousLevel)
	require.False(t, v.ActuationRequired)
	require.False(t, v.CriticalExit())
}

func TestRecoveryFromUnknown(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(invalidSmokeReading(testBase))
	ev.Ingest(invalidSmokeReading(testBase.Add(time.Second)))
	require.Len(t, *verdicts, 1)
	require.Equal(t, model.LevelUnknown, ev.State().CurrentLevel)

	ev.Ingest(smokeReading(0.2, testBase.Add(2*time.Second)))
	ev.Ingest(smokeReading(0.2, testBase.Add(3*time.Second)))

	require.Len(t, *verdicts, 2)
	require.Equal(t, model.LevelNormal, (*verdicts)[1].Level)
	require.False(t, (*verdicts)[1].ActuationRequired)
}

func TestStaleReadingTreatedAsInvalid(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	// Timestamps far behind the pinned wall clock: critical values, but too
	// old to act on.
	stale := testBase.Add(-5 * time.Minute)
	ev.Ingest(smokeReading(0.95, stale))
	ev.Ingest(smokeReading(0.95, stale.Add(time.Second)))
	ev.Ingest(smokeReading(0.95, stale.Add(2*time.Second)))

	for _, v := range *verdicts {
		require.NotEqual(t, model.LevelCritical, v.Level)
		require.False(t, v.ActuationRequired)
	}
	require.NotEqual(t, model.LevelCritical, ev.State().CurrentLevel)
}

func TestSweepRetiresSilentChannels(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.2, testBase))

	// Two sweeps past the staleness cutoff: the first starts the Unknown
	// debounce, the second confirms it.
	ev.Sweep(testBase.Add(40 * time.Second))
	ev.Sweep(testBase.Add(42 * time.Second))

	require.Len(t, *verdicts, 1)
	require.Equal(t, model.LevelUnknown, (*verdicts)[0].Level)
	require.Equal(t, model.LevelUnknown, ev.State().CurrentLevel)
}

func TestHighestSeverityAmongSensorsWins(t *testing.T) {
	ev, verdicts := newTestEvaluator(t, model.SensorSmoke, model.SensorCO2)

	co2 := func(value float64, at time.Time) model.NormalizedReading {
		return model.NormalizedReading{
			ChannelID:  "co2-ch",
			ZoneID:     "room-a",
			SensorType: model.SensorCO2,
			Value:      value,
			Valid:      true,
			Timestamp:  at,
		}
	}

	// Smoke stays normal, CO2 rises to critical. CO2's own debounce (2s)
	// governs the confirmation.
	ev.Ingest(smokeReading(0.2, testBase))
	ev.Ingest(co2(2100, testBase.Add(time.Second)))
	ev.Ingest(co2(2100, testBase.Add(2*time.Second)))
	require.Empty(t, *verdicts)
	ev.Ingest(co2(2100, testBase.Add(3*time.Second)))

	require.Len(t, *verdicts, 1)
	v := (*verdicts)[0]
	require.Equal(t, model.LevelCritical, v.Level)
	require.Equal(t, model.SensorCO2, v.TriggeringSensorType)
}

func TestZonesEvaluateIndependently(t *testing.T) {
	policies := map[model.SensorType]model.ThresholdPolicy{model.SensorSmoke: smokePolicy()}
	store := NewPolicyStore(policies)

	mkZone := func(id string) (*ZoneEvaluator, *[]model.Verdict) {
		var mu sync.Mutex
		verdicts := &[]model.Verdict{}
		ev := NewZoneEvaluator(id, []model.SensorChannel{
			{ID: id + "-smoke", ZoneID: id, Type: model.SensorSmoke, DomainMax: 100},
		}, store, 30*time.Second, func(v model.Verdict) {
			mu.Lock()
			*verdicts = append(*verdicts, v)
			mu.Unlock()
		})
		ev.now = func() time.Time { return testBase }
		return ev, verdicts
	}

	evA, verdictsA := mkZone("room-a")
	evB, verdictsB := mkZone("room-b")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			evA.Ingest(model.NormalizedReading{
				ChannelID: "room-a-smoke", ZoneID: "room-a", SensorType: model.SensorSmoke,
				Value: 0.95, Valid: true, Timestamp: testBase.Add(time.Duration(i) * time.Second),
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			evB.Ingest(model.NormalizedReading{
				ChannelID: "room-b-smoke", ZoneID: "room-b", SensorType: model.SensorSmoke,
				Value: 0.2, Valid: true, Timestamp: testBase.Add(time.Duration(i) * time.Second),
			})
		}
	}()
	wg.Wait()

	require.Len(t, *verdictsA, 1)
	require.Equal(t, model.LevelCritical, (*verdictsA)[0].Level)
	require.Equal(t, "room-a", (*verdictsA)[0].ZoneID)
	require.Empty(t, *verdictsB)
	require.Equal(t, model.LevelNormal, evB.State().CurrentLevel)
}

func TestSnapshotKeepsLastGoodValues(t *testing.T) {
	ev, _ := newTestEvaluator(t, model.SensorSmoke)

	ev.Ingest(smokeReading(0.42, testBase))
	ev.Ingest(invalidSmokeReading(testBase.Add(time.Second)))

	rec := ev.Snapshot(testBase.Add(2 * time.Second))
	require.Equal(t, "room-a", rec.ZoneID)
	snap, ok := rec.Readings[model.SensorSmoke]
	require.True(t, ok)
	require.Equal(t, 0.42, snap.Value)
	require.False(t, snap.Observed)
}
