package entities

import "time"

// ThresholdPolicy holds the alarm thresholds for one sensor type.
// Loaded once at startup and shared read-only across zone evaluators.
type ThresholdPolicy struct {
	SensorType SensorType `json:"sensor_type" yaml:"sensor_type"`
	// WarningLevel and CriticalLevel are escalation thresholds in the
	// channel's physical unit. Escalation compares against these directly.
	WarningLevel  float64 `json:"warning_level" yaml:"warning_level"`
	CriticalLevel float64 `json:"critical_level" yaml:"critical_level"`
	// HysteresisMargin is subtracted from the escalation threshold before a
	// level may de-escalate, so a reading dithering on the boundary cannot
	// flap the zone status.
	HysteresisMargin float64 `json:"hysteresis_margin" yaml:"hysteresis_margin"`
	// DebounceDuration is how long a candidate level must persist before the
	// transition is confirmed.
	DebounceDuration time.Duration `json:"debounce_duration" yaml:"debounce_duration"`
}

// LevelFor computes the candidate level for value given the previous candidate
// of the same sensor type. Escalation uses the raw thresholds; de-escalation
// must clear the threshold minus the hysteresis margin.
func (p ThresholdPolicy) LevelFor(value float64, prev Level) Level {
	switch {
	case value >= p.CriticalLevel:
		return LevelCritical
	case prev == LevelCritical && value >= p.CriticalLevel-p.HysteresisMargin:
		return LevelCritical
	case value >= p.WarningLevel:
		return LevelWarning
	case prev.Severity() >= LevelWarning.Severity() && value >= p.WarningLevel-p.HysteresisMargin:
		return LevelWarning
	default:
		return LevelNormal
	}
}
