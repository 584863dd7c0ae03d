package model

import (
	"github.com/firewatch/firewatch/internal/model/entities"
	"github.com/firewatch/firewatch/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	SensorType           = entities.SensorType
	SensorChannel        = entities.SensorChannel
	Level                = entities.Level
	ThresholdPolicy      = entities.ThresholdPolicy
	ZoneState            = entities.ZoneState
	RawSample            = messages.RawSample
	NormalizedReading    = messages.NormalizedReading
	Verdict              = messages.Verdict
	TelemetryRecord      = messages.TelemetryRecord
	ReadingSnapshot      = messages.ReadingSnapshot
	ActuationAction      = messages.ActuationAction
	ActuationResultEvent = messages.ActuationResultEvent
	AlertEvent           = messages.AlertEvent
	ControlCommand       = messages.ControlCommand
)

const (
	SensorSmoke      = entities.SensorSmoke
	SensorCO2        = entities.SensorCO2
	SensorFire       = entities.SensorFire
	SensorEngineTemp = entities.SensorEngineTemp

	LevelUnknown  = entities.LevelUnknown
	LevelNormal   = entities.LevelNormal
	LevelWarning  = entities.LevelWarning
	LevelCritical = entities.LevelCritical

	ActionActivate = messages.ActionActivate
	ActionRelease  = messages.ActionRelease
	TargetWater    = messages.TargetWater

	AlertActuatorUnreachable = messages.AlertActuatorUnreachable
)

// SensorTypes re-exports the stable type ordering.
var SensorTypes = entities.SensorTypes
