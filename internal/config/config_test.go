package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firewatch/firewatch/internal/model/entities"
)

const validYAML = `
max_sample_age: 45s
zones:
  - id: room-a
    channels:
      - id: smoke-a1
        sensor_type: smoke
        unit: "%obs/m"
        domain_min: 0
        domain_max: 100
      - id: co2-a1
        sensor_type: co2
        unit: ppm
        domain_min: 350
        domain_max: 3000
        scale: 2
        offset: -50
policies:
  - sensor_type: smoke
    warning_level: 60
    critical_level: 65
    hysteresis_margin: 5
    debounce_duration: 3s
  - sensor_type: co2
    warning_level: 1500
    critical_level: 2000
    hysteresis_margin: 100
    debounce_duration: 5s
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firewatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	require.Equal(t, 45*time.Second, cfg.SampleMaxAge())
	require.Len(t, cfg.Zones, 1)

	channels := cfg.Channels()
	require.Len(t, channels, 2)
	// zone id is stamped onto every channel, scale defaults to identity
	require.Equal(t, "room-a", channels["smoke-a1"].ZoneID)
	require.Equal(t, 1.0, channels["smoke-a1"].Scale)
	require.Equal(t, 2.0, channels["co2-a1"].Scale)

	policies := cfg.PolicyTable()
	require.Len(t, policies, 2)
	require.Equal(t, 3*time.Second, policies[entities.SensorSmoke].DebounceDuration)
	require.Equal(t, 2000.0, policies[entities.SensorCO2].CriticalLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsMissingPolicy(t *testing.T) {
	yaml := `
zones:
  - id: room-a
    channels:
      - id: fire-a1
        sensor_type: fire
        domain_min: 20
        domain_max: 120
policies:
  - sensor_type: smoke
    warning_level: 60
    critical_level: 65
    debounce_duration: 3s
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.ErrorContains(t, err, "no policy configured")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	yaml := `
zones:
  - id: room-a
    channels:
      - id: smoke-a1
        sensor_type: smoke
        domain_min: 0
        domain_max: 100
policies:
  - sensor_type: smoke
    warning_level: 70
    critical_level: 60
    debounce_duration: 3s
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.ErrorContains(t, err, "must exceed warning_level")
}

func TestValidateRejectsDuplicateChannel(t *testing.T) {
	yaml := `
zones:
  - id: room-a
    channels:
      - id: smoke-1
        sensor_type: smoke
        domain_min: 0
        domain_max: 100
  - id: room-b
    channels:
      - id: smoke-1
        sensor_type: smoke
        domain_min: 0
        domain_max: 100
policies:
  - sensor_type: smoke
    warning_level: 60
    critical_level: 65
    debounce_duration: 3s
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.ErrorContains(t, err, "duplicate channel id")
}

func TestValidateRejectsZeroDebounce(t *testing.T) {
	yaml := `
zones:
  - id: room-a
    channels:
      - id: smoke-a1
        sensor_type: smoke
        domain_min: 0
        domain_max: 100
policies:
  - sensor_type: smoke
    warning_level: 60
    critical_level: 65
    debounce_duration: 0s
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.ErrorContains(t, err, "debounce_duration must be positive")
}

func TestValidateDefaultsMaxSampleAge(t *testing.T) {
	yaml := `
zones:
  - id: room-a
    channels:
      - id: smoke-a1
        sensor_type: smoke
        domain_min: 0
        domain_max: 100
policies:
  - sensor_type: smoke
    warning_level: 60
    critical_level: 65
    debounce_duration: 3s
`
	cfg, err := Load(writeConfig(t, yaml))
	require.NoError(t, err)
	require.Equal(t, DefaultMaxSampleAge, cfg.SampleMaxAge())
}
