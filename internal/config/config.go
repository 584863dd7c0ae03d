// Package config loads and validates the firewatch deployment configuration:
// monitored zones, the channels wired into each zone, and the per-sensor-type
// threshold policies. The process must not start with an incomplete
// configuration, so every problem found here is fatal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/firewatch/firewatch/internal/model/entities"
)

const (
	// DefaultConfigFilename is used when no path is given.
	DefaultConfigFilename = "firewatch.yaml"

	// DefaultMaxSampleAge applies when max_sample_age is omitted.
	DefaultMaxSampleAge = 30 * time.Second
)

// ConfigError marks a missing or invalid policy/channel mapping. It is fatal
// at startup, never at first reading.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string { return "config: " + e.Detail }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Detail: fmt.Sprintf(format, args...)}
}

// duration accepts "2s"-style strings in YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = duration(parsed)
	return nil
}

// ZoneConfig enumerates the channels wired into one physical zone.
type ZoneConfig struct {
	ID       string                   `yaml:"id"`
	Channels []entities.SensorChannel `yaml:"channels"`
}

type policyConfig struct {
	SensorType       entities.SensorType `yaml:"sensor_type"`
	WarningLevel     float64             `yaml:"warning_level"`
	CriticalLevel    float64             `yaml:"critical_level"`
	HysteresisMargin float64             `yaml:"hysteresis_margin"`
	DebounceDuration duration            `yaml:"debounce_duration"`
}

// Config is the full deployment configuration, read-only after Load.
type Config struct {
	MaxSampleAge duration       `yaml:"max_sample_age"`
	Zones        []ZoneConfig   `yaml:"zones"`
	Policies     []policyConfig `yaml:"policies"`
}

// Load reads the configuration from path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks zones, channels and policies for completeness. Every sensor
// type present in the deployed channel list must have a policy.
func Validate(cfg *Config) error {
	if cfg == nil {
		return configErrorf("configuration is not set")
	}
	if len(cfg.Zones) == 0 {
		return configErrorf("no zones configured")
	}
	if cfg.MaxSampleAge <= 0 {
		cfg.MaxSampleAge = duration(DefaultMaxSampleAge)
	}

	policies := make(map[entities.SensorType]policyConfig, len(cfg.Policies))
	for _, p := range cfg.Policies {
		if !p.SensorType.Valid() {
			return configErrorf("policy for unknown sensor type %q", p.SensorType)
		}
		if _, dup := policies[p.SensorType]; dup {
			return configErrorf("duplicate policy for sensor type %q", p.SensorType)
		}
		if p.CriticalLevel <= p.WarningLevel {
			return configErrorf("policy %s: critical_level %.2f must exceed warning_level %.2f",
				p.SensorType, p.CriticalLevel, p.WarningLevel)
		}
		if p.HysteresisMargin < 0 {
			return configErrorf("policy %s: hysteresis_margin must not be negative", p.SensorType)
		}
		if p.DebounceDuration <= 0 {
			return configErrorf("policy %s: debounce_duration must be positive", p.SensorType)
		}
		policies[p.SensorType] = p
	}

	zoneIDs := make(map[string]struct{}, len(cfg.Zones))
	channelIDs := make(map[string]struct{})
	for zi := range cfg.Zones {
		zone := &cfg.Zones[zi]
		if zone.ID == "" {
			return configErrorf("zone without id")
		}
		if _, dup := zoneIDs[zone.ID]; dup {
			return configErrorf("duplicate zone id %q", zone.ID)
		}
		zoneIDs[zone.ID] = struct{}{}

		if len(zone.Channels) == 0 {
			return configErrorf("zone %s has no channels", zone.ID)
		}
		for ci := range zone.Channels {
			ch := &zone.Channels[ci]
			if ch.ID == "" {
				return configErrorf("zone %s: channel without id", zone.ID)
			}
			if _, dup := channelIDs[ch.ID]; dup {
				return configErrorf("duplicate channel id %q", ch.ID)
			}
			channelIDs[ch.ID] = struct{}{}
			if !ch.Type.Valid() {
				return configErrorf("channel %s: unknown sensor type %q", ch.ID, ch.Type)
			}
			if _, ok := policies[ch.Type]; !ok {
				return configErrorf("no policy configured for sensor type %q (channel %s)", ch.Type, ch.ID)
			}
			if ch.DomainMax <= ch.DomainMin {
				return configErrorf("channel %s: domain_max %.2f must exceed domain_min %.2f",
					ch.ID, ch.DomainMax, ch.DomainMin)
			}
			if ch.Scale == 0 {
				ch.Scale = 1
			}
			ch.ZoneID = zone.ID
		}
	}
	return nil
}

// SampleMaxAge returns the configured staleness cutoff.
func (c *Config) SampleMaxAge() time.Duration { return time.Duration(c.MaxSampleAge) }

// PolicyTable materializes the per-type policies as shared entities.
func (c *Config) PolicyTable() map[entities.SensorType]entities.ThresholdPolicy {
	out := make(map[entities.SensorType]entities.ThresholdPolicy, len(c.Policies))
	for _, p := range c.Policies {
		out[p.SensorType] = entities.ThresholdPolicy{
			SensorType:       p.SensorType,
			WarningLevel:     p.WarningLevel,
			CriticalLevel:    p.CriticalLevel,
			HysteresisMargin: p.HysteresisMargin,
			DebounceDuration: time.Duration(p.DebounceDuration),
		}
	}
	return out
}

// Channels flattens every configured channel keyed by channel id.
func (c *Config) Channels() map[string]entities.SensorChannel {
	out := make(map[string]entities.SensorChannel)
	for _, z := range c.Zones {
		for _, ch := range z.Channels {
			out[ch.ID] = ch
		}
	}
	return out
}
