package sensor_simulator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/model"
	"github.com/firewatch/firewatch/pkg/dedup"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

// ZoneSimulator publishes synthetic raw samples for one zone's channels and
// obeys control commands arriving on the control topic.
type ZoneSimulator struct {
	mu        sync.Mutex
	zoneID    string
	channels  []model.SensorChannel
	seq       uint64
	paused    bool
	generator *DataGenerator
	publisher mqttbus.IPublisher
	consumer  mqttbus.IConsumer[model.ControlCommand]
	deduper   *dedup.Deduper

	dataTopicTmpl string // "sensor/data/{zone}/{channel}"
}

// NewZoneSimulator wires the simulator for one zone.
func NewZoneSimulator(
	consumer mqttbus.IConsumer[model.ControlCommand],
	publisher mqttbus.IPublisher,
	gen *DataGenerator,
	zoneID string,
	channels []model.SensorChannel,
) *ZoneSimulator {
	return &ZoneSimulator{
		zoneID:        zoneID,
		channels:      channels,
		generator:     gen,
		publisher:     publisher,
		consumer:      consumer,
		deduper:       dedup.New(2*time.Minute, 10000),
		dataTopicTmpl: "sensor/data/{zone}/{channel}",
	}
}

// Start publishes one sample per channel every interval until ctx is
// cancelled. Control commands are handled concurrently.
func (s *ZoneSimulator) Start(ctx context.Context, interval time.Duration) {
	s.consumer.SetHandler(s.handleControl)
	go s.consumer.ConsumeMessage(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-ticker.C:
			s.publishTick()
		}
	}
}

func (s *ZoneSimulator) publishTick() {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	values := s.generator.Tick()
	now := time.Now().UTC()

	for _, ch := range s.channels {
		s.mu.Lock()
		s.seq++
		seq := s.seq
		s.mu.Unlock()

		sample := model.RawSample{
			ChannelID: ch.ID,
			ZoneID:    s.zoneID,
			RawValue:  values[ch.ID],
			Seq:       seq,
			Timestamp: now,
		}
		payload, _ := json.Marshal(sample)
		topic := strings.NewReplacer("{zone}", s.zoneID, "{channel}", ch.ID).
			Replace(s.dataTopicTmpl)
		if err := s.publisher.PublishToQos(topic, mqttbus.QosFor(topic), false, string(payload)); err != nil {
			logger.Logger().Errorf("publish sample on %s: %v", topic, err)
		}
	}
}

func (s *ZoneSimulator) handleControl(_ string, msg mqtt.Message) error {
	// QoS1 redeliveries carry an identical payload, same hash.
	h := sha256.Sum256(msg.Payload())
	if s.deduper != nil && !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var cmd model.ControlCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		return fmt.Errorf("invalid control command: %w", err)
	}

	// A command may target one zone via params; no zone means broadcast.
	if z := cmd.Params["zone"]; z != "" && z != s.zoneID {
		return nil
	}

	switch strings.ToUpper(cmd.Command) {
	case "PAUSE":
		s.mu.Lock()
		s.paused = true
		s.mu.Unlock()
		logger.Logger().Infow("simulator paused", "zone", s.zoneID)
	case "RESUME":
		s.mu.Lock()
		s.paused = false
		s.mu.Unlock()
		logger.Logger().Infow("simulator resumed", "zone", s.zoneID)
	case "SCENARIO":
		name := scenarioName(strings.ToLower(cmd.Params["name"]))
		switch name {
		case ScenarioNormal, ScenarioFire, ScenarioCO2High, ScenarioEngineOn:
			s.generator.SetScenario(name)
			logger.Logger().Infow("scenario switched", "zone", s.zoneID, "scenario", name)
		default:
			logger.Logger().Warnw("unknown scenario ignored", "zone", s.zoneID, "scenario", name)
		}
	default:
		logger.Logger().Warnw("unknown control command", "command", cmd.Command)
	}
	return nil
}

// scenarioName accepts legacy per-room drill names ("fire1", "fire2") as the
// fire scenario; room selection is done with the zone param instead.
func scenarioName(name string) string {
	if suffix, ok := strings.CutPrefix(name, ScenarioFire); ok && suffix != "" {
		if _, err := strconv.Atoi(suffix); err == nil {
			return ScenarioFire
		}
	}
	return name
}
