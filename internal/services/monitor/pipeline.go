// Package monitor wires the ingest pipeline: raw samples arrive over MQTT,
// are normalized into physical units, and are routed to the owning zone's
// evaluator. Each zone is served by exactly one goroutine, so evaluation
// order within a zone matches arrival order.
package monitor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/firewatch/firewatch/internal/config"
	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/model"
	"github.com/firewatch/firewatch/internal/services/calibration"
	"github.com/firewatch/firewatch/internal/services/dispatcher"
	"github.com/firewatch/firewatch/internal/services/evaluator"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

const (
	defaultSweepInterval    = 5 * time.Second
	defaultSnapshotInterval = 10 * time.Second
	zoneQueueSize           = 256

	readingTopicTmpl = "telemetry/reading/{zone}"
)

// Service owns the monitor pipeline for all configured zones.
type Service struct {
	consumer   mqttbus.IConsumer[model.RawSample]
	publisher  mqttbus.IPublisher
	normalizer *calibration.Normalizer
	dispatcher *dispatcher.Dispatcher

	evaluators map[string]*evaluator.ZoneEvaluator
	queues     map[string]chan model.NormalizedReading

	sweepInterval    time.Duration
	snapshotInterval time.Duration
}

// NewService builds the pipeline from the deployment configuration. Verdicts
// confirmed by any zone evaluator are handed to disp.
func NewService(
	cfg *config.Config,
	consumer mqttbus.IConsumer[model.RawSample],
	publisher mqttbus.IPublisher,
	disp *dispatcher.Dispatcher,
) *Service {
	policies := evaluator.NewPolicyStore(cfg.PolicyTable())

	s := &Service{
		consumer:         consumer,
		publisher:        publisher,
		normalizer:       calibration.NewNormalizer(cfg.Channels()),
		dispatcher:       disp,
		evaluators:       make(map[string]*evaluator.ZoneEvaluator, len(cfg.Zones)),
		queues:           make(map[string]chan model.NormalizedReading, len(cfg.Zones)),
		sweepInterval:    defaultSweepInterval,
		snapshotInterval: defaultSnapshotInterval,
	}

	for _, zone := range cfg.Zones {
		s.evaluators[zone.ID] = evaluator.NewZoneEvaluator(
			zone.ID, zone.Channels, policies, cfg.SampleMaxAge(), disp.Enqueue)
		s.queues[zone.ID] = make(chan model.NormalizedReading, zoneQueueSize)
	}
	return s
}

// Start runs the pipeline until ctx is cancelled: one ingest goroutine per
// zone, the MQTT consumer, the dispatcher loop, and the sweep/snapshot
// tickers.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.handleSample)
	go s.consumer.ConsumeMessage(ctx)
	go s.dispatcher.Start(ctx)

	for zoneID, q := range s.queues {
		ev := s.evaluators[zoneID]
		queue := q
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case r := <-queue:
					ev.Ingest(r)
				}
			}
		}()
	}

	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()
	snapshot := time.NewTicker(s.snapshotInterval)
	defer snapshot.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case now := <-sweep.C:
			s.sweepAll(now)
		case now := <-snapshot.C:
			s.publishSnapshots(now)
		}
	}
}

func (s *Service) handleSample(_ string, msg mqtt.Message) error {
	var sample model.RawSample
	if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
		logger.Logger().Warnw("bad raw sample payload", "topic", msg.Topic(), "err", err)
		return nil
	}

	reading := s.normalizer.Normalize(sample)
	if !reading.Valid {
		readingsInvalid.WithLabelValues(orUnknown(reading.ZoneID)).Inc()
	}

	queue, ok := s.queues[reading.ZoneID]
	if !ok {
		logger.Logger().Debugw("sample for unconfigured zone",
			"zone", sample.ZoneID, "channel", sample.ChannelID)
		return nil
	}

	// Invalid readings are still routed: the evaluator uses them to mark the
	// channel unobserved.
	select {
	case queue <- reading:
		readingsProcessed.WithLabelValues(reading.ZoneID).Inc()
	default:
		readingsShed.WithLabelValues(reading.ZoneID).Inc()
	}
	return nil
}

func (s *Service) sweepAll(now time.Time) {
	for zoneID, ev := range s.evaluators {
		ev.Sweep(now)
		zoneLevel.WithLabelValues(zoneID).Set(float64(ev.State().CurrentLevel.Severity()))
	}
}

func (s *Service) publishSnapshots(now time.Time) {
	for zoneID, ev := range s.evaluators {
		rec := ev.Snapshot(now)
		b, err := json.Marshal(rec)
		if err != nil {
			logger.Logger().Errorw("marshal telemetry record", "zone", zoneID, "err", err)
			continue
		}
		topic := strings.ReplaceAll(readingTopicTmpl, "{zone}", zoneID)
		if err := s.publisher.PublishToQos(topic, mqttbus.QosFor(topic), false, string(b)); err != nil {
			logger.Logger().Errorw("publish telemetry record", "topic", topic, "err", err)
		}
	}
}

// ZoneState exposes the confirmed state of one zone, mainly for health
// endpoints and tests.
func (s *Service) ZoneState(zoneID string) (model.ZoneState, bool) {
	ev, ok := s.evaluators[zoneID]
	if !ok {
		return model.ZoneState{}, false
	}
	return ev.State(), true
}

func orUnknown(zone string) string {
	if zone == "" {
		return "unknown"
	}
	return zone
}
