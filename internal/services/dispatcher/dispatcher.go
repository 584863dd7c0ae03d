// Package dispatcher consumes confirmed zone verdicts and fans them out:
// every verdict is published for telemetry, actuation-relevant ones are
// forwarded to the zone's actuator over gRPC with bounded retries.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/protobuf/types/known/timestamppb"

	pb "github.com/firewatch/firewatch/grpc/gen/go/actuatorpb"
	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/model"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

const (
	defaultQueueSize   = 64
	defaultCallTimeout = 5 * time.Second
	defaultMaxRetries  = 4

	verdictTopicTmpl = "telemetry/verdict/{zone}"
	alertTopicTmpl   = "event/alert/{zone}"
)

var (
	verdictsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firewatch_verdicts_dispatched_total",
		Help: "Verdicts taken off the queue and processed, by zone.",
	}, []string{"zone"})
	verdictsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "firewatch_verdicts_dropped_total",
		Help: "Informational verdicts dropped because the queue was full.",
	})
	actuationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "firewatch_actuation_retries_total",
		Help: "Retried actuator gRPC calls.",
	})
	actuationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firewatch_actuation_failures_total",
		Help: "Actuator commands abandoned after all retries, by zone.",
	}, []string{"zone"})
)

// ActuatorRouter exposes one gRPC client per zone.
type ActuatorRouter interface {
	Get(zone string) (pb.ActuatorClient, bool)
	Close()
}

// Dispatcher serializes verdict handling on a bounded queue so a slow
// actuator call never blocks the evaluators.
type Dispatcher struct {
	queue       chan model.Verdict
	publisher   mqttbus.IPublisher
	router      ActuatorRouter
	callTimeout time.Duration
	maxRetries  uint64
}

// Option tweaks a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithQueueSize overrides the verdict queue capacity.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan model.Verdict, n)
		}
	}
}

// WithCallTimeout overrides the per-attempt actuator call timeout.
func WithCallTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.callTimeout = t
		}
	}
}

// WithMaxRetries overrides the number of retries after the first attempt.
func WithMaxRetries(n uint64) Option {
	return func(d *Dispatcher) { d.maxRetries = n }
}

// NewDispatcher builds a dispatcher over the given publisher and router.
func NewDispatcher(p mqttbus.IPublisher, r ActuatorRouter, opts ...Option) (*Dispatcher, error) {
	if p == nil {
		return nil, fmt.Errorf("dispatcher: publisher is nil")
	}
	if r == nil {
		return nil, fmt.Errorf("dispatcher: actuator router is nil")
	}
	d := &Dispatcher{
		queue:       make(chan model.Verdict, defaultQueueSize),
		publisher:   p,
		router:      r,
		callTimeout: defaultCallTimeout,
		maxRetries:  defaultMaxRetries,
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// Enqueue hands a verdict to the dispatcher. It never blocks the caller:
// when the queue is full, actuation-relevant verdicts are delivered from a
// goroutine, purely informational ones are dropped and counted.
func (d *Dispatcher) Enqueue(v model.Verdict) {
	select {
	case d.queue <- v:
		return
	default:
	}
	if v.ActuationRequired || v.CriticalExit() {
		go func() { d.queue <- v }()
		return
	}
	verdictsDropped.Inc()
	logger.Logger().Warnw("verdict queue full, dropped informational verdict",
		"zone", v.ZoneID, "level", v.Level)
}

// Start consumes the queue until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-d.queue:
			d.handle(ctx, v)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, v model.Verdict) {
	verdictsDispatched.WithLabelValues(v.ZoneID).Inc()
	d.publishVerdict(v)

	switch {
	case v.ActuationRequired:
		d.actuate(ctx, v, model.ActionActivate)
	case v.CriticalExit():
		d.actuate(ctx, v, model.ActionRelease)
	}
}

// publishVerdict is best-effort: telemetry must never gate actuation.
func (d *Dispatcher) publishVerdict(v model.Verdict) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Logger().Errorw("marshal verdict", "zone", v.ZoneID, "err", err)
		return
	}
	topic := strings.ReplaceAll(verdictTopicTmpl, "{zone}", v.ZoneID)
	if err := d.publisher.PublishToQos(topic, mqttbus.QosFor(topic), false, string(b)); err != nil {
		logger.Logger().Errorw("publish verdict", "topic", topic, "err", err)
	}
}

func (d *Dispatcher) actuate(ctx context.Context, v model.Verdict, action model.ActuationAction) {
	cli, ok := d.router.Get(v.ZoneID)
	if !ok {
		logger.Logger().Errorw("no actuator client for zone", "zone", v.ZoneID)
		d.publishAlert(v.ZoneID, model.AlertActuatorUnreachable,
			fmt.Sprintf("no actuator endpoint configured for zone %s", v.ZoneID))
		return
	}

	call := func() error {
		cctx, cancel := context.WithTimeout(ctx, d.callTimeout)
		defer cancel()

		var (
			resp *pb.CommandResponse
			err  error
		)
		switch action {
		case model.ActionActivate:
			resp, err = cli.Activate(cctx, &pb.ActivateRequest{
				ZoneId:       v.ZoneID,
				Target:       model.TargetWater,
				VerdictLevel: v.Level.String(),
				IssuedAt:     timestamppb.New(v.Timestamp),
			})
		case model.ActionRelease:
			resp, err = cli.Release(cctx, &pb.ReleaseRequest{
				ZoneId:   v.ZoneID,
				Target:   model.TargetWater,
				IssuedAt: timestamppb.New(v.Timestamp),
			})
		default:
			return backoff.Permanent(fmt.Errorf("unknown actuation action %q", action))
		}
		if err != nil {
			return err
		}
		if !resp.GetSuccess() {
			return fmt.Errorf("actuator refused %s: %s", action, resp.GetMessage())
		}
		logger.Logger().Infow("actuator command accepted",
			"zone", v.ZoneID, "action", action, "ticket", resp.GetTicketId())
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.maxRetries), ctx)
	err := backoff.RetryNotify(call, bo, func(err error, next time.Duration) {
		actuationRetries.Inc()
		logger.Logger().Warnw("actuator call failed, retrying",
			"zone", v.ZoneID, "action", action, "retry_in", next, "err", err)
	})
	if err != nil {
		actuationFailures.WithLabelValues(v.ZoneID).Inc()
		logger.Logger().Errorw("actuator unreachable, giving up",
			"zone", v.ZoneID, "action", action, "err", err)
		d.publishAlert(v.ZoneID, model.AlertActuatorUnreachable,
			fmt.Sprintf("%s command failed after retries: %v", action, err))
	}
}

func (d *Dispatcher) publishAlert(zoneID, kind, detail string) {
	evt := model.AlertEvent{
		ZoneID:    zoneID,
		Kind:      kind,
		Severity:  "critical",
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}
	b, _ := json.Marshal(evt)
	topic := strings.ReplaceAll(alertTopicTmpl, "{zone}", zoneID)
	if err := d.publisher.PublishToQos(topic, mqttbus.QosFor(topic), false, string(b)); err != nil {
		logger.Logger().Errorw("publish alert", "topic", topic, "err", err)
	}
}
