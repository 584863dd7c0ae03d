package dispatcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	pb "github.com/firewatch/firewatch/grpc/gen/go/actuatorpb"
	"github.com/firewatch/firewatch/internal/model"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages map[string][]string // topic -> payloads
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(map[string][]string)}
}

func (p *fakePublisher) PublishMessage(payload string) error {
	return p.PublishToQos("default", 0, false, payload)
}

func (p *fakePublisher) PublishToQos(topic string, _ byte, _ bool, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[topic] = append(p.messages[topic], payload)
	return nil
}

func (p *fakePublisher) Close() {}

func (p *fakePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for t := range p.messages {
		out = append(out, t)
	}
	return out
}

func (p *fakePublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[topic])
}

type fakeActuatorClient struct {
	mu        sync.Mutex
	activates int
	releases  int
	fail      bool
}

func (c *fakeActuatorClient) Activate(_ context.Context, _ *pb.ActivateRequest, _ ...grpc.CallOption) (*pb.CommandResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activates++
	if c.fail {
		return nil, errors.New("valve offline")
	}
	return &pb.CommandResponse{Success: true, TicketId: "t-1"}, nil
}

func (c *fakeActuatorClient) Release(_ context.Context, _ *pb.ReleaseRequest, _ ...grpc.CallOption) (*pb.CommandResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
	if c.fail {
		return nil, errors.New("valve offline")
	}
	return &pb.CommandResponse{Success: true, TicketId: "t-2"}, nil
}

func (c *fakeActuatorClient) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activates, c.releases
}

type fakeRouter struct {
	clients map[string]pb.ActuatorClient
}

func (r *fakeRouter) Get(zone string) (pb.ActuatorClient, bool) {
	cli, ok := r.clients[zone]
	return cli, ok
}

func (r *fakeRouter) Close() {}

func criticalVerdict(zone string) model.Verdict {
	return model.Verdict{
		ZoneID:               zone,
		Level:                model.LevelCritical,
		PreviousLevel:        model.LevelNormal,
		TriggeringSensorType: model.SensorSmoke,
		ActuationRequired:    true,
		Timestamp:            time.Now().UTC(),
	}
}

func TestHandleActivatesOnCriticalEntry(t *testing.T) {
	pub := newFakePublisher()
	cli := &fakeActuatorClient{}
	d, err := NewDispatcher(pub, &fakeRouter{clients: map[string]pb.ActuatorClient{"room-a": cli}},
		WithMaxRetries(0))
	require.NoError(t, err)

	d.handle(context.Background(), criticalVerdict("room-a"))

	activates, releases := cli.counts()
	require.Equal(t, 1, activates)
	require.Equal(t, 0, releases)
	require.Equal(t, 1, pub.count("telemetry/verdict/room-a"))
}

func TestHandleReleasesOnCriticalExit(t *testing.T) {
	pub := newFakePublisher()
	cli := &fakeActuatorClient{}
	d, err := NewDispatcher(pub, &fakeRouter{clients: map[string]pb.ActuatorClient{"room-a": cli}},
		WithMaxRetries(0))
	require.NoError(t, err)

	d.handle(context.Background(), model.Verdict{
		ZoneID:        "room-a",
		Level:         model.LevelNormal,
		PreviousLevel: model.LevelCritical,
		Timestamp:     time.Now().UTC(),
	})

	activates, releases := cli.counts()
	require.Equal(t, 0, activates)
	require.Equal(t, 1, releases)
}

func TestHandleInformationalVerdictSkipsActuator(t *testing.T) {
	pub := newFakePublisher()
	cli := &fakeActuatorClient{}
	d, err := NewDispatcher(pub, &fakeRouter{clients: map[string]pb.ActuatorClient{"room-a": cli}},
		WithMaxRetries(0))
	require.NoError(t, err)

	d.handle(context.Background(), model.Verdict{
		ZoneID:        "room-a",
		Level:         model.LevelWarning,
		PreviousLevel: model.LevelNormal,
		Timestamp:     time.Now().UTC(),
	})

	activates, releases := cli.counts()
	require.Equal(t, 0, activates)
	require.Equal(t, 0, releases)
	// the verdict itself is still published for telemetry
	require.Equal(t, 1, pub.count("telemetry/verdict/room-a"))
}

func TestActuatorFailureRaisesAlert(t *testing.T) {
	pub := newFakePublisher()
	cli := &fakeActuatorClient{fail: true}
	d, err := NewDispatcher(pub, &fakeRouter{clients: map[string]pb.ActuatorClient{"room-a": cli}},
		WithMaxRetries(0), WithCallTimeout(100*time.Millisecond))
	require.NoError(t, err)

	d.handle(context.Background(), criticalVerdict("room-a"))

	require.Equal(t, 1, pub.count("event/alert/room-a"))
	payload := pub.messages["event/alert/room-a"][0]
	require.Contains(t, payload, model.AlertActuatorUnreachable)
}

func TestUnroutedZoneRaisesAlert(t *testing.T) {
	pub := newFakePublisher()
	d, err := NewDispatcher(pub, &fakeRouter{clients: map[string]pb.ActuatorClient{}},
		WithMaxRetries(0))
	require.NoError(t, err)

	d.handle(context.Background(), criticalVerdict("room-z"))

	require.Equal(t, 1, pub.count("event/alert/room-z"))
}

func TestEnqueueNeverDropsSafetyVerdicts(t *testing.T) {
	pub := newFakePublisher()
	cli := &fakeActuatorClient{}
	d, err := NewDispatcher(pub, &fakeRouter{clients: map[string]pb.ActuatorClient{"room-a": cli}},
		WithQueueSize(1), WithMaxRetries(0))
	require.NoError(t, err)

	// Fill the queue with an informational verdict, then enqueue a safety
	// one: it must be delivered once the consumer catches up.
	d.Enqueue(model.Verdict{ZoneID: "room-a", Level: model.LevelWarning, PreviousLevel: model.LevelNormal})
	d.Enqueue(criticalVerdict("room-a"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	require.Eventually(t, func() bool {
		activates, _ := cli.counts()
		return activates == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestVerdictTopicPerZone(t *testing.T) {
	pub := newFakePublisher()
	cli := &fakeActuatorClient{}
	router := &fakeRouter{clients: map[string]pb.ActuatorClient{"room-a": cli, "room-b": cli}}
	d, err := NewDispatcher(pub, router, WithMaxRetries(0))
	require.NoError(t, err)

	d.handle(context.Background(), criticalVerdict("room-a"))
	d.handle(context.Background(), criticalVerdict("room-b"))

	topics := pub.topics()
	require.Contains(t, topics, "telemetry/verdict/room-a")
	require.Contains(t, topics, "telemetry/verdict/room-b")
	for _, topic := range topics {
		require.False(t, strings.Contains(topic, "{zone}"))
	}
}
