// Package actuator hosts the suppression hardware endpoint: a gRPC service
// that flips the water valve for its zones and reports every command outcome
// on the event bus.
package actuator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/firewatch/firewatch/grpc/gen/go/actuatorpb"
	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/model"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

// PublisherFactory creates a publisher bound to a topic.
type PublisherFactory func(topic string) mqttbus.IPublisher

// GrpcHandler implements the Actuator service for a fixed set of zones.
// Commands are idempotent: re-activating an active valve or re-releasing an
// idle one succeeds without touching hardware, so QoS1 redeliveries and
// dispatcher retries are harmless.
type GrpcHandler struct {
	pb.UnimplementedActuatorServer

	makePublisher   PublisherFactory
	resultTopicTmpl string // "event/actuationResult/{zone}"

	mu     sync.Mutex
	zones  map[string]bool // zone -> valve currently open
	driver Driver
}

// Driver abstracts the physical valve. The default implementation only logs;
// deployments wire in the real GPIO driver.
type Driver interface {
	Open(zone string) error
	Close(zone string) error
}

type logDriver struct{}

func (logDriver) Open(zone string) error {
	logger.Logger().Infow("valve open", "zone", zone)
	return nil
}

func (logDriver) Close(zone string) error {
	logger.Logger().Infow("valve closed", "zone", zone)
	return nil
}

// NewGrpcHandler builds the handler for the given zones.
func NewGrpcHandler(factory PublisherFactory, zones []string) *GrpcHandler {
	m := make(map[string]bool, len(zones))
	for _, z := range zones {
		m[z] = false
	}
	return &GrpcHandler{
		makePublisher:   factory,
		resultTopicTmpl: "event/actuationResult/{zone}",
		zones:           m,
		driver:          logDriver{},
	}
}

// SetDriver replaces the valve driver. Call before serving.
func (h *GrpcHandler) SetDriver(d Driver) {
	if d != nil {
		h.driver = d
	}
}

func (h *GrpcHandler) Activate(_ context.Context, req *pb.ActivateRequest) (*pb.CommandResponse, error) {
	zone := strings.TrimSpace(req.GetZoneId())
	if zone == "" {
		return nil, status.Error(codes.InvalidArgument, "zone_id is required")
	}
	if req.GetTarget() != model.TargetWater {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported target %q", req.GetTarget())
	}

	h.mu.Lock()
	active, known := h.zones[zone]
	if !known {
		h.mu.Unlock()
		return nil, status.Errorf(codes.NotFound, "zone %q is not served by this actuator", zone)
	}
	if active {
		h.mu.Unlock()
		return &pb.CommandResponse{
			Success: true,
			Message: fmt.Sprintf("suppression already active in %s", zone),
		}, nil
	}
	err := h.driver.Open(zone)
	if err == nil {
		h.zones[zone] = true
	}
	h.mu.Unlock()

	ticket := uuid.New().String()
	if err != nil {
		h.publishResult(zone, model.ActionActivate, ticket, "FAIL", err.Error())
		return &pb.CommandResponse{Success: false, Message: "valve open failed", TicketId: ticket}, nil
	}

	logger.Logger().Infow("suppression activated",
		"zone", zone, "level", req.GetVerdictLevel(), "ticket", ticket)
	h.publishResult(zone, model.ActionActivate, ticket, "OK", "")
	return &pb.CommandResponse{
		Success:  true,
		Message:  fmt.Sprintf("suppression activated in %s", zone),
		TicketId: ticket,
	}, nil
}

func (h *GrpcHandler) Release(_ context.Context, req *pb.ReleaseRequest) (*pb.CommandResponse, error) {
	zone := strings.TrimSpace(req.GetZoneId())
	if zone == "" {
		return nil, status.Error(codes.InvalidArgument, "zone_id is required")
	}
	if req.GetTarget() != model.TargetWater {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported target %q", req.GetTarget())
	}

	h.mu.Lock()
	active, known := h.zones[zone]
	if !known {
		h.mu.Unlock()
		return nil, status.Errorf(codes.NotFound, "zone %q is not served by this actuator", zone)
	}
	if !active {
		h.mu.Unlock()
		return &pb.CommandResponse{
			Success: true,
			Message: fmt.Sprintf("suppression already released in %s", zone),
		}, nil
	}
	err := h.driver.Close(zone)
	if err == nil {
		h.zones[zone] = false
	}
	h.mu.Unlock()

	ticket := uuid.New().String()
	if err != nil {
		h.publishResult(zone, model.ActionRelease, ticket, "FAIL", err.Error())
		return &pb.CommandResponse{Success: false, Message: "valve close failed", TicketId: ticket}, nil
	}

	logger.Logger().Infow("suppression released", "zone", zone, "ticket", ticket)
	h.publishResult(zone, model.ActionRelease, ticket, "OK", "")
	return &pb.CommandResponse{
		Success:  true,
		Message:  fmt.Sprintf("suppression released in %s", zone),
		TicketId: ticket,
	}, nil
}

// Active reports the valve state for a zone.
func (h *GrpcHandler) Active(zone string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.zones[zone]
}

func (h *GrpcHandler) publishResult(zone string, action model.ActuationAction, ticket, result, reason string) {
	evt := model.ActuationResultEvent{
		ZoneID:    zone,
		Action:    action,
		Target:    model.TargetWater,
		TicketID:  ticket,
		Status:    result,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	b, _ := json.Marshal(evt)
	topic := strings.ReplaceAll(h.resultTopicTmpl, "{zone}", zone)
	if err := h.makePublisher(topic).PublishToQos(topic, mqttbus.QosFor(topic), false, string(b)); err != nil {
		logger.Logger().Errorw("publish actuation result", "topic", topic, "err", err)
	}
}
