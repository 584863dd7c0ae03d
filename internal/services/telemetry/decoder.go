// Package telemetry archives the cloud-side event stream into InfluxDB and
// exposes the latest zone status over HTTP for the dashboard gateway.
package telemetry

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/firewatch/firewatch/internal/model/messages"
)

// CommonEvent is the shape every archived event is reduced to before it
// becomes an Influx point.
type CommonEvent struct {
	EventType     string // zone.verdict | actuation.result | system.alert | zone.reading
	SourceService string // monitor | actuator | ...
	ZoneID        string
	Severity      string // info|warning|error
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler turns MQTT messages into CommonEvents and hands them to sink.
type MQTTHandler struct{ sink func(CommonEvent) }

func NewMQTTHandler(sink func(CommonEvent)) *MQTTHandler { return &MQTTHandler{sink: sink} }

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	var (
		evt CommonEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, "telemetry/verdict/"):
		evt, err = decodeVerdict(topic, payload)
	case strings.HasPrefix(topic, "event/actuationResult/"):
		evt, err = decodeActuationResult(topic, payload)
	case strings.HasPrefix(topic, "event/alert/"):
		evt, err = decodeAlert(topic, payload)
	case strings.HasPrefix(topic, "telemetry/reading/"):
		evt, err = decodeReading(topic, payload)
	default:
		return nil // other topics are not archived
	}
	if err != nil {
		return err
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func decodeVerdict(topic string, payload []byte) (CommonEvent, error) {
	var v msg.Verdict
	if err := json.Unmarshal(payload, &v); err != nil {
		return CommonEvent{}, err
	}
	zoneID := pickZone(topic, v.ZoneID, "telemetry/verdict/")
	if zoneID == "" {
		return CommonEvent{}, errors.New("verdict: missing zone")
	}
	sev := "info"
	if v.Level == "critical" {
		sev = "error"
	} else if v.Level == "warning" {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "zone.verdict",
		SourceService: "monitor",
		ZoneID:        zoneID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"level":              string(v.Level),
			"previous_level":     string(v.PreviousLevel),
			"trigger":            string(v.TriggeringSensorType),
			"actuation_required": v.ActuationRequired,
		},
		Timestamp: v.Timestamp,
	}, nil
}

func decodeActuationResult(topic string, payload []byte) (CommonEvent, error) {
	var r msg.ActuationResultEvent
	if err := json.Unmarshal(payload, &r); err != nil {
		return CommonEvent{}, err
	}
	zoneID := pickZone(topic, r.ZoneID, "event/actuationResult/")
	if zoneID == "" {
		return CommonEvent{}, errors.New("actuationResult: missing zone")
	}
	sev := "info"
	if strings.EqualFold(r.Status, "FAIL") {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "actuation.result",
		SourceService: "actuator",
		ZoneID:        zoneID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"action":    string(r.Action),
			"target":    r.Target,
			"status":    r.Status,
			"ticket_id": r.TicketID,
			"reason":    r.Reason,
		},
		Timestamp: r.Timestamp,
	}, nil
}

func decodeAlert(topic string, payload []byte) (CommonEvent, error) {
	var a msg.AlertEvent
	if err := json.Unmarshal(payload, &a); err != nil {
		return CommonEvent{}, err
	}
	zoneID := pickZone(topic, a.ZoneID, "event/alert/")
	if zoneID == "" {
		return CommonEvent{}, errors.New("alert: missing zone")
	}
	sev := a.Severity
	if sev == "" {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "system.alert",
		SourceService: "monitor",
		ZoneID:        zoneID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"kind":   a.Kind,
			"detail": a.Detail,
		},
		Timestamp: a.Timestamp,
	}, nil
}

func decodeReading(topic string, payload []byte) (CommonEvent, error) {
	var rec msg.TelemetryRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return CommonEvent{}, err
	}
	zoneID := pickZone(topic, rec.ZoneID, "telemetry/reading/")
	if zoneID == "" {
		return CommonEvent{}, errors.New("reading: missing zone")
	}
	fields := map[string]interface{}{
		"level": string(rec.Level),
	}
	for t, snap := range rec.Readings {
		fields[string(t)] = snap.Value
		fields[string(t)+"_observed"] = snap.Observed
	}
	return CommonEvent{
		EventType:     "zone.reading",
		SourceService: "monitor",
		ZoneID:        zoneID,
		Severity:      "info",
		Fields:        fields,
		Timestamp:     rec.Timestamp,
	}, nil
}

// pickZone uses the payload zone, or the topic "prefix/{zone}".
func pickZone(topic, zoneID, prefix string) string {
	if strings.TrimSpace(zoneID) != "" {
		return zoneID
	}
	suffix := strings.TrimPrefix(topic, prefix)
	parts := strings.Split(suffix, "/")
	if len(parts) >= 1 && parts[0] != "" {
		return parts[0]
	}
	return zoneID
}
