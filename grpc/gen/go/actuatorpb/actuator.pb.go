// Package actuatorpb contains the Go wire types for grpc/proto/actuator.proto.
//
// The bindings are maintained by hand: the messages implement the legacy
// proto.Message interface and carry protobuf struct tags, which the protobuf
// runtime uses to derive the wire format. Keep field numbers in sync with the
// .proto file.
package actuatorpb

import (
	"fmt"

	"google.golang.org/protobuf/types/known/timestamppb"
)

type ActivateRequest struct {
	ZoneId       string                 `protobuf:"bytes,1,opt,name=zone_id,json=zoneId,proto3" json:"zone_id,omitempty"`
	Target       string                 `protobuf:"bytes,2,opt,name=target,proto3" json:"target,omitempty"`
	VerdictLevel string                 `protobuf:"bytes,3,opt,name=verdict_level,json=verdictLevel,proto3" json:"verdict_level,omitempty"`
	IssuedAt     *timestamppb.Timestamp `protobuf:"bytes,4,opt,name=issued_at,json=issuedAt,proto3" json:"issued_at,omitempty"`
}

func (m *ActivateRequest) Reset()         { *m = ActivateRequest{} }
func (m *ActivateRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ActivateRequest) ProtoMessage()    {}

func (m *ActivateRequest) GetZoneId() string {
	if m != nil {
		return m.ZoneId
	}
	return ""
}

func (m *ActivateRequest) GetTarget() string {
	if m != nil {
		return m.Target
	}
	return ""
}

func (m *ActivateRequest) GetVerdictLevel() string {
	if m != nil {
		return m.VerdictLevel
	}
	return ""
}

func (m *ActivateRequest) GetIssuedAt() *timestamppb.Timestamp {
	if m != nil {
		return m.IssuedAt
	}
	return nil
}

type ReleaseRequest struct {
	ZoneId   string                 `protobuf:"bytes,1,opt,name=zone_id,json=zoneId,proto3" json:"zone_id,omitempty"`
	Target   string                 `protobuf:"bytes,2,opt,name=target,proto3" json:"target,omitempty"`
	IssuedAt *timestamppb.Timestamp `protobuf:"bytes,3,opt,name=issued_at,json=issuedAt,proto3" json:"issued_at,omitempty"`
}

func (m *ReleaseRequest) Reset()         { *m = ReleaseRequest{} }
func (m *ReleaseRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReleaseRequest) ProtoMessage()    {}

func (m *ReleaseRequest) GetZoneId() string {
	if m != nil {
		return m.ZoneId
	}
	return ""
}

func (m *ReleaseRequest) GetTarget() string {
	if m != nil {
		return m.Target
	}
	return ""
}

func (m *ReleaseRequest) GetIssuedAt() *timestamppb.Timestamp {
	if m != nil {
		return m.IssuedAt
	}
	return nil
}

type CommandResponse struct {
	Success  bool   `protobuf:"varint,1,opt,name=success,proto3" json:"success,omitempty"`
	Message  string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	TicketId string `protobuf:"bytes,3,opt,name=ticket_id,json=ticketId,proto3" json:"ticket_id,omitempty"`
}

func (m *CommandResponse) Reset()         { *m = CommandResponse{} }
func (m *CommandResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandResponse) ProtoMessage()    {}

func (m *CommandResponse) GetSuccess() bool {
	if m != nil {
		return m.Success
	}
	return false
}

func (m *CommandResponse) GetMessage() string {
	if m != nil {
		return m.Message
	}
	return ""
}

func (m *CommandResponse) GetTicketId() string {
	if m != nil {
		return m.TicketId
	}
	return ""
}
