package actuatorpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Actuator_Activate_FullMethodName = "/firewatch.actuator.Actuator/Activate"
	Actuator_Release_FullMethodName  = "/firewatch.actuator.Actuator/Release"
)

// ActuatorClient is the client API for the Actuator service.
type ActuatorClient interface {
	Activate(ctx context.Context, in *ActivateRequest, opts ...grpc.CallOption) (*CommandResponse, error)
	Release(ctx context.Context, in *ReleaseRequest, opts ...grpc.CallOption) (*CommandResponse, error)
}

type actuatorClient struct {
	cc grpc.ClientConnInterface
}

func NewActuatorClient(cc grpc.ClientConnInterface) ActuatorClient {
	return &actuatorClient{cc}
}

func (c *actuatorClient) Activate(ctx context.Context, in *ActivateRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.cc.Invoke(ctx, Actuator_Activate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *actuatorClient) Release(ctx context.Context, in *ReleaseRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.cc.Invoke(ctx, Actuator_Release_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ActuatorServer is the server API for the Actuator service. Implementations
// must embed UnimplementedActuatorServer for forward compatibility.
type ActuatorServer interface {
	Activate(ctx context.Context, in *ActivateRequest) (*CommandResponse, error)
	Release(ctx context.Context, in *ReleaseRequest) (*CommandResponse, error)
	mustEmbedUnimplementedActuatorServer()
}

// UnimplementedActuatorServer must be embedded for forward compatibility.
type UnimplementedActuatorServer struct{}

func (UnimplementedActuatorServer) Activate(context.Context, *ActivateRequest) (*CommandResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Activate not implemented")
}

func (UnimplementedActuatorServer) Release(context.Context, *ReleaseRequest) (*CommandResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Release not implemented")
}

func (UnimplementedActuatorServer) mustEmbedUnimplementedActuatorServer() {}

func RegisterActuatorServer(s grpc.ServiceRegistrar, srv ActuatorServer) {
	s.RegisterService(&Actuator_ServiceDesc, srv)
}

func _Actuator_Activate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ActivateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ActuatorServer).Activate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Actuator_Activate_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ActuatorServer).Activate(ctx, req.(*ActivateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Actuator_Release_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReleaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ActuatorServer).Release(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Actuator_Release_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ActuatorServer).Release(ctx, req.(*ReleaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Actuator_ServiceDesc is the grpc.ServiceDesc for the Actuator service.
var Actuator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "firewatch.actuator.Actuator",
	HandlerType: (*ActuatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Activate",
			Handler:    _Actuator_Activate_Handler,
		},
		{
			MethodName: "Release",
			Handler:    _Actuator_Release_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "grpc/proto/actuator.proto",
}
