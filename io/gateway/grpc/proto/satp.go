package proto

import (
	"context"

	"github.com/vadiminshakov/satp/core/dto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const SATPServiceName = "satp.SATP"

// SATPServer receives the step messages of counterpart gateways. Every RPC
// method of the service is named after its step and delivers one message.
type SATPServer interface {
	Receive(ctx context.Context, msg dto.Message) (*dto.Ack, error)
}

// SATPMethod returns the full RPC method name of step.
func SATPMethod(step dto.Step) string {
	return "/" + SATPServiceName + "/" + step.String()
}

func satpHandler(step dto.Step) methodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in, ok := dto.NewMessage(step)
		if !ok {
			return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", step)
		}
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(SATPServer).Receive(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SATPMethod(step)}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(SATPServer).Receive(ctx, req.(dto.Message))
		})
	}
}

func satpServiceDesc() grpc.ServiceDesc {
	methods := make([]grpc.MethodDesc, 0, len(dto.Steps()))
	for _, step := range dto.Steps() {
		methods = append(methods, grpc.MethodDesc{
			MethodName: step.String(),
			Handler:    satpHandler(step),
		})
	}

	return grpc.ServiceDesc{
		ServiceName: SATPServiceName,
		HandlerType: (*SATPServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "satp.proto",
	}
}

// SATP_ServiceDesc is the grpc.ServiceDesc for the SATP service.
var SATP_ServiceDesc = satpServiceDesc()

func RegisterSATPServer(s grpc.ServiceRegistrar, srv SATPServer) {
	s.RegisterService(&SATP_ServiceDesc, srv)
}

// SATPClient sends step messages to a counterpart gateway.
type SATPClient interface {
	Send(ctx context.Context, msg dto.Message, opts ...grpc.CallOption) (*dto.Ack, error)
}

type satpClient struct {
	cc grpc.ClientConnInterface
}

func NewSATPClient(cc grpc.ClientConnInterface) SATPClient {
	return &satpClient{cc}
}

// Send invokes the method named after the step of msg.
func (c *satpClient) Send(ctx context.Context, msg dto.Message, opts ...grpc.CallOption) (*dto.Ack, error) {
	out := new(dto.Ack)
	err := c.cc.Invoke(ctx, SATPMethod(msg.Step()), msg, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
