package proto

import (
	"context"

	"github.com/vadiminshakov/satp/core/dto"
	"google.golang.org/grpc"
)

const AdminServiceName = "satp.Admin"

const (
	adminInitiateTransfer = "/" + AdminServiceName + "/InitiateTransfer"
	adminGetRequestState  = "/" + AdminServiceName + "/GetRequestState"
)

// AdminServer is the operator-facing API of a gateway.
type AdminServer interface {
	InitiateTransfer(ctx context.Context, req *dto.AssetTransfer) (*dto.Ack, error)
	GetRequestState(ctx context.Context, req *dto.StateQuery) (*dto.StateReport, error)
}

// Admin_ServiceDesc is the grpc.ServiceDesc for the Admin service.
var Admin_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "InitiateTransfer",
			Handler: unary(adminInitiateTransfer, func(srv interface{}, ctx context.Context, req *dto.AssetTransfer) (interface{}, error) {
				return srv.(AdminServer).InitiateTransfer(ctx, req)
			}),
		},
		{
			MethodName: "GetRequestState",
			Handler: unary(adminGetRequestState, func(srv interface{}, ctx context.Context, req *dto.StateQuery) (interface{}, error) {
				return srv.(AdminServer).GetRequestState(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "satp.proto",
}

func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&Admin_ServiceDesc, srv)
}

type AdminClient interface {
	InitiateTransfer(ctx context.Context, in *dto.AssetTransfer, opts ...grpc.CallOption) (*dto.Ack, error)
	GetRequestState(ctx context.Context, in *dto.StateQuery, opts ...grpc.CallOption) (*dto.StateReport, error)
}

type adminClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminClient(cc grpc.ClientConnInterface) AdminClient {
	return &adminClient{cc}
}

func (c *adminClient) InitiateTransfer(ctx context.Context, in *dto.AssetTransfer, opts ...grpc.CallOption) (*dto.Ack, error) {
	out := new(dto.Ack)
	if err := c.cc.Invoke(ctx, adminInitiateTransfer, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *adminClient) GetRequestState(ctx context.Context, in *dto.StateQuery, opts ...grpc.CallOption) (*dto.StateReport, error) {
	out := new(dto.StateReport)
	if err := c.cc.Invoke(ctx, adminGetRequestState, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
