package proto

import (
	"context"

	"github.com/vadiminshakov/satp/core/dto"
	"google.golang.org/grpc"
)

const DriverServiceName = "satp.Driver"

const driverExecute = "/" + DriverServiceName + "/Execute"

// DriverServer is implemented by ledger drivers.
type DriverServer interface {
	Execute(ctx context.Context, req *dto.DriverRequest) (*dto.Ack, error)
}

// Driver_ServiceDesc is the grpc.ServiceDesc for the Driver service.
var Driver_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DriverServiceName,
	HandlerType: (*DriverServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Execute",
			Handler: unary(driverExecute, func(srv interface{}, ctx context.Context, req *dto.DriverRequest) (interface{}, error) {
				return srv.(DriverServer).Execute(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "satp.proto",
}

func RegisterDriverServer(s grpc.ServiceRegistrar, srv DriverServer) {
	s.RegisterService(&Driver_ServiceDesc, srv)
}

type DriverClient interface {
	Execute(ctx context.Context, in *dto.DriverRequest, opts ...grpc.CallOption) (*dto.Ack, error)
}

type driverClient struct {
	cc grpc.ClientConnInterface
}

func NewDriverClient(cc grpc.ClientConnInterface) DriverClient {
	return &driverClient{cc}
}

func (c *driverClient) Execute(ctx context.Context, in *dto.DriverRequest, opts ...grpc.CallOption) (*dto.Ack, error) {
	out := new(dto.Ack)
	if err := c.cc.Invoke(ctx, driverExecute, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
