package client

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/satp/core/driver"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/gateway/grpc/proto"
	"google.golang.org/grpc"
)

// DriverClient invokes a ledger driver.
type DriverClient struct {
	conn       *grpc.ClientConn
	Connection proto.DriverClient
}

func NewDriverClient(ctx context.Context, ep dto.RelayEndpoint, opts ...grpc.DialOption) (*DriverClient, error) {
	conn, err := createConnection(ctx, ep, opts...)
	if err != nil {
		return nil, err
	}
	return &DriverClient{conn: conn, Connection: proto.NewDriverClient(conn)}, nil
}

// Execute asks the driver to perform req. A rejection by the driver is returned as an error.
func (c *DriverClient) Execute(ctx context.Context, req dto.DriverRequest) error {
	resp, err := c.Connection.Execute(ctx, &req)
	if err != nil {
		return err
	}
	if resp.Status != dto.AckStatusOK {
		return errors.Errorf("driver rejected %s: %s", req.Action, resp.Message)
	}
	return nil
}

func (c *DriverClient) Close() error {
	return c.conn.Close()
}

// DriverDialer returns a driver.Dialer backed by DriverClient.
func DriverDialer(opts ...grpc.DialOption) driver.Dialer {
	return func(ctx context.Context, ep dto.RelayEndpoint) (driver.Conn, error) {
		return NewDriverClient(ctx, ep, opts...)
	}
}
