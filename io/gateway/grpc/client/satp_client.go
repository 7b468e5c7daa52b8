package client

import (
	"context"

	"github.com/vadiminshakov/satp/core/dispatcher"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/gateway/grpc/proto"
	"google.golang.org/grpc"
)

// SATPClient sends step messages to a counterpart gateway.
type SATPClient struct {
	conn       *grpc.ClientConn
	Connection proto.SATPClient
}

// NewSATPClient creates a client of the gateway at ep.
func NewSATPClient(ctx context.Context, ep dto.RelayEndpoint, opts ...grpc.DialOption) (*SATPClient, error) {
	conn, err := createConnection(ctx, ep, opts...)
	if err != nil {
		return nil, err
	}
	return &SATPClient{conn: conn, Connection: proto.NewSATPClient(conn)}, nil
}

// Send invokes the RPC method of the message's step.
func (c *SATPClient) Send(ctx context.Context, msg dto.Message) (*dto.Ack, error) {
	return c.Connection.Send(ctx, msg)
}

func (c *SATPClient) Close() error {
	return c.conn.Close()
}

// SATPDialer returns a dispatcher.Dialer opening one SATPClient per dispatch.
func SATPDialer(opts ...grpc.DialOption) dispatcher.Dialer {
	return func(ctx context.Context, ep dto.RelayEndpoint) (dispatcher.Sender, error) {
		return NewSATPClient(ctx, ep, opts...)
	}
}
