package client

import (
	"context"

	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/gateway/grpc/proto"
	"google.golang.org/grpc"
)

// AdminClient provides access to the admin API of a gateway.
type AdminClient struct {
	conn       *grpc.ClientConn
	Connection proto.AdminClient
}

// NewAdminClient creates an instance of the admin API client.
func NewAdminClient(ctx context.Context, ep dto.RelayEndpoint, opts ...grpc.DialOption) (*AdminClient, error) {
	conn, err := createConnection(ctx, ep, opts...)
	if err != nil {
		return nil, err
	}
	return &AdminClient{conn: conn, Connection: proto.NewAdminClient(conn)}, nil
}

// InitiateTransfer asks the gateway to start transferring an asset.
func (c *AdminClient) InitiateTransfer(ctx context.Context, transfer dto.AssetTransfer) (*dto.Ack, error) {
	return c.Connection.InitiateTransfer(ctx, &transfer)
}

// RequestState queries the recorded state of a request.
func (c *AdminClient) RequestState(ctx context.Context, query dto.StateQuery) (*dto.StateReport, error) {
	return c.Connection.GetRequestState(ctx, &query)
}

func (c *AdminClient) Close() error {
	return c.conn.Close()
}
