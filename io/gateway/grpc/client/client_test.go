package client

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/gateway/grpc/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type fakeDriver struct {
	requests []dto.DriverRequest
	reject   string
}

func (d *fakeDriver) Execute(_ context.Context, req *dto.DriverRequest) (*dto.Ack, error) {
	d.requests = append(d.requests, *req)
	if d.reject != "" {
		return &dto.Ack{Status: dto.AckStatusError, RequestID: req.RequestID, Message: d.reject}, nil
	}
	return &dto.Ack{Status: dto.AckStatusOK, RequestID: req.RequestID}, nil
}

func startDriver(t *testing.T, d proto.DriverServer) grpc.DialOption {
	t.Helper()

	srv := grpc.NewServer()
	proto.RegisterDriverServer(srv, d)
	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func TestDriverDialer(t *testing.T) {
	d := &fakeDriver{}
	dial := DriverDialer(startDriver(t, d))

	conn, err := dial(context.Background(), dto.RelayEndpoint{Hostname: "bufnet", Port: "0"})
	require.NoError(t, err)
	defer conn.Close()

	req := dto.DriverRequest{Action: dto.DriverActionCreateAsset, RequestID: "s1", NetworkID: "network2", AssetID: "asset-1"}
	require.NoError(t, conn.Execute(context.Background(), req))
	require.Equal(t, []dto.DriverRequest{req}, d.requests)
}

func TestDriverClient_Rejected(t *testing.T) {
	d := &fakeDriver{reject: "asset is already locked"}
	dial := DriverDialer(startDriver(t, d))

	conn, err := dial(context.Background(), dto.RelayEndpoint{Hostname: "bufnet", Port: "0"})
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Execute(context.Background(), dto.DriverRequest{Action: dto.DriverActionLock})
	require.ErrorContains(t, err, "asset is already locked")
}

func TestCreateConnection_MissingCA(t *testing.T) {
	_, err := createConnection(context.Background(), dto.RelayEndpoint{
		Hostname:      "localhost",
		Port:          "9085",
		TLS:           true,
		TLSCACertPath: "/nonexistent/ca.pem",
	})
	require.ErrorContains(t, err, "failed to load CA certificate")
}
