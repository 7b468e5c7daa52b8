// Package client builds gRPC connections to counterpart gateways, ledger
// drivers and the admin API of a gateway.
package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/satp/core/dto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// createConnection creates a gRPC connection to ep. TLS is used when ep asks
// for it, trusting the CA certificate at ep.TLSCACertPath and verifying
// ep.Hostname.
func createConnection(ctx context.Context, ep dto.RelayEndpoint, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	connParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  100 * time.Millisecond,
			Multiplier: backoff.DefaultConfig.Multiplier,
			Jitter:     backoff.DefaultConfig.Jitter,
			MaxDelay:   10 * time.Second,
		},
		MinConnectTimeout: 200 * time.Millisecond,
	}

	creds := insecure.NewCredentials()
	if ep.TLS {
		tlsCreds, err := credentials.NewClientTLSFromFile(ep.TLSCACertPath, ep.Hostname)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load CA certificate %s", ep.TLSCACertPath)
		}
		creds = tlsCreds
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithConnectParams(connParams),
		grpc.WithTransportCredentials(creds),
	}, opts...)

	conn, err := grpc.DialContext(ctx, ep.Address(), dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", ep.Address())
	}

	return conn, nil
}
