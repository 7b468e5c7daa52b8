// Package server exposes a gateway over gRPC: the SATP step service for
// counterpart gateways, the Admin service for operators and the standard
// health service.
package server

import (
	"context"
	stdErrors "errors"
	"net"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/gateway/grpc/proto"
	"github.com/vadiminshakov/satp/io/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Gateway is the protocol orchestrator served by Server.
type Gateway interface {
	Handle(ctx context.Context, msg dto.Message) *dto.Ack
	InitiateTransfer(ctx context.Context, transfer dto.AssetTransfer) *dto.Ack
	Report(query dto.StateQuery) (*dto.StateReport, error)
}

type Option func(server *Server) error

// WithWhitelist restricts callers to the listed hosts. An empty list allows everyone.
func WithWhitelist(hosts []string) Option {
	return func(server *Server) error {
		server.whitelist = hosts
		return nil
	}
}

// WithTLS serves over TLS with the given certificate and key.
func WithTLS(certPath, keyPath string) Option {
	return func(server *Server) error {
		creds, err := credentials.NewServerTLSFromFile(certPath, keyPath)
		if err != nil {
			return errors.Wrap(err, "failed to load server TLS certificate")
		}
		server.serverOpts = append(server.serverOpts, grpc.Creds(creds))
		return nil
	}
}

// WithInterceptors appends unary interceptors run after the built-in ones.
func WithInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(server *Server) error {
		server.interceptors = append(server.interceptors, interceptors...)
		return nil
	}
}

// Server holds the gRPC server of one gateway.
type Server struct {
	Addr         string
	GRPCServer   *grpc.Server
	gateway      Gateway
	health       *health.Server
	whitelist    []string
	interceptors []grpc.UnaryServerInterceptor
	serverOpts   []grpc.ServerOption
}

// New creates a server for gw listening on addr once Run is called.
func New(addr string, gw Gateway, opts ...Option) (*Server, error) {
	if gw == nil {
		return nil, stdErrors.New("gateway is not set")
	}

	server := &Server{Addr: addr, gateway: gw, health: health.NewServer()}
	for _, option := range opts {
		if err := option(server); err != nil {
			return nil, err
		}
	}

	interceptors := append([]grpc.UnaryServerInterceptor{
		RequestLogger,
		WhiteListChecker(server.whitelist),
	}, server.interceptors...)
	server.GRPCServer = grpc.NewServer(append(server.serverOpts, grpc.ChainUnaryInterceptor(interceptors...))...)

	proto.RegisterSATPServer(server.GRPCServer, server)
	proto.RegisterAdminServer(server.GRPCServer, server)
	healthpb.RegisterHealthServer(server.GRPCServer, server.health)

	return server, nil
}

// Receive handles one step message of a counterpart gateway. Protocol
// failures are reported in the Ack, never as a gRPC error.
func (s *Server) Receive(ctx context.Context, msg dto.Message) (*dto.Ack, error) {
	return s.gateway.Handle(ctx, msg), nil
}

func (s *Server) InitiateTransfer(ctx context.Context, req *dto.AssetTransfer) (*dto.Ack, error) {
	return s.gateway.InitiateTransfer(ctx, *req), nil
}

func (s *Server) GetRequestState(_ context.Context, req *dto.StateQuery) (*dto.StateReport, error) {
	report, err := s.gateway.Report(*req)
	if err != nil {
		if stdErrors.Is(err, store.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "no state recorded for request %s", req.RequestID)
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return report, nil
}

// Run starts non-blocking GRPC server
func (s *Server) Run() error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.Addr)
	}
	log.Infof("listening on tcp://%s", s.Addr)

	go func() {
		if err := s.Serve(l); err != nil {
			log.Errorf("grpc server stopped: %v", err)
		}
	}()
	return nil
}

// Serve serves on l until Stop is called.
func (s *Server) Serve(l net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(proto.SATPServiceName, healthpb.HealthCheckResponse_SERVING)
	return s.GRPCServer.Serve(l)
}

// Stop stops server
func (s *Server) Stop() {
	log.Info("stopping server")
	s.health.Shutdown()
	s.GRPCServer.GracefulStop()
	log.Info("server stopped")
}
