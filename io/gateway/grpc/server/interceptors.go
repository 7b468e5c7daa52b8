package server

import (
	"context"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// WhiteListChecker returns an interceptor that checks that the caller is whitelisted.
func WhiteListChecker(whitelist []string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler) (interface{}, error) {
		if len(whitelist) == 0 {
			return handler(ctx, req)
		}

		peerinfo, ok := peer.FromContext(ctx)
		if !ok {
			return nil, status.Errorf(codes.Internal, "failed to retrieve peer info")
		}

		host, _, err := net.SplitHostPort(peerinfo.Addr.String())
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}

		if !includes(whitelist, host) {
			return nil, status.Errorf(codes.PermissionDenied, "host %s is not in whitelist", host)
		}

		return handler(ctx, req)
	}
}

// RequestLogger logs every call with its duration and outcome.
func RequestLogger(ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	h, err := handler(ctx, req)

	fields := log.Fields{
		"method":   info.FullMethod,
		"duration": time.Since(start),
	}
	if p, ok := peer.FromContext(ctx); ok {
		fields["peer"] = p.Addr.String()
	}
	if err != nil {
		log.WithFields(fields).Warnf("call failed: %v", err)
	} else {
		log.WithFields(fields).Debug("call served")
	}

	return h, err
}

// includes checks that the 'arr' includes 'value'
func includes(arr []string, value string) bool {
	for i := range arr {
		if arr[i] == value {
			return true
		}
	}
	return false
}
