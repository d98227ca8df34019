package grpcx

import (
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

type DialOptions struct {
	// Plaintext when nil; in-cluster traffic is expected to be secured by the mesh.
	TransportCredentials grpc.DialOption
	// Zero disables client keepalive pings.
	KeepaliveTime time.Duration
}

// Dial returns a lazily connecting client that traces calls and forwards request ids.
func Dial(addr string, opts DialOptions, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	creds := opts.TransportCredentials
	if creds == nil {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	dialOpts := []grpc.DialOption{
		creds,
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(UnaryClientRequestIDInterceptor()),
	}
	if opts.KeepaliveTime > 0 {
		dialOpts = append(dialOpts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    opts.KeepaliveTime,
			Timeout: opts.KeepaliveTime / 2,
		}))
	}
	return grpc.NewClient(addr, append(dialOpts, extra...)...)
}
