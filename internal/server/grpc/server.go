// Package grpc serves the statusboard.v1.Backend service.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/dmitrijs2005/statusboard/internal/server/rows"
	"google.golang.org/grpc"
)

// shutdownTimeout bounds GracefulStop; open change feeds are cut after it.
const shutdownTimeout = 5 * time.Second

// ChangeFeed delivers row changes of a table. The returned func ends the
// subscription.
type ChangeFeed interface {
	Subscribe(table string, filter map[string]any) (<-chan pb.ChangeEvent, func())
}

type ExportPresigner interface {
	PresignExport(ctx context.Context, name string) (url, key string, err error)
}

type GRPCServer struct {
	pb.UnimplementedBackendServer
	address   string
	rows      rows.Repository
	feed      ChangeFeed
	exports   ExportPresigner
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer wires the handlers. exports may be nil, in which case
// PresignExport fails with FailedPrecondition.
func NewGRPCServer(a string, l logging.Logger, store rows.Repository, feed ChangeFeed, exports ExportPresigner, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		rows:      store,
		feed:      feed,
		exports:   exports,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.accessTokenStreamInterceptor),
	)
	pb.RegisterBackendServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
