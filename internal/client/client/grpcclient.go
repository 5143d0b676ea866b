package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/common"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// defaultCallTimeout bounds unary calls that arrive without a deadline.
const defaultCallTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.BackendClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}
	return invoker(withAccessToken(ctx, s.accessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) accessTokenStreamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withAccessToken(ctx, s.accessToken), desc, cc, method, opts...)
}

// NewStatusBoardClient connects to the backend at endpointURL. The
// connection is lazy: an unreachable server surfaces on the first call.
func NewStatusBoardClient(endpointURL, accessToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.accessTokenStreamInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewBackendClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetFields()["status"].GetStringValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) FetchAll(ctx context.Context, req pb.FetchRequest) ([]Row, error) {
	in, err := req.Struct()
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := s.client.FetchAll(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return pb.Rows(resp), nil
}

func (s *GRPCClient) Insert(ctx context.Context, table string, record Row) (Row, error) {
	in, err := pb.WriteRequest{Table: table, Record: record}.Struct()
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := s.client.Insert(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.AsMap(), nil
}

func (s *GRPCClient) Upsert(ctx context.Context, table string, record Row) (Row, error) {
	in, err := pb.WriteRequest{Table: table, Record: record}.Struct()
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := s.client.Upsert(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.AsMap(), nil
}

func (s *GRPCClient) Delete(ctx context.Context, table, id string) error {
	in, err := pb.DeleteRequest{Table: table, ID: id}.Struct()
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	if _, err := s.client.Delete(ctx, in); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Subscribe(ctx context.Context, table string, filter Row, fn func(pb.ChangeEvent)) error {
	in, err := pb.SubscribeRequest{Table: table, Filter: filter}.Struct()
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	stream, err := s.client.Subscribe(ctx, in)
	if err != nil {
		return s.mapError(err)
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return s.mapError(err)
		}
		fn(pb.ParseChangeEvent(msg))
	}
}

func (s *GRPCClient) PresignExport(ctx context.Context, name string) (string, string, error) {
	in, err := pb.PresignRequest{Name: name}.Struct()
	if err != nil {
		return "", "", fmt.Errorf("encode request: %w", err)
	}

	resp, err := s.client.PresignExport(ctx, in)
	if err != nil {
		return "", "", s.mapError(err)
	}
	out := pb.ParsePresignResponse(resp)
	return out.URL, out.Key, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorNotFound)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrInvalidArgument)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
