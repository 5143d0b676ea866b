package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/statusboard/internal/common"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/dmitrijs2005/statusboard/internal/server/rows"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps domain errors to gRPC codes. Unexpected errors are logged
// and hidden behind a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrUnknownTable), errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, op+" failed", "error", err, "subject", SubjectFromContext(ctx))
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Ping(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

func (s *GRPCServer) FetchAll(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	q := pb.ParseFetchRequest(req)

	list, err := s.rows.FetchAll(ctx, q)
	if err != nil {
		return nil, s.toStatus(ctx, "fetch "+q.Table, err)
	}

	out, err := pb.RowList(list)
	if err != nil {
		return nil, s.toStatus(ctx, "fetch "+q.Table, err)
	}
	return out, nil
}

func (s *GRPCServer) Insert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	w := pb.ParseWriteRequest(req)

	row, err := s.rows.Insert(ctx, w.Table, w.Record)
	if err != nil {
		return nil, s.toStatus(ctx, "insert "+w.Table, err)
	}
	s.logger.Info(ctx, "row inserted", "table", w.Table, "id", row["id"], "subject", SubjectFromContext(ctx))
	return s.rowStruct(ctx, w.Table, row)
}

func (s *GRPCServer) Upsert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	w := pb.ParseWriteRequest(req)

	row, err := s.rows.Upsert(ctx, w.Table, w.Record)
	if err != nil {
		return nil, s.toStatus(ctx, "upsert "+w.Table, err)
	}
	return s.rowStruct(ctx, w.Table, row)
}

func (s *GRPCServer) rowStruct(ctx context.Context, table string, row rows.Row) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(row)
	if err != nil {
		return nil, s.toStatus(ctx, "encode "+table, err)
	}
	return out, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	d := pb.ParseDeleteRequest(req)

	if err := s.rows.Delete(ctx, d.Table, d.ID); err != nil {
		return nil, s.toStatus(ctx, "delete "+d.Table, err)
	}
	s.logger.Info(ctx, "row deleted", "table", d.Table, "id", d.ID, "subject", SubjectFromContext(ctx))
	return &emptypb.Empty{}, nil
}

// Subscribe streams change events of one table until the client goes away.
func (s *GRPCServer) Subscribe(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	sub := pb.ParseSubscribeRequest(req)

	t, err := rows.Lookup(sub.Table)
	if err != nil {
		return s.toStatus(ctx, "subscribe", err)
	}
	for col := range sub.Filter {
		if _, err := t.Column(col); err != nil {
			return s.toStatus(ctx, "subscribe", err)
		}
	}

	events, cancel := s.feed.Subscribe(t.Name, sub.Filter)
	defer cancel()
	s.logger.Info(ctx, "change feed opened", "table", t.Name, "subject", SubjectFromContext(ctx))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			msg, err := ev.Struct()
			if err != nil {
				return s.toStatus(ctx, "subscribe", err)
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (s *GRPCServer) PresignExport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.exports == nil {
		return nil, status.Error(codes.FailedPrecondition, "exports are not configured")
	}
	in := pb.ParsePresignRequest(req)

	url, key, err := s.exports.PresignExport(ctx, in.Name)
	if err != nil {
		return nil, s.toStatus(ctx, "presign export", err)
	}
	s.logger.Info(ctx, "export presigned", "key", key, "subject", SubjectFromContext(ctx))
	return pb.PresignResponse{URL: url, Key: key}.Struct()
}
