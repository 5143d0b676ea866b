package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/dmitrijs2005/statusboard/internal/server/auth"
	"github.com/dmitrijs2005/statusboard/internal/server/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

const secret = "secret"

type harness struct {
	client  pb.BackendClient
	rows    *memRows
	broker  *notify.Broker
	exports *fakePresigner
	ctx     context.Context
}

func startServer(t *testing.T, withExports bool) *harness {
	t.Helper()

	h := &harness{rows: newMemRows(), broker: notify.NewBroker(logging.Discard())}
	var exports ExportPresigner
	if withExports {
		h.exports = &fakePresigner{}
		exports = h.exports
	}
	s := NewGRPCServer("bufnet", logging.Discard(), h.rows, h.broker, exports, secret)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(shutdownTimeout + time.Second):
			t.Error("server did not stop")
		}
	})

	tok, err := auth.GenerateToken("tester", []byte(secret), time.Hour)
	require.NoError(t, err)
	h.client = pb.NewBackendClient(conn)
	h.ctx = metadata.AppendToOutgoingContext(context.Background(), "access_token", tok)
	return h
}

func TestBackend_PingIsPublic(t *testing.T) {
	h := startServer(t, false)

	resp, err := h.client.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.GetFields()["status"].GetStringValue())
}

func TestBackend_RequiresToken(t *testing.T) {
	h := startServer(t, false)

	in, err := pb.FetchRequest{Table: "actions"}.Struct()
	require.NoError(t, err)

	_, err = h.client.FetchAll(context.Background(), in)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), "access_token", "garbage")
	_, err = h.client.FetchAll(bad, in)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestBackend_RowLifecycle(t *testing.T) {
	h := startServer(t, false)

	ins, err := pb.WriteRequest{Table: "actions", Record: map[string]any{"description": "d", "sector": "TI"}}.Struct()
	require.NoError(t, err)
	created, err := h.client.Insert(h.ctx, ins)
	require.NoError(t, err)
	assert.Equal(t, float64(1), created.AsMap()["id"])

	fetch, err := pb.FetchRequest{Table: "actions", Filter: map[string]any{"sector": "TI"}}.Struct()
	require.NoError(t, err)
	list, err := h.client.FetchAll(h.ctx, fetch)
	require.NoError(t, err)
	got := pb.Rows(list)
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0]["description"])

	del, err := pb.DeleteRequest{Table: "actions", ID: "1"}.Struct()
	require.NoError(t, err)
	_, err = h.client.Delete(h.ctx, del)
	require.NoError(t, err)

	_, err = h.client.Delete(h.ctx, del)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestBackend_ErrorCodes(t *testing.T) {
	h := startServer(t, false)

	unknown, err := pb.FetchRequest{Table: "users"}.Struct()
	require.NoError(t, err)
	_, err = h.client.FetchAll(h.ctx, unknown)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	h.rows.err = errors.New("connection reset")
	ok, err := pb.FetchRequest{Table: "actions"}.Struct()
	require.NoError(t, err)
	_, err = h.client.FetchAll(h.ctx, ok)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message(), "internal details stay on the server")
}

func TestBackend_Subscribe(t *testing.T) {
	h := startServer(t, false)

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	in, err := pb.SubscribeRequest{Table: "tasks", Filter: map[string]any{"action_id": float64(1)}}.Struct()
	require.NoError(t, err)
	stream, err := h.client.Subscribe(ctx, in)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.broker.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.broker.Publish(pb.ChangeEvent{Table: "tasks", Op: pb.OpInsert, ID: "other", Row: map[string]any{"action_id": float64(2)}})
	h.broker.Publish(pb.ChangeEvent{Table: "tasks", Op: pb.OpUpdate, ID: "t1", Row: map[string]any{"action_id": float64(1)}})

	msg, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, pb.ChangeEvent{Table: "tasks", Op: pb.OpUpdate, ID: "t1"}, pb.ParseChangeEvent(msg))

	cancel()
	require.Eventually(t, func() bool { return h.broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBackend_SubscribeValidates(t *testing.T) {
	h := startServer(t, false)

	for _, req := range []pb.SubscribeRequest{
		{Table: "users"},
		{Table: "tasks", Filter: map[string]any{"owner": "x"}},
	} {
		in, err := req.Struct()
		require.NoError(t, err)
		stream, err := h.client.Subscribe(h.ctx, in)
		require.NoError(t, err)
		_, err = stream.Recv()
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	}
}

func TestBackend_PresignExport(t *testing.T) {
	h := startServer(t, true)

	in, err := pb.PresignRequest{Name: "report.csv"}.Struct()
	require.NoError(t, err)
	resp, err := h.client.PresignExport(h.ctx, in)
	require.NoError(t, err)

	out := pb.ParsePresignResponse(resp)
	assert.Equal(t, "exports/report.csv", out.Key)
	assert.Contains(t, out.URL, "sig=1")
	assert.Equal(t, []string{"report.csv"}, h.exports.names)
}

func TestBackend_PresignExportNotConfigured(t *testing.T) {
	h := startServer(t, false)

	in, err := pb.PresignRequest{Name: "report.csv"}.Struct()
	require.NoError(t, err)
	_, err = h.client.PresignExport(h.ctx, in)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(secret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Discard(), newMemRows(), nil, nil, secret)
	assert.Error(t, srv.Run(context.Background()))
}
