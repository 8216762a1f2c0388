package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeStore struct {
	down atomic.Bool
}

func (f *fakeStore) Ping(context.Context) error {
	if f.down.Load() {
		return errors.New("database is closed")
	}

	return nil
}

func startServer(t *testing.T, st Pinger) (*ServerWithHealth, healthpb.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(st, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- srv.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return srv, healthpb.NewHealthClient(conn)
}

func TestHealth_Serving(t *testing.T) {
	_, client := startServer(t, &fakeStore{})

	for _, service := range []string{"", ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestHealth_FollowsStore(t *testing.T) {
	st := &fakeStore{}
	srv, client := startServer(t, st)

	st.down.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, srv.CheckHealth(context.Background()))

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	st.down.Store(false)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, srv.CheckHealth(context.Background()))
}

func TestHealth_UnknownService(t *testing.T) {
	_, client := startServer(t, &fakeStore{})

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "other"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/fleetroster.Test/Call"}

func TestRecoveryInterceptor(t *testing.T) {
	_, err := recoveryInterceptor()(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		panic("boom")
	})

	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestContextCheckInterceptor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := contextCheckInterceptor()(ctx, nil, testInfo, func(context.Context, any) (any, error) {
		called = true
		return nil, nil
	})

	assert.False(t, called)
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestTimeoutInterceptor(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	_, err := timeoutInterceptor(10*time.Millisecond)(context.Background(), nil, testInfo, func(ctx context.Context, _ any) (any, error) {
		<-release
		return nil, nil
	})

	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))

	resp, err := timeoutInterceptor(time.Second)(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
