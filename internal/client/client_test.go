package client_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inovacc/fleetroster/internal/client"
	"github.com/inovacc/fleetroster/internal/model"
	grpcserver "github.com/inovacc/fleetroster/internal/server/grpc"
	"github.com/inovacc/fleetroster/internal/server/web"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func newServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st, err := store.NewBolt(filepath.Join(t.TempDir(), "fleet.bolt"))
	require.NoError(t, err)

	ts := httptest.NewServer(web.New(st).Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = st.Close()
	})

	return ts, st
}

func TestHealth(t *testing.T) {
	ts, _ := newServer(t)

	c := client.New(ts.URL, time.Second)
	require.NoError(t, c.Health(context.Background()))
}

func TestHealth_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
	}))
	defer ts.Close()

	err := client.New(ts.URL, time.Second).Health(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestDayAndHistory(t *testing.T) {
	ts, st := newServer(t)
	ctx := context.Background()
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveDay(ctx, &model.DayRecord{
		User: "ana",
		Date: date,
		Assignments: []model.Assignment{
			{ID: "a1", Station: "North", Units: []int{4, 2}},
		},
	}))

	c := client.New(ts.URL, time.Second)

	day, err := c.Day(ctx, "ana", date)
	require.NoError(t, err)
	require.Len(t, day.Assignments, 1)
	assert.Equal(t, []int{4, 2}, day.Assignments[0].Units)
	assert.Equal(t, 2, day.Counts.Assigned)

	cfg, err := c.Config(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.PoolSize)

	days, err := c.History(ctx, "ana", date.AddDate(0, 0, -3), date)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2024-05-06", days[0].Key())
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid date","code":"invalid_date"}`))
	}))
	defer ts.Close()

	_, err := client.New(ts.URL, time.Second).Day(context.Background(), "ana", time.Now())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid_date", apiErr.Code)
	assert.True(t, strings.Contains(err.Error(), "invalid_date"))
}

type pinger struct{}

func (pinger) Ping(context.Context) error { return nil }

func TestCheckGRPC(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpcserver.NewServer(pinger{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- srv.Serve(ctx, lis) }()

	defer func() {
		cancel()
		<-done
	}()

	st, err := client.CheckGRPC(context.Background(), "passthrough:///bufnet", grpcserver.ServiceName,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)
}
