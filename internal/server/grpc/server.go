package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName is the health service name reported alongside the overall status.
const ServiceName = "fleetroster"

// DefaultCheckInterval is how often the store is pinged.
const DefaultCheckInterval = 15 * time.Second

// Pinger is the part of the store the health monitor needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerWithHealth wraps gRPC server and health service for lifecycle management
type ServerWithHealth struct {
	GRPCServer   *grpc.Server
	HealthServer *health.Server

	store    Pinger
	interval time.Duration
}

// NewServer creates a gRPC server with the health service and the recovery,
// logging and timeout interceptors. The health status follows store.Ping.
func NewServer(store Pinger, timeout time.Duration) *ServerWithHealth {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []grpc.ServerOption{
		// recovery -> context check -> logging -> timeout
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(),
			contextCheckInterceptor(),
			loggingInterceptor(),
			timeoutInterceptor(timeout),
		),
		grpc.ConnectionTimeout(10 * time.Second),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 15 * time.Minute,
			Time:              5 * time.Minute,
			Timeout:           20 * time.Second,
		}),
		grpc.MaxRecvMsgSize(4 * 1024 * 1024),
		grpc.MaxSendMsgSize(4 * 1024 * 1024),
	}

	srv := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)

	s := &ServerWithHealth{
		GRPCServer:   srv,
		HealthServer: healthServer,
		store:        store,
		interval:     DefaultCheckInterval,
	}

	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)

	return s
}

// Serve checks the store once, starts the health monitor and serves on lis
// until Stop is called or ctx is canceled.
func (s *ServerWithHealth) Serve(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.CheckHealth(ctx)

	go s.monitor(ctx)

	go func() {
		<-ctx.Done()
		s.GRPCServer.GracefulStop()
	}()

	slog.Info("grpc server listening", "addr", lis.Addr().String())

	return s.GRPCServer.Serve(lis)
}

// Stop marks the server as not serving and stops it gracefully.
func (s *ServerWithHealth) Stop() {
	s.HealthServer.Shutdown()
	s.GRPCServer.GracefulStop()
}

// CheckHealth pings the store and updates the serving status.
func (s *ServerWithHealth) CheckHealth(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		slog.Warn("store ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.setStatus(st)

	return st
}

func (s *ServerWithHealth) monitor(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckHealth(ctx)
		}
	}
}

func (s *ServerWithHealth) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.HealthServer.SetServingStatus("", st)
	s.HealthServer.SetServingStatus(ServiceName, st)
}
