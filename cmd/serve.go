package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcserver "github.com/inovacc/fleetroster/internal/server/grpc"
	"github.com/inovacc/fleetroster/internal/server/web"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the gRPC health endpoint",
	Long: `Start the HTTP API and the gRPC health endpoint on the configured
addresses. The server runs until interrupted with Ctrl+C or SIGTERM.

Examples:
  fleetroster serve
  fleetroster serve --http :8080 --grpc ""`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHTTPAddr string
	serveGRPCAddr string
	stopTimeout   time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "HTTP listen address (default: config server.http_addr)")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc", "", `gRPC listen address (default: config server.grpc_addr, "" with --grpc= to disable)`)
	serveCmd.Flags().DurationVar(&stopTimeout, "timeout", 30*time.Second, "Timeout waiting for requests to finish on shutdown")
}

func runServe(cmd *cobra.Command, _ []string) error {
	httpAddr := cfg.Server.HTTPAddr
	if cmd.Flags().Changed("http") {
		httpAddr = serveHTTPAddr
	}

	grpcAddr := cfg.Server.GRPCAddr
	if cmd.Flags().Changed("grpc") {
		grpcAddr = serveGRPCAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	defer func() { _ = st.Close() }()

	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpAddr, err)
	}

	httpSrv := web.New(st, web.WithRequestTimeout(cfg.Server.RequestTimeout))
	errs := make(chan error, 2)

	go func() {
		errs <- httpSrv.Serve(httpLis)
	}()

	if grpcAddr != "" {
		grpcLis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			_ = httpSrv.Shutdown(context.Background())
			return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
		}

		grpcSrv := grpcserver.NewServer(st, cfg.Server.RequestTimeout)

		go func() {
			if err := grpcSrv.Serve(ctx, grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errs <- err
			}
		}()

		defer grpcSrv.Stop()
	}

	slog.Info("fleetroster started", "http", httpAddr, "grpc", grpcAddr, "store", cfg.Store.Driver)

	var runErr error

	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case runErr = <-errs:
		slog.Error("server stopped", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown did not complete", "error", err)
	}

	slog.Info("server stopped")

	return runErr
}
