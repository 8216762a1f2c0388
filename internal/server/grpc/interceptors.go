package grpc

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// loggingInterceptor records every call. Failed calls log at warn so they
// show up at the default level.
func loggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		began := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelDebug
		if code != codes.OK {
			level = slog.LevelWarn
		}

		slog.Log(ctx, level, "rpc",
			"method", info.FullMethod,
			"code", code.String(),
			"elapsed", time.Since(began),
		)

		return resp, err
	}
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func recoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				slog.Error("rpc handler panicked",
					"method", info.FullMethod,
					"panic", p,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}

// contextCheckInterceptor rejects calls whose context is already done.
func contextCheckInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, contextStatus(err)
		}
		return handler(ctx, req)
	}
}

// timeoutInterceptor bounds every call by limit. The handler runs on its
// own goroutine so a store call that ignores ctx cannot hold the caller.
func timeoutInterceptor(limit time.Duration) grpc.UnaryServerInterceptor {
	type outcome struct {
		resp any
		err  error
	}

	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, limit)
		defer cancel()

		done := make(chan outcome, 1)
		go func() {
			resp, err := handler(ctx, req)
			done <- outcome{resp, err}
		}()

		select {
		case out := <-done:
			return out.resp, out.err
		case <-ctx.Done():
			return nil, contextStatus(ctx.Err())
		}
	}
}

func contextStatus(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
