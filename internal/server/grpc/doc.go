// Package grpc provides the gRPC endpoint of fleetroster.
//
// The server exposes the standard gRPC health service. Its status is
// SERVING while the configured store answers Ping and NOT_SERVING
// otherwise; the store is checked when serving starts and then every
// [DefaultCheckInterval]:
//
//	srv := grpc.NewServer(st, 30*time.Second)
//	err := srv.Serve(ctx, listener)
//
// # Interceptors
//
// Every unary call passes through four interceptors:
//   - Recovery: Catches panics and converts them to gRPC errors
//   - Context check: Rejects requests whose context is already done
//   - Logging: Logs all RPC calls with method name, status, and duration
//   - Timeout: Enforces the configured timeout on all requests
package grpc
