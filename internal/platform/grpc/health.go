package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/legions/internal/platform/timeouts"
)

const maxHealthBackoff = time.Second

// WaitForHealth blocks until the health check of service reports SERVING or
// ctx ends. An empty service checks the whole server.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, log zerolog.Logger) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := 50 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			log.Debug().Str("target", conn.Target()).Msg("gRPC health check is serving")
			return nil
		}
		ev := log.Debug().Str("target", conn.Target()).Dur("backoff", backoff)
		if err != nil {
			ev = ev.Err(err)
		} else {
			ev = ev.Str("status", resp.GetStatus().String())
		}
		ev.Msg("waiting for gRPC health")

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, maxHealthBackoff)
	}
}
