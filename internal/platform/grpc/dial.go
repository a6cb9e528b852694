// Package grpc holds client helpers shared by the game service and its tools.
package grpc

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/louisbranch/legions/internal/platform/timeouts"
)

// Dialer opens client connections.
type Dialer interface {
	Dial(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)

// Dial implements Dialer.
func (fn DialerFunc) Dial(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	return fn(addr, opts...)
}

// DialStage is the step of DialWithHealth that failed.
type DialStage string

const (
	DialStageConnect DialStage = "connect"
	DialStageHealth  DialStage = "health"
)

// DialError reports which step of reaching Addr failed.
type DialError struct {
	Addr  string
	Stage DialStage
	Err   error
}

func (e *DialError) Error() string {
	if e == nil {
		return "dial game server"
	}
	return fmt.Sprintf("dial game server %s: %s: %v", e.Addr, e.Stage, e.Err)
}

func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultClientDialOptions returns the dial options of in-cluster clients.
// Outbound calls carry trace context when a TracerProvider is registered.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// DialWithHealth connects to a game server and returns once its health
// service reports SERVING, which the server only does after restoring its
// games. A nil dialer uses grpc.NewClient; a zero timeout uses
// timeouts.GRPCDial.
func DialWithHealth(ctx context.Context, dialer Dialer, addr string, timeout time.Duration, log zerolog.Logger, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	if dialer == nil {
		dialer = DialerFunc(gogrpc.NewClient)
	}
	conn, err := dialer.Dial(addr, opts...)
	if err != nil {
		return nil, &DialError{Addr: addr, Stage: DialStageConnect, Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, cmp.Or(max(timeout, 0), timeouts.GRPCDial))
	defer cancel()
	if err := WaitForHealth(waitCtx, conn, "", log); err != nil {
		_ = conn.Close()
		return nil, &DialError{Addr: addr, Stage: DialStageHealth, Err: err}
	}
	log.Info().Str("addr", addr).Msg("connected to game server")
	return conn, nil
}
