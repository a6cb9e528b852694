package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const gameService = "legions.v1.GameService"

// healthFixture is an in-memory server exposing only the health service.
type healthFixture struct {
	health *health.Server
	lis    *bufconn.Listener
}

func newHealthFixture(t *testing.T, initial grpc_health_v1.HealthCheckResponse_ServingStatus) *healthFixture {
	t.Helper()
	f := &healthFixture{health: health.NewServer(), lis: bufconn.Listen(1 << 16)}
	f.health.SetServingStatus("", initial)

	srv := gogrpc.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, f.health)
	go func() { _ = srv.Serve(f.lis) }()
	t.Cleanup(srv.Stop)
	return f
}

func (f *healthFixture) options() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return f.lis.DialContext(ctx) }),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	}
}

func (f *healthFixture) conn(t *testing.T) *gogrpc.ClientConn {
	t.Helper()
	conn, err := gogrpc.NewClient("passthrough:///game", f.options()...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWaitForHealth(t *testing.T) {
	tests := []struct {
		name    string
		initial grpc_health_v1.HealthCheckResponse_ServingStatus
		service string
		wantErr bool
	}{
		{"serving", grpc_health_v1.HealthCheckResponse_SERVING, "", false},
		{"not serving times out", grpc_health_v1.HealthCheckResponse_NOT_SERVING, "", true},
		{"unregistered service times out", grpc_health_v1.HealthCheckResponse_SERVING, gameService, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newHealthFixture(t, tc.initial)
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			err := WaitForHealth(ctx, f.conn(t), tc.service, zerolog.Nop())
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestWaitForHealthSeesRestoreFinish(t *testing.T) {
	f := newHealthFixture(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	f.health.SetServingStatus(gameService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	time.AfterFunc(150*time.Millisecond, func() {
		f.health.SetServingStatus(gameService, grpc_health_v1.HealthCheckResponse_SERVING)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := WaitForHealth(ctx, f.conn(t), gameService, zerolog.Nop()); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitForHealthNeedsConn(t *testing.T) {
	if err := WaitForHealth(context.Background(), nil, "", zerolog.Nop()); err == nil {
		t.Fatal("expected error")
	}
}
