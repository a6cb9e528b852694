// Package interceptors holds the gRPC server interceptors of the game service.
package interceptors

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	grpcmeta "github.com/louisbranch/legions/internal/services/game/api/grpc/metadata"
)

// AccessLogInterceptor logs one line per unary call with its outcome.
func AccessLogInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, log, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamAccessLogInterceptor logs one line per stream when it ends.
func StreamAccessLogInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, stream)
		logCall(stream.Context(), log, info.FullMethod, start, err)
		return err
	}
}

func logCall(ctx context.Context, log zerolog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev = ev.Str("method", method).
		Str("kind", classifyMethodKind(method)).
		Str("code", code.String()).
		Dur("elapsed", time.Since(start))
	if id := grpcmeta.RequestIDFromContext(ctx); id != "" {
		ev = ev.Str("request_id", id)
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		ev = ev.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	ev.Msg("grpc call")
}

// classifyMethodKind tells reads from writes by method name.
func classifyMethodKind(fullMethod string) string {
	name := fullMethod[strings.LastIndex(fullMethod, "/")+1:]
	switch {
	case strings.HasPrefix(name, "List"), strings.HasPrefix(name, "Get"),
		name == "Snapshot", name == "Actions":
		return "read"
	default:
		return "write"
	}
}
