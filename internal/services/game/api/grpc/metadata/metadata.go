package metadata

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// RequestIDHeader carries the id that ties a call to its log lines.
	RequestIDHeader = "x-legions-request-id"
	// LocaleHeader carries the locale errors are localized into.
	LocaleHeader = "x-legions-locale"
)

// Call is what the server knows about the caller of one RPC.
type Call struct {
	RequestID string
	Locale    string
}

type callKey struct{}

// WithCall stores call in ctx.
func WithCall(ctx context.Context, call Call) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callKey{}, call)
}

// CallFromContext returns the call stored by the interceptors.
func CallFromContext(ctx context.Context) (Call, bool) {
	if ctx == nil {
		return Call{}, false
	}
	call, ok := ctx.Value(callKey{}).(Call)
	return call, ok
}

// WithRequestID stores a request id in ctx, keeping any stored locale.
func WithRequestID(ctx context.Context, id string) context.Context {
	call, _ := CallFromContext(ctx)
	call.RequestID = id
	return WithCall(ctx, call)
}

// RequestIDFromContext returns the request id of the current call.
func RequestIDFromContext(ctx context.Context) string {
	call, _ := CallFromContext(ctx)
	return call.RequestID
}

// LocaleFromContext returns the caller's locale, read from the stored call
// or straight from incoming metadata when no interceptor ran.
func LocaleFromContext(ctx context.Context) string {
	if call, ok := CallFromContext(ctx); ok {
		return call.Locale
	}
	return incoming(ctx, LocaleHeader)
}

// OutgoingLocale asks the server to localize errors of calls made with ctx.
func OutgoingLocale(ctx context.Context, locale string) context.Context {
	if locale = strings.TrimSpace(locale); locale == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, LocaleHeader, locale)
}

// IsPrintableASCII reports whether value is non-empty and only holds bytes
// between space and tilde.
func IsPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	return strings.IndexFunc(value, func(r rune) bool { return r < ' ' || r > '~' }) < 0
}

// FirstMetadataValue returns the first printable value under key, matching
// the key case-insensitively.
func FirstMetadataValue(md metadata.MD, key string) string {
	for k, values := range md {
		if !strings.EqualFold(k, key) {
			continue
		}
		for _, v := range values {
			if IsPrintableASCII(v) {
				return v
			}
		}
	}
	return ""
}

// UnaryServerInterceptor resolves the Call of each unary RPC, generating a
// request id when the caller sent none, and echoes the id in the headers.
func UnaryServerInterceptor(newID func() string) grpc.UnaryServerInterceptor {
	newID = orUUID(newID)
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, call := resolveCall(ctx, newID)
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, call.RequestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streams.
func StreamServerInterceptor(newID func() string) grpc.StreamServerInterceptor {
	newID = orUUID(newID)
	return func(srv any, stream grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, call := resolveCall(stream.Context(), newID)
		if err := stream.SetHeader(metadata.Pairs(RequestIDHeader, call.RequestID)); err != nil {
			return status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(srv, &callStream{ServerStream: stream, ctx: ctx})
	}
}

type callStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *callStream) Context() context.Context { return s.ctx }

func orUUID(newID func() string) func() string {
	if newID == nil {
		return uuid.NewString
	}
	return newID
}

func resolveCall(ctx context.Context, newID func() string) (context.Context, Call) {
	call := Call{
		RequestID: incoming(ctx, RequestIDHeader),
		Locale:    incoming(ctx, LocaleHeader),
	}
	if call.RequestID == "" {
		call.RequestID = newID()
	}
	return WithCall(ctx, call), call
}

func incoming(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return FirstMetadataValue(md, key)
}
