package interceptors

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/platform/errors/i18n"
	grpcmeta "github.com/louisbranch/legions/internal/services/game/api/grpc/metadata"
)

// DomainErrorInterceptor turns domain errors returned by handlers into gRPC
// statuses with a message localized for the caller.
func DomainErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, ToStatus(ctx, err)
		}
		return resp, nil
	}
}

// StreamDomainErrorInterceptor is the streaming counterpart of
// DomainErrorInterceptor.
func StreamDomainErrorInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := handler(srv, stream); err != nil {
			return ToStatus(stream.Context(), err)
		}
		return nil
	}
}

// ToStatus converts err to a gRPC status error. Errors that already carry a
// status and context errors keep their code.
func ToStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	domainErr, ok := apperrors.As(err)
	if !ok {
		domainErr = apperrors.Wrap(apperrors.CodeUnknown, err.Error(), err)
	}
	catalog := i18n.GetCatalog(grpcmeta.LocaleFromContext(ctx))
	return domainErr.ToGRPCStatus(catalog.Locale(), catalog.Format(string(domainErr.Code), domainErr.Metadata))
}
