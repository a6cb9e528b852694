package interceptors

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	grpcmeta "github.com/louisbranch/legions/internal/services/game/api/grpc/metadata"
)

func TestClassifyMethodKind(t *testing.T) {
	require.Equal(t, "read", classifyMethodKind("/legions.v1.GameService/ListGames"))
	require.Equal(t, "read", classifyMethodKind("/legions.v1.GameService/Actions"))
	require.Equal(t, "write", classifyMethodKind("/legions.v1.GameService/Do"))
	require.Equal(t, "write", classifyMethodKind("CreateGame"))
}

func TestAccessLogInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := AccessLogInterceptor(zerolog.New(&buf))
	ctx := grpcmeta.WithRequestID(context.Background(), "req-1")
	info := &grpc.UnaryServerInfo{FullMethod: "/legions.v1.GameService/Do"}

	_, err := interceptor(ctx, nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	require.Error(t, err)
	require.Contains(t, buf.String(), `"request_id":"req-1"`)
	require.Contains(t, buf.String(), `"code":"NotFound"`)
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func TestToStatusLocalizesDomainErrors(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(grpcmeta.LocaleHeader, "en-US"))
	err := ToStatus(ctx, apperrors.WithMetadata(apperrors.CodeGameNotFound, "no such game", map[string]string{"Game": "g1"}))

	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.NotFound, st.Code())
	require.Equal(t, "no such game", st.Message())

	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, d := range st.Details() {
		switch d := d.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	require.NotNil(t, info)
	require.Equal(t, string(apperrors.CodeGameNotFound), info.Reason)
	require.NotNil(t, localized)
	require.Equal(t, "Game g1 was not found.", localized.Message)
}

func TestToStatusPassThrough(t *testing.T) {
	require.NoError(t, ToStatus(context.Background(), nil))

	orig := status.Error(codes.Aborted, "aborted")
	require.Equal(t, orig, ToStatus(context.Background(), orig))

	require.Equal(t, codes.Canceled, status.Code(ToStatus(context.Background(), context.Canceled)))
	require.Equal(t, codes.Internal, status.Code(ToStatus(context.Background(), errors.New("disk full"))))
}
