package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeIllegalMove, codes.InvalidArgument},
		{CodeWrongPhase, codes.FailedPrecondition},
		{CodeNotYourTurn, codes.PermissionDenied},
		{CodeLegionNotFound, codes.NotFound},
		{CodeGameExists, codes.AlreadyExists},
		{CodeCorruptLog, codes.DataLoss},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, tc.code.GRPCCode(), string(tc.code))
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("move: %w", WithMetadata(CodeIllegalMove, "no path", map[string]string{"Hex": "7"}))
	require.True(t, stderrors.Is(err, New(CodeIllegalMove, "")))
	require.False(t, stderrors.Is(err, New(CodeIllegalSplit, "")))
	require.Equal(t, CodeIllegalMove, GetCode(err))
	require.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeCorruptLog, "append failed", cause)
	require.ErrorIs(t, err, cause)
}

func TestToGRPCStatusAttachesDetails(t *testing.T) {
	e := WithMetadata(CodeNotYourTurn, "player bob acted out of turn", map[string]string{"Player": "bob"})
	st, ok := status.FromError(e.ToGRPCStatus("en-US", "It is not your turn."))
	require.True(t, ok)
	require.Equal(t, codes.PermissionDenied, st.Code())
	require.Equal(t, "player bob acted out of turn", st.Message())

	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			info = v
		case *errdetails.LocalizedMessage:
			localized = v
		}
	}
	require.NotNil(t, info)
	require.Equal(t, "NOT_YOUR_TURN", info.Reason)
	require.Equal(t, Domain, info.Domain)
	require.Equal(t, "bob", info.Metadata["Player"])
	require.NotNil(t, localized)
	require.Equal(t, "It is not your turn.", localized.Message)
}

func TestWithCopiesMetadata(t *testing.T) {
	base := WithMetadata(CodeIllegalMove, "blocked", map[string]string{"Hex": "7"})
	got := base.With("Marker", "Rd01")
	require.Equal(t, map[string]string{"Hex": "7", "Marker": "Rd01"}, got.Metadata)
	require.Equal(t, map[string]string{"Hex": "7"}, base.Metadata)
	require.Equal(t, "2", New(CodeIllegalMove, "").With("Hex", "2").Metadata["Hex"])

	found, ok := As(fmt.Errorf("move: %w", got))
	require.True(t, ok)
	require.Same(t, got, found)
	_, ok = As(stderrors.New("plain"))
	require.False(t, ok)
}
