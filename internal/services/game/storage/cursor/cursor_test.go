package cursor

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := New("2026-10-19T10:00:00Z", "g7", "status=open", "created_at")

	token, err := Encode(original)
	require.NoError(t, err)
	decoded, err := Decode(token)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecodeRejectsBadTokens(t *testing.T) {
	_, err := Decode("")
	require.Error(t, err)
	_, err = Decode("not-base64@@")
	require.Error(t, err)
	_, err = Decode(base64.RawURLEncoding.EncodeToString([]byte("[]")))
	require.Error(t, err)
	_, err = Decode(base64.RawURLEncoding.EncodeToString([]byte(`{"k":"x"}`)))
	require.Error(t, err, "no position")
}

func TestHashFilter(t *testing.T) {
	require.Empty(t, HashFilter(""))
	require.Len(t, HashFilter("foo"), 16)
	require.NotEqual(t, HashFilter("foo"), HashFilter("bar"))
}

func TestValidate(t *testing.T) {
	c := New("a", "a", "status=open", "name")
	require.NoError(t, Validate(c, "status=open", "name"))
	require.ErrorIs(t, Validate(c, "", "name"), ErrMismatch)
	require.ErrorIs(t, Validate(c, "status=open", "created_at"), ErrMismatch)
}
