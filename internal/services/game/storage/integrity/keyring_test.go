package integrity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKeyring(t *testing.T) *Keyring {
	t.Helper()
	ring, err := NewKeyring(map[string][]byte{"v1": []byte("secret"), "v0": []byte("old")}, "v1")
	require.NoError(t, err)
	return ring
}

func TestNewKeyringValidation(t *testing.T) {
	_, err := NewKeyring(nil, "v1")
	require.Error(t, err)
	_, err = NewKeyring(map[string][]byte{"v1": []byte("secret")}, "")
	require.Error(t, err)
	_, err = NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v2")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestKeyringSignAndVerify(t *testing.T) {
	ring := testKeyring(t)

	sig, keyID, err := ring.SignChainHash("g1", "chainhash")
	require.NoError(t, err)
	require.Equal(t, "v1", keyID)
	require.NoError(t, ring.VerifyChainHash("g1", "chainhash", sig, keyID))

	again, _, err := ring.SignChainHash("g1", "chainhash")
	require.NoError(t, err)
	require.Equal(t, sig, again)

	require.ErrorIs(t, ring.VerifyChainHash("g1", "chainhash", sig, ""), ErrUnknownKey)
	require.ErrorIs(t, ring.VerifyChainHash("g1", "chainhash", sig, "unknown"), ErrUnknownKey)
	require.ErrorIs(t, ring.VerifyChainHash("g1", "chainhash", "bad", keyID), ErrBadSignature)
	require.ErrorIs(t, ring.VerifyChainHash("g1", "chainhash", sig, "v0"), ErrBadSignature, "other root key")
	require.ErrorIs(t, ring.VerifyChainHash("g2", "chainhash", sig, keyID), ErrBadSignature, "other game")
	require.Error(t, ring.VerifyChainHash("", "chainhash", sig, keyID))
}

func TestNilKeyring(t *testing.T) {
	var ring *Keyring
	require.Empty(t, ring.ActiveKeyID())
	_, _, err := ring.SignChainHash("g1", "hash")
	require.Error(t, err)
	require.Error(t, ring.VerifyChainHash("g1", "hash", "sig", "v1"))
}
