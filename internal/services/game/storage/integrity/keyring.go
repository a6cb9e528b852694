package integrity

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownKey means a signature names a key id the keyring lacks.
	ErrUnknownKey = errors.New("unknown hmac key id")
	// ErrBadSignature means a chain hash signature does not verify.
	ErrBadSignature = errors.New("chain hash signature mismatch")

	errNoKeyring = errors.New("hmac keyring is not configured")
)

// Keyring signs chain hashes. Each root key is stretched into one key per
// game, so a key recovered from one game's log signs nothing else.
type Keyring struct {
	roots  map[string][]byte
	active string

	mu      sync.Mutex
	derived map[gameKeyID][]byte
}

type gameKeyID struct {
	root string
	game string
}

// NewKeyring returns a keyring signing with roots[active] and verifying with
// any key in roots. Rotating keys keeps the old ids in roots.
func NewKeyring(roots map[string][]byte, active string) (*Keyring, error) {
	active = strings.TrimSpace(active)
	switch {
	case len(roots) == 0:
		return nil, errors.New("at least one hmac key is required")
	case active == "":
		return nil, errors.New("active hmac key id is required")
	case roots[active] == nil:
		return nil, fmt.Errorf("active hmac key %q: %w", active, ErrUnknownKey)
	}
	return &Keyring{roots: roots, active: active, derived: map[gameKeyID][]byte{}}, nil
}

// ActiveKeyID is the id stamped on new signatures.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.active
}

// SignChainHash returns the signature of chainHash for a game and the id of
// the key that made it.
func (k *Keyring) SignChainHash(game, chainHash string) (sig, keyID string, err error) {
	if k == nil {
		return "", "", errNoKeyring
	}
	key, err := k.gameKey(k.active, game)
	if err != nil {
		return "", "", err
	}
	return sign(key, chainHash), k.active, nil
}

// VerifyChainHash checks a signature made by SignChainHash with keyID.
func (k *Keyring) VerifyChainHash(game, chainHash, sig, keyID string) error {
	if k == nil {
		return errNoKeyring
	}
	key, err := k.gameKey(strings.TrimSpace(keyID), game)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(sign(key, chainHash)), []byte(sig)) {
		return ErrBadSignature
	}
	return nil
}

func (k *Keyring) gameKey(root, game string) ([]byte, error) {
	game = strings.TrimSpace(game)
	if game == "" {
		return nil, errors.New("game name is required to derive a key")
	}
	secret, ok := k.roots[root]
	if !ok || root == "" {
		return nil, fmt.Errorf("key %q: %w", root, ErrUnknownKey)
	}

	id := gameKeyID{root: root, game: game}
	k.mu.Lock()
	defer k.mu.Unlock()
	if key, ok := k.derived[id]; ok {
		return key, nil
	}
	key, err := hkdf.Key(sha256.New, secret, nil, "game:"+game, sha256.Size)
	if err != nil {
		return nil, fmt.Errorf("derive key for %s: %w", game, err)
	}
	k.derived[id] = key
	return key, nil
}

func sign(key []byte, chainHash string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(chainHash))
	return hex.EncodeToString(mac.Sum(nil))
}
