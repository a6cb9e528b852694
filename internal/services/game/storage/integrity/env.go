package integrity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/legions/internal/platform/config"
)

const defaultKeyID = "v1"

// ErrKeyNotConfigured is returned by KeyringFromEnv when no key is set. The
// action log is then hashed but not signed.
var ErrKeyNotConfigured = errors.New("action log hmac key is not configured")

// KeyConfig holds the signing keys. Keys is a comma separated list of
// id=secret pairs and wins over the single Key.
type KeyConfig struct {
	Key   string `env:"LEGIONS_ACTION_HMAC_KEY"`
	Keys  string `env:"LEGIONS_ACTION_HMAC_KEYS"`
	KeyID string `env:"LEGIONS_ACTION_HMAC_KEY_ID"`
}

// KeyringFromEnv loads the HMAC keyring from environment variables.
func KeyringFromEnv() (*Keyring, error) {
	var cfg KeyConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return KeyringFromConfig(cfg)
}

// KeyringFromConfig builds a keyring from cfg.
func KeyringFromConfig(cfg KeyConfig) (*Keyring, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(cfg.Keys)
	if keySpec == "" {
		raw := strings.TrimSpace(cfg.Key)
		if raw == "" {
			return nil, ErrKeyNotConfigured
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id, value = strings.TrimSpace(id), strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid hmac key entry %q", entry)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
