// Package hmackey mints keys for signing the action log and prints them as
// environment assignments for the game server.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/legions/internal/platform/config"
	"github.com/louisbranch/legions/internal/services/game/storage/integrity"
)

// Config selects what to print. Without KeyID a single key is printed for
// LEGIONS_ACTION_HMAC_KEY. With KeyID the new key is appended to Existing,
// the current LEGIONS_ACTION_HMAC_KEYS, and made active, so logs signed by
// the older keys still verify.
type Config struct {
	Bytes    int    `env:"LEGIONS_HMAC_KEY_BYTES" envDefault:"32"`
	KeyID    string
	Existing string `env:"LEGIONS_ACTION_HMAC_KEYS"`
}

// ParseConfig reads the environment, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "random bytes per key")
	fs.StringVar(&cfg.KeyID, "id", "", "rotate: add the key under this id and make it active")
	fs.StringVar(&cfg.Existing, "keys", cfg.Existing, "rotate: current id=secret list to keep")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run mints a key from random, crypto/rand when nil, and writes the
// assignments to out. Rotation output is checked by building the keyring
// the server would build from it.
func Run(cfg Config, out io.Writer, random io.Reader) error {
	switch {
	case cfg.Bytes <= 0:
		return errors.New("bytes must be positive")
	case out == nil:
		return errors.New("no output")
	}
	id := strings.TrimSpace(cfg.KeyID)
	if strings.ContainsAny(id, "=, ") {
		return fmt.Errorf("key id %q may not hold '=', ',' or spaces", id)
	}
	if random == nil {
		random = rand.Reader
	}

	raw := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(random, raw); err != nil {
		return fmt.Errorf("read random bytes: %w", err)
	}
	secret := hex.EncodeToString(raw)
	if id == "" {
		_, err := fmt.Fprintf(out, "LEGIONS_ACTION_HMAC_KEY=%s\n", secret)
		return err
	}

	entries := []string{}
	for entry := range strings.SplitSeq(cfg.Existing, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if old, _, _ := strings.Cut(entry, "="); strings.TrimSpace(old) == id {
			return fmt.Errorf("key id %s is already in use", id)
		}
		entries = append(entries, entry)
	}
	keys := strings.Join(append(entries, id+"="+secret), ",")
	if _, err := integrity.KeyringFromConfig(integrity.KeyConfig{Keys: keys, KeyID: id}); err != nil {
		return fmt.Errorf("rotated keys: %w", err)
	}
	_, err := fmt.Fprintf(out, "LEGIONS_ACTION_HMAC_KEYS=%s\nLEGIONS_ACTION_HMAC_KEY_ID=%s\n", keys, id)
	return err
}
