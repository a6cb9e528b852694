package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// ErrHashRequired is returned when a chain link is built from an empty
// action hash.
var ErrHashRequired = errors.New("action hash is required")

// Entry is the hashed part of a stored action.
type Entry struct {
	Game       string
	Seq        uint64
	Line       string
	Recipients []string
}

type canonicalEntry struct {
	Game       string   `json:"game"`
	Seq        uint64   `json:"seq"`
	Line       string   `json:"line"`
	Recipients []string `json:"recipients,omitempty"`
}

type canonicalLink struct {
	Hash     string `json:"hash"`
	PrevHash string `json:"prev_hash"`
}

// ActionHash computes the content hash of one stored action.
func ActionHash(e Entry) (string, error) {
	if strings.TrimSpace(e.Game) == "" {
		return "", errors.New("game name is required")
	}
	return hashJSON(canonicalEntry{Game: e.Game, Seq: e.Seq, Line: e.Line, Recipients: e.Recipients})
}

// ChainHash links an action hash to the chain hash of its predecessor. The
// first action of a game has an empty predecessor.
func ChainHash(hash, prevHash string) (string, error) {
	if strings.TrimSpace(hash) == "" {
		return "", ErrHashRequired
	}
	return hashJSON(canonicalLink{Hash: hash, PrevHash: prevHash})
}

func hashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
