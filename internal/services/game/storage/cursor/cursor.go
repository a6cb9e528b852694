// Package cursor encodes opaque page tokens for keyset pagination.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMismatch is returned when a token is reused with another filter or
// order.
var ErrMismatch = errors.New("page token does not match request")

// Cursor points just past the last row of a page. Key is the value of the
// sort column and Name breaks ties.
type Cursor struct {
	Key        string `json:"k"`
	Name       string `json:"n"`
	FilterHash string `json:"f,omitempty"`
	OrderHash  string `json:"o,omitempty"`
}

// New returns a cursor after the row (key, name) of a page listed with
// filter and order.
func New(key, name, filter, order string) Cursor {
	return Cursor{Key: key, Name: name, FilterHash: HashFilter(filter), OrderHash: HashFilter(order)}
}

// Encode returns c as a URL-safe token.
func Encode(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a token made by Encode.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, errors.New("page token is empty")
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode page token: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("decode page token: %w", err)
	}
	if c.Name == "" {
		return Cursor{}, errors.New("page token has no position")
	}
	return c, nil
}

// HashFilter returns a short stable hash of a filter or order expression.
// The empty expression hashes to "".
func HashFilter(expr string) string {
	if expr == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(expr))
	return hex.EncodeToString(sum[:8])
}

// Validate checks that c was issued for the same filter and order.
func Validate(c Cursor, filter, order string) error {
	if c.FilterHash != HashFilter(filter) || c.OrderHash != HashFilter(order) {
		return ErrMismatch
	}
	return nil
}
