// Package random seeds the game dice.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// NewSeed returns a dice seed read from crypto/rand.
func NewSeed() (int64, error) {
	return seedFrom(crand.Reader)
}

// seedFrom reads a seed from r. Authoritative games draw one per game so
// the dice sequence can be reproduced from the seed alone.
func seedFrom(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read dice seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
