// Package storage defines the persistence contracts of the game server: the
// append-only action log each game is rebuilt from, and the game registry
// the lobby lists and restores.
//
// Implementations live in subpackages. Missing records are reported as
// ErrNotFound.
package storage
