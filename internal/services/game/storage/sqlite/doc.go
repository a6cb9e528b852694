// Package sqlite is the SQLite backend of the game server: the append-only
// action log with its integrity chain, and the game registry.
//
// The schema is applied from embedded migrations when the store opens.
package sqlite
