// Package server composes the game process.
//
// It opens the action-log store, runs the lobby, and serves GameService over
// gRPC next to the websocket action stream over HTTP. Serve stops all three
// together when its context ends.
package server
