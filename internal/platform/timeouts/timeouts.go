// Package timeouts defines the timeout constants shared across the game
// server, its transports and its clients.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single unary call made by a game client.
const GRPCRequest = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers and telemetry wait for in-flight work
// during graceful shutdown.
const Shutdown = 5 * time.Second

// WebsocketWrite bounds a single websocket frame write.
const WebsocketWrite = 10 * time.Second

// WebsocketPing is the interval between keepalive pings on an action stream.
const WebsocketPing = 30 * time.Second
