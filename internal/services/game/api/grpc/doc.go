// Package grpc groups the gRPC transport of the game service: the
// GameService itself, request metadata and server interceptors.
package grpc
