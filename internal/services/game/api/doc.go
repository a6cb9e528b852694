// Package api contains the network surfaces of the game service.
//
// API handlers are organized by transport:
//   - grpc/game: the GameService (lobby, mutators, snapshots, action stream)
//   - grpc/metadata: request metadata helpers and interceptors
//   - grpc/interceptors: cross-cutting gRPC middleware
//   - ws: the websocket action stream followed by mirror clients
package api
