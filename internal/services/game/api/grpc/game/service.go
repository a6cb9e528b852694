// Package game exposes the lobby and the rules engine over gRPC.
//
// GameService is registered by hand: every request and response is a
// google.protobuf.Struct whose fields are documented on each method.
//   - CreateGame, JoinGame, LeaveGame, StartGame -> lobby lifecycle
//   - ListGames -> paged registry listing
//   - Do -> any game mutator, named by "op"
//   - Query -> read-only rule queries (legal moves, recruits, engagements)
//   - Snapshot -> the visible game state
//   - Actions -> server stream of encoded actions after a sequence
package game

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "legions.v1.GameService"

// Full method names.
const (
	CreateGameMethod = "/" + ServiceName + "/CreateGame"
	JoinGameMethod   = "/" + ServiceName + "/JoinGame"
	LeaveGameMethod  = "/" + ServiceName + "/LeaveGame"
	StartGameMethod  = "/" + ServiceName + "/StartGame"
	ListGamesMethod  = "/" + ServiceName + "/ListGames"
	DoMethod         = "/" + ServiceName + "/Do"
	QueryMethod      = "/" + ServiceName + "/Query"
	SnapshotMethod   = "/" + ServiceName + "/Snapshot"
	ActionsMethod    = "/" + ServiceName + "/Actions"
)

// GameServiceServer is the server API of GameService.
type GameServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	JoinGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LeaveGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGames(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Do(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Query(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Actions(*structpb.Struct, grpc.ServerStream) error
}

type unaryCall func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GameServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func actionsHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(GameServiceServer).Actions(in, stream)
}

// ServiceDesc describes GameService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateGame", GameServiceServer.CreateGame),
		unaryMethod("JoinGame", GameServiceServer.JoinGame),
		unaryMethod("LeaveGame", GameServiceServer.LeaveGame),
		unaryMethod("StartGame", GameServiceServer.StartGame),
		unaryMethod("ListGames", GameServiceServer.ListGames),
		unaryMethod("Do", GameServiceServer.Do),
		unaryMethod("Query", GameServiceServer.Query),
		unaryMethod("Snapshot", GameServiceServer.Snapshot),
	},
	Streams: []grpc.StreamDesc{{
		StreamName:    "Actions",
		Handler:       actionsHandler,
		ServerStreams: true,
	}},
	Metadata: "legions/v1/game.proto",
}

// RegisterGameServiceServer registers srv with s.
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
