package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

// GameInfo is a game record as seen by clients.
type GameInfo struct {
	Name      string
	Status    storage.GameStatus
	Owner     string
	Players   int
	CreatedAt time.Time
	StartBy   time.Time
}

// Client calls GameService.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient returns a client over conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGame creates a game seating owner, when set.
func (c *Client) CreateGame(ctx context.Context, name, owner string) (GameInfo, error) {
	req := map[string]any{"game": name}
	if owner != "" {
		req["owner"] = owner
	}
	out, err := c.call(ctx, CreateGameMethod, req)
	if err != nil {
		return GameInfo{}, err
	}
	return gameFromStruct(out), nil
}

// JoinGame seats player in a game.
func (c *Client) JoinGame(ctx context.Context, name, player string) (GameInfo, error) {
	out, err := c.call(ctx, JoinGameMethod, map[string]any{"game": name, "player": player})
	if err != nil {
		return GameInfo{}, err
	}
	return gameFromStruct(out), nil
}

// LeaveGame unseats player. The zero GameInfo means the game was removed.
func (c *Client) LeaveGame(ctx context.Context, name, player string) (GameInfo, error) {
	out, err := c.call(ctx, LeaveGameMethod, map[string]any{"game": name, "player": player})
	if err != nil {
		return GameInfo{}, err
	}
	return gameFromStruct(out), nil
}

// StartGame starts a game as player.
func (c *Client) StartGame(ctx context.Context, name, player string) (GameInfo, error) {
	out, err := c.call(ctx, StartGameMethod, map[string]any{"game": name, "player": player})
	if err != nil {
		return GameInfo{}, err
	}
	return gameFromStruct(out), nil
}

// ListGamesRequest selects a page of games.
type ListGamesRequest struct {
	PageSize  int
	PageToken string
	OrderBy   string
	Status    storage.GameStatus
}

// ListGames returns a page of games and the token of the next one.
func (c *Client) ListGames(ctx context.Context, req ListGamesRequest) ([]GameInfo, string, error) {
	in := map[string]any{}
	if req.PageSize > 0 {
		in["page_size"] = req.PageSize
	}
	if req.PageToken != "" {
		in["page_token"] = req.PageToken
	}
	if req.OrderBy != "" {
		in["order_by"] = req.OrderBy
	}
	if req.Status != "" {
		in["status"] = string(req.Status)
	}
	out, err := c.call(ctx, ListGamesMethod, in)
	if err != nil {
		return nil, "", err
	}
	var games []GameInfo
	for _, v := range out.GetFields()["games"].GetListValue().GetValues() {
		games = append(games, gameFromStruct(v.GetStructValue()))
	}
	return games, out.GetFields()["next_page_token"].GetStringValue(), nil
}

// Do runs op for player with the given arguments and returns the last stored
// sequence of the game.
func (c *Client) Do(ctx context.Context, name, player, op string, args map[string]any) (uint64, error) {
	req := map[string]any{}
	for k, v := range args {
		req[k] = v
	}
	req["game"], req["player"], req["op"] = name, player, op
	out, err := c.call(ctx, DoMethod, req)
	if err != nil {
		return 0, err
	}
	return uint64(out.GetFields()["seq"].GetNumberValue()), nil
}

// Save returns the action history of a game, one encoded action per line.
func (c *Client) Save(ctx context.Context, name, player string) ([]string, error) {
	out, err := c.call(ctx, DoMethod, map[string]any{"game": name, "player": player, "op": opSave})
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, v := range out.GetFields()["lines"].GetListValue().GetValues() {
		lines = append(lines, v.GetStringValue())
	}
	return lines, nil
}

// Query runs a read-only query and returns the raw answer.
func (c *Client) Query(ctx context.Context, name, query string, args map[string]any) (map[string]any, error) {
	req := map[string]any{}
	for k, v := range args {
		req[k] = v
	}
	req["game"], req["query"] = name, query
	out, err := c.call(ctx, QueryMethod, req)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// Snapshot returns the visible state of a game.
func (c *Client) Snapshot(ctx context.Context, name string) (game.Snapshot, error) {
	out, err := c.call(ctx, SnapshotMethod, map[string]any{"game": name})
	if err != nil {
		return game.Snapshot{}, err
	}
	data, err := protojson.Marshal(out)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// PhaseLabels returns the localized names of the current phase and battle
// step of a game, as sent by Snapshot. Send the locale with
// metadata.OutgoingLocale.
func (c *Client) PhaseLabels(ctx context.Context, name string) (phase, battle string, err error) {
	out, err := c.call(ctx, SnapshotMethod, map[string]any{"game": name})
	if err != nil {
		return "", "", err
	}
	fields := out.GetFields()
	return fields["phase_label"].GetStringValue(), fields["battle_phase_label"].GetStringValue(), nil
}

// ActionStream receives the actions of a game.
type ActionStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next action.
func (s *ActionStream) Recv() (storage.ActionRecord, error) {
	msg := new(structpb.Struct)
	if err := s.stream.RecvMsg(msg); err != nil {
		return storage.ActionRecord{}, err
	}
	fields := msg.GetFields()
	rec := storage.ActionRecord{
		Seq:  uint64(fields["seq"].GetNumberValue()),
		Line: fields["line"].GetStringValue(),
	}
	for _, v := range fields["recipients"].GetListValue().GetValues() {
		rec.Recipients = append(rec.Recipients, v.GetStringValue())
	}
	return rec, nil
}

// Actions opens a stream of the actions player may see after seq after.
// Canceling ctx ends the stream.
func (c *Client) Actions(ctx context.Context, name, player string, after uint64) (*ActionStream, error) {
	req := map[string]any{"game": name, "after": float64(after)}
	if player != "" {
		req["player"] = player
	}
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], ActionsMethod)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &ActionStream{stream: stream}, nil
}

func gameFromStruct(s *structpb.Struct) GameInfo {
	fields := s.GetFields()
	info := GameInfo{
		Name:    fields["name"].GetStringValue(),
		Status:  storage.GameStatus(fields["status"].GetStringValue()),
		Owner:   fields["owner"].GetStringValue(),
		Players: int(fields["players"].GetNumberValue()),
	}
	info.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"].GetStringValue())
	info.StartBy, _ = time.Parse(time.RFC3339Nano, fields["start_by"].GetStringValue())
	return info
}
