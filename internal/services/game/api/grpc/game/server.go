package game

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/platform/grpc/pagination"
	i18ncatalog "github.com/louisbranch/legions/internal/platform/i18n/catalog"
	grpcmeta "github.com/louisbranch/legions/internal/services/game/api/grpc/metadata"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/lobby"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

const (
	defaultListGamesPageSize = 20
	maxListGamesPageSize     = 100

	opSave = "save"
)

// Lobby is the part of the lobby the service calls.
type Lobby interface {
	Create(ctx context.Context, name, owner string) (storage.GameRecord, error)
	Join(ctx context.Context, name, player string) error
	Leave(ctx context.Context, name, player string) error
	Start(ctx context.Context, name, player string) error
	Get(ctx context.Context, name string) (storage.GameRecord, error)
	List(ctx context.Context, req storage.ListGamesRequest) (storage.ListGamesResult, error)
	Snapshot(ctx context.Context, name string) (game.Snapshot, error)
	Do(ctx context.Context, name string, fn func(*game.Game) error) error
	LatestSeq(ctx context.Context, name string) (uint64, error)
	Stream(ctx context.Context, name, player string, after uint64, send func(storage.ActionRecord) error) error
}

// Server implements GameService on top of a lobby.
type Server struct {
	lobby Lobby
	log   zerolog.Logger
}

// NewServer returns a GameService server.
func NewServer(lb Lobby, log zerolog.Logger) *Server {
	return &Server{lobby: lb, log: log}
}

// CreateGame creates a game.
//
// Request: {"game": string, "owner": string?}. Response: a game record.
func (s *Server) CreateGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a := newArgs(in)
	name, owner := a.str("game"), a.optStr("owner")
	if a.err != nil {
		return nil, a.err
	}
	rec, err := s.lobby.Create(ctx, name, owner)
	if err != nil {
		return nil, err
	}
	return gameToStruct(rec)
}

// JoinGame seats a player. Request: {"game", "player"}. Response: a game record.
func (s *Server) JoinGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.lobbyCall(ctx, in, s.lobby.Join)
}

// LeaveGame unseats a player before the game starts. A game left empty is
// removed and the response is empty.
func (s *Server) LeaveGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.lobbyCall(ctx, in, s.lobby.Leave)
}

// StartGame starts a game on behalf of its owner.
func (s *Server) StartGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.lobbyCall(ctx, in, s.lobby.Start)
}

func (s *Server) lobbyCall(ctx context.Context, in *structpb.Struct, call func(context.Context, string, string) error) (*structpb.Struct, error) {
	a := newArgs(in)
	name, player := a.str("game"), a.str("player")
	if a.err != nil {
		return nil, a.err
	}
	if err := call(ctx, name, player); err != nil {
		return nil, err
	}
	rec, err := s.lobby.Get(ctx, name)
	if apperrors.GetCode(err) == apperrors.CodeGameNotFound {
		return &structpb.Struct{}, nil
	}
	if err != nil {
		return nil, err
	}
	return gameToStruct(rec)
}

// ListGames returns a page of games.
//
// Request: {"page_size": number?, "page_token": string?, "order_by":
// "created_at"|"name"?, "status": string?}. Response: {"games": [...],
// "next_page_token": string}.
func (s *Server) ListGames(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a := newArgs(in)
	size := a.optInt("page_size")
	token, orderBy, statusFilter := a.optStr("page_token"), a.optStr("order_by"), a.optStr("status")
	if a.err != nil {
		return nil, a.err
	}
	orderBy, err := pagination.NormalizeOrderBy(orderBy, pagination.OrderByConfig{
		Default: "created_at",
		Allowed: []string{"created_at", "name"},
	})
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, err.Error(), map[string]string{"Field": "order_by"}, err)
	}
	switch storage.GameStatus(statusFilter) {
	case "", storage.GameOpen, storage.GameRunning, storage.GameOver, storage.GameFailed:
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown status "+statusFilter).With("Field", "status")
	}

	page, err := s.lobby.List(ctx, storage.ListGamesRequest{
		PageSize: pagination.ClampPageSize(size, pagination.PageSizeConfig{
			Default: defaultListGamesPageSize,
			Max:     maxListGamesPageSize,
		}),
		PageToken: token,
		OrderBy:   orderBy,
		Status:    storage.GameStatus(statusFilter),
	})
	if err != nil {
		if token != "" {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, "list games: "+err.Error(), map[string]string{"Field": "page_token"}, err)
		}
		return nil, err
	}

	games := make([]any, 0, len(page.Games))
	for _, rec := range page.Games {
		games = append(games, gameToMap(rec))
	}
	return structpb.NewStruct(map[string]any{
		"games":           games,
		"next_page_token": page.NextPageToken,
	})
}

// Do runs one mutator for a player.
//
// Request: {"game", "player", "op", ...op arguments}. Response:
// {"seq": last stored action}; the "save" op also returns {"lines": [...]}.
func (s *Server) Do(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a := newArgs(in)
	name, player, opName := a.str("game"), a.str("player"), a.str("op")
	if a.err != nil {
		return nil, a.err
	}

	out := map[string]any{}
	var fn func(*game.Game) error
	if opName == opSave {
		fn = func(g *game.Game) error {
			var buf bytes.Buffer
			if err := g.Save(&buf); err != nil {
				return err
			}
			lines := []any{}
			for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
				if line != "" {
					lines = append(lines, line)
				}
			}
			out["lines"] = lines
			return nil
		}
	} else {
		run, ok := ops[opName]
		if !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeUnknownOperation, "unknown op "+opName, map[string]string{"Op": opName})
		}
		fn = func(g *game.Game) error { return run(g, player, a) }
	}

	if err := s.lobby.Do(ctx, name, fn); err != nil {
		return nil, err
	}
	seq, err := s.lobby.LatestSeq(ctx, name)
	if err != nil {
		return nil, err
	}
	out["seq"] = float64(seq)
	return structpb.NewStruct(out)
}

// Query answers a read-only rules question about a game.
//
// Request: {"game", "query": "legal_moves"|"recruits"|"engagements"|
// "colors_left", "marker"?}.
func (s *Server) Query(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a := newArgs(in)
	name, query := a.str("game"), a.str("query")
	if a.err != nil {
		return nil, a.err
	}
	var out map[string]any
	err := s.lobby.Do(ctx, name, func(g *game.Game) error {
		var err error
		out, err = runQuery(g, query, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(out)
}

func runQuery(g *game.Game, query string, a *args) (map[string]any, error) {
	switch query {
	case "legal_moves":
		marker := a.str("marker")
		if a.err != nil {
			return nil, a.err
		}
		moves := []any{}
		for _, m := range g.LegalMoves(marker) {
			moves = append(moves, map[string]any{"hex": m.Hex, "entry_side": m.EntrySide})
		}
		return map[string]any{"moves": moves}, nil
	case "recruits":
		marker := a.str("marker")
		if a.err != nil {
			return nil, a.err
		}
		l, ok := g.Legion(marker)
		if !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeLegionNotFound, "no such legion", map[string]string{"Marker": marker})
		}
		recruits := []any{}
		for _, r := range g.RecruitableBy(l) {
			recruits = append(recruits, map[string]any{"creature": r.Name, "recruiters": toAnySlice(r.Recruiters)})
		}
		return map[string]any{"recruits": recruits}, nil
	case "engagements":
		hexes := []any{}
		for _, hex := range g.Engagements() {
			hexes = append(hexes, hex)
		}
		return map[string]any{"hexes": hexes}, nil
	case "colors_left":
		return map[string]any{"colors": toAnySlice(g.ColorsLeft()), "next_picker": g.NextColorPicker()}, nil
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeUnknownOperation, "unknown query "+query, map[string]string{"Op": query})
	}
}

// Snapshot returns the visible state of a game. Request: {"game"}.
func (s *Server) Snapshot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a := newArgs(in)
	name := a.str("game")
	if a.err != nil {
		return nil, a.err
	}
	snap, err := s.lobby.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "encode snapshot", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "encode snapshot", err)
	}
	addPhaseLabels(out, snap, grpcmeta.LocaleFromContext(ctx))
	return out, nil
}

// Actions streams the encoded actions of a game after a sequence, first
// from the log and then live.
//
// Request: {"game", "player"?, "after"?}. Each message: {"seq", "line",
// "recipients"?}. Without a player only public actions are sent.
func (s *Server) Actions(in *structpb.Struct, stream grpc.ServerStream) error {
	a := newArgs(in)
	name, player, after := a.str("game"), a.optStr("player"), a.seq("after")
	if a.err != nil {
		return a.err
	}
	ctx := stream.Context()
	s.log.Debug().Str("game", name).Str("player", player).Uint64("after", after).Msg("action stream opened")

	err := s.lobby.Stream(ctx, name, player, after, func(rec storage.ActionRecord) error {
		msg, err := structpb.NewStruct(actionToMap(rec))
		if err != nil {
			return err
		}
		return stream.SendMsg(msg)
	})
	switch {
	case errors.Is(err, lobby.ErrStreamClosed):
		return nil
	case errors.Is(err, lobby.ErrSlowSubscriber):
		return status.Error(codes.ResourceExhausted, err.Error())
	}
	return err
}

// addPhaseLabels names the current phase, and the battle step if any, in
// the caller's language.
func addPhaseLabels(out *structpb.Struct, snap game.Snapshot, locale string) {
	labels := i18ncatalog.Default()
	if snap.Phase != "" {
		out.Fields["phase_label"] = structpb.NewStringValue(labels.Label(locale, i18ncatalog.LabelKey("phase", string(snap.Phase))))
	}
	if snap.Battle != nil {
		out.Fields["battle_phase_label"] = structpb.NewStringValue(labels.Label(locale, i18ncatalog.LabelKey("battle", string(snap.Battle.Phase))))
	}
}

func gameToMap(rec storage.GameRecord) map[string]any {
	m := map[string]any{
		"name":       rec.Name,
		"status":     string(rec.Status),
		"owner":      rec.Owner,
		"players":    rec.Players,
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !rec.StartBy.IsZero() {
		m["start_by"] = rec.StartBy.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func gameToStruct(rec storage.GameRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(gameToMap(rec))
}

func actionToMap(rec storage.ActionRecord) map[string]any {
	m := map[string]any{
		"seq":  float64(rec.Seq),
		"line": rec.Line,
	}
	if len(rec.Recipients) > 0 {
		m["recipients"] = toAnySlice(rec.Recipients)
	}
	return m
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
