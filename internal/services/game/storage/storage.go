package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrCorruptLog indicates a stored action log failed its integrity check.
var ErrCorruptLog = apperrors.New(apperrors.CodeCorruptLog, "action log failed integrity check")

// GameStatus is the lifecycle state of a registered game.
type GameStatus string

const (
	GameOpen    GameStatus = "open"
	GameRunning GameStatus = "running"
	GameOver    GameStatus = "over"
	GameFailed  GameStatus = "failed"
)

// GameRecord is the registry entry for one game.
type GameRecord struct {
	Name      string
	Status    GameStatus
	Owner     string
	Players   int
	CreatedAt time.Time
	UpdatedAt time.Time
	// StartBy is the deadline for an open game to start. Zero means none.
	StartBy time.Time
}

// ActionRecord is one line of a game's action log.
type ActionRecord struct {
	Game           string
	Seq            uint64
	Line           string
	// Recipients restricts who may see the action. Empty means everyone.
	Recipients     []string
	Hash           string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
	RecordedAt     time.Time
}

// ListGamesRequest selects a page of games.
type ListGamesRequest struct {
	PageSize  int
	PageToken string
	// OrderBy is "name" or "created_at".
	OrderBy string
	// Status filters by lifecycle state when set.
	Status GameStatus
}

// ListGamesResult is a page of games and the token for the next one.
type ListGamesResult struct {
	Games         []GameRecord
	NextPageToken string
}

// ActionStore is the append-only action log.
type ActionStore interface {
	// AppendAction stores an encoded action line visible to recipients, or
	// to everyone when none are given, and assigns its sequence number,
	// starting at 1 for each game.
	AppendAction(ctx context.Context, game, line string, recipients ...string) (ActionRecord, error)
	// ListActions returns up to limit actions with a sequence above afterSeq.
	ListActions(ctx context.Context, game string, afterSeq uint64, limit int) ([]ActionRecord, error)
	// LatestSeq returns the last sequence number, or 0 for an empty log.
	LatestSeq(ctx context.Context, game string) (uint64, error)
	// VerifyChain checks the hash chain of a game's log.
	VerifyChain(ctx context.Context, game string) error
}

// GameStore is the game registry.
type GameStore interface {
	PutGame(ctx context.Context, rec GameRecord) error
	GetGame(ctx context.Context, name string) (GameRecord, error)
	ListGames(ctx context.Context, req ListGamesRequest) (ListGamesResult, error)
	DeleteGame(ctx context.Context, name string) error
}

// Store is everything the game server persists.
type Store interface {
	ActionStore
	GameStore
}
