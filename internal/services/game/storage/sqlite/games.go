package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/legions/internal/services/game/storage"
	"github.com/louisbranch/legions/internal/services/game/storage/cursor"
)

const (
	orderByName      = "name"
	orderByCreatedAt = "created_at"
)

// PutGame inserts or replaces a registry entry. CreatedAt is kept from the
// first insert; UpdatedAt is set to now.
func (s *Store) PutGame(ctx context.Context, rec storage.GameRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("game name is required")
	}
	if rec.Status == "" {
		rec.Status = storage.GameOpen
	}
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO games (name, status, owner, players, created_at, updated_at, start_by)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    status = excluded.status,
    owner = excluded.owner,
    players = excluded.players,
    updated_at = excluded.updated_at,
    start_by = excluded.start_by`,
		rec.Name, string(rec.Status), rec.Owner, rec.Players,
		toMillis(rec.CreatedAt), toMillis(now), toNullMillis(rec.StartBy),
	); err != nil {
		return fmt.Errorf("put game: %w", err)
	}
	return nil
}

// GetGame returns the registry entry of name.
func (s *Store) GetGame(ctx context.Context, name string) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT name, status, owner, players, created_at, updated_at, start_by
FROM games WHERE name = ?`, name)
	rec, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	return rec, nil
}

// DeleteGame removes a game and its action log.
func (s *Store) DeleteGame(ctx context.Context, name string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE game = ?`, name); err != nil {
		return fmt.Errorf("delete actions: %w", err)
	}
	return tx.Commit()
}

// ListGames returns a page of games ordered by name or creation time.
func (s *Store) ListGames(ctx context.Context, req storage.ListGamesRequest) (storage.ListGamesResult, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ListGamesResult{}, err
	}
	if req.PageSize <= 0 {
		return storage.ListGamesResult{}, fmt.Errorf("page size must be greater than zero")
	}
	orderBy := req.OrderBy
	if orderBy == "" {
		orderBy = orderByCreatedAt
	}
	if orderBy != orderByName && orderBy != orderByCreatedAt {
		return storage.ListGamesResult{}, fmt.Errorf("invalid order_by: %s", orderBy)
	}
	filter := ""
	if req.Status != "" {
		filter = "status=" + string(req.Status)
	}

	var where []string
	var args []any
	if req.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(req.Status))
	}
	if req.PageToken != "" {
		c, err := cursor.Decode(req.PageToken)
		if err != nil {
			return storage.ListGamesResult{}, err
		}
		if err := cursor.Validate(c, filter, orderBy); err != nil {
			return storage.ListGamesResult{}, err
		}
		switch orderBy {
		case orderByName:
			where = append(where, "name > ?")
			args = append(args, c.Name)
		case orderByCreatedAt:
			createdAt, err := strconv.ParseInt(c.Key, 10, 64)
			if err != nil {
				return storage.ListGamesResult{}, fmt.Errorf("decode page token: %w", err)
			}
			where = append(where, "(created_at > ? OR (created_at = ? AND name > ?))")
			args = append(args, createdAt, createdAt, c.Name)
		}
	}

	query := `SELECT name, status, owner, players, created_at, updated_at, start_by FROM games`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if orderBy == orderByName {
		query += " ORDER BY name"
	} else {
		query += " ORDER BY created_at, name"
	}
	query += " LIMIT ?"
	args = append(args, req.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.ListGamesResult{}, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []storage.GameRecord
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return storage.ListGamesResult{}, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.ListGamesResult{}, fmt.Errorf("iterate games: %w", err)
	}

	result := storage.ListGamesResult{Games: games}
	if len(games) > req.PageSize {
		result.Games = games[:req.PageSize]
		last := result.Games[len(result.Games)-1]
		token, err := cursor.Encode(cursor.New(strconv.FormatInt(toMillis(last.CreatedAt), 10), last.Name, filter, orderBy))
		if err != nil {
			return storage.ListGamesResult{}, err
		}
		result.NextPageToken = token
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (storage.GameRecord, error) {
	var rec storage.GameRecord
	var status string
	var createdAt, updatedAt int64
	var startBy sql.NullInt64
	if err := row.Scan(&rec.Name, &status, &rec.Owner, &rec.Players, &createdAt, &updatedAt, &startBy); err != nil {
		return storage.GameRecord{}, err
	}
	rec.Status = storage.GameStatus(status)
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	rec.StartBy = fromNullMillis(startBy)
	return rec, nil
}
