package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/legions/internal/services/game/storage"
	"github.com/louisbranch/legions/internal/services/game/storage/integrity"
)

const verifyPageSize = 200

// AppendAction atomically appends an encoded action line to a game's log
// and returns it with its sequence number and hashes set. Recipients are
// covered by the action hash.
func (s *Store) AppendAction(ctx context.Context, game, line string, recipients ...string) (storage.ActionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ActionRecord{}, err
	}
	if strings.TrimSpace(game) == "" {
		return storage.ActionRecord{}, fmt.Errorf("game name is required")
	}
	if strings.TrimSpace(line) == "" {
		return storage.ActionRecord{}, fmt.Errorf("action line is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.ActionRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec := storage.ActionRecord{Game: game, Line: line, Recipients: recipients, RecordedAt: s.now().UTC().Truncate(time.Millisecond)}

	var last sql.NullInt64
	var prevChain sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT seq, chain_hash FROM actions WHERE game = ? ORDER BY seq DESC LIMIT 1`, game,
	).Scan(&last, &prevChain)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return storage.ActionRecord{}, fmt.Errorf("load previous action: %w", err)
	}
	rec.Seq = uint64(last.Int64) + 1
	rec.PrevHash = prevChain.String

	if err := s.seal(&rec); err != nil {
		return storage.ActionRecord{}, err
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO actions (game, seq, line, recipients, hash, prev_hash, chain_hash, signature, signature_key_id, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Game, int64(rec.Seq), rec.Line, joinRecipients(rec.Recipients), rec.Hash, rec.PrevHash, rec.ChainHash,
		rec.Signature, rec.SignatureKeyID, toMillis(rec.RecordedAt),
	); err != nil {
		if isConstraintError(err) {
			return storage.ActionRecord{}, fmt.Errorf("append action game=%s seq=%d: concurrent append: %w", game, rec.Seq, err)
		}
		return storage.ActionRecord{}, fmt.Errorf("append action: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.ActionRecord{}, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug().Str("game", game).Uint64("seq", rec.Seq).Msg("appended action")
	return rec, nil
}

// seal computes the hashes and signature of rec.
func (s *Store) seal(rec *storage.ActionRecord) error {
	hash, err := integrity.ActionHash(integrity.Entry{Game: rec.Game, Seq: rec.Seq, Line: rec.Line, Recipients: rec.Recipients})
	if err != nil {
		return fmt.Errorf("compute action hash: %w", err)
	}
	chainHash, err := integrity.ChainHash(hash, rec.PrevHash)
	if err != nil {
		return fmt.Errorf("compute chain hash: %w", err)
	}
	rec.Hash = hash
	rec.ChainHash = chainHash
	if s.keyring == nil {
		return nil
	}
	sig, keyID, err := s.keyring.SignChainHash(rec.Game, chainHash)
	if err != nil {
		return fmt.Errorf("sign chain hash: %w", err)
	}
	rec.Signature = sig
	rec.SignatureKeyID = keyID
	return nil
}

// ListActions returns up to limit actions of game after afterSeq, in order.
func (s *Store) ListActions(ctx context.Context, game string, afterSeq uint64, limit int) ([]storage.ActionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(game) == "" {
		return nil, fmt.Errorf("game name is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT game, seq, line, recipients, hash, prev_hash, chain_hash, signature, signature_key_id, recorded_at
FROM actions WHERE game = ? AND seq > ? ORDER BY seq LIMIT ?`,
		game, int64(afterSeq), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var out []storage.ActionRecord
	for rows.Next() {
		var rec storage.ActionRecord
		var seq, recordedAt int64
		var recipients string
		if err := rows.Scan(&rec.Game, &seq, &rec.Line, &recipients, &rec.Hash, &rec.PrevHash, &rec.ChainHash,
			&rec.Signature, &rec.SignatureKeyID, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.Seq = uint64(seq)
		rec.Recipients = splitRecipients(recipients)
		rec.RecordedAt = fromMillis(recordedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return out, nil
}

// LatestSeq returns the last sequence number of game, or 0 when its log is
// empty.
func (s *Store) LatestSeq(ctx context.Context, game string) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if strings.TrimSpace(game) == "" {
		return 0, fmt.Errorf("game name is required")
	}
	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM actions WHERE game = ?`, game,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get latest seq: %w", err)
	}
	return uint64(seq), nil
}

// VerifyChain walks the log of game and checks sequence continuity, every
// hash and, with a keyring, every signature. Failures wrap
// storage.ErrCorruptLog.
func (s *Store) VerifyChain(ctx context.Context, game string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	var lastSeq uint64
	prevChainHash := ""
	for {
		recs, err := s.ListActions(ctx, game, lastSeq, verifyPageSize)
		if err != nil {
			return fmt.Errorf("list actions game=%s: %w", game, err)
		}
		if len(recs) == 0 {
			return nil
		}
		for _, rec := range recs {
			if err := s.verifyRecord(rec, lastSeq, prevChainHash); err != nil {
				return fmt.Errorf("%w: game=%s seq=%d: %v", storage.ErrCorruptLog, game, rec.Seq, err)
			}
			prevChainHash = rec.ChainHash
			lastSeq = rec.Seq
		}
	}
}

func (s *Store) verifyRecord(rec storage.ActionRecord, lastSeq uint64, prevChainHash string) error {
	if rec.Seq != lastSeq+1 {
		return fmt.Errorf("sequence gap, expected %d", lastSeq+1)
	}
	if rec.PrevHash != prevChainHash {
		return errors.New("prev hash mismatch")
	}
	hash, err := integrity.ActionHash(integrity.Entry{Game: rec.Game, Seq: rec.Seq, Line: rec.Line, Recipients: rec.Recipients})
	if err != nil {
		return err
	}
	if hash != rec.Hash {
		return errors.New("action hash mismatch")
	}
	chainHash, err := integrity.ChainHash(hash, prevChainHash)
	if err != nil {
		return err
	}
	if chainHash != rec.ChainHash {
		return errors.New("chain hash mismatch")
	}
	if s.keyring == nil {
		return nil
	}
	if err := s.keyring.VerifyChainHash(rec.Game, chainHash, rec.Signature, rec.SignatureKeyID); err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	return nil
}

func joinRecipients(names []string) string {
	return strings.Join(names, "\n")
}

func splitRecipients(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, "\n")
}
