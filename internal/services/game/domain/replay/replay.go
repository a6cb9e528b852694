// Package replay rebuilds a game from its stored action log.
package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

const defaultPageSize = 200

var (
	// ErrStoreRequired indicates a missing action store.
	ErrStoreRequired = errors.New("action store is required")
	// ErrGameRequired indicates a missing target game.
	ErrGameRequired = errors.New("game is required")
	// ErrSequenceGap indicates the log skipped a sequence number.
	ErrSequenceGap = errors.New("action sequence gap")
)

// ActionLister lists stored actions in sequence order.
type ActionLister interface {
	ListActions(ctx context.Context, game string, afterSeq uint64, limit int) ([]storage.ActionRecord, error)
}

// Options bounds a replay. AfterSeq is the last sequence already in the
// game; UntilSeq stops after that sequence when non-zero.
type Options struct {
	AfterSeq uint64
	UntilSeq uint64
	PageSize int
}

// Result reports how far a replay got.
type Result struct {
	LastSeq uint64
	Applied int
}

// Replay applies the stored actions of g's log to g in order, page by page.
// On error the result holds the last sequence that was applied.
func Replay(ctx context.Context, store ActionLister, g *game.Game, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrStoreRequired
	}
	if g == nil {
		return Result{}, ErrGameRequired
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{LastSeq: options.AfterSeq}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		recs, err := store.ListActions(ctx, g.Name, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(recs) == 0 {
			return result, nil
		}
		for _, rec := range recs {
			if options.UntilSeq > 0 && rec.Seq > options.UntilSeq {
				return result, nil
			}
			if expected := result.LastSeq + 1; rec.Seq != expected {
				return result, fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, expected, rec.Seq)
			}
			a, err := action.Decode(rec.Line)
			if err != nil {
				return result, fmt.Errorf("decode action seq=%d: %w", rec.Seq, err)
			}
			if err := g.Apply(a); err != nil {
				return result, fmt.Errorf("replay action seq=%d: %w", rec.Seq, err)
			}
			result.LastSeq = rec.Seq
			result.Applied++
		}
	}
}
