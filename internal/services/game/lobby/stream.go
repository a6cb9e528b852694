package lobby

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

const streamPageSize = 200

// ErrStreamClosed is returned by Stream when the hub ends the subscription.
var ErrStreamClosed = errors.New("action stream closed")

// ErrSlowSubscriber is returned by Stream when the subscriber fell too far
// behind the game.
var ErrSlowSubscriber = errors.New("action stream subscriber fell behind")

// Stream sends player every action of a game after seq after, first from the
// log and then live, until ctx is canceled or the game goes away. An empty
// player is a spectator. send is called from the calling goroutine.
func (lb *Lobby) Stream(ctx context.Context, name, player string, after uint64, send func(storage.ActionRecord) error) error {
	if _, err := lb.Get(ctx, name); err != nil {
		return err
	}

	// Subscribe before reading the log so no action falls between the two.
	sub, cancel := lb.hub.Subscribe(name, player, DefaultSubscriptionBuffer)
	defer cancel()

	last := after
	for {
		recs, err := lb.store.ListActions(ctx, name, last, streamPageSize)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			last = rec.Seq
			if !Visible(rec, player) {
				continue
			}
			if err := send(rec); err != nil {
				return err
			}
		}
		if len(recs) < streamPageSize {
			break
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-sub.C:
			if !ok {
				if sub.Dropped() {
					return ErrSlowSubscriber
				}
				return ErrStreamClosed
			}
			if rec.Seq <= last {
				continue
			}
			last = rec.Seq
			if err := send(rec); err != nil {
				return err
			}
		}
	}
}

// LatestSeq returns the last stored sequence of a game.
func (lb *Lobby) LatestSeq(ctx context.Context, name string) (uint64, error) {
	if _, err := lb.Get(ctx, name); err != nil {
		return 0, err
	}
	seq, err := lb.store.LatestSeq(ctx, name)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeUnknown, "read action log", err)
	}
	return seq, nil
}
