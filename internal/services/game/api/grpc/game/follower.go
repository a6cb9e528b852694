package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
)

// Follower keeps a mirror game in step with a server by applying the
// server's action stream.
type Follower struct {
	client *Client
	mirror *game.Game
	player string
	log    zerolog.Logger
	last   atomic.Uint64
}

// NewFollower returns a follower applying the actions player may see to
// mirror. mirror must not be authoritative.
func NewFollower(client *Client, mirror *game.Game, player string, log zerolog.Logger) *Follower {
	return &Follower{client: client, mirror: mirror, player: player, log: log}
}

// LastSeq returns the sequence of the last applied action.
func (f *Follower) LastSeq() uint64 { return f.last.Load() }

// Run applies actions until ctx is canceled or the server ends the stream.
// A stream ended by the server returns nil; Run may be called again to
// resume after the last applied action.
func (f *Follower) Run(ctx context.Context) error {
	if f.mirror.IsMaster() {
		return errors.New("follower needs a mirror game")
	}
	stream, err := f.client.Actions(ctx, f.mirror.Name, f.player, f.last.Load())
	if err != nil {
		return err
	}
	for {
		rec, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		a, err := action.Decode(rec.Line)
		if err != nil {
			return fmt.Errorf("decode action %d: %w", rec.Seq, err)
		}
		if err := f.mirror.Apply(a); err != nil {
			return fmt.Errorf("apply action %d: %w", rec.Seq, err)
		}
		f.last.Store(rec.Seq)
		f.log.Debug().Str("game", f.mirror.Name).Uint64("seq", rec.Seq).Str("kind", string(a.Kind())).Msg("applied action")
	}
}
