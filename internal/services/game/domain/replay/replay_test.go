package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/dice"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

type memLog struct {
	recs  []storage.ActionRecord
	calls int
	err   error
}

func (m *memLog) ListActions(_ context.Context, _ string, afterSeq uint64, limit int) ([]storage.ActionRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []storage.ActionRecord
	for _, r := range m.recs {
		if r.Seq > afterSeq && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

// recordGame plays a short opening on a master game and returns it with its
// log.
func recordGame(t *testing.T) (*game.Game, *memLog) {
	t.Helper()
	master, err := game.New("g1", game.Authoritative(), game.WithRoller(&dice.Fixed{Results: []int{3}}))
	require.NoError(t, err)
	log := &memLog{}
	master.Subscribe("", observer.Func(func(e observer.Envelope) {
		appendAction(t, log, e.Action)
	}))

	require.NoError(t, master.Join("alice"))
	require.NoError(t, master.Join("bob"))
	require.NoError(t, master.Start("alice"))
	require.NoError(t, master.PickColor("alice", "Red"))
	require.NoError(t, master.PickColor("bob", "Blue"))
	require.NoError(t, master.PickFirstMarker("alice", "Rd01"))
	require.NoError(t, master.PickFirstMarker("bob", "Bu01"))
	require.NoError(t, master.SplitLegion("bob", "Bu01", "Bu02",
		[]string{"Titan", "Centaur", "Centaur", "Gargoyle"},
		[]string{"Angel", "Ogre", "Ogre", "Gargoyle"}))
	return master, log
}

func TestReplayRebuildsGame(t *testing.T) {
	master, log := recordGame(t)

	g, err := game.New("g1")
	require.NoError(t, err)
	res, err := Replay(context.Background(), log, g, Options{PageSize: 3})
	require.NoError(t, err)
	require.EqualValues(t, len(log.recs), res.LastSeq)
	require.Equal(t, len(log.recs), res.Applied)
	require.Greater(t, log.calls, 2)
	require.Equal(t, master.Snapshot(), g.Snapshot())
}

func TestReplayWindow(t *testing.T) {
	_, log := recordGame(t)

	g, err := game.New("g1")
	require.NoError(t, err)
	res, err := Replay(context.Background(), log, g, Options{UntilSeq: 2})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.LastSeq)
	require.Len(t, g.Players(), 2)
	require.False(t, g.Started())

	res, err = Replay(context.Background(), log, g, Options{AfterSeq: res.LastSeq})
	require.NoError(t, err)
	require.EqualValues(t, len(log.recs), res.LastSeq)
	require.Equal(t, len(log.recs)-2, res.Applied)
	require.True(t, g.Started())
}

func TestReplayDetectsGap(t *testing.T) {
	_, log := recordGame(t)
	log.recs = append(log.recs[:1], log.recs[2:]...)

	g, err := game.New("g1")
	require.NoError(t, err)
	res, err := Replay(context.Background(), log, g, Options{})
	require.ErrorIs(t, err, ErrSequenceGap)
	require.EqualValues(t, 1, res.LastSeq)
}

func TestReplayErrors(t *testing.T) {
	g, err := game.New("g1")
	require.NoError(t, err)

	_, err = Replay(context.Background(), nil, g, Options{})
	require.ErrorIs(t, err, ErrStoreRequired)
	_, err = Replay(context.Background(), &memLog{}, nil, Options{})
	require.ErrorIs(t, err, ErrGameRequired)

	boom := errors.New("boom")
	_, err = Replay(context.Background(), &memLog{err: boom}, g, Options{})
	require.ErrorIs(t, err, boom)

	bad := &memLog{recs: []storage.ActionRecord{{Game: "g1", Seq: 1, Line: "Nope {}"}}}
	_, err = Replay(context.Background(), bad, g, Options{})
	require.ErrorIs(t, err, action.ErrUnknownKind)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Replay(ctx, &memLog{}, g, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func appendAction(t *testing.T, log *memLog, a action.Action) {
	t.Helper()
	line, err := action.Encode(a)
	require.NoError(t, err)
	log.recs = append(log.recs, storage.ActionRecord{Game: a.GameName(), Seq: uint64(len(log.recs) + 1), Line: line})
}
