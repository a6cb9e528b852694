package game

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
)

// playFirstRound runs both players through turn one.
func playFirstRound(t *testing.T, g *Game) {
	t.Helper()
	startTwoPlayerGame(t, g)
	splitBob(t, g)
	require.NoError(t, g.DoneWithSplits("bob"))
	require.NoError(t, g.MoveLegion("bob", "Bu01", 106, 5, false, ""))
	require.NoError(t, g.DoneWithMoves("bob"))
	require.NoError(t, g.DoneWithEngagements("bob"))
	require.NoError(t, g.RecruitCreature("bob", "Bu01", "Lion", []string{"Centaur", "Centaur"}))
	require.NoError(t, g.DoneWithRecruits("bob"))

	require.NoError(t, g.SplitLegion("alice", "Rd01", "Rd02",
		[]string{"Titan", "Centaur", "Centaur", "Gargoyle"},
		[]string{"Angel", "Ogre", "Ogre", "Gargoyle"}))
	require.NoError(t, g.DoneWithSplits("alice"))
	require.NoError(t, g.MoveLegion("alice", "Rd01", 1, 3, false, ""))
	require.NoError(t, g.DoneWithMoves("alice"))
	require.NoError(t, g.DoneWithEngagements("alice"))
	require.NoError(t, g.DoneWithRecruits("alice"))
}

func TestMirrorFollowsMaster(t *testing.T) {
	master := newTestGame(t, 1)
	mirror, err := New("g1")
	require.NoError(t, err)

	var applyErr error
	master.Subscribe("", observer.Func(func(e observer.Envelope) {
		if err := mirror.Apply(e.Action); err != nil && applyErr == nil {
			applyErr = err
		}
	}))

	playFirstRound(t, master)
	require.NoError(t, applyErr)
	require.Equal(t, 2, master.Turn())
	require.Equal(t, "bob", master.ActivePlayer().Name)
	require.Equal(t, master.Snapshot(), mirror.Snapshot())
	require.Len(t, mirror.History().Actions(), len(master.History().Actions()))
}

func TestReplaySavedLog(t *testing.T) {
	master := newTestGame(t, 1)
	playFirstRound(t, master)

	var buf bytes.Buffer
	require.NoError(t, master.Save(&buf))
	actions, err := action.ReadLines(&buf)
	require.NoError(t, err)
	require.Len(t, actions, len(master.History().Actions()))

	replay, err := New("g1")
	require.NoError(t, err)
	for _, a := range actions {
		require.NoError(t, replay.Apply(a))
	}
	require.Equal(t, master.Snapshot(), replay.Snapshot())
}

func TestApplyIgnoresEchoesAndOtherGames(t *testing.T) {
	master := newTestGame(t, 1)
	startTwoPlayerGame(t, master)
	splitBob(t, master)

	mirror, err := New("g1")
	require.NoError(t, err)
	for _, a := range master.History().Actions() {
		require.NoError(t, mirror.Apply(a))
	}
	before := mirror.Snapshot()

	last, ok := master.History().LastAction()
	require.True(t, ok)
	require.NoError(t, mirror.Apply(last))
	require.Equal(t, before, mirror.Snapshot())

	other := action.JoinGame{Header: action.Header{Game: "g2", Player: "mallory"}}
	require.NoError(t, mirror.Apply(other))
	_, found := mirror.Player("mallory")
	require.False(t, found)
}

func TestApplyRejectsUnknownReferences(t *testing.T) {
	mirror, err := New("g1")
	require.NoError(t, err)
	err = mirror.Apply(action.MoveLegion{Header: action.Header{Game: "g1", Player: "bob"}, Marker: "Bu09", Hex: 5, EntrySide: 3})
	require.ErrorIs(t, err, ErrUnknownReference)
}
