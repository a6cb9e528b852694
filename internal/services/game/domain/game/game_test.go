package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/dice"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
)

func newTestGame(t *testing.T, rolls ...int) *Game {
	t.Helper()
	g, err := New("g1", Authoritative(), WithRoller(&dice.Fixed{Results: rolls}))
	require.NoError(t, err)
	return g
}

// startTwoPlayerGame seats alice in tower 100 and bob in tower 200. Bob moves
// first.
func startTwoPlayerGame(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.Join("alice"))
	require.NoError(t, g.Join("bob"))
	require.NoError(t, g.Start("alice"))
	require.NoError(t, g.PickColor("alice", "Red"))
	require.NoError(t, g.PickColor("bob", "Blue"))
	require.NoError(t, g.PickFirstMarker("alice", "Rd01"))
	require.NoError(t, g.PickFirstMarker("bob", "Bu01"))
}

// splitBob keeps both Centaurs with bob's Titan.
func splitBob(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.SplitLegion("bob", "Bu01", "Bu02",
		[]string{"Titan", "Centaur", "Centaur", "Gargoyle"},
		[]string{"Angel", "Ogre", "Ogre", "Gargoyle"}))
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperrors.GetCode(err))
}

func mustLegion(t *testing.T, g *Game, marker string) *Legion {
	t.Helper()
	l, ok := g.Legion(marker)
	require.True(t, ok, "legion %s", marker)
	return l
}

func TestLobby(t *testing.T) {
	g := newTestGame(t)

	requireCode(t, g.Join(""), apperrors.CodePlayerNameEmpty)
	require.NoError(t, g.Join("alice"))
	requireCode(t, g.Join("alice"), apperrors.CodePlayerExists)
	requireCode(t, g.Start("alice"), apperrors.CodeNotEnoughPlayers)

	require.NoError(t, g.Join("bob"))
	require.NoError(t, g.Join("carol"))
	require.NoError(t, g.Leave("carol"))
	require.Equal(t, "alice", g.Owner())
	requireCode(t, g.Start("bob"), apperrors.CodeNotOwner)

	require.NoError(t, g.Start("alice"))
	requireCode(t, g.Join("dave"), apperrors.CodeGameStarted)
	requireCode(t, g.Leave("bob"), apperrors.CodeGameStarted)

	require.True(t, g.Started())
	require.Equal(t, 1, g.Turn())
	require.Equal(t, phase.Split, g.Phase())
	require.Equal(t, "bob", g.ActivePlayer().Name)

	players := g.Players()
	require.Len(t, players, 2)
	require.Equal(t, 200, players[0].Tower)
	require.Equal(t, 100, players[1].Tower)
}

func TestPlayerLimits(t *testing.T) {
	g, err := New("small", Authoritative(), WithPlayerLimits(2, 2))
	require.NoError(t, err)
	require.NoError(t, g.Join("alice"))
	require.NoError(t, g.Join("bob"))
	requireCode(t, g.Join("carol"), apperrors.CodeGameFull)
}

func TestColorsAndStartingLegions(t *testing.T) {
	g := newTestGame(t)
	require.NoError(t, g.Join("alice"))
	require.NoError(t, g.Join("bob"))
	require.NoError(t, g.Start("alice"))

	angels := g.Caretaker().NumLeft("Angel")
	titans := g.Caretaker().NumLeft("Titan")

	require.Equal(t, "alice", g.NextColorPicker())
	requireCode(t, g.PickColor("bob", "Blue"), apperrors.CodeNotYourPick)
	requireCode(t, g.PickColor("alice", "Mauve"), apperrors.CodeColorUnavailable)
	require.NoError(t, g.PickColor("alice", "Red"))
	requireCode(t, g.PickColor("bob", "Red"), apperrors.CodeColorUnavailable)
	require.NoError(t, g.PickColor("bob", "Blue"))
	require.Len(t, g.ColorsLeft(), 4)
	require.NotContains(t, g.ColorsLeft(), "Red")

	requireCode(t, g.PickFirstMarker("alice", "Bu01"), apperrors.CodeMarkerUnavailable)
	require.NoError(t, g.PickFirstMarker("alice", "Rd03"))
	_, ok := g.Legion("Rd03")
	require.False(t, ok, "legions wait for every player's marker")
	require.NoError(t, g.PickFirstMarker("bob", "Bu01"))

	rd := mustLegion(t, g, "Rd03")
	require.Equal(t, 100, rd.Hex)
	require.Equal(t, "alice", rd.Owner)
	require.Equal(t, g.Tables().StartingCreatures(), rd.CreatureNames())
	bu := mustLegion(t, g, "Bu01")
	require.Equal(t, 200, bu.Hex)

	alice, _ := g.Player("alice")
	require.False(t, alice.HasMarker("Rd03"))
	require.True(t, alice.HasMarker("Rd01"))
	require.Equal(t, "Rd", alice.ColorAbbrev)

	require.Equal(t, angels-2, g.Caretaker().NumLeft("Angel"))
	require.Equal(t, titans-2, g.Caretaker().NumLeft("Titan"))
}

func TestMirrorRejectsMutators(t *testing.T) {
	mirror, err := New("g1")
	require.NoError(t, err)
	require.False(t, mirror.IsMaster())
	requireCode(t, mirror.Join("alice"), apperrors.CodeNotAuthoritative)
}

func TestRejectedCallsLeaveNoTrace(t *testing.T) {
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)
	before := len(g.History().Actions())

	requireCode(t, g.SplitLegion("alice", "Rd01", "Rd02", nil, nil), apperrors.CodeNotYourTurn)
	requireCode(t, g.MoveLegion("bob", "Bu01", 5, 3, false, ""), apperrors.CodeWrongPhase)
	requireCode(t, g.DoneWithSplits("carol"), apperrors.CodePlayerNotFound)
	requireCode(t, g.SplitLegion("bob", "Rd01", "Bu02", nil, nil), apperrors.CodeNotYourLegion)

	require.Len(t, g.History().Actions(), before)
}
