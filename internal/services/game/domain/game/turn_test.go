package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

func TestOpeningSplit(t *testing.T) {
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)

	requireCode(t, g.DoneWithSplits("bob"), apperrors.CodePhaseIncomplete)
	requireCode(t, g.SplitLegion("bob", "Bu01", "Bu02",
		[]string{"Titan", "Angel", "Ogre", "Ogre"},
		[]string{"Centaur", "Centaur", "Gargoyle", "Gargoyle"}), apperrors.CodeIllegalSplit)
	requireCode(t, g.SplitLegion("bob", "Bu01", "Bu02",
		[]string{"Titan", "Ogre", "Ogre"},
		[]string{"Angel", "Centaur", "Centaur", "Gargoyle", "Gargoyle"}), apperrors.CodeIllegalSplit)
	requireCode(t, g.SplitLegion("bob", "Bu01", "Rd02",
		[]string{"Titan", "Centaur", "Centaur", "Gargoyle"},
		[]string{"Angel", "Ogre", "Ogre", "Gargoyle"}), apperrors.CodeMarkerUnavailable)

	splitBob(t, g)
	parent := mustLegion(t, g, "Bu01")
	child := mustLegion(t, g, "Bu02")
	require.Equal(t, []string{"Titan", "Centaur", "Centaur", "Gargoyle"}, parent.CreatureNames())
	require.Equal(t, []string{"Angel", "Ogre", "Ogre", "Gargoyle"}, child.CreatureNames())
	require.Equal(t, parent.Hex, child.Hex)
	bob, _ := g.Player("bob")
	require.False(t, bob.HasMarker("Bu02"))

	require.True(t, g.History().CanUndo("bob"))
	require.False(t, g.History().CanUndo("alice"))
	require.NoError(t, g.Undo("bob"))
	_, ok := g.Legion("Bu02")
	require.False(t, ok)
	require.Len(t, mustLegion(t, g, "Bu01").Creatures, 8)
	require.True(t, bob.HasMarker("Bu02"))

	require.True(t, g.History().CanRedo("bob"))
	require.NoError(t, g.Redo("bob"))
	require.Len(t, mustLegion(t, g, "Bu02").Creatures, 4)
	require.False(t, g.History().CanRedo("bob"))

	require.NoError(t, g.DoneWithSplits("bob"))
	require.Equal(t, phase.Move, g.Phase())
	require.Equal(t, 1, bob.MovementRoll)
}

func TestUndoSplitOnlyReversesThisTurnsSplit(t *testing.T) {
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)
	splitBob(t, g)

	g.foldStartSplitPhase(action.StartSplitPhase{Header: g.header("bob"), Turn: 3})
	child := mustLegion(t, g, "Bu02")
	for range 3 {
		child.add(newCreature(g.tables, "Ogre", "Bu02"))
	}

	requireCode(t, g.UndoSplit("bob", "Bu01", "Bu02"), apperrors.CodeNothingToUndo)
	require.Equal(t, 4, mustLegion(t, g, "Bu01").Height())
	require.Equal(t, 7, mustLegion(t, g, "Bu02").Height())

	err := g.Apply(action.UndoSplit{
		Header:              g.header("bob"),
		ParentMarker:        "Bu01",
		ChildMarker:         "Bu02",
		ParentCreatureNames: mustLegion(t, g, "Bu01").CreatureNames(),
		ChildCreatureNames:  child.CreatureNames(),
	})
	require.ErrorIs(t, err, ErrUnknownReference)
	require.Equal(t, 4, mustLegion(t, g, "Bu01").Height())
}

func TestMulligan(t *testing.T) {
	g := newTestGame(t, 2, 5)
	startTwoPlayerGame(t, g)
	splitBob(t, g)
	require.NoError(t, g.DoneWithSplits("bob"))

	bob, _ := g.Player("bob")
	require.Equal(t, 2, bob.MovementRoll)
	require.NoError(t, g.TakeMulligan("bob"))
	require.Equal(t, 5, bob.MovementRoll)
	require.Equal(t, 0, bob.MulligansLeft)
	requireCode(t, g.TakeMulligan("bob"), apperrors.CodeMulliganUnavailable)
}

func TestMasterboardMoves(t *testing.T) {
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)

	alice := mustLegion(t, g, "Rd01")
	tower, ok := g.Tables().Board().Hex(100)
	require.True(t, ok)
	require.Equal(t, []Move{{Hex: 1, EntrySide: 3}, {Hex: 102, EntrySide: 5}, {Hex: 124, EntrySide: 1}},
		g.FindNormalMoves(alice, tower, 1))

	splitBob(t, g)
	require.NoError(t, g.DoneWithSplits("bob"))
	require.Equal(t, []Move{{Hex: 5, EntrySide: 3}, {Hex: 104, EntrySide: 1}, {Hex: 106, EntrySide: 5}},
		g.LegalMoves("Bu01"))

	requireCode(t, g.DoneWithMoves("bob"), apperrors.CodePhaseIncomplete)
	requireCode(t, g.MoveLegion("bob", "Bu01", 107, 5, false, ""), apperrors.CodeIllegalMove)
	requireCode(t, g.MoveLegion("bob", "Bu01", 106, 3, false, ""), apperrors.CodeIllegalMove)

	require.NoError(t, g.MoveLegion("bob", "Bu01", 106, 5, false, ""))
	l := mustLegion(t, g, "Bu01")
	require.Equal(t, 106, l.Hex)
	require.Equal(t, 200, l.PreviousHex)
	require.True(t, l.Moved)
	require.Empty(t, g.LegalMoves("Bu01"))

	require.NoError(t, g.Undo("bob"))
	require.Equal(t, 200, l.Hex)
	require.False(t, l.Moved)
	require.NoError(t, g.Redo("bob"))
	require.Equal(t, 106, l.Hex)

	require.NoError(t, g.DoneWithMoves("bob"))
	require.Equal(t, phase.Fight, g.Phase())
}

func TestTowerTeleport(t *testing.T) {
	g := newTestGame(t, 6)
	startTwoPlayerGame(t, g)
	splitBob(t, g)
	require.NoError(t, g.DoneWithSplits("bob"))

	require.Contains(t, g.LegalMoves("Bu01"), Move{Hex: 300, EntrySide: Teleport})
	require.NotContains(t, g.LegalMoves("Bu01"), Move{Hex: 100, EntrySide: Teleport}, "occupied tower")

	requireCode(t, g.MoveLegion("bob", "Bu01", 300, 5, true, "Centaur"), apperrors.CodeIllegalMove)
	requireCode(t, g.MoveLegion("bob", "Bu01", 300, 3, true, "Titan"), apperrors.CodeIllegalMove)
	require.NoError(t, g.MoveLegion("bob", "Bu01", 300, 5, true, "Titan"))

	bob, _ := g.Player("bob")
	require.True(t, bob.Teleported())
	require.Empty(t, g.FindAllTeleportMoves(mustLegion(t, g, "Bu02"), mustHex(t, g, 200), 6))
}

func TestRecruitAndPassTurn(t *testing.T) {
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)
	splitBob(t, g)
	require.NoError(t, g.DoneWithSplits("bob"))
	require.NoError(t, g.MoveLegion("bob", "Bu01", 106, 5, false, ""))
	require.NoError(t, g.DoneWithMoves("bob"))
	require.Empty(t, g.Engagements())
	require.NoError(t, g.DoneWithEngagements("bob"))
	require.Equal(t, phase.Muster, g.Phase())

	l := mustLegion(t, g, "Bu01")
	require.Equal(t, []Recruit{
		{Name: "Lion", Recruiters: []string{"Centaur", "Centaur"}},
		{Name: "Centaur", Recruiters: []string{"Centaur"}},
	}, g.RecruitableBy(l))

	lions := g.Caretaker().NumLeft("Lion")
	requireCode(t, g.RecruitCreature("bob", "Bu01", "Lion", []string{"Centaur"}), apperrors.CodeIllegalRecruit)
	requireCode(t, g.RecruitCreature("bob", "Bu02", "Ogre", []string{"Ogre"}), apperrors.CodeIllegalRecruit)
	require.NoError(t, g.RecruitCreature("bob", "Bu01", "Lion", []string{"Centaur", "Centaur"}))
	require.Equal(t, 5, l.Height())
	require.True(t, l.Recruited)
	require.Equal(t, lions-1, g.Caretaker().NumLeft("Lion"))
	require.Empty(t, g.RecruitableBy(l))

	require.NoError(t, g.Undo("bob"))
	require.Equal(t, 4, l.Height())
	require.Equal(t, lions, g.Caretaker().NumLeft("Lion"))
	require.NoError(t, g.Redo("bob"))
	require.Equal(t, "Lion", l.Creatures[len(l.Creatures)-1].Name)

	require.NoError(t, g.DoneWithRecruits("bob"))
	require.Equal(t, "alice", g.ActivePlayer().Name)
	require.Equal(t, 1, g.Turn())
	require.Equal(t, phase.Split, g.Phase())
	require.False(t, l.Moved)
	require.False(t, l.Recruited)
	requireCode(t, g.DoneWithSplits("alice"), apperrors.CodePhaseIncomplete)
}

func TestTurnWrapsToNextGameTurn(t *testing.T) {
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)
	g.active = "alice"

	next, turn := g.nextPlayer()
	require.Equal(t, "bob", next.Name)
	require.Equal(t, 2, turn)

	g.active = "bob"
	next, turn = g.nextPlayer()
	require.Equal(t, "alice", next.Name)
	require.Equal(t, 1, turn)
}

func mustHex(t *testing.T, g *Game, label int) rules.MasterHex {
	t.Helper()
	h, ok := g.Tables().Board().Hex(label)
	require.True(t, ok)
	return h
}
