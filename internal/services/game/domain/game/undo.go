package game

import (
	"io"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
)

// Undo reverses player's most recent action when it is the last one
// committed and can be undone.
func (g *Game) Undo(player string) error {
	if !g.history.CanUndo(player) {
		return g.reject(apperrors.CodeNothingToUndo, "nothing to undo", map[string]string{"Player": player})
	}
	last, _ := g.history.LastAction()
	switch a := last.(type) {
	case action.SplitLegion:
		return g.UndoSplit(player, a.ParentMarker, a.ChildMarker)
	case action.MoveLegion:
		return g.UndoMoveLegion(player, a.Marker)
	case action.RecruitCreature:
		return g.UndoRecruit(player, a.Marker)
	case action.MoveCreature:
		return g.UndoMoveCreature(player, a.CreatureName, a.NewHex)
	case action.SummonAngel:
		return g.UnSummon(player, a.Marker)
	}
	return g.reject(apperrors.CodeNothingToUndo, "nothing to undo", map[string]string{"Player": player})
}

// Redo repeats the action player most recently undid.
func (g *Game) Redo(player string) error {
	if !g.history.CanRedo(player) {
		return g.reject(apperrors.CodeNothingToUndo, "nothing to redo", map[string]string{"Player": player})
	}
	last, _ := g.history.LastUndone()
	switch a := last.(type) {
	case action.SplitLegion:
		return g.SplitLegion(player, a.ParentMarker, a.ChildMarker, a.ParentCreatureNames, a.ChildCreatureNames)
	case action.MoveLegion:
		return g.MoveLegion(player, a.Marker, a.Hex, a.EntrySide, a.Teleport, a.TeleportingLord)
	case action.RecruitCreature:
		return g.RecruitCreature(player, a.Marker, a.CreatureName, a.RecruiterNames)
	case action.MoveCreature:
		return g.MoveCreature(player, a.CreatureName, a.OldHex, a.NewHex)
	case action.SummonAngel:
		return g.SummonAngel(player, a.Marker, a.DonorMarker, a.CreatureName)
	}
	return g.reject(apperrors.CodeNothingToUndo, "nothing to redo", map[string]string{"Player": player})
}

// Save writes the committed action log, one JSON action per line.
func (g *Game) Save(w io.Writer) error {
	return g.history.Save(w)
}
