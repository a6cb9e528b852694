// Package action defines the closed set of replicated game actions.
//
// Every committed change to a game is described by exactly one Action value.
// Actions carry only plain data (names, labels, counts) so they can be
// logged, streamed to mirrors and replayed from scratch. The set is sealed:
// only types in this package satisfy Action, and dispatch happens through a
// type switch in the game package.
package action

// Kind names an action variant on the wire.
type Kind string

// Action is a committed game transition.
type Action interface {
	Kind() Kind
	GameName() string
	// PlayerName is the originating player, or "" for system actions.
	PlayerName() string
	isAction()
}

// Header carries the fields every action shares.
type Header struct {
	Game   string `json:"game"`
	Player string `json:"player,omitempty"`
}

// GameName returns the game the action belongs to.
func (h Header) GameName() string { return h.Game }

// PlayerName returns the originating player.
func (h Header) PlayerName() string { return h.Player }

func (Header) isAction() {}

// Undo returns the inverse of an undoable action.
func Undo(a Action) (Action, bool) {
	switch v := a.(type) {
	case SplitLegion:
		u := UndoSplit(v)
		return u, true
	case MoveLegion:
		u := UndoMoveLegion(v)
		return u, true
	case RecruitCreature:
		u := UndoRecruit(v)
		return u, true
	case MoveCreature:
		u := UndoMoveCreature(v)
		return u, true
	case SummonAngel:
		u := UnSummon(v)
		return u, true
	default:
		return nil, false
	}
}

// Redo returns the action an undo action reverses.
func Redo(u Action) (Action, bool) {
	switch v := u.(type) {
	case UndoSplit:
		return SplitLegion(v), true
	case UndoMoveLegion:
		return MoveLegion(v), true
	case UndoRecruit:
		return RecruitCreature(v), true
	case UndoMoveCreature:
		return MoveCreature(v), true
	case UnSummon:
		return SummonAngel(v), true
	default:
		return nil, false
	}
}

// IsUndoable reports whether a has a structural inverse.
func IsUndoable(a Action) bool {
	_, ok := Undo(a)
	return ok
}

// IsUndo reports whether a reverses another action.
func IsUndo(a Action) bool {
	_, ok := Redo(a)
	return ok
}

// Undoes reports whether u reverses a. The match is on identity fields only,
// so an undo built from current state still pairs with the original action.
func Undoes(u, a Action) bool {
	switch v := u.(type) {
	case UndoSplit:
		w, ok := a.(SplitLegion)
		return ok && v.Game == w.Game && v.Player == w.Player && v.ParentMarker == w.ParentMarker && v.ChildMarker == w.ChildMarker
	case UndoMoveLegion:
		w, ok := a.(MoveLegion)
		return ok && v.Game == w.Game && v.Player == w.Player && v.Marker == w.Marker
	case UndoRecruit:
		w, ok := a.(RecruitCreature)
		return ok && v.Game == w.Game && v.Player == w.Player && v.Marker == w.Marker && v.CreatureName == w.CreatureName
	case UndoMoveCreature:
		w, ok := a.(MoveCreature)
		return ok && v.Game == w.Game && v.Player == w.Player && v.CreatureName == w.CreatureName && v.NewHex == w.NewHex
	case UnSummon:
		w, ok := a.(SummonAngel)
		return ok && v.Game == w.Game && v.Player == w.Player && v.Marker == w.Marker && v.CreatureName == w.CreatureName
	default:
		return false
	}
}
