// Package history keeps the ordered log of committed actions and the undo
// stack used for per-player undo and redo.
package history

import (
	"io"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
)

// History is an append-only action log plus a stack of undone actions.
type History struct {
	actions []action.Action
	undone  []action.Action
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// Notify records a published action.
func (h *History) Notify(e observer.Envelope) {
	h.Update(e.Action)
}

// Update records a.
//
// An undo action removes the most recent action it reverses and pushes that
// action on the undone stack. Repeating the top undone action is a redo and
// pops it. Any other action clears the undone stack.
func (h *History) Update(a action.Action) {
	if action.IsUndo(a) {
		for i := len(h.actions) - 1; i >= 0; i-- {
			if action.Undoes(a, h.actions[i]) {
				prev := h.actions[i]
				h.actions = append(h.actions[:i], h.actions[i+1:]...)
				h.undone = append(h.undone, prev)
				return
			}
		}
		return
	}
	if n := len(h.undone); n > 0 && action.Equal(h.undone[n-1], a) {
		h.undone = h.undone[:n-1]
		h.actions = append(h.actions, a)
		return
	}
	h.undone = nil
	h.actions = append(h.actions, a)
}

// Actions returns a copy of the committed actions.
func (h *History) Actions() []action.Action {
	return append([]action.Action(nil), h.actions...)
}

// Undone returns a copy of the undone stack, oldest first.
func (h *History) Undone() []action.Action {
	return append([]action.Action(nil), h.undone...)
}

// CanUndo reports whether the latest action is undoable and belongs to
// player.
func (h *History) CanUndo(player string) bool {
	last, ok := h.LastAction()
	return ok && player != "" && last.PlayerName() == player && action.IsUndoable(last)
}

// CanRedo reports whether the latest undone action belongs to player.
func (h *History) CanRedo(player string) bool {
	n := len(h.undone)
	return n > 0 && player != "" && h.undone[n-1].PlayerName() == player
}

// LastAction returns the most recent committed action.
func (h *History) LastAction() (action.Action, bool) {
	if len(h.actions) == 0 {
		return nil, false
	}
	return h.actions[len(h.actions)-1], true
}

// LastUndone returns the top of the undone stack.
func (h *History) LastUndone() (action.Action, bool) {
	if len(h.undone) == 0 {
		return nil, false
	}
	return h.undone[len(h.undone)-1], true
}

// Save writes the committed actions, one per line.
func (h *History) Save(w io.Writer) error {
	return action.WriteLines(w, h.actions)
}

// Load replaces the log with the actions read from r and clears the undone
// stack. It does not apply them to any game.
func (h *History) Load(r io.Reader) error {
	actions, err := action.ReadLines(r)
	if err != nil {
		return err
	}
	h.actions = actions
	h.undone = nil
	return nil
}
