// Package observer delivers committed actions to interested parties.
package observer

import (
	"slices"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
)

// Envelope is an action plus the players allowed to see it. A nil
// Recipients list means everyone.
type Envelope struct {
	Action     action.Action
	Recipients []string
}

// VisibleTo reports whether player may see the action. The empty name is
// an unrestricted local viewer such as the game's own history or the store.
func (e Envelope) VisibleTo(player string) bool {
	if e.Recipients == nil || player == "" {
		return true
	}
	return slices.Contains(e.Recipients, player)
}

// Observer receives envelopes in commit order.
type Observer interface {
	Notify(Envelope)
}

// Func adapts a function to Observer.
type Func func(Envelope)

// Notify calls f.
func (f Func) Notify(e Envelope) { f(e) }

type registration struct {
	id     int
	viewer string
	obs    Observer
}

// Subject fans envelopes out to registered observers. It is not safe for
// concurrent use; a game and its observers run on one goroutine.
type Subject struct {
	nextID int
	regs   []registration
}

// Subscribe registers obs as viewer and returns a function that removes it.
// An empty viewer sees every envelope.
func (s *Subject) Subscribe(viewer string, obs Observer) func() {
	s.nextID++
	id := s.nextID
	s.regs = append(s.regs, registration{id: id, viewer: viewer, obs: obs})
	return func() {
		s.regs = slices.DeleteFunc(s.regs, func(r registration) bool { return r.id == id })
	}
}

// Publish delivers e to every observer allowed to see it, in registration
// order.
func (s *Subject) Publish(e Envelope) {
	regs := slices.Clone(s.regs)
	for _, r := range regs {
		if e.VisibleTo(r.viewer) {
			r.obs.Notify(e)
		}
	}
}

// Len returns the number of registered observers.
func (s *Subject) Len() int {
	return len(s.regs)
}
