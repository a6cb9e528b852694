package lobby

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/louisbranch/legions/internal/services/game/storage"
)

// DefaultSubscriptionBuffer is the number of actions a subscriber may lag
// behind before it is dropped.
const DefaultSubscriptionBuffer = 256

// Subscription receives the stored actions of one game that its player may
// see. C is closed when the subscriber falls too far behind, the game is
// removed or fails, or the subscription is canceled.
type Subscription struct {
	ID     string
	Game   string
	Player string
	C      <-chan storage.ActionRecord

	c       chan storage.ActionRecord
	dropped bool
}

// Dropped reports whether the hub closed the subscription because the
// subscriber fell behind.
func (s *Subscription) Dropped() bool {
	return s.dropped
}

// Visible reports whether player may see rec. The empty player is a
// spectator and sees only unrestricted actions.
func Visible(rec storage.ActionRecord, player string) bool {
	return len(rec.Recipients) == 0 || (player != "" && slices.Contains(rec.Recipients, player))
}

// Hub fans stored actions out to stream subscribers.
type Hub struct {
	log  zerolog.Logger
	mu   sync.Mutex
	subs map[string]map[string]*Subscription
}

// NewHub returns an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{log: log, subs: make(map[string]map[string]*Subscription)}
}

// Subscribe registers player for game's actions and returns the
// subscription with a function that cancels it.
func (h *Hub) Subscribe(game, player string, buffer int) (*Subscription, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}
	c := make(chan storage.ActionRecord, buffer)
	sub := &Subscription{ID: uuid.NewString(), Game: game, Player: player, C: c, c: c}

	h.mu.Lock()
	if h.subs[game] == nil {
		h.subs[game] = make(map[string]*Subscription)
	}
	h.subs[game][sub.ID] = sub
	h.mu.Unlock()
	h.log.Debug().Str("game", game).Str("player", player).Str("subscription", sub.ID).Msg("subscribed")

	return sub, func() { h.remove(sub, false) }
}

// Publish delivers rec to every subscriber of its game that may see it.
// A subscriber whose buffer is full is dropped.
func (h *Hub) Publish(rec storage.ActionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[rec.Game] {
		if !Visible(rec, sub.Player) {
			continue
		}
		select {
		case sub.c <- rec:
		default:
			h.log.Warn().Str("game", rec.Game).Str("subscription", sub.ID).Msg("dropping slow subscriber")
			h.closeLocked(sub, true)
		}
	}
}

// Len returns the number of subscribers of game.
func (h *Hub) Len(game string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[game])
}

// Close ends every subscription of game.
func (h *Hub) Close(game string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[game] {
		h.closeLocked(sub, false)
	}
}

// CloseAll ends every subscription.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subs {
		for _, sub := range subs {
			h.closeLocked(sub, false)
		}
	}
}

func (h *Hub) remove(sub *Subscription, dropped bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeLocked(sub, dropped)
}

func (h *Hub) closeLocked(sub *Subscription, dropped bool) {
	subs, ok := h.subs[sub.Game]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(h.subs, sub.Game)
	}
	sub.dropped = dropped
	close(sub.c)
}
