package lobby

import (
	"context"
	"time"

	"github.com/louisbranch/legions/internal/services/game/storage"
)

// schedule sweeps start deadlines until ctx is canceled.
func (lb *Lobby) schedule(ctx context.Context) error {
	ticker := time.NewTicker(lb.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			lb.Sweep(ctx)
		}
	}
}

// Sweep removes open games whose start deadline has passed and returns
// their names.
func (lb *Lobby) Sweep(ctx context.Context) []string {
	now := lb.now()
	var expired []string
	lb.mu.RLock()
	for name, w := range lb.workers {
		if w == nil {
			continue
		}
		rec := w.record()
		if rec.Status == storage.GameOpen && !rec.StartBy.IsZero() && now.After(rec.StartBy) {
			expired = append(expired, name)
		}
	}
	lb.mu.RUnlock()

	var removed []string
	for _, name := range expired {
		if err := lb.Remove(ctx, name); err != nil {
			lb.log.Warn().Err(err).Str("game", name).Msg("remove expired game")
			continue
		}
		lb.log.Info().Str("game", name).Msg("game missed its start deadline")
		removed = append(removed, name)
	}
	return removed
}
