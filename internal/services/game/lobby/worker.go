package lobby

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

type request struct {
	ctx   context.Context
	fn    func(*game.Game) error
	reply chan error
}

// worker owns one game. Only loop touches the game.
type worker struct {
	lobby   *Lobby
	game    *game.Game
	log     zerolog.Logger
	mailbox chan request
	done    chan struct{}
	once    sync.Once

	// Set on the worker goroutine while a request runs.
	reqCtx     context.Context
	persistErr error
	failed     bool

	mu  sync.RWMutex
	rec storage.GameRecord
}

func newWorker(lb *Lobby, g *game.Game, rec storage.GameRecord) *worker {
	w := &worker{
		lobby:   lb,
		game:    g,
		log:     lb.log.With().Str("game", g.Name).Logger(),
		mailbox: make(chan request, lb.cfg.MailboxSize),
		done:    make(chan struct{}),
		reqCtx:  context.Background(),
		rec:     rec,
	}
	g.Subscribe("", observer.Func(w.persist))
	return w
}

func (w *worker) record() storage.GameRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rec
}

func (w *worker) stop() {
	w.once.Do(func() { close(w.done) })
}

// do queues fn and waits for its result.
func (w *worker) do(ctx context.Context, fn func(*game.Game) error) error {
	req := request{ctx: ctx, fn: fn, reply: make(chan error, 1)}
	select {
	case w.mailbox <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return w.gone()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return w.gone()
	}
}

func (w *worker) gone() error {
	return apperrors.WithMetadata(apperrors.CodeGameNotFound, "game was removed", map[string]string{"Game": w.game.Name})
}

func (w *worker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case req := <-w.mailbox:
			req.reply <- w.run(req)
		}
	}
}

// run executes one request. A panic inside the engine marks the game failed;
// the game is never touched again.
func (w *worker) run(req request) (err error) {
	if w.failed {
		return w.failure()
	}
	defer func() {
		if r := recover(); r != nil {
			w.fail(fmt.Errorf("panic: %v", r), debug.Stack())
			err = w.failure()
		}
	}()

	w.reqCtx = req.ctx
	w.persistErr = nil
	err = req.fn(w.game)
	w.reqCtx = context.Background()

	if w.persistErr != nil {
		w.fail(w.persistErr, nil)
		return w.failure()
	}
	w.sync(req.ctx)
	return err
}

func (w *worker) failure() error {
	return apperrors.WithMetadata(apperrors.CodeGameFailed, "game failed and no longer accepts actions", map[string]string{"Game": w.game.Name})
}

func (w *worker) fail(cause error, stack []byte) {
	w.failed = true
	ev := w.log.Error().Err(cause)
	if stack != nil {
		ev = ev.Bytes("stack", stack)
	}
	ev.Msg("game failed")

	w.mu.Lock()
	w.rec.Status = storage.GameFailed
	rec := w.rec
	w.mu.Unlock()
	if err := w.lobby.store.PutGame(context.Background(), rec); err != nil {
		w.log.Error().Err(err).Msg("mark game failed")
	}
	w.lobby.hub.Close(w.game.Name)
}

// persist appends every committed action to the log, then fans it out.
func (w *worker) persist(e observer.Envelope) {
	if w.persistErr != nil {
		return
	}
	line, err := action.Encode(e.Action)
	if err != nil {
		w.persistErr = fmt.Errorf("encode %s: %w", e.Action.Kind(), err)
		return
	}
	rec, err := w.lobby.store.AppendAction(context.WithoutCancel(w.reqCtx), w.game.Name, line, e.Recipients...)
	if err != nil {
		w.persistErr = fmt.Errorf("append %s: %w", e.Action.Kind(), err)
		return
	}
	w.lobby.hub.Publish(rec)
}

// sync writes registry changes after a request.
func (w *worker) sync(ctx context.Context) {
	g := w.game
	w.mu.Lock()
	next := w.rec
	switch {
	case g.Over():
		next.Status = storage.GameOver
	case g.Started():
		next.Status = storage.GameRunning
	default:
		next.Status = storage.GameOpen
	}
	next.Owner = g.Owner()
	next.Players = len(g.Players())
	changed := next.Status != w.rec.Status || next.Owner != w.rec.Owner || next.Players != w.rec.Players
	w.rec = next
	w.mu.Unlock()

	if !changed {
		return
	}
	if err := w.lobby.store.PutGame(context.WithoutCancel(ctx), next); err != nil {
		w.log.Error().Err(err).Msg("update game record")
	}
}
