// Package lobby owns the running games of a server.
//
// Each game lives on its own worker goroutine and is only touched there:
// every mutator, query and replay for a game is sent to the worker's mailbox
// and runs in arrival order. Committed actions are appended to the action
// log before they are fanned out to stream subscribers, so a subscriber
// never sees an action the log does not have.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/domain/replay"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

// ErrNotRunning is returned when a game is created before Run.
var ErrNotRunning = errors.New("lobby is not running")

// Defaults for Config.
const (
	DefaultMailboxSize   = 16
	DefaultSweepInterval = time.Minute
	restorePageSize      = 100
)

// Config tunes the lobby.
type Config struct {
	// StartDeadline is how long an open game may wait to start before it
	// is removed. Zero disables the deadline.
	StartDeadline time.Duration
	// SweepInterval is how often start deadlines are checked.
	SweepInterval time.Duration
	MailboxSize   int
	MinPlayers    int
	MaxPlayers    int
}

// Lobby is the registry of running games.
type Lobby struct {
	store    storage.Store
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
	gameOpts []game.Option
	hub      *Hub

	mu      sync.RWMutex
	workers map[string]*worker
	group   *errgroup.Group
	ctx     context.Context
	ready   chan struct{}
}

// Option configures a Lobby.
type Option func(*Lobby)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(lb *Lobby) { lb.log = l }
}

// WithClock sets the time source for start deadlines.
func WithClock(now func() time.Time) Option {
	return func(lb *Lobby) { lb.now = now }
}

// WithGameOptions adds options to every game the lobby creates or restores.
func WithGameOptions(opts ...game.Option) Option {
	return func(lb *Lobby) { lb.gameOpts = append(lb.gameOpts, opts...) }
}

// New returns a lobby backed by store. Call Run before creating games.
func New(store storage.Store, cfg Config, opts ...Option) *Lobby {
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultMailboxSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = game.DefaultMinPlayers
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = game.DefaultMaxPlayers
	}
	lb := &Lobby{
		store:   store,
		cfg:     cfg,
		log:     zerolog.Nop(),
		now:     time.Now,
		workers: make(map[string]*worker),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(lb)
	}
	lb.hub = NewHub(lb.log)
	return lb
}

// Hub returns the action fan-out used by streams.
func (lb *Lobby) Hub() *Hub { return lb.hub }

// Ready is closed once Run has restored the stored games.
func (lb *Lobby) Ready() <-chan struct{} { return lb.ready }

// Run restores the open and running games from the store, starts their
// workers and the deadline scheduler, and blocks until ctx is canceled.
func (lb *Lobby) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	lb.mu.Lock()
	if lb.group != nil {
		lb.mu.Unlock()
		return errors.New("lobby is already running")
	}
	lb.group = group
	lb.ctx = gctx
	lb.mu.Unlock()

	if err := lb.restore(gctx); err != nil {
		return err
	}
	close(lb.ready)
	lb.log.Info().Int("games", lb.count()).Msg("lobby ready")

	group.Go(func() error { return lb.schedule(gctx) })
	<-gctx.Done()
	err := group.Wait()
	lb.hub.CloseAll()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (lb *Lobby) count() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.workers)
}

// restore replays every open or running game from its log.
func (lb *Lobby) restore(ctx context.Context) error {
	for _, status := range []storage.GameStatus{storage.GameOpen, storage.GameRunning} {
		req := storage.ListGamesRequest{PageSize: restorePageSize, OrderBy: "name", Status: status}
		for {
			page, err := lb.store.ListGames(ctx, req)
			if err != nil {
				return fmt.Errorf("list %s games: %w", status, err)
			}
			for _, rec := range page.Games {
				lb.restoreGame(ctx, rec)
			}
			if page.NextPageToken == "" {
				break
			}
			req.PageToken = page.NextPageToken
		}
	}
	return nil
}

func (lb *Lobby) restoreGame(ctx context.Context, rec storage.GameRecord) {
	log := lb.log.With().Str("game", rec.Name).Logger()
	fail := func(err error) {
		log.Error().Err(err).Msg("restore game")
		rec.Status = storage.GameFailed
		if err := lb.store.PutGame(ctx, rec); err != nil {
			log.Error().Err(err).Msg("mark game failed")
		}
	}

	if err := lb.store.VerifyChain(ctx, rec.Name); err != nil {
		fail(err)
		return
	}
	g, err := lb.newGame(rec.Name)
	if err != nil {
		fail(err)
		return
	}
	res, err := replay.Replay(ctx, lb.store, g, replay.Options{})
	if err != nil {
		fail(err)
		return
	}
	log.Info().Uint64("seq", res.LastSeq).Msg("restored game")
	lb.spawn(g, rec)
}

func (lb *Lobby) newGame(name string) (*game.Game, error) {
	opts := []game.Option{
		game.Authoritative(),
		game.WithLogger(lb.log),
		game.WithPlayerLimits(lb.cfg.MinPlayers, lb.cfg.MaxPlayers),
	}
	return game.New(name, append(opts, lb.gameOpts...)...)
}

// spawn registers a worker for g and starts it.
func (lb *Lobby) spawn(g *game.Game, rec storage.GameRecord) *worker {
	w := newWorker(lb, g, rec)
	lb.mu.Lock()
	lb.workers[g.Name] = w
	group, ctx := lb.group, lb.ctx
	lb.mu.Unlock()
	group.Go(func() error { return w.loop(ctx) })
	return w
}

func (lb *Lobby) worker(name string) (*worker, error) {
	lb.mu.RLock()
	w, ok := lb.workers[name]
	lb.mu.RUnlock()
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeGameNotFound, "no such game", map[string]string{"Game": name})
	}
	return w, nil
}

// Create registers a new game and, when owner is set, seats the owner in it.
func (lb *Lobby) Create(ctx context.Context, name, owner string) (storage.GameRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.GameRecord{}, apperrors.New(apperrors.CodeGameNameEmpty, "game name is empty")
	}

	lb.mu.Lock()
	if lb.group == nil {
		lb.mu.Unlock()
		return storage.GameRecord{}, ErrNotRunning
	}
	if _, ok := lb.workers[name]; ok {
		lb.mu.Unlock()
		return storage.GameRecord{}, gameExists(name)
	}
	// Reserve the name while the store is checked.
	lb.workers[name] = nil
	lb.mu.Unlock()

	rec, g, err := lb.register(ctx, name)
	if err != nil {
		lb.mu.Lock()
		delete(lb.workers, name)
		lb.mu.Unlock()
		return storage.GameRecord{}, err
	}
	w := lb.spawn(g, rec)
	lb.log.Info().Str("game", name).Str("owner", owner).Msg("created game")

	if owner == "" {
		return rec, nil
	}
	if err := w.do(ctx, func(g *game.Game) error { return g.Join(owner) }); err != nil {
		return storage.GameRecord{}, err
	}
	return w.record(), nil
}

func (lb *Lobby) register(ctx context.Context, name string) (storage.GameRecord, *game.Game, error) {
	if _, err := lb.store.GetGame(ctx, name); err == nil {
		return storage.GameRecord{}, nil, gameExists(name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return storage.GameRecord{}, nil, err
	}
	g, err := lb.newGame(name)
	if err != nil {
		return storage.GameRecord{}, nil, err
	}
	now := lb.now()
	rec := storage.GameRecord{Name: name, Status: storage.GameOpen, CreatedAt: now}
	if lb.cfg.StartDeadline > 0 {
		rec.StartBy = now.Add(lb.cfg.StartDeadline)
	}
	if err := lb.store.PutGame(ctx, rec); err != nil {
		return storage.GameRecord{}, nil, err
	}
	return rec, g, nil
}

func gameExists(name string) error {
	return apperrors.WithMetadata(apperrors.CodeGameExists, "game already exists", map[string]string{"Game": name})
}

// Join seats player in an open game.
func (lb *Lobby) Join(ctx context.Context, name, player string) error {
	return lb.Do(ctx, name, func(g *game.Game) error { return g.Join(player) })
}

// Leave removes player from an open game. A game left empty is removed.
func (lb *Lobby) Leave(ctx context.Context, name, player string) error {
	empty := false
	err := lb.Do(ctx, name, func(g *game.Game) error {
		if err := g.Leave(player); err != nil {
			return err
		}
		empty = len(g.Players()) == 0
		return nil
	})
	if err != nil || !empty {
		return err
	}
	return lb.Remove(ctx, name)
}

// Start starts a game on behalf of its owner.
func (lb *Lobby) Start(ctx context.Context, name, player string) error {
	return lb.Do(ctx, name, func(g *game.Game) error { return g.Start(player) })
}

// Snapshot returns a copy of a game's visible state.
func (lb *Lobby) Snapshot(ctx context.Context, name string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := lb.Do(ctx, name, func(g *game.Game) error {
		snap = g.Snapshot()
		return nil
	})
	return snap, err
}

// Do runs fn on the game's worker and waits for it. fn must not keep g.
func (lb *Lobby) Do(ctx context.Context, name string, fn func(*game.Game) error) error {
	w, err := lb.worker(name)
	if err != nil {
		return err
	}
	if w == nil {
		// Still being created.
		return apperrors.WithMetadata(apperrors.CodeGameNotFound, "no such game", map[string]string{"Game": name})
	}
	return w.do(ctx, fn)
}

// Get returns the registry entry of a game.
func (lb *Lobby) Get(ctx context.Context, name string) (storage.GameRecord, error) {
	if w, err := lb.worker(name); err == nil && w != nil {
		return w.record(), nil
	}
	rec, err := lb.store.GetGame(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.GameRecord{}, apperrors.WithMetadata(apperrors.CodeGameNotFound, "no such game", map[string]string{"Game": name})
	}
	return rec, err
}

// List returns a page of registered games.
func (lb *Lobby) List(ctx context.Context, req storage.ListGamesRequest) (storage.ListGamesResult, error) {
	return lb.store.ListGames(ctx, req)
}

// Remove stops a game's worker and deletes it with its log.
func (lb *Lobby) Remove(ctx context.Context, name string) error {
	lb.mu.Lock()
	w, ok := lb.workers[name]
	if ok && w != nil {
		delete(lb.workers, name)
	}
	lb.mu.Unlock()
	if !ok || w == nil {
		return apperrors.WithMetadata(apperrors.CodeGameNotFound, "no such game", map[string]string{"Game": name})
	}
	w.stop()
	lb.hub.Close(name)
	if err := lb.store.DeleteGame(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	lb.log.Info().Str("game", name).Msg("removed game")
	return nil
}
