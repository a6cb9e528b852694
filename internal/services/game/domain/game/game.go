// Package game is the rules engine: the turn and battle state machines,
// masterboard and battle movement search, combat, recruiting and scoring.
//
// A Game is either the authoritative master, which validates mutator calls,
// rolls dice and commits actions, or a mirror, which only replays committed
// actions through Apply. Both fold every action through the same code path,
// so a mirror that applies the master's actions in order ends in the same
// state. A Game is not safe for concurrent use.
package game

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/random"
	"github.com/louisbranch/legions/internal/services/game/dice"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/caretaker"
	"github.com/louisbranch/legions/internal/services/game/domain/history"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// Player count limits.
const (
	DefaultMinPlayers = 2
	DefaultMaxPlayers = 6
)

// ErrUnknownReference is returned by Apply when an action names a player,
// legion or creature the game does not have.
var ErrUnknownReference = errors.New("action references unknown game state")

// Game is one game of Legions.
type Game struct {
	Name string

	log        zerolog.Logger
	tables     *rules.Tables
	roller     dice.Roller
	master     bool
	minPlayers int
	maxPlayers int

	// players is in join order until towers are assigned, then in turn
	// order (descending tower).
	players    []*Player
	joined     int
	started    bool
	over       bool
	winners    []string
	turn       int
	phase      phase.Master
	active     string
	caretaker  *caretaker.Caretaker
	engagement int
	battle     *battleState
	// proposals holds the open proposal of each player in the current
	// engagement.
	proposals map[string]action.MakeProposal

	subject observer.Subject
	history *history.History
}

// Option configures a Game.
type Option func(*Game)

// WithTables sets the rule tables. The embedded defaults are used otherwise.
func WithTables(t *rules.Tables) Option {
	return func(g *Game) { g.tables = t }
}

// WithRoller sets the dice used by an authoritative game.
func WithRoller(r dice.Roller) Option {
	return func(g *Game) { g.roller = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Game) { g.log = l }
}

// WithPlayerLimits sets the minimum and maximum number of players.
func WithPlayerLimits(min, max int) Option {
	return func(g *Game) {
		g.minPlayers = min
		g.maxPlayers = max
	}
}

// Authoritative makes the game the master copy that validates and commits.
func Authoritative() Option {
	return func(g *Game) { g.master = true }
}

// New returns a game that no one has joined yet.
func New(name string, opts ...Option) (*Game, error) {
	g := &Game{
		Name:       name,
		log:        zerolog.Nop(),
		minPlayers: DefaultMinPlayers,
		maxPlayers: DefaultMaxPlayers,
		proposals:  make(map[string]action.MakeProposal),
		history:    history.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tables == nil {
		t, err := rules.Default()
		if err != nil {
			return nil, fmt.Errorf("load rule tables: %w", err)
		}
		g.tables = t
	}
	if g.master && g.roller == nil {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed dice: %w", err)
		}
		g.roller = dice.NewSeeded(seed)
	}
	g.caretaker = caretaker.New(g.tables)
	g.log = g.log.With().Str("game", name).Logger()
	g.subject.Subscribe("", g.history)
	return g, nil
}

// IsMaster reports whether g is the authoritative copy.
func (g *Game) IsMaster() bool { return g.master }

// Tables returns the rule tables the game plays with.
func (g *Game) Tables() *rules.Tables { return g.tables }

// Caretaker returns the creature pool.
func (g *Game) Caretaker() *caretaker.Caretaker { return g.caretaker }

// History returns the committed action log.
func (g *Game) History() *history.History { return g.history }

// Subscribe registers obs to receive the actions viewer may see. The empty
// viewer sees everything.
func (g *Game) Subscribe(viewer string, obs observer.Observer) func() {
	return g.subject.Subscribe(viewer, obs)
}

// Started reports whether towers have been assigned.
func (g *Game) Started() bool { return g.started }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.over }

// Winners returns the winners of a finished game; none means a draw.
func (g *Game) Winners() []string { return append([]string(nil), g.winners...) }

// Turn returns the game turn, starting at 1.
func (g *Game) Turn() int { return g.turn }

// Phase returns the master phase of the active player's turn.
func (g *Game) Phase() phase.Master { return g.phase }

// ActivePlayer returns the player whose turn it is.
func (g *Game) ActivePlayer() *Player { return g.player(g.active) }

// Players returns the players in turn order.
func (g *Game) Players() []*Player { return append([]*Player(nil), g.players...) }

// Player returns the named player.
func (g *Game) Player(name string) (*Player, bool) {
	p := g.player(name)
	return p, p != nil
}

// Owner returns the earliest joined player still in the game.
func (g *Game) Owner() string {
	var owner *Player
	for _, p := range g.players {
		if owner == nil || p.JoinOrder < owner.JoinOrder {
			owner = p
		}
	}
	if owner == nil {
		return ""
	}
	return owner.Name
}

// Legion finds a legion by marker across every player.
func (g *Game) Legion(marker string) (*Legion, bool) {
	for _, p := range g.players {
		if l, ok := p.legions[marker]; ok {
			return l, true
		}
	}
	return nil, false
}

// LegionsIn returns every legion in a masterboard hex, ordered by marker.
func (g *Game) LegionsIn(hex int) []*Legion {
	var out []*Legion
	for _, p := range g.players {
		for _, l := range p.legions {
			if l.Hex == hex {
				out = append(out, l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Marker < out[j].Marker })
	return out
}

// LivingPlayers returns the players that are not dead.
func (g *Game) LivingPlayers() []*Player {
	var out []*Player
	for _, p := range g.players {
		if !p.Dead {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) player(name string) *Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// commit folds a into the state and publishes it. Only the master commits;
// a fold error here means the master validated an action it cannot apply.
func (g *Game) commit(a action.Action, recipients ...string) {
	if err := g.fold(a); err != nil {
		panic(fmt.Sprintf("game %s: committed %s failed to apply: %v", g.Name, a.Kind(), err))
	}
	g.log.Debug().Str("kind", string(a.Kind())).Str("player", a.PlayerName()).Msg("committed action")
	g.subject.Publish(observer.Envelope{Action: a, Recipients: recipients})
}

// reject logs a refused mutator call and returns the domain error for it.
func (g *Game) reject(code apperrors.Code, msg string, metadata map[string]string) error {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["Game"] = g.Name
	ev := g.log.Warn().Str("code", string(code))
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev = ev.Str(k, metadata[k])
	}
	ev.Msg(msg)
	return apperrors.WithMetadata(code, msg, metadata)
}

// authorize runs the checks every in-game mutator shares: the game is the
// master, it is running, and the named player is alive in it.
func (g *Game) authorize(playerName string) (*Player, error) {
	if !g.master {
		return nil, g.reject(apperrors.CodeNotAuthoritative, "mirror games only replay actions", nil)
	}
	if !g.started {
		return nil, g.reject(apperrors.CodeGameNotStarted, "game has not started", nil)
	}
	if g.over {
		return nil, g.reject(apperrors.CodeGameOver, "game is over", nil)
	}
	p := g.player(playerName)
	if p == nil {
		return nil, g.reject(apperrors.CodePlayerNotFound, "no such player", map[string]string{"Player": playerName})
	}
	if p.Dead {
		return nil, g.reject(apperrors.CodePlayerDead, "player is dead", map[string]string{"Player": playerName})
	}
	return p, nil
}

// activeIn checks that p is the active player and the game is in ph.
func (g *Game) activeIn(p *Player, ph phase.Master) error {
	if p.Name != g.active {
		return g.reject(apperrors.CodeNotYourTurn, "not the active player", map[string]string{"Player": p.Name})
	}
	if g.phase != ph {
		return g.reject(apperrors.CodeWrongPhase, "wrong phase", map[string]string{"Player": p.Name, "Phase": string(g.phase)})
	}
	return nil
}

// ownLegion looks up marker and checks that p owns it.
func (g *Game) ownLegion(p *Player, marker string) (*Legion, error) {
	l, ok := g.Legion(marker)
	if !ok {
		return nil, g.reject(apperrors.CodeLegionNotFound, "no such legion", map[string]string{"Marker": marker})
	}
	if l.Owner != p.Name {
		return nil, g.reject(apperrors.CodeNotYourLegion, "legion belongs to another player", map[string]string{"Player": p.Name, "Marker": marker})
	}
	return l, nil
}

func (g *Game) header(player string) action.Header {
	return action.Header{Game: g.Name, Player: player}
}

func unknown(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUnknownReference}, args...)...)
}

func itoa(n int) string { return strconv.Itoa(n) }
