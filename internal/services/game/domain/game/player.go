package game

import (
	"slices"
	"sort"

	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

const (
	// AngelPoints is the score step that earns an Angel.
	AngelPoints = 100
	// ArchangelPoints is the score step that earns an Archangel.
	ArchangelPoints = 500
	// TitanTeleportScore is the score at which a Titan may teleport.
	TitanTeleportScore = 400

	startingMulligans = 1
)

// Player is one seat in a game.
type Player struct {
	Name        string
	JoinOrder   int
	Tower       int
	Color       string
	ColorAbbrev string
	Score       int

	SelectedMarker string
	MulligansLeft  int
	MovementRoll   int
	Summoned       bool

	// Dead is set when the player's Titan dies or the player withdraws;
	// Eliminated once their remaining legions have been removed.
	Dead             bool
	Eliminated       bool
	KilledBy         string
	EliminatedColors []string
	Paused           bool

	markersLeft []string
	legions     map[string]*Legion
	// splits maps each child marker split off this split phase to its parent.
	splits map[string]string
}

func newPlayer(name string, joinOrder int) *Player {
	return &Player{
		Name:          name,
		JoinOrder:     joinOrder,
		MulligansLeft: startingMulligans,
		legions:       make(map[string]*Legion),
		splits:        make(map[string]string),
	}
}

// Legions returns the player's legions ordered by marker.
func (p *Player) Legions() []*Legion {
	out := make([]*Legion, 0, len(p.legions))
	for _, l := range p.legions {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Marker < out[j].Marker })
	return out
}

// Legion returns the legion under marker.
func (p *Player) Legion(marker string) (*Legion, bool) {
	l, ok := p.legions[marker]
	return l, ok
}

// MarkersLeft returns the unused markers in order.
func (p *Player) MarkersLeft() []string {
	return append([]string(nil), p.markersLeft...)
}

// HasMarker reports whether marker is free for a new legion.
func (p *Player) HasMarker(marker string) bool {
	return slices.Contains(p.markersLeft, marker)
}

// TitanPower is six plus one per hundred points scored.
func (p *Player) TitanPower() int {
	return 6 + p.Score/AngelPoints
}

// CanTitanTeleport reports whether the score allows Titan teleport.
func (p *Player) CanTitanTeleport() bool {
	return p.Score >= TitanTeleportScore
}

// Teleported reports whether any legion teleported this turn.
func (p *Player) Teleported() bool {
	for _, l := range p.legions {
		if l.Teleported {
			return true
		}
	}
	return false
}

// PendingAcquire reports whether a legion waits on an angel decision.
func (p *Player) PendingAcquire() bool {
	for _, l := range p.legions {
		if l.AngelsPending > 0 || l.ArchangelsPending > 0 {
			return true
		}
	}
	return false
}

func (p *Player) setScore(score int) {
	p.Score = score
	power := p.TitanPower()
	for _, l := range p.legions {
		for _, c := range l.Creatures {
			if c.Name == rules.Titan {
				c.power = power
			}
		}
	}
}

func (p *Player) assignColor(tables *rules.Tables, color string) {
	p.Color = color
	p.ColorAbbrev, _ = tables.ColorAbbrev(color)
	p.markersLeft = tables.MarkerIDs(color)
}

func (p *Player) takeMarker(marker string) {
	i := slices.Index(p.markersLeft, marker)
	if i < 0 {
		panic("game: marker " + marker + " is not available to " + p.Name)
	}
	p.markersLeft = slices.Delete(p.markersLeft, i, i+1)
}

func (p *Player) returnMarkers(markers ...string) {
	for _, m := range markers {
		if !slices.Contains(p.markersLeft, m) {
			p.markersLeft = append(p.markersLeft, m)
		}
	}
	sort.Strings(p.markersLeft)
}

func (p *Player) addLegion(l *Legion) {
	for _, c := range l.Creatures {
		if c.Name == rules.Titan {
			c.power = p.TitanPower()
		}
	}
	p.legions[l.Marker] = l
}

func (p *Player) removeLegion(marker string) {
	delete(p.legions, marker)
	p.returnMarkers(marker)
}

func (p *Player) newTurn() {
	p.Summoned = false
	p.MovementRoll = 0
	clear(p.splits)
	for _, l := range p.legions {
		l.resetTurn()
	}
}
