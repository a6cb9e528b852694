package game

import (
	"slices"
	"sort"

	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// Movement modes on the masterboard. A non-negative mode is the single
// direction a block hex forces.
const (
	ArchesAndArrows = -1
	ArrowsOnly      = -2
)

// Teleport is the entry side reported for teleport moves; the mover picks
// the real side when committing.
const Teleport = -1

// noBlock asks findNormalMoves to derive the mode from the hex.
const noBlock = -3

// teleportEntrySides are the sides a teleporting legion may enter by.
var teleportEntrySides = []int{1, 3, 5}

// towerEntrySide is the side a legion teleporting into a tower must use.
const towerEntrySide = 5

// teleportRoll is the roll that enables teleports.
const teleportRoll = 6

// Move is a legal masterboard destination.
type Move struct {
	Hex       int
	EntrySide int
}

// FindNormalMoves returns the non-teleport destinations of l from hex for
// the given roll.
func (g *Game) FindNormalMoves(l *Legion, hex rules.MasterHex, roll int) []Move {
	out := make(map[Move]bool)
	g.findNormalMoves(l, hex, roll, noBlock, -1, out)
	return sortMoves(out)
}

func (g *Game) findNormalMoves(l *Legion, hex rules.MasterHex, roll, block, cameFrom int, out map[Move]bool) {
	if block == noBlock {
		if d, ok := hex.Block(); ok {
			block = d
		} else {
			block = ArchesAndArrows
		}
	}
	friends, enemies := g.legionsAt(l, hex.Label)
	switch {
	case enemies > 0:
		if friends == 0 {
			out[Move{Hex: hex.Label, EntrySide: hex.EntrySide(cameFrom)}] = true
		}
	case roll == 0:
		if friends == 0 {
			out[Move{Hex: hex.Label, EntrySide: hex.EntrySide(cameFrom)}] = true
		}
	case block >= 0:
		g.step(l, hex, block, roll, out)
	default:
		for d, gate := range hex.Exits {
			if d == cameFrom {
				continue
			}
			if gate == rules.GateArrow || gate == rules.GateArrows || (gate == rules.GateArch && block == ArchesAndArrows) {
				g.step(l, hex, d, roll, out)
			}
		}
	}
}

func (g *Game) step(l *Legion, hex rules.MasterHex, d, roll int, out map[Move]bool) {
	next, ok := g.tables.Board().Hex(hex.Neighbors[d])
	if !ok {
		return
	}
	g.findNormalMoves(l, next, roll-1, ArrowsOnly, rules.Opposite(d), out)
}

// legionsAt counts the legions other than l in hex, split into friends
// and enemies of l's owner.
func (g *Game) legionsAt(l *Legion, hex int) (friends, enemies int) {
	for _, other := range g.LegionsIn(hex) {
		switch {
		case other.Marker == l.Marker:
		case other.Owner == l.Owner:
			friends++
		default:
			enemies++
		}
	}
	return friends, enemies
}

// FindNearbyEmptyHexes returns the unoccupied hexes within roll steps of
// hex, following any exit in either direction.
func (g *Game) FindNearbyEmptyHexes(hex rules.MasterHex, roll int) []Move {
	out := make(map[Move]bool)
	g.findNearbyEmptyHexes(hex, roll, -1, out)
	return sortMoves(out)
}

func (g *Game) findNearbyEmptyHexes(hex rules.MasterHex, roll, cameFrom int, out map[Move]bool) {
	if len(g.LegionsIn(hex.Label)) == 0 {
		out[Move{Hex: hex.Label, EntrySide: Teleport}] = true
	}
	if roll <= 0 {
		return
	}
	board := g.tables.Board()
	for d, gate := range hex.Exits {
		if d == cameFrom {
			continue
		}
		next, ok := board.Hex(hex.Neighbors[d])
		if !ok {
			continue
		}
		if gate != rules.GateNone || next.Exits[rules.Opposite(d)] != rules.GateNone {
			g.findNearbyEmptyHexes(next, roll-1, rules.Opposite(d), out)
		}
	}
}

// FindTowerTeleportMoves returns where l can tower teleport from hex: a
// legion with a lord in a tower reaches any empty hex within six and any
// other empty tower.
func (g *Game) FindTowerTeleportMoves(l *Legion, hex rules.MasterHex) []Move {
	out := make(map[Move]bool)
	g.towerTeleport(l, hex, out)
	return sortMoves(out)
}

func (g *Game) towerTeleport(l *Legion, hex rules.MasterHex, out map[Move]bool) {
	if !hex.IsTower() || l.NumLords() == 0 {
		return
	}
	g.findNearbyEmptyHexes(hex, teleportRoll, -1, out)
	for _, t := range g.tables.Board().Towers() {
		if t != hex.Label && len(g.LegionsIn(t)) == 0 {
			out[Move{Hex: t, EntrySide: Teleport}] = true
		}
	}
}

// FindTitanTeleportMoves returns the enemy-held hexes l can reach by Titan
// teleport.
func (g *Game) FindTitanTeleportMoves(l *Legion) []Move {
	out := make(map[Move]bool)
	g.titanTeleport(l, out)
	return sortMoves(out)
}

func (g *Game) titanTeleport(l *Legion, out map[Move]bool) {
	p := g.player(l.Owner)
	if p == nil || !p.CanTitanTeleport() || !l.HasTitan() {
		return
	}
	for _, other := range g.players {
		if other.Name == p.Name {
			continue
		}
		for _, enemy := range other.legions {
			if friends, _ := g.legionsAt(l, enemy.Hex); friends == 0 && enemy.Hex != l.Hex {
				out[Move{Hex: enemy.Hex, EntrySide: Teleport}] = true
			}
		}
	}
}

// FindAllTeleportMoves returns the teleport destinations for roll. Teleport
// needs a six and is allowed once per player turn.
func (g *Game) FindAllTeleportMoves(l *Legion, hex rules.MasterHex, roll int) []Move {
	out := make(map[Move]bool)
	g.allTeleports(l, hex, roll, out)
	return sortMoves(out)
}

func (g *Game) allTeleports(l *Legion, hex rules.MasterHex, roll int, out map[Move]bool) {
	p := g.player(l.Owner)
	if roll != teleportRoll || p == nil || p.Teleported() {
		return
	}
	g.towerTeleport(l, hex, out)
	g.titanTeleport(l, out)
}

// FindAllMoves returns every destination of l for roll.
func (g *Game) FindAllMoves(l *Legion, hex rules.MasterHex, roll int) []Move {
	out := make(map[Move]bool)
	g.findNormalMoves(l, hex, roll, noBlock, -1, out)
	g.allTeleports(l, hex, roll, out)
	return sortMoves(out)
}

// LegalMoves returns where legion marker can move this phase.
func (g *Game) LegalMoves(marker string) []Move {
	l, ok := g.Legion(marker)
	if !ok || l.Moved {
		return nil
	}
	p := g.player(l.Owner)
	hex, ok := g.tables.Board().Hex(l.Hex)
	if !ok || p == nil {
		return nil
	}
	return g.FindAllMoves(l, hex, p.MovementRoll)
}

// CanMoveLegion reports whether l may move to hex by entrySide. A teleport
// names the lord revealed for it and an entry side of 1, 3 or 5; towers are
// entered by side 5.
func (g *Game) CanMoveLegion(p *Player, l *Legion, hex, entrySide int, teleport bool, lord string) bool {
	if p.Name != g.active || l.Owner != p.Name || l.Moved {
		return false
	}
	from, ok := g.tables.Board().Hex(l.Hex)
	if !ok {
		return false
	}
	if !teleport {
		return slices.Contains(g.FindNormalMoves(l, from, p.MovementRoll), Move{Hex: hex, EntrySide: entrySide})
	}
	c := l.find(lord, nil)
	if p.Teleported() || lord == "" || c == nil || !c.IsLord() {
		return false
	}
	target := Move{Hex: hex, EntrySide: Teleport}
	if !slices.Contains(g.FindAllTeleportMoves(l, from, p.MovementRoll), target) {
		return false
	}
	tower := g.FindTowerTeleportMoves(l, from)
	if !slices.Contains(tower, target) && lord != rules.Titan {
		return false
	}
	if !slices.Contains(teleportEntrySides, entrySide) {
		return false
	}
	dest, ok := g.tables.Board().Hex(hex)
	if !ok {
		return false
	}
	return !dest.IsTower() || entrySide == towerEntrySide
}

// legionHasMove reports whether l has any legal destination.
func (g *Game) legionHasMove(l *Legion) bool {
	return len(g.LegalMoves(l.Marker)) > 0
}

func sortMoves(set map[Move]bool) []Move {
	out := make([]Move, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hex != out[j].Hex {
			return out[i].Hex < out[j].Hex
		}
		return out[i].EntrySide < out[j].EntrySide
	})
	return out
}
