package rules

import (
	"fmt"
	"math"
	"sort"
)

// Offboard entrance labels. Creatures wait there until they move onto the
// map, and are cleaned up if they are still there at the end of a turn.
const (
	Attacker = "ATTACKER"
	Defender = "DEFENDER"
)

// NoSide is the hexside of a move out of an entrance.
const NoSide = -1

// OutOfRange is the distance reported for an entrance.
const OutOfRange = 99

var attackerEntrySides = []int{1, 3, 5}

// axial offsets by direction.
var axialDirs = [Directions][2]int{
	{0, -1}, {1, -1}, {1, 0}, {0, 1}, {-1, 1}, {-1, 0},
}

// BattleHex is one hex of a battle map.
type BattleHex struct {
	Label     string
	Q, R      int
	Terrain   string
	Elevation int
	// Borders holds the hazard on each hexside of this hex, "" for none.
	Borders  [Directions]string
	Entrance bool
}

// Adjacent is a neighbor reached by crossing Side of a hex. Side is NoSide
// for moves out of an entrance.
type Adjacent struct {
	Side  int
	Label string
}

// BattleMap is a terrain's battle map oriented for one attacker entry side.
type BattleMap struct {
	Terrain   string
	EntrySide int
	radius    int
	hexes     map[string]*BattleHex
	labels    []string
	coords    map[[2]int]string
	entrances map[string][]string
	startlist []string
	hazards   []string
}

func newBattleMap(terrain string, radius int, src BattleMapSource, entrySide int) (*BattleMap, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: battle radius %d", ErrInvalidTables, radius)
	}
	m := &BattleMap{
		Terrain:   terrain,
		EntrySide: entrySide,
		radius:    radius,
		hexes:     make(map[string]*BattleHex),
		coords:    make(map[[2]int]string),
		entrances: make(map[string][]string, 2),
	}
	for q := -radius; q <= radius; q++ {
		rmin := max(-radius, -radius-q)
		rmax := min(radius, radius-q)
		for r := rmin; r <= rmax; r++ {
			label := fmt.Sprintf("%c%d", 'A'+rune(q+radius), r-rmin+1)
			m.hexes[label] = &BattleHex{Label: label, Q: q, R: r, Terrain: TerrainPlains}
			m.coords[[2]int{q, r}] = label
			m.labels = append(m.labels, label)
		}
	}
	sort.Strings(m.labels)

	for label, hs := range src.Hexes {
		h, ok := m.hexes[label]
		if !ok {
			return nil, fmt.Errorf("%w: %s map has no hex %q", ErrInvalidTables, terrain, label)
		}
		if hs.Terrain != "" {
			h.Terrain = hs.Terrain
		}
		h.Elevation = hs.Elevation
		for side, border := range hs.Borders {
			if side < 0 || side >= Directions {
				return nil, fmt.Errorf("%w: %s hex %s has hexside %d", ErrInvalidTables, terrain, label, side)
			}
			h.Borders[side] = border
		}
	}
	for _, label := range src.Startlist {
		if _, ok := m.hexes[label]; !ok {
			return nil, fmt.Errorf("%w: %s startlist names missing hex %q", ErrInvalidTables, terrain, label)
		}
		m.startlist = append(m.startlist, label)
	}

	m.entrances[Attacker] = m.edge(entrySide)
	m.entrances[Defender] = m.edge(Opposite(entrySide))
	for _, label := range []string{Attacker, Defender} {
		m.hexes[label] = &BattleHex{Label: label, Terrain: TerrainPlains, Entrance: true}
	}

	seen := map[string]bool{TerrainPlains: true}
	for _, h := range m.hexes {
		seen[h.Terrain] = true
		for _, b := range h.Borders {
			if b != "" {
				seen[b] = true
			}
		}
	}
	for h := range seen {
		m.hazards = append(m.hazards, h)
	}
	sort.Strings(m.hazards)
	return m, nil
}

// edge returns the hexes along the map edge facing direction e.
func (m *BattleMap) edge(e int) []string {
	d := axialDirs[e]
	step := axialDirs[(e+2)%Directions]
	out := make([]string, 0, m.radius+1)
	for t := 0; t <= m.radius; t++ {
		q := m.radius*d[0] + t*step[0]
		r := m.radius*d[1] + t*step[1]
		out = append(out, m.coords[[2]int{q, r}])
	}
	return out
}

// Hex returns the hex with the given label, entrances included.
func (m *BattleMap) Hex(label string) (*BattleHex, bool) {
	h, ok := m.hexes[label]
	return h, ok
}

// Labels returns the onboard hex labels in sorted order.
func (m *BattleMap) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Startlist returns the hexes a defender may start on, if the map has them.
func (m *BattleMap) Startlist() []string {
	return append([]string(nil), m.startlist...)
}

// EntranceHexes returns the onboard hexes reachable from an entrance.
func (m *BattleMap) EntranceHexes(entrance string) []string {
	return append([]string(nil), m.entrances[entrance]...)
}

// Hazards returns every terrain and border hazard that appears on the map.
func (m *BattleMap) Hazards() []string {
	return append([]string(nil), m.hazards...)
}

// Neighbor returns the hex across side of label.
func (m *BattleMap) Neighbor(label string, side int) (*BattleHex, bool) {
	h, ok := m.hexes[label]
	if !ok || h.Entrance {
		return nil, false
	}
	d := axialDirs[side]
	n, ok := m.coords[[2]int{h.Q + d[0], h.R + d[1]}]
	if !ok {
		return nil, false
	}
	return m.hexes[n], true
}

// Adjacent lists the hexes a creature can step to from label.
func (m *BattleMap) Adjacent(label string) []Adjacent {
	if edge, ok := m.entrances[label]; ok {
		out := make([]Adjacent, 0, len(edge))
		for _, l := range edge {
			out = append(out, Adjacent{Side: NoSide, Label: l})
		}
		return out
	}
	var out []Adjacent
	for side := 0; side < Directions; side++ {
		if n, ok := m.Neighbor(label, side); ok {
			out = append(out, Adjacent{Side: side, Label: n.Label})
		}
	}
	return out
}

// SideToward returns the hexside of a that faces the adjacent hex b.
func (m *BattleMap) SideToward(a, b string) (int, bool) {
	for side := 0; side < Directions; side++ {
		if n, ok := m.Neighbor(a, side); ok && n.Label == b {
			return side, true
		}
	}
	return 0, false
}

// Range returns the hex distance between two onboard hexes. Entrances are
// OutOfRange from everything.
func (m *BattleMap) Range(a, b string) int {
	ha, ok1 := m.hexes[a]
	hb, ok2 := m.hexes[b]
	if !ok1 || !ok2 || ha.Entrance || hb.Entrance {
		return OutOfRange
	}
	dq := ha.Q - hb.Q
	dr := ha.R - hb.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

// LineOfSight reports whether the straight line between two onboard hexes
// is clear. Trees and any hex reported by occupied block the line; the end
// hexes themselves never do. A line running exactly along a hexside is clear
// when either side of it is.
func (m *BattleMap) LineOfSight(from, to string, occupied func(label string) bool) bool {
	a, ok1 := m.hexes[from]
	b, ok2 := m.hexes[to]
	if !ok1 || !ok2 || a.Entrance || b.Entrance {
		return false
	}
	return m.clearLine(a, b, 1e-6, occupied) || m.clearLine(a, b, -1e-6, occupied)
}

func (m *BattleMap) clearLine(a, b *BattleHex, nudge float64, occupied func(string) bool) bool {
	n := m.Range(a.Label, b.Label)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		q := float64(a.Q) + (float64(b.Q-a.Q))*t + nudge
		r := float64(a.R) + (float64(b.R-a.R))*t + 2*nudge
		label, ok := m.coords[cubeRound(q, r)]
		if !ok {
			return false
		}
		if m.hexes[label].Terrain == TerrainTree {
			return false
		}
		if occupied != nil && occupied(label) {
			return false
		}
	}
	return true
}

func cubeRound(q, r float64) [2]int {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	dq, dr, ds := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return [2]int{int(rq), int(rr)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
