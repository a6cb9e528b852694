package rules

import (
	"fmt"
	"sort"
)

// Gate is the kind of exit printed on a masterboard hexside.
type Gate string

const (
	GateNone   Gate = "NONE"
	GateBlock  Gate = "BLOCK"
	GateArch   Gate = "ARCH"
	GateArrow  Gate = "ARROW"
	GateArrows Gate = "ARROWS"
)

// Directions on both boards run 0..5 clockwise; Opposite(d) faces back.
const Directions = 6

// Opposite returns the direction facing d.
func Opposite(d int) int {
	return (d + 3) % Directions
}

// MasterHex is one hex of the masterboard graph.
type MasterHex struct {
	Label     int
	Terrain   string
	Inverted  bool
	Exits     [Directions]Gate
	Neighbors [Directions]int
}

// IsTower reports whether the hex is a tower.
func (h MasterHex) IsTower() bool {
	return h.Terrain == TerrainTower
}

// Block returns the direction of a BLOCK exit, if any.
func (h MasterHex) Block() (int, bool) {
	for d, g := range h.Exits {
		if g == GateBlock {
			return d, true
		}
	}
	return 0, false
}

// EntrySide maps the direction a legion arrived from into the 1/3/5 entry
// side used to orient the battle map.
func (h MasterHex) EntrySide(cameFrom int) int {
	if h.Inverted {
		return Opposite(cameFrom)
	}
	return cameFrom
}

// MasterBoard is the directed hex graph the legions move on.
type MasterBoard struct {
	hexes  map[int]MasterHex
	labels []int
	towers []int
}

func newMasterBoard(src []HexSource) (*MasterBoard, error) {
	b := &MasterBoard{hexes: make(map[int]MasterHex, len(src))}
	for _, hs := range src {
		if hs.Label <= 0 {
			return nil, fmt.Errorf("%w: masterhex label %d", ErrInvalidTables, hs.Label)
		}
		if len(hs.Exits) != Directions || len(hs.Neighbors) != Directions {
			return nil, fmt.Errorf("%w: masterhex %d needs %d exits and neighbors", ErrInvalidTables, hs.Label, Directions)
		}
		if _, dup := b.hexes[hs.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate masterhex %d", ErrInvalidTables, hs.Label)
		}
		h := MasterHex{Label: hs.Label, Terrain: hs.Terrain, Inverted: hs.Inverted}
		copy(h.Exits[:], hs.Exits)
		copy(h.Neighbors[:], hs.Neighbors)
		for d := range h.Exits {
			if h.Exits[d] == "" {
				h.Exits[d] = GateNone
			}
		}
		b.hexes[h.Label] = h
		b.labels = append(b.labels, h.Label)
		if h.IsTower() {
			b.towers = append(b.towers, h.Label)
		}
	}
	sort.Ints(b.labels)
	sort.Ints(b.towers)

	for _, h := range b.hexes {
		for d, n := range h.Neighbors {
			if n == 0 {
				if h.Exits[d] != GateNone {
					return nil, fmt.Errorf("%w: masterhex %d has an exit %d with no neighbor", ErrInvalidTables, h.Label, d)
				}
				continue
			}
			other, ok := b.hexes[n]
			if !ok {
				return nil, fmt.Errorf("%w: masterhex %d points at missing %d", ErrInvalidTables, h.Label, n)
			}
			if other.Neighbors[Opposite(d)] != h.Label {
				return nil, fmt.Errorf("%w: masterhex %d and %d are not mutual neighbors", ErrInvalidTables, h.Label, n)
			}
		}
	}
	return b, nil
}

// Hex returns the hex with the given label.
func (b *MasterBoard) Hex(label int) (MasterHex, bool) {
	h, ok := b.hexes[label]
	return h, ok
}

// Labels returns every hex label in ascending order.
func (b *MasterBoard) Labels() []int {
	return append([]int(nil), b.labels...)
}

// Towers returns the tower labels in ascending order.
func (b *MasterBoard) Towers() []int {
	return append([]int(nil), b.towers...)
}
