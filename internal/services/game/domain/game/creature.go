package game

import (
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// Creature is one unit in a legion. It refers to its legion by marker.
type Creature struct {
	Name   string
	Marker string
	// Hex is the battle hex label, or "" outside battle.
	Hex         string
	PreviousHex string
	Hits        int
	Moved       bool
	Struck      bool

	kind  rules.CreatureType
	power int
}

func newCreature(tables *rules.Tables, name, marker string) *Creature {
	kind := tables.MustCreature(name)
	return &Creature{Name: name, Marker: marker, kind: kind, power: kind.Power}
}

// Kind returns the creature's static stats.
func (c *Creature) Kind() rules.CreatureType { return c.kind }

// Power is the base power, or the owner's Titan power for a Titan.
func (c *Creature) Power() int { return c.power }

// Skill returns the creature's skill factor.
func (c *Creature) Skill() int { return c.kind.Skill }

// Dead reports whether the creature has taken as many hits as its power.
func (c *Creature) Dead() bool { return c.Hits >= c.power }

// Score is the point value of the creature.
func (c *Creature) Score() int { return c.power * c.kind.Skill }

// SortValue ranks creatures for display and recruit ordering.
func (c *Creature) SortValue() float64 { return c.kind.SortValueWithPower(c.power) }

// IsLord reports whether the creature is a lord.
func (c *Creature) IsLord() bool { return c.kind.IsLord() }

// Offboard reports whether the creature waits in a battle entrance.
func (c *Creature) Offboard() bool {
	return c.Hex == rules.Attacker || c.Hex == rules.Defender
}

// Heal clears all hits.
func (c *Creature) Heal() { c.Hits = 0 }

// Kill sets hits to power.
func (c *Creature) Kill() { c.Hits = c.power }

// Move records a battle move, keeping one level of undo.
func (c *Creature) Move(hex string) {
	c.PreviousHex = c.Hex
	c.Hex = hex
	c.Moved = true
}

// UndoMove returns the creature to the hex it moved from.
func (c *Creature) UndoMove() {
	c.Hex = c.PreviousHex
	c.PreviousHex = ""
	c.Moved = false
}

func (c *Creature) addHits(n int) {
	c.Hits += n
	if c.Hits > c.power {
		c.Hits = c.power
	}
}

func creatureNames(cs []*Creature) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}
