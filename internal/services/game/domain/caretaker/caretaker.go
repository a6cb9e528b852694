// Package caretaker tracks the finite supply of each creature type.
package caretaker

import (
	"fmt"

	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// Caretaker is the per-game creature pool. Counts never go negative; taking
// from an empty stack is an engine bug and panics.
type Caretaker struct {
	tables    *rules.Tables
	counts    map[string]int
	graveyard map[string]int
}

// New seeds a pool with every creature's max count.
func New(tables *rules.Tables) *Caretaker {
	c := &Caretaker{
		tables:    tables,
		counts:    make(map[string]int),
		graveyard: make(map[string]int),
	}
	for _, name := range tables.CreatureNames() {
		c.counts[name] = tables.MustCreature(name).MaxCount
	}
	return c
}

// NumLeft returns how many of name remain in the pool.
func (c *Caretaker) NumLeft(name string) int {
	return c.counts[name]
}

// TakeOne removes one creature from the pool.
func (c *Caretaker) TakeOne(name string) {
	if c.counts[name] <= 0 {
		panic(fmt.Sprintf("caretaker: no %s left to take", name))
	}
	c.counts[name]--
}

// PutOneBack returns a creature that left the board without dying, such as an
// undone recruit.
func (c *Caretaker) PutOneBack(name string) {
	ct := c.tables.MustCreature(name)
	if c.counts[name]+c.graveyard[name] >= ct.MaxCount {
		panic(fmt.Sprintf("caretaker: more %s returned than exist", name))
	}
	c.counts[name]++
}

// KillOne records a creature's death. Ordinary creatures go back to the
// pool; lords and demi-lords go to the graveyard for good.
func (c *Caretaker) KillOne(name string) {
	if c.tables.MustCreature(name).Character == rules.Ordinary {
		c.PutOneBack(name)
		return
	}
	c.graveyard[name]++
}

// Counts returns a copy of the remaining supply.
func (c *Caretaker) Counts() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Graveyard returns a copy of the permanently dead counts.
func (c *Caretaker) Graveyard() map[string]int {
	out := make(map[string]int, len(c.graveyard))
	for k, v := range c.graveyard {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}
