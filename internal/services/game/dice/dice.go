// Package dice implements the seeded dice used by authoritative games.
package dice

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Sides of the dice every strike and movement roll uses.
const Sides = 6

// Roller is the randomness an authoritative game draws from. Mirrors never
// roll; they replay the results recorded in actions.
type Roller interface {
	// Roll returns n six-sided results.
	Roll(n int) []int
	// Shuffle permutes n elements through swap.
	Shuffle(n int, swap func(i, j int))
}

// Seeded is a Roller backed by one seeded generator for the life of a game.
type Seeded struct {
	seed int64
	rng  *rand.Rand
}

// NewSeeded returns a Roller whose sequence is fixed by seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{seed: seed, rng: rand.New(rand.NewSource(uint64(seed)))}
}

// Seed returns the seed the roller started from.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Roll returns n six-sided results.
func (s *Seeded) Roll(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rollDie(s.rng, Sides)
	}
	return out
}

// Shuffle permutes n elements through swap.
func (s *Seeded) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Fixed replays a scripted sequence of results, cycling when exhausted.
// Shuffle leaves the order unchanged. Tests use it to pin outcomes; one
// Fixed may be shared by several games.
type Fixed struct {
	Results []int

	mu   sync.Mutex
	next int
}

// Roll returns the next n scripted results.
func (f *Fixed) Roll(n int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		if len(f.Results) == 0 {
			out[i] = Sides
			continue
		}
		out[i] = f.Results[f.next%len(f.Results)]
		f.next++
	}
	return out
}

// Shuffle does nothing.
func (f *Fixed) Shuffle(int, func(i, j int)) {}

// rollDie rolls a die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}
