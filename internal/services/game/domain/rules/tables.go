// Package rules holds the immutable rule tables of the game: the creature
// roster, per-terrain recruit ladders, the masterboard graph, the battle maps
// and the derived nativity table.
//
// A Tables value is built once at process start (see Load and Default) and
// shared read-only by every game.
package rules

import (
	"fmt"
	"sort"
)

// Sentinel names that may appear in recruit ladders.
const (
	// Anything lets a tower recruit its basic creatures with no recruiter.
	Anything = "ANYTHING"
	// AnyCreature lets a legion holding enough of one ordinary creature type
	// recruit the next entry of the ladder.
	AnyCreature = "CREATURE"
)

// Well-known creature names the engine has special rules for.
const (
	Titan     = "Titan"
	Angel     = "Angel"
	Archangel = "Archangel"
	Dragon    = "Dragon"
)

// Well-known terrain and hazard names.
const (
	TerrainTower   = "Tower"
	TerrainPlains  = "Plains"
	TerrainBramble = "Bramble"
	TerrainDrift   = "Drift"
	TerrainSand    = "Sand"
	TerrainTree    = "Tree"
	TerrainBog     = "Bog"
	TerrainVolcano = "Volcano"

	BorderSlope = "Slope"
	BorderWall  = "Wall"
	BorderCliff = "Cliff"
	BorderDune  = "Dune"
)

// Character classifies creatures for split, flee and rangestrike rules.
type Character string

const (
	Lord     Character = "lord"
	DemiLord Character = "demilord"
	Ordinary Character = "creature"
)

// CreatureType is one row of the creature roster.
type CreatureType struct {
	Name            string    `yaml:"name"`
	Plural          string    `yaml:"plural"`
	Power           int       `yaml:"power"`
	Skill           int       `yaml:"skill"`
	Rangestrike     int       `yaml:"rangestrike"`
	Flies           bool      `yaml:"flies"`
	Character       Character `yaml:"character"`
	Summonable      bool      `yaml:"summonable"`
	AcquirableEvery int       `yaml:"acquirable_every"`
	MaxCount        int       `yaml:"max_count"`
}

// Rangestrikes reports whether the creature can strike at range.
func (c CreatureType) Rangestrikes() bool { return c.Rangestrike > 0 }

// MagicMissile reports whether the creature's rangestrike ignores line of
// sight and may target lords.
func (c CreatureType) MagicMissile() bool { return c.Rangestrike == 2 }

// Acquirable reports whether the creature is handed out for points.
func (c CreatureType) Acquirable() bool { return c.AcquirableEvery > 0 }

// IsLord reports whether the creature is a lord.
func (c CreatureType) IsLord() bool { return c.Character == Lord }

// SortValue is a rough value used to order recruits and legions, computed
// with the roster power.
func (c CreatureType) SortValue() float64 {
	return c.SortValueWithPower(c.Power)
}

// SortValueWithPower is SortValue for a creature whose effective power
// differs from the roster, such as a Titan.
func (c CreatureType) SortValueWithPower(power int) float64 {
	v := float64(power * c.Skill)
	if c.Acquirable() {
		v += 0.2
	}
	if c.Flies {
		v += 0.3
	}
	if c.Rangestrikes() {
		v += 0.25
	}
	if c.MagicMissile() {
		v += 0.1
	}
	if c.Skill == 2 {
		v += 0.15
	}
	if c.Skill == 4 {
		v += 0.18
	}
	if c.Name == Titan {
		v += 100
	}
	return v
}

// RecruitEntry is one step of a recruit ladder.
type RecruitEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Ladder is an ordered recruit sublist within which up-, same- and
// down-recruiting is possible.
type Ladder []RecruitEntry

// Color is a player color and its marker prefix.
type Color struct {
	Name   string `yaml:"name"`
	Abbrev string `yaml:"abbrev"`
}

// Tables is the immutable rule knowledge base.
type Tables struct {
	creatures         map[string]CreatureType
	creatureOrder     []string
	recruits          map[string][]Ladder
	board             *MasterBoard
	battleMaps        map[battleKey]*BattleMap
	colors            []Color
	markersPerColor   int
	startingCreatures []string
	nativity          map[string]map[string]bool
	terrainCreatures  map[string][]string
}

type battleKey struct {
	terrain   string
	entrySide int
}

// Creature returns the roster row for name.
func (t *Tables) Creature(name string) (CreatureType, bool) {
	c, ok := t.creatures[name]
	return c, ok
}

// MustCreature returns the roster row for name and panics when the name is
// unknown; callers use it for names already validated against the tables.
func (t *Tables) MustCreature(name string) CreatureType {
	c, ok := t.creatures[name]
	if !ok {
		panic(fmt.Sprintf("rules: unknown creature %q", name))
	}
	return c
}

// CreatureNames returns every creature name in roster order.
func (t *Tables) CreatureNames() []string {
	return append([]string(nil), t.creatureOrder...)
}

// Recruits returns the recruit ladders for a masterboard terrain.
func (t *Tables) Recruits(terrain string) []Ladder {
	return t.recruits[terrain]
}

// Board returns the masterboard.
func (t *Tables) Board() *MasterBoard {
	return t.board
}

// BattleMap returns the battle map for a masterboard terrain entered from
// the given masterboard entry side.
func (t *Tables) BattleMap(terrain string, entrySide int) (*BattleMap, bool) {
	m, ok := t.battleMaps[battleKey{terrain: terrain, entrySide: entrySide}]
	return m, ok
}

// Colors returns the player colors in table order.
func (t *Tables) Colors() []Color {
	return append([]Color(nil), t.colors...)
}

// ColorAbbrev returns the marker prefix for a color name.
func (t *Tables) ColorAbbrev(color string) (string, bool) {
	for _, c := range t.colors {
		if c.Name == color {
			return c.Abbrev, true
		}
	}
	return "", false
}

// MarkerIDs returns the legion markers of a color, e.g. Rd01..Rd12.
func (t *Tables) MarkerIDs(color string) []string {
	abbrev, ok := t.ColorAbbrev(color)
	if !ok {
		return nil
	}
	out := make([]string, 0, t.markersPerColor)
	for i := 1; i <= t.markersPerColor; i++ {
		out = append(out, fmt.Sprintf("%s%02d", abbrev, i))
	}
	return out
}

// StartingCreatures returns the creatures of a starting legion.
func (t *Tables) StartingCreatures() []string {
	return append([]string(nil), t.startingCreatures...)
}

// IsNative reports whether creature is native to a battle hazard. Only the
// Dragon is native to Volcano.
func (t *Tables) IsNative(creature, hazard string) bool {
	return t.nativity[creature][hazard]
}

// NativeHazards returns the sorted hazards a creature is native to.
func (t *Tables) NativeHazards(creature string) []string {
	out := make([]string, 0, len(t.nativity[creature]))
	for h := range t.nativity[creature] {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// TerrainCreatures returns the creatures recruitable in a terrain.
func (t *Tables) TerrainCreatures(terrain string) []string {
	return append([]string(nil), t.terrainCreatures[terrain]...)
}
