package game

import (
	"math"
	"sort"

	"github.com/louisbranch/legions/internal/services/game/domain/phase"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// impassable is the cost of a hex a creature cannot enter or cross.
const impassable = math.MaxInt32

// battleState holds everything that only exists while a battle is fought.
// It is nil outside battle.
type battleState struct {
	hex      int
	attacker string
	defender string
	bmap     *rules.BattleMap
	turn     int
	phase    phase.Battle
	// active is the marker of the legion taking its battle turn.
	active string

	firstAttackerKill int
	attackerEntered   bool
	carry             *pendingCarry
	summonDonor       string

	// over is set once BattleOver is folded; the battle stays open until
	// pending summons and reinforcements are settled.
	over             bool
	timeLoss         bool
	pendingSummon    bool
	pendingReinforce bool
}

// pendingCarry is a strike whose excess hits still wait for a target.
type pendingCarry struct {
	strikerName  string
	strikerHex   string
	targetName   string
	targetHex    string
	numDice      int
	strikeNumber int
	carries      int
}

// Battle is a read-only view of the current battle.
type Battle struct {
	Hex               int
	Attacker          string
	Defender          string
	Terrain           string
	EntrySide         int
	Turn              int
	Phase             phase.Battle
	Active            string
	FirstAttackerKill int
	AttackerEntered   bool
	PendingCarry      int
	PendingSummon     bool
	PendingReinforce  bool
	Over              bool
}

// Battle returns the battle in progress.
func (g *Game) Battle() (Battle, bool) {
	b := g.battle
	if b == nil {
		return Battle{}, false
	}
	out := Battle{
		Hex:               b.hex,
		Attacker:          b.attacker,
		Defender:          b.defender,
		Terrain:           b.bmap.Terrain,
		EntrySide:         b.bmap.EntrySide,
		Turn:              b.turn,
		Phase:             b.phase,
		Active:            b.active,
		FirstAttackerKill: b.firstAttackerKill,
		AttackerEntered:   b.attackerEntered,
		PendingSummon:     b.pendingSummon,
		PendingReinforce:  b.pendingReinforce,
		Over:              b.over,
	}
	if b.carry != nil {
		out.PendingCarry = b.carry.carries
	}
	return out, true
}

// BattleMap returns the map of the current battle.
func (g *Game) BattleMap() (*rules.BattleMap, bool) {
	if g.battle == nil {
		return nil, false
	}
	return g.battle.bmap, true
}

func (g *Game) attackerLegion() *Legion {
	if g.battle == nil {
		return nil
	}
	l, _ := g.Legion(g.battle.attacker)
	return l
}

func (g *Game) defenderLegion() *Legion {
	if g.battle == nil {
		return nil
	}
	l, _ := g.Legion(g.battle.defender)
	return l
}

func (g *Game) battleLegions() []*Legion {
	var out []*Legion
	if l := g.attackerLegion(); l != nil {
		out = append(out, l)
	}
	if l := g.defenderLegion(); l != nil {
		out = append(out, l)
	}
	return out
}

func (g *Game) activeBattleLegion() *Legion {
	if g.battle == nil {
		return nil
	}
	l, _ := g.Legion(g.battle.active)
	return l
}

func (g *Game) otherBattleLegion(marker string) *Legion {
	if g.battle == nil {
		return nil
	}
	if marker == g.battle.attacker {
		return g.defenderLegion()
	}
	return g.attackerLegion()
}

// BattleActivePlayer returns the owner of the legion taking its battle turn.
func (g *Game) BattleActivePlayer() string {
	if l := g.activeBattleLegion(); l != nil {
		return l.Owner
	}
	return ""
}

// creatureAt returns the creature standing on an onboard hex, dead or
// alive. Entrances hold many creatures and are never matched.
func (g *Game) creatureAt(label string) *Creature {
	if label == "" || label == rules.Attacker || label == rules.Defender {
		return nil
	}
	for _, l := range g.battleLegions() {
		for _, c := range l.Creatures {
			if c.Hex == label {
				return c
			}
		}
	}
	return nil
}

// findBattleCreature finds a creature of legion l by name and hex.
func findBattleCreature(l *Legion, name, hex string) *Creature {
	if l == nil {
		return nil
	}
	return l.find(name, func(c *Creature) bool { return c.Hex == hex })
}

func (g *Game) occupied(label string) bool {
	return g.creatureAt(label) != nil
}

// livingOnboard reports whether a living creature stands on label. Dead
// creatures do not block line of sight.
func (g *Game) livingOnboard(label string) bool {
	c := g.creatureAt(label)
	return c != nil && !c.Dead()
}

// IsNative reports whether c is native to a battle hazard.
func (g *Game) IsNative(c *Creature, hazard string) bool {
	return g.tables.IsNative(c.Name, hazard)
}

// EngagedEnemies returns the living onboard enemies adjacent to c, except
// across a cliff. A creature killed this turn still strikes back.
func (g *Game) EngagedEnemies(c *Creature) []*Creature {
	if g.battle == nil || c.Hex == "" || c.Offboard() {
		return nil
	}
	bmap := g.battle.bmap
	hex1, ok := bmap.Hex(c.Hex)
	if !ok {
		return nil
	}
	var out []*Creature
	for side := 0; side < rules.Directions; side++ {
		hex2, ok := bmap.Neighbor(c.Hex, side)
		if !ok {
			continue
		}
		enemy := g.creatureAt(hex2.Label)
		if enemy == nil || enemy.Marker == c.Marker || enemy.Dead() {
			continue
		}
		if hex1.Borders[side] == rules.BorderCliff || hex2.Borders[rules.Opposite(side)] == rules.BorderCliff {
			continue
		}
		out = append(out, enemy)
	}
	return out
}

// Engaged reports whether c has an engaged enemy.
func (g *Game) Engaged(c *Creature) bool {
	return len(g.EngagedEnemies(c)) > 0
}

// Mobile reports whether c can still move this battle turn.
func (g *Game) Mobile(c *Creature) bool {
	return !c.Moved && !c.Dead() && !g.Engaged(c)
}

// RangestrikeTargets returns the enemies c could rangestrike: within range
// of its skill, in line of sight and not lords, unless c casts magic
// missiles. Only the strike phase allows rangestrikes.
func (g *Game) RangestrikeTargets(c *Creature) []*Creature {
	b := g.battle
	if b == nil || b.phase != phase.Strike || c.Hex == "" || c.Offboard() || !c.kind.Rangestrikes() {
		return nil
	}
	other := g.otherBattleLegion(c.Marker)
	if other == nil {
		return nil
	}
	magic := c.kind.MagicMissile()
	var out []*Creature
	for _, enemy := range other.Creatures {
		if enemy.Dead() || enemy.Hex == "" || enemy.Offboard() {
			continue
		}
		if b.bmap.Range(c.Hex, enemy.Hex) > c.Skill() {
			continue
		}
		if !magic && (enemy.IsLord() || !b.bmap.LineOfSight(c.Hex, enemy.Hex, g.livingOnboard)) {
			continue
		}
		out = append(out, enemy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex < out[j].Hex })
	return out
}

// StrikeTargets returns the creatures c may strike now: its engaged enemies,
// or its rangestrike targets when it is not engaged.
func (g *Game) StrikeTargets(c *Creature) []*Creature {
	if c.Struck {
		return nil
	}
	if enemies := g.EngagedEnemies(c); len(enemies) > 0 {
		return enemies
	}
	return g.RangestrikeTargets(c)
}

// CanStrike reports whether c has anything to strike.
func (g *Game) CanStrike(c *Creature) bool {
	return len(g.StrikeTargets(c)) > 0
}

// BattleHexEntryCost is the movement c spends to land in a hex of terrain
// reached across border, or impassable.
func (g *Game) BattleHexEntryCost(c *Creature, terrain, border string) int {
	cost := 1
	native := func(h string) bool { return g.IsNative(c, h) }
	flies := c.kind.Flies
	switch terrain {
	case rules.TerrainTree:
		return impassable
	case rules.TerrainBog, rules.TerrainVolcano:
		if !native(terrain) {
			return impassable
		}
	case rules.TerrainBramble, rules.TerrainDrift:
		if !native(terrain) {
			cost++
		}
	case rules.TerrainSand:
		if !native(terrain) && !flies {
			cost++
		}
	}
	switch border {
	case rules.BorderSlope:
		if !native(border) && !flies {
			cost++
		}
	case rules.BorderWall:
		if !flies {
			cost++
		}
	case rules.BorderCliff:
		if !flies {
			return impassable
		}
	}
	return cost
}

// BattleHexFlyoverCost is the movement a flier spends to cross a hex
// without landing. Non-fliers and non-native fliers over a volcano cannot.
func (g *Game) BattleHexFlyoverCost(c *Creature, terrain string) int {
	if !c.kind.Flies {
		return impassable
	}
	if terrain == rules.TerrainVolcano && !g.IsNative(c, terrain) {
		return impassable
	}
	return 1
}

// FindBattleMoves returns the hexes c can move to, never its own. With
// ignoreMobileAllies, hexes held by allies that can still move count as
// free; the AI uses this to plan a whole legion's maneuver.
func (g *Game) FindBattleMoves(c *Creature, ignoreMobileAllies bool) []string {
	b := g.battle
	if b == nil || c.Hex == "" || c.Moved || c.Dead() || g.Engaged(c) {
		return nil
	}
	set := make(map[string]bool)
	if start := b.bmap.Startlist(); b.turn == phase.FirstBattleTurn && c.Marker == b.defender && len(start) > 0 {
		for _, label := range start {
			if !g.occupied(label) {
				set[label] = true
			}
		}
	} else {
		g.findBattleMoves(c, c.Hex, c.Skill(), ignoreMobileAllies, set)
	}
	delete(set, c.Hex)
	out := make([]string, 0, len(set))
	for label := range set {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func (g *Game) findBattleMoves(c *Creature, from string, left int, ignoreMobileAllies bool, out map[string]bool) {
	if left <= 0 {
		return
	}
	bmap := g.battle.bmap
	free := func(label string) bool {
		other := g.creatureAt(label)
		return other == nil || (ignoreMobileAllies && other.Marker == c.Marker && g.Mobile(other))
	}
	for _, adj := range bmap.Adjacent(from) {
		hex2, ok := bmap.Hex(adj.Label)
		if !ok {
			continue
		}
		if !c.kind.Flies && !free(adj.Label) {
			continue
		}
		border := ""
		if adj.Side != rules.NoSide {
			border = hex2.Borders[rules.Opposite(adj.Side)]
		}
		cost := g.BattleHexEntryCost(c, hex2.Terrain, border)
		if cost <= left && free(adj.Label) {
			out[adj.Label] = true
		}
		step := cost
		if fly := g.BattleHexFlyoverCost(c, hex2.Terrain); fly < step {
			step = fly
		}
		if step < left {
			g.findBattleMoves(c, adj.Label, left-step, ignoreMobileAllies, out)
		}
	}
}

// BattleCreatures returns the living creatures of both battle legions.
func (g *Game) BattleCreatures() []*Creature {
	var out []*Creature
	for _, l := range g.battleLegions() {
		for _, c := range l.Creatures {
			if !c.Dead() && c.Hex != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
