package game

import (
	"slices"

	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// maxStrikeNumber caps every strike number.
const maxStrikeNumber = 6

// strikeGeometry returns the hexes of c and target and, when they are
// engaged, the border on c's side and the border on target's side.
func (g *Game) strikeGeometry(c, target *Creature) (hex1, hex2 *rules.BattleHex, border, border2 string, engaged bool) {
	bmap := g.battle.bmap
	hex1, _ = bmap.Hex(c.Hex)
	hex2, _ = bmap.Hex(target.Hex)
	if !slices.Contains(g.EngagedEnemies(c), target) {
		return hex1, hex2, "", "", false
	}
	side, _ := bmap.SideToward(c.Hex, target.Hex)
	return hex1, hex2, hex1.Borders[side], hex2.Borders[rules.Opposite(side)], true
}

// NumberOfDice returns how many dice c rolls against target: its power in
// melee, half its power at range, with hazard bonuses. Zero means target
// cannot be struck.
func (g *Game) NumberOfDice(c, target *Creature) int {
	if g.battle == nil || c.Hex == "" || target.Hex == "" {
		return 0
	}
	hex1, _, border, border2, engaged := g.strikeGeometry(c, target)
	if hex1 == nil {
		return 0
	}
	volcano := hex1.Terrain == rules.TerrainVolcano && g.IsNative(c, rules.TerrainVolcano)
	if engaged {
		dice := c.Power()
		if volcano {
			dice += 2
		}
		switch {
		case border == rules.BorderSlope && g.IsNative(c, border):
			dice++
		case border == rules.BorderDune && g.IsNative(c, border):
			dice += 2
		}
		if border2 == rules.BorderDune && !g.IsNative(c, border2) {
			dice--
		}
		return dice
	}
	if !slices.Contains(g.RangestrikeTargets(c), target) {
		return 0
	}
	dice := c.Power() / 2
	if volcano {
		dice += 2
	}
	return dice
}

// StrikeNumber returns the lowest roll that hits target, capped at six.
func (g *Game) StrikeNumber(c, target *Creature) int {
	if g.battle == nil || c.Hex == "" || target.Hex == "" {
		return maxStrikeNumber
	}
	hex1, hex2, border, border2, engaged := g.strikeGeometry(c, target)
	if hex1 == nil || hex2 == nil {
		return maxStrikeNumber
	}
	skill1, skill2 := c.Skill(), target.Skill()
	if engaged {
		switch {
		case hex1.Terrain == rules.TerrainBramble && !g.IsNative(c, hex1.Terrain):
			skill1--
		case border == rules.BorderWall:
			skill1++
		case border2 == rules.BorderSlope && !g.IsNative(c, border2):
			skill1--
		case border2 == rules.BorderWall:
			skill1--
		}
	} else if !c.kind.MagicMissile() && g.battle.bmap.Range(c.Hex, target.Hex) >= 4 {
		skill1--
	}
	sn := 4 - skill1 + skill2
	if engaged {
		if hex2.Terrain == rules.TerrainBramble && !g.IsNative(c, hex2.Terrain) && g.IsNative(target, hex2.Terrain) {
			sn++
		}
	} else if hex2.Terrain == rules.TerrainVolcano && g.IsNative(target, hex2.Terrain) {
		sn++
	}
	return min(sn, maxStrikeNumber)
}

// MaxPossibleCarries is how many excess hits a strike on target with
// numDice at strikeNumber could carry: the remaining power of every other
// engaged enemy the striker could hit with at least as many dice and no
// worse strike number.
func (g *Game) MaxPossibleCarries(c, target *Creature, numDice, strikeNumber int) int {
	total := 0
	for _, other := range g.carryCandidates(c, target, numDice, strikeNumber) {
		total += other.Power() - other.Hits
	}
	return total
}

// CarryTargets returns the creatures the pending carry may be applied to.
func (g *Game) CarryTargets() []*Creature {
	b := g.battle
	if b == nil || b.carry == nil {
		return nil
	}
	striker := findBattleCreature(g.activeBattleLegion(), b.carry.strikerName, b.carry.strikerHex)
	target := g.creatureAt(b.carry.targetHex)
	if striker == nil || target == nil {
		return nil
	}
	return g.carryCandidates(striker, target, b.carry.numDice, b.carry.strikeNumber)
}

func (g *Game) carryCandidates(c, target *Creature, numDice, strikeNumber int) []*Creature {
	var out []*Creature
	for _, other := range g.EngagedEnemies(c) {
		if other == target || other.Dead() {
			continue
		}
		if g.NumberOfDice(c, other) >= numDice && g.StrikeNumber(c, other) <= strikeNumber {
			out = append(out, other)
		}
	}
	return out
}

// mustStrike reports whether a creature of the active legion is engaged
// and has not struck; such strikes are forced, even for creatures killed
// this turn.
func (g *Game) mustStrike() bool {
	l := g.activeBattleLegion()
	if l == nil {
		return false
	}
	for _, c := range l.Creatures {
		if !c.Struck && g.Engaged(c) {
			return true
		}
	}
	return false
}
