package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/dice"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// battleOn starts bob's Bu01 fighting alice's unsplit Rd01 and swaps in
// the battle map of terrain, so creatures can be placed on its hazards.
func battleOn(t *testing.T, terrain string) *Game {
	t.Helper()
	g := newTestGame(t, 1)
	startTwoPlayerGame(t, g)
	engageOnPlains(t, g, "Rd01")
	require.NoError(t, g.Fight("alice"))
	bmap, ok := g.tables.BattleMap(terrain, 5)
	require.True(t, ok)
	g.battle.bmap = bmap
	return g
}

// place moves a creature of marker still waiting at its entrance onto hex,
// mustering a new one when the legion has none left by that name.
func place(t *testing.T, g *Game, marker, name, hex string) *Creature {
	t.Helper()
	l := mustLegion(t, g, marker)
	entrance := rules.Attacker
	if marker == g.battle.defender {
		entrance = rules.Defender
	}
	c := findBattleCreature(l, name, entrance)
	if c == nil {
		c = newCreature(g.tables, name, marker)
		l.add(c)
	}
	c.Hex = hex
	return c
}

type stand struct {
	marker, name, hex string
}

func TestStrikeHazards(t *testing.T) {
	tests := []struct {
		name         string
		terrain      string
		striker      stand
		target       stand
		dice         int
		strikeNumber int
	}{
		{"plains", rules.TerrainPlains, stand{"Bu01", "Titan", "E4"}, stand{"Rd01", "Ogre", "D4"}, 6, 2},
		{"bramble hampers a foreign striker", "Brush", stand{"Bu01", "Titan", "E4"}, stand{"Rd01", "Ogre", "D4"}, 6, 3},
		{"bramble spares a native striker", "Brush", stand{"Bu01", "Gargoyle", "E4"}, stand{"Rd01", "Centaur", "D4"}, 4, 5},
		{"bramble shelters a native target", "Brush", stand{"Rd01", "Centaur", "D4"}, stand{"Bu01", "Gargoyle", "E4"}, 3, 4},
		{"native dragon in the volcano", "Mountains", stand{"Bu01", "Dragon", "D4"}, stand{"Rd01", "Ogre", "D3"}, 12, 3},
		{"striking up a slope", "Mountains", stand{"Rd01", "Centaur", "D3"}, stand{"Bu01", "Dragon", "D4"}, 3, 4},
		{"native striking down a slope", "Hills", stand{"Rd01", "Ogre", "C2"}, stand{"Bu01", "Titan", "C1"}, 7, 6},
		{"foreign striking up a slope", "Hills", stand{"Bu01", "Titan", "C1"}, stand{"Rd01", "Ogre", "C2"}, 6, 3},
		{"striking down from a wall", rules.TerrainTower, stand{"Rd01", "Ogre", "C3"}, stand{"Bu01", "Titan", "B2"}, 6, 5},
		{"striking up at a wall", rules.TerrainTower, stand{"Bu01", "Titan", "B2"}, stand{"Rd01", "Ogre", "C3"}, 6, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := battleOn(t, tc.terrain)
			striker := place(t, g, tc.striker.marker, tc.striker.name, tc.striker.hex)
			target := place(t, g, tc.target.marker, tc.target.name, tc.target.hex)

			require.Equal(t, []*Creature{target}, g.EngagedEnemies(striker))
			require.Equal(t, tc.dice, g.NumberOfDice(striker, target))
			require.Equal(t, tc.strikeNumber, g.StrikeNumber(striker, target))
		})
	}
}

func TestRangestrikeLineOfSight(t *testing.T) {
	g := battleOn(t, "Mountains")
	dragon := place(t, g, "Bu01", rules.Dragon, "D4")
	ogre := place(t, g, "Rd01", "Ogre", "D1")
	titan := place(t, g, "Rd01", rules.Titan, "B3")

	require.Empty(t, g.RangestrikeTargets(dragon), "only the strike phase allows rangestrikes")
	g.battle.phase = phase.Strike
	g.battle.active = "Bu01"

	require.Equal(t, []*Creature{ogre}, g.RangestrikeTargets(dragon))
	require.Zero(t, g.NumberOfDice(dragon, titan), "lords cannot be rangestruck")
	require.Equal(t, 6, g.NumberOfDice(dragon, ogre))
	require.Equal(t, 3, g.StrikeNumber(dragon, ogre))

	centaur := place(t, g, "Rd01", "Centaur", "D2")
	require.Equal(t, []*Creature{centaur}, g.RangestrikeTargets(dragon))
	require.Zero(t, g.NumberOfDice(dragon, ogre))

	centaur.Kill()
	require.Contains(t, g.RangestrikeTargets(dragon), ogre)
	require.Equal(t, 6, g.NumberOfDice(dragon, ogre))
}

func TestBattleHexCosts(t *testing.T) {
	g := newTestGame(t)
	creature := func(name string) *Creature { return newCreature(g.tables, name, "Bu01") }

	entry := []struct {
		creature string
		terrain  string
		border   string
		want     int
	}{
		{rules.Titan, rules.TerrainPlains, "", 1},
		{rules.Titan, rules.TerrainTree, "", impassable},
		{"Gargoyle", rules.TerrainTree, "", impassable},
		{rules.Titan, rules.TerrainBog, "", impassable},
		{"Ogre", rules.TerrainBog, "", 1},
		{rules.Titan, rules.TerrainVolcano, "", impassable},
		{rules.Dragon, rules.TerrainVolcano, "", 1},
		{rules.Titan, rules.TerrainBramble, "", 2},
		{"Gargoyle", rules.TerrainBramble, "", 1},
		{rules.Titan, rules.TerrainDrift, "", 2},
		{"Giant", rules.TerrainDrift, "", 1},
		{rules.Titan, rules.TerrainSand, "", 2},
		{"Lion", rules.TerrainSand, "", 1},
		{"Gargoyle", rules.TerrainSand, "", 1},
		{rules.Titan, rules.TerrainPlains, rules.BorderSlope, 2},
		{"Ogre", rules.TerrainPlains, rules.BorderSlope, 1},
		{"Gargoyle", rules.TerrainPlains, rules.BorderSlope, 1},
		{"Ogre", rules.TerrainPlains, rules.BorderWall, 2},
		{"Gargoyle", rules.TerrainPlains, rules.BorderWall, 1},
		{rules.Titan, rules.TerrainPlains, rules.BorderCliff, impassable},
		{"Gargoyle", rules.TerrainPlains, rules.BorderCliff, 1},
		{rules.Titan, rules.TerrainBramble, rules.BorderSlope, 3},
	}
	for _, tc := range entry {
		got := g.BattleHexEntryCost(creature(tc.creature), tc.terrain, tc.border)
		require.Equal(t, tc.want, got, "%s entering %s across %q", tc.creature, tc.terrain, tc.border)
	}

	flyover := []struct {
		creature string
		terrain  string
		want     int
	}{
		{rules.Titan, rules.TerrainPlains, impassable},
		{"Gargoyle", rules.TerrainPlains, 1},
		{"Gargoyle", rules.TerrainTree, 1},
		{"Gargoyle", rules.TerrainVolcano, impassable},
		{rules.Dragon, rules.TerrainVolcano, 1},
	}
	for _, tc := range flyover {
		got := g.BattleHexFlyoverCost(creature(tc.creature), tc.terrain)
		require.Equal(t, tc.want, got, "%s flying over %s", tc.creature, tc.terrain)
	}
}

func TestCarriesSplitAcrossTargets(t *testing.T) {
	g := battleOn(t, rules.TerrainPlains)
	titan := place(t, g, "Bu01", rules.Titan, "D3")
	ogre := place(t, g, "Rd01", "Ogre", "D4")
	centaur := place(t, g, "Rd01", "Centaur", "C3")
	gargoyle := place(t, g, "Rd01", "Gargoyle", "E3")

	require.Equal(t, 2, g.StrikeNumber(titan, ogre))
	require.Equal(t, 3, g.StrikeNumber(titan, gargoyle))
	require.Equal(t, 4, g.StrikeNumber(titan, centaur))

	tests := []struct {
		name   string
		target *Creature
		dice   int
		number int
		want   int
	}{
		{"easiest target carries nowhere", ogre, 6, 2, 0},
		{"middle target carries to the easier one", gargoyle, 6, 3, 6},
		{"hardest target carries to both", centaur, 6, 4, 10},
		{"fewer dice still qualify", centaur, 5, 4, 10},
		{"a raised number opens harder targets", ogre, 6, 4, 7},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, g.MaxPossibleCarries(titan, tc.target, tc.dice, tc.number), tc.name)
	}

	ogre.Hits = 2
	require.Equal(t, 8, g.MaxPossibleCarries(titan, centaur, 6, 4))
	ogre.Hits = 0

	g.battle.phase = phase.Strike
	g.battle.active = "Bu01"
	g.roller = &dice.Fixed{Results: []int{6}}

	require.NoError(t, g.Strike("bob", rules.Titan, "D3", "Centaur", "C3", 0, 0))
	require.True(t, centaur.Dead())
	b, _ := g.Battle()
	require.Equal(t, 3, b.PendingCarry)
	require.ElementsMatch(t, []*Creature{ogre, gargoyle}, g.CarryTargets())

	require.NoError(t, g.Carry("bob", "Ogre", "D4", 1))
	require.Equal(t, 1, ogre.Hits)
	b, _ = g.Battle()
	require.Equal(t, 2, b.PendingCarry)

	require.NoError(t, g.Carry("bob", "Gargoyle", "E3", 0))
	require.Equal(t, 2, gargoyle.Hits)
	b, _ = g.Battle()
	require.Zero(t, b.PendingCarry)
}
