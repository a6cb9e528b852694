package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMasterHexLinks(t *testing.T) {
	board := MustDefault().Board()

	h1, ok := board.Hex(1)
	require.True(t, ok)
	require.Equal(t, "Plains", h1.Terrain)
	require.False(t, h1.Inverted)
	require.Equal(t, GateArrows, h1.Exits[1])
	require.Equal(t, 2, h1.Neighbors[1])
	require.Equal(t, GateArch, h1.Exits[3])
	require.Equal(t, 100, h1.Neighbors[3])

	tower, ok := board.Hex(100)
	require.True(t, ok)
	require.True(t, tower.IsTower())

	h7, _ := board.Hex(7)
	dir, blocked := h7.Block()
	require.True(t, blocked)
	require.Equal(t, 1, dir)

	_, blocked = h1.Block()
	require.False(t, blocked)
}

func TestMasterHexEntrySide(t *testing.T) {
	board := MustDefault().Board()

	plain, _ := board.Hex(1)
	require.Equal(t, 5, plain.EntrySide(5))
	inverted, _ := board.Hex(2)
	require.True(t, inverted.Inverted)
	require.Equal(t, 1, inverted.EntrySide(4))
	require.Equal(t, 3, Opposite(0))
	require.Equal(t, 0, Opposite(3))
}

func TestBattleMapLayout(t *testing.T) {
	m, ok := MustDefault().BattleMap("Tower", 5)
	require.True(t, ok)

	require.Len(t, m.Labels(), 37)
	require.Equal(t, []string{"C3", "C4", "D3", "D4", "D5", "E3", "E4"}, m.Startlist())

	center, ok := m.Hex("D4")
	require.True(t, ok)
	require.Equal(t, 0, center.Q)
	require.Equal(t, 0, center.R)
	require.Equal(t, 2, center.Elevation)

	wall, _ := m.Hex("C3")
	require.Equal(t, BorderWall, wall.Borders[0])

	require.Equal(t, []string{"A1", "B1", "C1", "D1"}, m.EntranceHexes(Attacker))
	require.Equal(t, []string{"G4", "F5", "E6", "D7"}, m.EntranceHexes(Defender))

	adj := m.Adjacent(Attacker)
	require.Len(t, adj, 4)
	require.Equal(t, NoSide, adj[0].Side)

	require.Len(t, m.Adjacent("D4"), 6)
	require.Len(t, m.Adjacent("A1"), 3)
}

func TestBattleMapOrientationFollowsEntrySide(t *testing.T) {
	tables := MustDefault()
	for _, side := range []int{1, 3, 5} {
		m, ok := tables.BattleMap("Plains", side)
		require.True(t, ok)
		require.Len(t, m.EntranceHexes(Attacker), 4)
		require.Len(t, m.EntranceHexes(Defender), 4)
		require.NotEqual(t, m.EntranceHexes(Attacker), m.EntranceHexes(Defender))
	}
	_, ok := tables.BattleMap("Plains", 2)
	require.False(t, ok)
}

func TestBattleMapRange(t *testing.T) {
	m, _ := MustDefault().BattleMap("Plains", 1)

	require.Equal(t, 0, m.Range("D4", "D4"))
	require.Equal(t, 1, m.Range("D4", "D3"))
	require.Equal(t, 3, m.Range("D4", "A1"))
	require.Equal(t, 6, m.Range("A1", "G4"))
	require.Equal(t, OutOfRange, m.Range(Attacker, "D4"))

	side, ok := m.SideToward("D4", "D3")
	require.True(t, ok)
	require.Equal(t, 0, side)
	_, ok = m.SideToward("D4", "D1")
	require.False(t, ok)
}

func TestBattleMapLineOfSight(t *testing.T) {
	woods, _ := MustDefault().BattleMap("Woods", 1)

	// D4 holds a Tree between D3 and D5.
	require.False(t, woods.LineOfSight("D3", "D5", nil))
	require.True(t, woods.LineOfSight("D1", "D3", nil))

	plains, _ := MustDefault().BattleMap("Plains", 1)
	require.True(t, plains.LineOfSight("D2", "D6", nil))
	occupied := func(label string) bool { return label == "D4" }
	require.False(t, plains.LineOfSight("D2", "D6", occupied))
	require.False(t, plains.LineOfSight(Attacker, "D4", nil))
}
