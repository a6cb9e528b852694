package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTablesLoad(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)

	titan, ok := tables.Creature(Titan)
	require.True(t, ok)
	require.Equal(t, 6, titan.Power)
	require.Equal(t, 4, titan.Skill)
	require.True(t, titan.IsLord())

	angel := tables.MustCreature(Angel)
	require.True(t, angel.Flies)
	require.True(t, angel.Summonable)
	require.Equal(t, 100, angel.AcquirableEvery)

	require.Len(t, tables.Colors(), 6)
	require.Equal(t, []string{"Titan", "Angel", "Ogre", "Ogre", "Centaur", "Centaur", "Gargoyle", "Gargoyle"}, tables.StartingCreatures())
	require.Len(t, tables.Board().Labels(), 48)
	require.Equal(t, []int{100, 200, 300, 400, 500, 600}, tables.Board().Towers())
}

func TestMarkerIDs(t *testing.T) {
	tables := MustDefault()

	ids := tables.MarkerIDs("Red")
	require.Len(t, ids, 12)
	require.Equal(t, "Rd01", ids[0])
	require.Equal(t, "Rd12", ids[11])
	require.Nil(t, tables.MarkerIDs("Purple"))
}

func TestSortValue(t *testing.T) {
	tables := MustDefault()

	// Power 6, skill 4, lord; Titans also get the large Titan bonus.
	titan := tables.MustCreature(Titan)
	require.InDelta(t, 24+0.18+100, titan.SortValue(), 1e-9)
	require.InDelta(t, 40+0.18+100, titan.SortValueWithPower(10), 1e-9)

	angel := tables.MustCreature(Angel)
	require.InDelta(t, 24+0.2+0.3+0.18, angel.SortValue(), 1e-9)

	require.Greater(t, tables.MustCreature("Centaur").SortValue(), tables.MustCreature("Ogre").SortValue())
}

func TestMustCreaturePanicsOnUnknownName(t *testing.T) {
	tables := MustDefault()
	require.Panics(t, func() { tables.MustCreature("Unicorn Hunter") })
}

func TestBuildRejectsBrokenSources(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Source)
	}{
		{
			name: "unknown recruit",
			mutate: func(s *Source) {
				s.Recruits["Plains"] = append(s.Recruits["Plains"], Ladder{{Name: "Pegasus", Count: 1}})
			},
		},
		{
			name: "duplicate creature",
			mutate: func(s *Source) {
				s.Creatures = append(s.Creatures, s.Creatures[0])
			},
		},
		{
			name: "asymmetric neighbors",
			mutate: func(s *Source) {
				s.Hexes[0].Neighbors[1] = 3
			},
		},
		{
			name: "exit without neighbor",
			mutate: func(s *Source) {
				s.Hexes[0].Exits[0] = GateArch
			},
		},
		{
			name: "missing battle map",
			mutate: func(s *Source) {
				delete(s.BattleMaps, "Tundra")
			},
		},
		{
			name: "startlist outside the map",
			mutate: func(s *Source) {
				m := s.BattleMaps["Tower"]
				m.Startlist = append(m.Startlist, "H9")
				s.BattleMaps["Tower"] = m
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, err := DefaultSource()
			require.NoError(t, err)
			tc.mutate(&src)
			_, err = Build(src)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidTables))
		})
	}
}

func TestNativity(t *testing.T) {
	tables := MustDefault()

	require.True(t, tables.IsNative(Dragon, TerrainVolcano))
	for _, name := range []string{"Lion", "Minotaur", "Colossus", Titan} {
		require.False(t, tables.IsNative(name, TerrainVolcano), name)
	}
	require.True(t, tables.IsNative("Lion", TerrainSand))
	require.True(t, tables.IsNative("Lion", BorderDune))
	require.True(t, tables.IsNative("Giant", TerrainDrift))
	require.True(t, tables.IsNative("Gargoyle", TerrainBramble))
	require.True(t, tables.IsNative("Ogre", BorderSlope))
	require.False(t, tables.IsNative(Titan, TerrainBramble))
	require.False(t, tables.IsNative(Dragon, TerrainSand))
	require.Contains(t, tables.NativeHazards(Dragon), TerrainVolcano)
}

func TestTerrainCreatures(t *testing.T) {
	tables := MustDefault()
	require.Equal(t, []string{"Centaur", "Gargoyle", "Ogre", "Guardian", "Warlock"}, tables.TerrainCreatures(TerrainTower))
	require.Equal(t, []string{"Lion", "Minotaur", "Dragon", "Colossus"}, tables.TerrainCreatures("Mountains"))
}
