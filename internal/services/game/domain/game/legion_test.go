package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/domain/caretaker"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

func legionOf(tables *rules.Tables, marker string, names ...string) *Legion {
	l := &Legion{Marker: marker, tables: tables}
	for _, name := range names {
		l.Creatures = append(l.Creatures, newCreature(tables, name, marker))
	}
	return l
}

func TestTowerRecruits(t *testing.T) {
	tables := rules.MustDefault()
	basics := []Recruit{{Name: "Centaur"}, {Name: "Gargoyle"}, {Name: "Ogre"}}

	tests := []struct {
		name      string
		creatures []string
		extra     []Recruit
	}{
		{
			name:      "titan reveals a warlock",
			creatures: []string{"Titan", "Ogre", "Ogre"},
			extra:     []Recruit{{Name: "Warlock", Recruiters: []string{"Titan"}}},
		},
		{
			name:      "three of a kind reveal a guardian",
			creatures: []string{"Titan", "Ogre", "Ogre", "Ogre"},
			extra: []Recruit{
				{Name: "Guardian", Recruiters: []string{"Ogre", "Ogre", "Ogre"}},
				{Name: "Warlock", Recruiters: []string{"Titan"}},
			},
		},
		{
			name:      "any ordinary creature counts for a guardian",
			creatures: []string{"Lion", "Lion", "Lion", "Troll"},
			extra:     []Recruit{{Name: "Guardian", Recruiters: []string{"Lion", "Lion", "Lion"}}},
		},
		{
			name:      "lords do not count for a guardian",
			creatures: []string{"Angel", "Angel", "Angel", "Centaur"},
		},
		{
			name:      "basics need no recruiter",
			creatures: []string{"Lion", "Troll"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := legionOf(tables, "Rd01", tc.creatures...)
			got := l.AvailableRecruitsAndRecruiters(rules.TerrainTower, caretaker.New(tables))
			require.ElementsMatch(t, append(tc.extra, basics...), got)
		})
	}
}

func TestTowerRecruitsFollowStock(t *testing.T) {
	tables := rules.MustDefault()
	ct := caretaker.New(tables)
	for ct.NumLeft("Guardian") > 0 {
		ct.TakeOne("Guardian")
	}
	l := legionOf(tables, "Rd01", "Titan", "Ogre", "Ogre", "Ogre")
	require.ElementsMatch(t, []string{"Warlock", "Centaur", "Gargoyle", "Ogre"}, l.AvailableRecruits(rules.TerrainTower, ct))
}

func TestLadderRecruits(t *testing.T) {
	tables := rules.MustDefault()

	tests := []struct {
		name      string
		terrain   string
		creatures []string
		want      []Recruit
	}{
		{
			name:      "up the ladder needs the count of the creature below",
			terrain:   "Mountains",
			creatures: []string{"Lion", "Lion"},
			want: []Recruit{
				{Name: "Minotaur", Recruiters: []string{"Lion", "Lion"}},
				{Name: "Lion", Recruiters: []string{"Lion"}},
			},
		},
		{
			name:      "down the ladder needs one of the creature above",
			terrain:   "Mountains",
			creatures: []string{"Dragon"},
			want: []Recruit{
				{Name: "Dragon", Recruiters: []string{"Dragon"}},
				{Name: "Minotaur", Recruiters: []string{"Dragon"}},
				{Name: "Lion", Recruiters: []string{"Dragon"}},
			},
		},
		{
			name:      "nothing without a creature of the ladder",
			terrain:   "Mountains",
			creatures: []string{"Titan", "Ogre"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := legionOf(tables, "Rd01", tc.creatures...)
			got := l.AvailableRecruitsAndRecruiters(tc.terrain, caretaker.New(tables))
			require.ElementsMatch(t, tc.want, got)
		})
	}
}
