package caretaker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

func TestTakeAndPutBack(t *testing.T) {
	c := New(rules.MustDefault())

	require.Equal(t, 25, c.NumLeft("Ogre"))
	c.TakeOne("Ogre")
	c.TakeOne("Ogre")
	require.Equal(t, 23, c.NumLeft("Ogre"))
	c.PutOneBack("Ogre")
	require.Equal(t, 24, c.NumLeft("Ogre"))
}

func TestTakeFromEmptyPoolPanics(t *testing.T) {
	c := New(rules.MustDefault())
	for c.NumLeft("Archangel") > 0 {
		c.TakeOne("Archangel")
	}
	require.Equal(t, 0, c.NumLeft("Archangel"))
	require.Panics(t, func() { c.TakeOne("Archangel") })
	require.Equal(t, 0, c.NumLeft("Archangel"))
}

func TestCountsNeverNegative(t *testing.T) {
	c := New(rules.MustDefault())
	ops := []string{"take", "take", "put", "take", "take", "take", "put", "put", "take"}
	for _, op := range ops {
		switch op {
		case "take":
			if c.NumLeft("Behemoth") > 0 {
				c.TakeOne("Behemoth")
			}
		case "put":
			c.PutOneBack("Behemoth")
		}
		require.GreaterOrEqual(t, c.NumLeft("Behemoth"), 0)
	}
}

func TestPutBackOverMaxPanics(t *testing.T) {
	c := New(rules.MustDefault())
	require.Panics(t, func() { c.PutOneBack("Titan") })
}

func TestKillOne(t *testing.T) {
	c := New(rules.MustDefault())

	c.TakeOne("Troll")
	c.KillOne("Troll")
	require.Equal(t, 28, c.NumLeft("Troll"))

	c.TakeOne("Angel")
	c.KillOne("Angel")
	require.Equal(t, 17, c.NumLeft("Angel"))
	require.Equal(t, map[string]int{"Angel": 1}, c.Graveyard())

	c.TakeOne("Guardian")
	c.KillOne("Guardian")
	require.Equal(t, 1, c.Graveyard()["Guardian"])
}
