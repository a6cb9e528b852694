package phase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMasterNext(t *testing.T) {
	require.Equal(t, Move, Split.Next())
	require.Equal(t, Fight, Move.Next())
	require.Equal(t, Muster, Fight.Next())
	require.Equal(t, Split, Muster.Next())
}

func TestBattleIsStrike(t *testing.T) {
	require.True(t, Strike.IsStrike())
	require.True(t, Counterstrike.IsStrike())
	require.False(t, Maneuver.IsStrike())
	require.False(t, DriftDamage.IsStrike())
	require.Equal(t, 8, TimeLossTurn)
}
