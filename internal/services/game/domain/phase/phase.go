// Package phase names the master turn phases and the battle sub-phases.
package phase

// Master is a phase of a player's turn on the masterboard.
type Master string

const (
	Split  Master = "Split"
	Move   Master = "Move"
	Fight  Master = "Fight"
	Muster Master = "Muster"
)

// Next returns the phase after m within a turn; Muster wraps to Split.
func (m Master) Next() Master {
	switch m {
	case Split:
		return Move
	case Move:
		return Fight
	case Fight:
		return Muster
	default:
		return Split
	}
}

// Battle is a sub-phase of one side's battle turn.
type Battle string

const (
	Reinforce     Battle = "Reinforce"
	Maneuver      Battle = "Maneuver"
	DriftDamage   Battle = "Drift damage"
	Strike        Battle = "Strike"
	Counterstrike Battle = "Counterstrike"
	Cleanup       Battle = "Cleanup"
)

// IsStrike reports whether creatures may strike during b.
func (b Battle) IsStrike() bool {
	return b == Strike || b == Counterstrike
}

// Battle turn limits. A battle still running after MaxBattleTurn is a time
// loss for the attacker.
const (
	FirstBattleTurn = 1
	MaxBattleTurn   = 7
	TimeLossTurn    = MaxBattleTurn + 1
	ReinforceTurn   = 4
)
