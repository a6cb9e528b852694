package game

import (
	"slices"

	"github.com/louisbranch/legions/internal/services/game/domain/game"
)

// op runs one mutator for player with arguments read from a.
type op func(g *game.Game, player string, a *args) error

func playerOnly(fn func(*game.Game, string) error) op {
	return func(g *game.Game, player string, _ *args) error { return fn(g, player) }
}

func withMarker(fn func(*game.Game, string, string) error) op {
	return func(g *game.Game, player string, a *args) error {
		marker := a.str("marker")
		if a.err != nil {
			return a.err
		}
		return fn(g, player, marker)
	}
}

// ops lists the mutators reachable through Do, keyed by op name.
var ops = map[string]op{
	"pick_color": func(g *game.Game, player string, a *args) error {
		color := a.str("color")
		if a.err != nil {
			return a.err
		}
		return g.PickColor(player, color)
	},
	"pick_first_marker": withMarker((*game.Game).PickFirstMarker),

	"split_legion": func(g *game.Game, player string, a *args) error {
		parent, child := a.str("parent"), a.str("child")
		parentNames, childNames := a.strs("parent_creatures"), a.strs("child_creatures")
		if a.err != nil {
			return a.err
		}
		return g.SplitLegion(player, parent, child, parentNames, childNames)
	},
	"undo_split": func(g *game.Game, player string, a *args) error {
		parent, child := a.str("parent"), a.str("child")
		if a.err != nil {
			return a.err
		}
		return g.UndoSplit(player, parent, child)
	},
	"done_with_splits": playerOnly((*game.Game).DoneWithSplits),
	"take_mulligan":    playerOnly((*game.Game).TakeMulligan),
	"move_legion": func(g *game.Game, player string, a *args) error {
		marker, hex, side := a.str("marker"), a.integer("hex"), a.integer("entry_side")
		teleport, lord := a.optBool("teleport"), a.optStr("lord")
		if a.err != nil {
			return a.err
		}
		return g.MoveLegion(player, marker, hex, side, teleport, lord)
	},
	"undo_move_legion": withMarker((*game.Game).UndoMoveLegion),
	"done_with_moves":  playerOnly((*game.Game).DoneWithMoves),

	"resolve_engagement": func(g *game.Game, player string, a *args) error {
		hex := a.integer("hex")
		if a.err != nil {
			return a.err
		}
		return g.ResolveEngagement(player, hex)
	},
	"flee":        withMarker((*game.Game).Flee),
	"do_not_flee": withMarker((*game.Game).DoNotFlee),
	"concede":     withMarker((*game.Game).Concede),
	"make_proposal": func(g *game.Game, player string, a *args) error {
		attacker, defender := a.strs("attacker_creatures"), a.strs("defender_creatures")
		if a.err != nil {
			return a.err
		}
		return g.MakeProposal(player, attacker, defender)
	},
	"accept_proposal": func(g *game.Game, player string, a *args) error {
		proposer := a.str("proposer")
		if a.err != nil {
			return a.err
		}
		return g.AcceptProposal(player, proposer)
	},
	"reject_proposal": func(g *game.Game, player string, a *args) error {
		proposer := a.str("proposer")
		if a.err != nil {
			return a.err
		}
		return g.RejectProposal(player, proposer)
	},
	"fight":                 playerOnly((*game.Game).Fight),
	"done_with_engagements": playerOnly((*game.Game).DoneWithEngagements),

	"move_creature": func(g *game.Game, player string, a *args) error {
		name, from, to := a.str("creature"), a.str("from"), a.str("to")
		if a.err != nil {
			return a.err
		}
		return g.MoveCreature(player, name, from, to)
	},
	"undo_move_creature": func(g *game.Game, player string, a *args) error {
		name, hex := a.str("creature"), a.str("hex")
		if a.err != nil {
			return a.err
		}
		return g.UndoMoveCreature(player, name, hex)
	},
	"done_with_reinforcements": playerOnly((*game.Game).DoneWithReinforcements),
	"done_with_maneuvers":      playerOnly((*game.Game).DoneWithManeuvers),
	"strike": func(g *game.Game, player string, a *args) error {
		striker, strikerHex := a.str("creature"), a.str("hex")
		target, targetHex := a.str("target"), a.str("target_hex")
		numDice, strikeNumber := a.integer("dice"), a.integer("strike_number")
		if a.err != nil {
			return a.err
		}
		return g.Strike(player, striker, strikerHex, target, targetHex, numDice, strikeNumber)
	},
	"carry": func(g *game.Game, player string, a *args) error {
		target, hex, carries := a.str("target"), a.str("target_hex"), a.integer("carries")
		if a.err != nil {
			return a.err
		}
		return g.Carry(player, target, hex, carries)
	},
	"done_with_strikes":        playerOnly((*game.Game).DoneWithStrikes),
	"done_with_counterstrikes": playerOnly((*game.Game).DoneWithCounterstrikes),

	"recruit": func(g *game.Game, player string, a *args) error {
		marker, name, recruiters := a.str("marker"), a.str("creature"), a.strs("recruiters")
		if a.err != nil {
			return a.err
		}
		return g.RecruitCreature(player, marker, name, recruiters)
	},
	"undo_recruit":     withMarker((*game.Game).UndoRecruit),
	"do_not_reinforce": withMarker((*game.Game).DoNotReinforce),
	"summon_angel": func(g *game.Game, player string, a *args) error {
		marker, donor, name := a.str("marker"), a.str("donor"), a.str("creature")
		if a.err != nil {
			return a.err
		}
		return g.SummonAngel(player, marker, donor, name)
	},
	"unsummon":           withMarker((*game.Game).UnSummon),
	"do_not_summon":      withMarker((*game.Game).DoNotSummon),
	"done_with_recruits": playerOnly((*game.Game).DoneWithRecruits),
	"acquire": func(g *game.Game, player string, a *args) error {
		marker, names := a.str("marker"), a.strs("creatures")
		if a.err != nil {
			return a.err
		}
		return g.Acquire(player, marker, names)
	},
	"do_not_acquire": withMarker((*game.Game).DoNotAcquire),

	"withdraw":  playerOnly((*game.Game).Withdraw),
	"pause_ai":  playerOnly((*game.Game).PauseAI),
	"resume_ai": playerOnly((*game.Game).ResumeAI),
	"undo":      playerOnly((*game.Game).Undo),
	"redo":      playerOnly((*game.Game).Redo),
}

// OpNames returns the names accepted by Do, sorted.
func OpNames() []string {
	names := make([]string, 0, len(ops)+1)
	for name := range ops {
		names = append(names, name)
	}
	names = append(names, opSave)
	slices.Sort(names)
	return names
}
