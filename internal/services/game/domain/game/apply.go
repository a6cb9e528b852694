package game

import (
	"fmt"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
)

// Apply folds an action committed elsewhere into g and publishes it to g's
// observers. Actions for another game are ignored, and so is an action
// whose effect is already present, so a mirror can safely see its own
// optimistic updates echoed back. Apply never validates rules or triggers
// follow-up actions: the master has already done both.
func (g *Game) Apply(a action.Action) error {
	if a.GameName() != g.Name {
		g.log.Debug().Str("kind", string(a.Kind())).Str("other", a.GameName()).Msg("ignored action for another game")
		return nil
	}
	if g.alreadyApplied(a) {
		g.log.Debug().Str("kind", string(a.Kind())).Msg("ignored duplicate action")
		return nil
	}
	if err := g.fold(a); err != nil {
		return fmt.Errorf("apply %s: %w", a.Kind(), err)
	}
	g.subject.Publish(observer.Envelope{Action: a})
	return nil
}

// alreadyApplied reports whether state already reflects a.
func (g *Game) alreadyApplied(a action.Action) bool {
	switch a := a.(type) {
	case action.JoinGame:
		return g.player(a.Player) != nil
	case action.SplitLegion:
		_, ok := g.Legion(a.ChildMarker)
		return ok
	case action.UndoSplit:
		_, ok := g.Legion(a.ChildMarker)
		return !ok
	case action.MoveLegion:
		l, ok := g.Legion(a.Marker)
		return ok && l.Moved && l.Hex == a.Hex
	case action.UndoMoveLegion:
		l, ok := g.Legion(a.Marker)
		return ok && !l.Moved
	case action.RecruitCreature:
		l, ok := g.Legion(a.Marker)
		return ok && l.Recruited && len(l.Creatures) > 0 && l.Creatures[len(l.Creatures)-1].Name == a.CreatureName
	case action.UndoRecruit:
		l, ok := g.Legion(a.Marker)
		return ok && !l.Recruited
	case action.SummonAngel:
		p := g.player(a.Player)
		return p != nil && p.Summoned
	case action.UnSummon:
		p := g.player(a.Player)
		return p != nil && !p.Summoned
	case action.MoveCreature:
		c := g.creatureAt(a.NewHex)
		return c != nil && c.Name == a.CreatureName && c.Moved
	case action.UndoMoveCreature:
		c := g.creatureAt(a.NewHex)
		return c == nil || c.Name != a.CreatureName || !c.Moved
	}
	return false
}

// fold applies the state change of a. Masters and mirrors share it.
func (g *Game) fold(a action.Action) error {
	switch a := a.(type) {
	case action.JoinGame:
		g.foldJoin(a)
	case action.LeaveGame:
		g.foldLeave(a)
	case action.AssignTower:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		p.Tower = a.Tower
	case action.AssignedAllTowers:
		g.foldAssignedAllTowers()
	case action.PickedColor:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		p.assignColor(g.tables, a.Color)
	case action.CreateStartingLegion:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		g.foldCreateStartingLegion(p, a)
	case action.SplitLegion:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		return g.foldSplit(p, a)
	case action.UndoSplit:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		return g.foldUndoSplit(p, a)
	case action.RollMovement:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		g.foldRoll(p, a)
	case action.MoveLegion:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		g.foldMove(l, a)
	case action.UndoMoveLegion:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		g.foldUndoMove(l)
	case action.StartFightPhase:
		g.phase = phase.Fight
	case action.ResolvingEngagement:
		g.engagement = a.Hex
		clear(g.proposals)
	case action.RevealLegion, action.DoNotFlee:
	case action.Flee:
		return g.foldFlee(a)
	case action.Concede:
		return g.foldConcede(a)
	case action.MakeProposal:
		g.proposals[a.Player] = a
	case action.AcceptProposal:
		return g.foldAcceptProposal(a)
	case action.RejectProposal:
		delete(g.proposals, a.OtherPlayer)
	case action.Fight:
		return g.initBattle(a)
	case action.StartMusterPhase:
		g.foldStartMusterPhase()
	case action.RecruitCreature:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		g.foldRecruit(l, a)
	case action.UndoRecruit:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		return g.foldUndoRecruit(l, a)
	case action.DoNotReinforce:
		g.foldDoNotReinforce()
	case action.SummonAngel:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		return g.foldSummon(l, a)
	case action.UnSummon:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		return g.unsummon(l, a.CreatureName, a.DonorMarker)
	case action.DoNotSummon:
		g.foldDoNotSummon()
	case action.Acquire:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		g.foldAcquire(l, a)
	case action.DoNotAcquire:
		l, err := g.mustLegion(a.Marker)
		if err != nil {
			return err
		}
		l.AngelsPending = 0
		l.ArchangelsPending = 0
	case action.StartSplitPhase:
		g.foldStartSplitPhase(a)
	case action.MoveCreature:
		if err := g.needBattle(); err != nil {
			return err
		}
		return g.foldMoveCreature(a)
	case action.UndoMoveCreature:
		if err := g.needBattle(); err != nil {
			return err
		}
		return g.foldUndoMoveCreature(a)
	case action.StartManeuverBattlePhase:
		if err := g.needBattle(); err != nil {
			return err
		}
		g.battle.phase = phase.Maneuver
	case action.StartStrikeBattlePhase:
		if err := g.needBattle(); err != nil {
			return err
		}
		g.foldStartStrike()
	case action.Strike:
		if err := g.needBattle(); err != nil {
			return err
		}
		return g.foldStrike(a)
	case action.Carry:
		if err := g.needBattle(); err != nil {
			return err
		}
		return g.foldCarry(a)
	case action.StartCounterstrikeBattlePhase:
		if err := g.needBattle(); err != nil {
			return err
		}
		g.foldStartCounterstrike()
	case action.StartReinforceBattlePhase:
		if err := g.needBattle(); err != nil {
			return err
		}
		g.foldStartReinforce(a)
	case action.BattleOver:
		if err := g.needBattle(); err != nil {
			return err
		}
		g.endBattle(a)
	case action.EliminatePlayer:
		return g.foldEliminate(a)
	case action.GameOver:
		g.over = true
		g.winners = append([]string(nil), a.Winners...)
	case action.Withdraw:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		p.Dead = true
	case action.PauseAI:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		p.Paused = true
	case action.ResumeAI:
		p, err := g.mustPlayer(a.Player)
		if err != nil {
			return err
		}
		p.Paused = false
	default:
		return fmt.Errorf("unhandled action kind %s", a.Kind())
	}
	return nil
}

func (g *Game) mustPlayer(name string) (*Player, error) {
	p := g.player(name)
	if p == nil {
		return nil, unknown("player %s", name)
	}
	return p, nil
}

func (g *Game) mustLegion(marker string) (*Legion, error) {
	l, ok := g.Legion(marker)
	if !ok {
		return nil, unknown("legion %s", marker)
	}
	return l, nil
}

func (g *Game) needBattle() error {
	if g.battle == nil {
		return unknown("battle")
	}
	return nil
}

func (g *Game) foldStartSplitPhase(a action.StartSplitPhase) {
	g.active = a.Player
	g.turn = a.Turn
	g.phase = phase.Split
	g.engagement = 0
	clear(g.proposals)
	for _, p := range g.players {
		p.newTurn()
	}
}
