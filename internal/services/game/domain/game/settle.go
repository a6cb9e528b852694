package game

import (
	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
)

// settle commits the follow-up actions the master owes after a mutator:
// eliminating dead players, ending the game, and passing the turn on from
// a dead active player. It loops until nothing changes.
func (g *Game) settle() {
	if !g.master || !g.started {
		return
	}
	for !g.over {
		if g.eliminateDead() {
			continue
		}
		living := g.LivingPlayers()
		if len(living) <= 1 {
			winners := make([]string, 0, len(living))
			for _, p := range living {
				winners = append(winners, p.Name)
			}
			g.commit(action.GameOver{Header: g.header(""), Winners: winners})
			return
		}
		active := g.ActivePlayer()
		if active != nil && active.Dead && g.battle == nil && !g.anyPendingAcquire() {
			g.startNextTurn()
			continue
		}
		return
	}
}

// eliminateDead commits EliminatePlayer for the first dead player whose
// legions are still on the board. Elimination waits for an unfinished
// battle the player is fighting.
func (g *Game) eliminateDead() bool {
	for _, p := range g.players {
		if !p.Dead || p.Eliminated {
			continue
		}
		if b := g.battle; b != nil && !b.over && g.inBattle(p) {
			continue
		}
		g.commit(action.EliminatePlayer{Header: g.header(p.Name), WinnerPlayer: p.KilledBy})
		return true
	}
	return false
}

func (g *Game) inBattle(p *Player) bool {
	for _, l := range g.battleLegions() {
		if l.Owner == p.Name {
			return true
		}
	}
	return false
}

func (g *Game) anyPendingAcquire() bool {
	for _, p := range g.players {
		if p.PendingAcquire() {
			return true
		}
	}
	return false
}

// foldEliminate removes every legion of a dead player. Each legion's living
// creatures are worth half their value to the enemy engaging it, or else to
// the player who killed the Titan, who also takes the markers left.
func (g *Game) foldEliminate(a action.EliminatePlayer) error {
	loser, err := g.mustPlayer(a.Player)
	if err != nil {
		return err
	}
	winner := g.player(a.WinnerPlayer)
	if b := g.battle; b != nil && g.inBattle(loser) {
		b.pendingSummon = false
		b.pendingReinforce = false
		b.over = true
		g.finishBattle()
	}
	points := make(map[*Player]int)
	for _, l := range loser.Legions() {
		scorer := winner
		for _, other := range g.LegionsIn(l.Hex) {
			if other.Owner != loser.Name {
				scorer = g.player(other.Owner)
				break
			}
		}
		if scorer != nil {
			points[scorer] += l.LivingScore()
		}
		for _, c := range l.Creatures {
			g.caretaker.KillOne(c.Name)
		}
		loser.removeLegion(l.Marker)
	}
	for p, full := range points {
		p.setScore(p.Score + full/2)
	}
	if winner != nil {
		winner.EliminatedColors = append(winner.EliminatedColors, loser.ColorAbbrev)
		winner.EliminatedColors = append(winner.EliminatedColors, loser.EliminatedColors...)
		winner.returnMarkers(loser.markersLeft...)
	}
	loser.Dead = true
	loser.Eliminated = true
	return nil
}

// Withdraw removes a player from a running game. A battle they are fighting
// is conceded first.
func (g *Game) Withdraw(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if b := g.battle; b != nil && !b.over && g.inBattle(p) {
		for _, l := range g.battleLegions() {
			if l.Owner == p.Name {
				g.concede(p, l, g.otherBattleLegion(l.Marker))
				break
			}
		}
	}
	g.commit(action.Withdraw{Header: g.header(p.Name)})
	g.settle()
	return nil
}

// PauseAI marks a player's automated opponent as paused.
func (g *Game) PauseAI(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if p.Paused {
		return g.reject(apperrors.CodeWrongPhase, "already paused", map[string]string{"Player": player})
	}
	g.commit(action.PauseAI{Header: g.header(p.Name)})
	return nil
}

// ResumeAI clears a pause.
func (g *Game) ResumeAI(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if !p.Paused {
		return g.reject(apperrors.CodeWrongPhase, "not paused", map[string]string{"Player": player})
	}
	g.commit(action.ResumeAI{Header: g.header(p.Name)})
	return nil
}
