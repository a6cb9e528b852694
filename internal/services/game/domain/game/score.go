package game

import (
	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// die removes l from the board. The scorer, if any, earns l's value (half
// when it fled) and may acquire angels for it. Every creature is returned
// to the caretaker, and losing the Titan kills the owner.
func (g *Game) die(l, scorer *Legion, fled, noPoints bool) {
	if scorer != nil && !noPoints {
		points := l.Score()
		if fled {
			points /= 2
		}
		g.addPoints(scorer, points, true)
	}
	deadTitan := false
	for _, c := range l.Creatures {
		g.caretaker.KillOne(c.Name)
		if c.Name == rules.Titan {
			deadTitan = true
		}
	}
	owner := g.player(l.Owner)
	owner.removeLegion(l.Marker)
	if deadTitan {
		owner.Dead = true
		if scorer != nil {
			owner.KilledBy = scorer.Owner
		}
	}
}

// mutualKill removes two legions that destroyed each other. Neither scores.
// A legion carrying a Titan dies last so a lone Titan loss decides the
// winner.
func (g *Game) mutualKill(attacker, defender *Legion) {
	first, second := attacker, defender
	if attacker.HasTitan() {
		first, second = defender, attacker
	}
	g.die(first, second, false, true)
	g.die(second, first, false, true)
}

// addPoints adds to the score of l's owner and, when canAcquire, grants the
// angels the new score earns l: one Archangel for crossing a multiple of
// 500 and an Angel for each further multiple of 100 crossed, never beyond
// the height cap or the caretaker's stock.
func (g *Game) addPoints(l *Legion, points int, canAcquire bool) {
	p := g.player(l.Owner)
	if p == nil || points <= 0 {
		return
	}
	score0 := p.Score
	score1 := score0 + points
	p.setScore(score1)
	if !canAcquire || l.Dead() {
		return
	}
	height := l.Height()
	archangels, angels := 0, 0
	if height < MaxHeight && score1/ArchangelPoints > score0/ArchangelPoints {
		archangels = 1
		score1 -= AngelPoints
	}
	for height+archangels+angels < MaxHeight && score1/AngelPoints > score0/AngelPoints {
		angels++
		score1 -= AngelPoints
	}
	l.ArchangelsPending = min(archangels, g.caretaker.NumLeft(rules.Archangel))
	l.AngelsPending = min(angels, g.caretaker.NumLeft(rules.Angel))
}

// Acquire adds earned angels to a legion. An Archangel slot may be taken as
// an Angel instead.
func (g *Game) Acquire(player, marker string, names []string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if !g.canAcquire(l, names) {
		return g.reject(apperrors.CodeIllegalAcquire, "illegal acquisition", map[string]string{"Marker": marker})
	}
	g.commit(action.Acquire{Header: g.header(p.Name), Marker: marker, CreatureNames: append([]string(nil), names...)})
	g.settle()
	return nil
}

func (g *Game) canAcquire(l *Legion, names []string) bool {
	if len(names) == 0 || l.Height()+len(names) > MaxHeight {
		return false
	}
	arch, angel := 0, 0
	for _, name := range names {
		switch name {
		case rules.Archangel:
			arch++
		case rules.Angel:
			angel++
		default:
			return false
		}
	}
	if arch > l.ArchangelsPending || angel > l.AngelsPending+l.ArchangelsPending-arch {
		return false
	}
	return arch <= g.caretaker.NumLeft(rules.Archangel) && angel <= g.caretaker.NumLeft(rules.Angel)
}

// DoNotAcquire declines the angels a legion earned.
func (g *Game) DoNotAcquire(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if l.AngelsPending == 0 && l.ArchangelsPending == 0 {
		return g.reject(apperrors.CodeIllegalAcquire, "nothing to acquire", map[string]string{"Marker": marker})
	}
	g.commit(action.DoNotAcquire{Header: g.header(p.Name), Marker: marker})
	g.settle()
	return nil
}

func (g *Game) foldAcquire(l *Legion, a action.Acquire) {
	for _, name := range a.CreatureNames {
		g.caretaker.TakeOne(name)
		l.add(newCreature(g.tables, name, l.Marker))
	}
	l.AngelsPending = 0
	l.ArchangelsPending = 0
}
