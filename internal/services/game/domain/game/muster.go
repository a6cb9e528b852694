package game

import (
	"slices"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// terrainOf returns the masterboard terrain under l.
func (g *Game) terrainOf(l *Legion) string {
	hex, _ := g.tables.Board().Hex(l.Hex)
	return hex.Terrain
}

// canRecruit reports whether l could muster anything in its hex now.
func (g *Game) canRecruit(l *Legion) bool {
	return l.Height() < MaxHeight && !l.Recruited && !l.Dead() &&
		len(l.AvailableRecruits(g.terrainOf(l), g.caretaker)) > 0
}

// canSummon reports whether l could summon a lord from another of its
// owner's legions that is not engaged.
func (g *Game) canSummon(l *Legion) bool {
	p := g.player(l.Owner)
	if p == nil || p.Summoned || l.Dead() || l.Height() >= MaxHeight {
		return false
	}
	return len(g.SummonDonors(l)) > 0
}

// SummonDonors returns the unengaged legions of l's owner holding a
// summonable creature.
func (g *Game) SummonDonors(l *Legion) []*Legion {
	p := g.player(l.Owner)
	if p == nil {
		return nil
	}
	var out []*Legion
	for _, other := range p.Legions() {
		if other != l && other.HasSummonable() && !g.IsEngaged(other) {
			out = append(out, other)
		}
	}
	return out
}

// reinforcing reports whether the defender of the battle may reinforce:
// in its reinforce phase of the fourth battle turn, or after a battle it
// won where the attacker entered.
func (g *Game) reinforcing(l *Legion) bool {
	b := g.battle
	if b == nil || l.Marker != b.defender {
		return false
	}
	if b.over {
		return b.pendingReinforce
	}
	return b.phase == phase.Reinforce && b.turn == phase.ReinforceTurn && b.active == b.defender
}

// RecruitableBy returns the recruit options l has right now, best first.
func (g *Game) RecruitableBy(l *Legion) []Recruit {
	if !g.canRecruit(l) {
		return nil
	}
	return l.AvailableRecruitsAndRecruiters(g.terrainOf(l), g.caretaker)
}

// RecruitCreature musters name into a legion, revealing recruiters. It
// covers the muster phase and battle reinforcements.
func (g *Game) RecruitCreature(player, marker, name string, recruiters []string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	switch {
	case g.reinforcing(l):
	case p.Name == g.active && g.phase == phase.Muster && g.battle == nil:
		if !l.Moved || g.IsEngaged(l) {
			return g.reject(apperrors.CodeIllegalRecruit, "legion cannot recruit", map[string]string{"Marker": marker})
		}
	default:
		return g.reject(apperrors.CodeWrongPhase, "not a recruiting phase", map[string]string{"Player": player, "Phase": string(g.phase)})
	}
	want := Recruit{Name: name, Recruiters: recruiters}
	legal := slices.ContainsFunc(g.RecruitableBy(l), func(r Recruit) bool {
		return slices.Equal(r.tuple(), want.tuple())
	})
	if !legal {
		return g.reject(apperrors.CodeIllegalRecruit, "illegal recruit", map[string]string{"Marker": marker, "Creature": name})
	}
	g.commit(action.RecruitCreature{
		Header:         g.header(p.Name),
		Marker:         marker,
		CreatureName:   name,
		RecruiterNames: slices.Clone(recruiters),
	})
	g.settle()
	return nil
}

// UndoRecruit returns the last recruit of a legion to the pool, during the
// muster phase or while a reinforcement still waits offboard.
func (g *Game) UndoRecruit(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if !l.Recruited || len(l.Creatures) == 0 || len(l.recruiterNames) == 0 {
		return g.reject(apperrors.CodeNothingToUndo, "legion has not recruited", map[string]string{"Marker": marker})
	}
	last := l.Creatures[len(l.Creatures)-1]
	inMuster := p.Name == g.active && g.phase == phase.Muster && g.battle == nil
	inBattle := g.battle != nil && !g.battle.over && g.battle.phase == phase.Reinforce && last.Hex == rules.Defender
	if !inMuster && !inBattle {
		return g.reject(apperrors.CodeNothingToUndo, "recruit can no longer be undone", map[string]string{"Marker": marker})
	}
	g.commit(action.UndoRecruit{
		Header:         g.header(p.Name),
		Marker:         marker,
		CreatureName:   last.Name,
		RecruiterNames: slices.Clone(l.recruiterNames[len(l.recruiterNames)-1]),
	})
	return nil
}

// DoNotReinforce declines the reinforcement a winning defender was owed.
func (g *Game) DoNotReinforce(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if g.battle == nil || !g.battle.pendingReinforce || l.Marker != g.battle.defender {
		return g.reject(apperrors.CodeIllegalRecruit, "no reinforcement pending", map[string]string{"Marker": marker})
	}
	g.commit(action.DoNotReinforce{Header: g.header(p.Name), Marker: marker})
	g.settle()
	return nil
}

// SummonAngel moves a summonable lord from donor into the attacking legion:
// during the attacker's reinforce phase after its first kill, or after a
// battle the attacker won.
func (g *Game) SummonAngel(player, marker, donorMarker, name string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	donor, err := g.ownLegion(p, donorMarker)
	if err != nil {
		return err
	}
	b := g.battle
	if b == nil || l.Marker != b.attacker {
		return g.reject(apperrors.CodeIllegalSummon, "legion is not attacking", map[string]string{"Marker": marker})
	}
	allowed := b.pendingSummon ||
		(!b.over && b.phase == phase.Reinforce && b.active == b.attacker && b.firstAttackerKill != 0)
	if !allowed || !g.canSummon(l) || !slices.Contains(g.SummonDonors(l), donor) {
		return g.reject(apperrors.CodeIllegalSummon, "cannot summon", map[string]string{"Marker": marker, "Donor": donorMarker})
	}
	c := donor.find(name, nil)
	if c == nil || !c.kind.Summonable {
		return g.reject(apperrors.CodeIllegalSummon, "creature cannot be summoned", map[string]string{"Donor": donorMarker, "Creature": name})
	}
	g.commit(action.SummonAngel{Header: g.header(p.Name), Marker: marker, DonorMarker: donorMarker, CreatureName: name})
	g.settle()
	return nil
}

// UnSummon returns a summoned lord that has not entered the battle map.
func (g *Game) UnSummon(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	b := g.battle
	if b == nil || b.over || b.summonDonor == "" || l.Marker != b.attacker || b.phase != phase.Reinforce {
		return g.reject(apperrors.CodeNothingToUndo, "nothing summoned", map[string]string{"Marker": marker})
	}
	if _, ok := g.Legion(b.summonDonor); !ok {
		return g.reject(apperrors.CodeNothingToUndo, "donor is gone", map[string]string{"Donor": b.summonDonor})
	}
	c := l.find("", func(c *Creature) bool { return c.kind.Summonable && c.Hex == rules.Attacker })
	if c == nil {
		return g.reject(apperrors.CodeNothingToUndo, "summoned creature already entered", map[string]string{"Marker": marker})
	}
	g.commit(action.UnSummon{Header: g.header(p.Name), Marker: marker, DonorMarker: b.summonDonor, CreatureName: c.Name})
	return nil
}

// DoNotSummon declines the summon a winning attacker was owed.
func (g *Game) DoNotSummon(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if g.battle == nil || !g.battle.pendingSummon || l.Marker != g.battle.attacker {
		return g.reject(apperrors.CodeIllegalSummon, "no summon pending", map[string]string{"Marker": marker})
	}
	g.commit(action.DoNotSummon{Header: g.header(p.Name), Marker: marker})
	g.settle()
	return nil
}

// DoneWithRecruits ends the active player's turn.
func (g *Game) DoneWithRecruits(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Muster); err != nil {
		return err
	}
	if g.pendingDecision() {
		return g.reject(apperrors.CodePendingDecision, "a decision is still pending", map[string]string{"Player": player})
	}
	g.startNextTurn()
	g.settle()
	return nil
}

// startNextTurn hands the turn to the next living player in turn order,
// advancing the game turn when play wraps around.
func (g *Game) startNextTurn() {
	next, turn := g.nextPlayer()
	if next == nil {
		return
	}
	g.commit(action.StartSplitPhase{Header: g.header(next.Name), Turn: turn})
}

func (g *Game) nextPlayer() (*Player, int) {
	start := slices.IndexFunc(g.players, func(p *Player) bool { return p.Name == g.active })
	n := len(g.players)
	for i := 1; i <= n; i++ {
		turn := g.turn
		if start+i >= n {
			turn++
		}
		if p := g.players[(start+i)%n]; !p.Dead {
			return p, turn
		}
	}
	return nil, g.turn
}

func (g *Game) foldRecruit(l *Legion, a action.RecruitCreature) {
	g.caretaker.TakeOne(a.CreatureName)
	c := newCreature(g.tables, a.CreatureName, l.Marker)
	b := g.battle
	inBattle := b != nil && !b.over && l.Marker == b.defender
	if inBattle {
		c.Hex = rules.Defender
	}
	l.add(c)
	l.recruiterNames = append(l.recruiterNames, slices.Clone(a.RecruiterNames))
	l.Recruited = true
	if b != nil && l.Marker == b.defender && b.over {
		b.pendingReinforce = false
		g.finishBattle()
	}
}

func (g *Game) foldUndoRecruit(l *Legion, a action.UndoRecruit) error {
	c := l.removeLast(a.CreatureName)
	if c == nil {
		return unknown("creature %s in %s", a.CreatureName, l.Marker)
	}
	g.caretaker.PutOneBack(c.Name)
	if n := len(l.recruiterNames); n > 0 {
		l.recruiterNames = l.recruiterNames[:n-1]
	}
	l.Recruited = false
	return nil
}

func (g *Game) foldSummon(l *Legion, a action.SummonAngel) error {
	donor, ok := g.Legion(a.DonorMarker)
	if !ok {
		return unknown("legion %s", a.DonorMarker)
	}
	c := donor.removeLast(a.CreatureName)
	if c == nil {
		return unknown("creature %s in %s", a.CreatureName, a.DonorMarker)
	}
	c.Hex, c.PreviousHex, c.Moved, c.Struck = "", "", false, false
	b := g.battle
	if b != nil && !b.over {
		c.Hex = rules.Attacker
	}
	l.add(c)
	if p := g.player(l.Owner); p != nil {
		p.Summoned = true
	}
	if b != nil {
		b.summonDonor = a.DonorMarker
		if b.over {
			b.pendingSummon = false
			g.finishBattle()
		}
	}
	return nil
}

// unsummon moves a summoned creature back to its donor.
func (g *Game) unsummon(l *Legion, name, donorMarker string) error {
	donor, ok := g.Legion(donorMarker)
	if !ok {
		return unknown("legion %s", donorMarker)
	}
	c := l.removeLast(name)
	if c == nil {
		return unknown("creature %s in %s", name, l.Marker)
	}
	c.Hex, c.PreviousHex, c.Moved, c.Struck = "", "", false, false
	donor.add(c)
	if p := g.player(l.Owner); p != nil {
		p.Summoned = false
	}
	if g.battle != nil {
		g.battle.summonDonor = ""
	}
	return nil
}

func (g *Game) foldDoNotReinforce() {
	if b := g.battle; b != nil {
		b.pendingReinforce = false
		g.finishBattle()
	}
}

func (g *Game) foldDoNotSummon() {
	if b := g.battle; b != nil {
		b.pendingSummon = false
		g.finishBattle()
	}
}
