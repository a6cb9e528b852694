package game

import (
	"slices"
	"sort"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/bag"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
)

// Engagements returns the hexes where legions of different players meet.
func (g *Game) Engagements() []int {
	owners := make(map[int]map[string]bool)
	for _, p := range g.players {
		for _, l := range p.legions {
			if owners[l.Hex] == nil {
				owners[l.Hex] = make(map[string]bool)
			}
			owners[l.Hex][p.Name] = true
		}
	}
	var out []int
	for hex, who := range owners {
		if len(who) > 1 {
			out = append(out, hex)
		}
	}
	sort.Ints(out)
	return out
}

// IsEngaged reports whether an enemy legion shares l's hex.
func (g *Game) IsEngaged(l *Legion) bool {
	_, enemies := g.legionsAt(l, l.Hex)
	return enemies > 0
}

// Engagement returns the hex being resolved, if any.
func (g *Game) Engagement() (int, bool) {
	return g.engagement, g.engagement != 0
}

// engagedLegions returns the active player's legion and the enemy legion in
// the engagement hex.
func (g *Game) engagedLegions(hex int) (attacker, defender *Legion) {
	for _, l := range g.LegionsIn(hex) {
		if l.Owner == g.active {
			attacker = l
		} else {
			defender = l
		}
	}
	return attacker, defender
}

// ResolveEngagement opens the engagement in hex. Each side's legion is
// revealed to the other player only.
func (g *Game) ResolveEngagement(player string, hex int) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Fight); err != nil {
		return err
	}
	if g.battle != nil || g.engagement != 0 || g.pendingDecision() {
		return g.reject(apperrors.CodePendingDecision, "another engagement is being resolved", map[string]string{"Player": player})
	}
	if !slices.Contains(g.Engagements(), hex) {
		return g.reject(apperrors.CodeNoEngagement, "no engagement in hex", map[string]string{"Hex": itoa(hex)})
	}
	attacker, defender := g.engagedLegions(hex)
	g.commit(action.RevealLegion{Header: g.header(attacker.Owner), Marker: attacker.Marker, CreatureNames: attacker.CreatureNames()}, defender.Owner)
	g.commit(action.RevealLegion{Header: g.header(defender.Owner), Marker: defender.Marker, CreatureNames: defender.CreatureNames()}, attacker.Owner)
	g.commit(action.ResolvingEngagement{Header: g.header(p.Name), Hex: hex})
	return nil
}

// engagementSide checks that an engagement is open and player owns one of its
// legions, and returns that legion and its enemy.
func (g *Game) engagementSide(player string) (*Player, *Legion, *Legion, error) {
	p, err := g.authorize(player)
	if err != nil {
		return nil, nil, nil, err
	}
	if g.engagement == 0 {
		return nil, nil, nil, g.reject(apperrors.CodeNoEngagement, "no engagement is being resolved", map[string]string{"Player": player})
	}
	attacker, defender := g.engagedLegions(g.engagement)
	if attacker == nil || defender == nil {
		return nil, nil, nil, g.reject(apperrors.CodeNoEngagement, "no engagement is being resolved", map[string]string{"Player": player})
	}
	switch player {
	case attacker.Owner:
		return p, attacker, defender, nil
	case defender.Owner:
		return p, defender, attacker, nil
	}
	return nil, nil, nil, g.reject(apperrors.CodeNotYourLegion, "player is not in the engagement", map[string]string{"Player": player})
}

// Flee removes the defending legion before battle; the attacker scores half
// its value. Legions with lords cannot flee.
func (g *Game) Flee(player, marker string) error {
	p, own, enemy, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	if g.battle != nil || own.Marker != marker || own.Owner == g.active || !own.CanFlee() {
		return g.reject(apperrors.CodeIllegalFlee, "legion cannot flee", map[string]string{"Marker": marker})
	}
	g.commit(action.Flee{Header: g.header(p.Name), Marker: marker, EnemyMarker: enemy.Marker, Hex: g.engagement})
	g.settle()
	return nil
}

// DoNotFlee declines to flee.
func (g *Game) DoNotFlee(player, marker string) error {
	p, own, enemy, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	if g.battle != nil || own.Marker != marker || own.Owner == g.active {
		return g.reject(apperrors.CodeIllegalFlee, "legion is not defending", map[string]string{"Marker": marker})
	}
	g.commit(action.DoNotFlee{Header: g.header(p.Name), Marker: marker, EnemyMarker: enemy.Marker, Hex: g.engagement})
	return nil
}

// Concede gives the engagement to the enemy. Before battle the legion dies
// at full value; in battle its creatures die and the battle ends.
func (g *Game) Concede(player, marker string) error {
	p, own, enemy, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	if own.Marker != marker || (g.battle != nil && g.battle.over) {
		return g.reject(apperrors.CodeIllegalFlee, "legion cannot concede", map[string]string{"Marker": marker})
	}
	g.concede(p, own, enemy)
	g.settle()
	return nil
}

func (g *Game) concede(p *Player, own, enemy *Legion) {
	hex := own.Hex
	g.commit(action.Concede{Header: g.header(p.Name), Marker: own.Marker, EnemyMarker: enemy.Marker, Hex: hex})
	if g.battle != nil {
		g.commit(action.BattleOver{
			Header:       g.header(p.Name),
			WinnerMarker: enemy.Marker,
			LoserMarker:  own.Marker,
			Hex:          hex,
			BattleTurn:   g.battle.turn,
		})
	}
}

// MakeProposal offers a negotiated result: the survivors of each legion.
// At least one side must be eliminated.
func (g *Game) MakeProposal(player string, attackerNames, defenderNames []string) error {
	p, own, enemy, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	if g.battle != nil {
		return g.reject(apperrors.CodeIllegalProposal, "battle already started", map[string]string{"Player": player})
	}
	attacker, defender := own, enemy
	if own.Owner != g.active {
		attacker, defender = enemy, own
	}
	if (len(attackerNames) > 0 && len(defenderNames) > 0) ||
		!bag.New(attacker.CreatureNames()...).Contains(bag.New(attackerNames...)) ||
		!bag.New(defender.CreatureNames()...).Contains(bag.New(defenderNames...)) {
		return g.reject(apperrors.CodeIllegalProposal, "illegal proposal", map[string]string{"Player": player})
	}
	g.commit(action.MakeProposal{
		Header:                g.header(p.Name),
		OtherPlayer:           enemy.Owner,
		AttackerMarker:        attacker.Marker,
		AttackerCreatureNames: slices.Clone(attackerNames),
		DefenderMarker:        defender.Marker,
		DefenderCreatureNames: slices.Clone(defenderNames),
		Hex:                   g.engagement,
	}, p.Name, enemy.Owner)
	return nil
}

// AcceptProposal settles the engagement on the terms proposer offered.
func (g *Game) AcceptProposal(player, proposer string) error {
	p, _, enemy, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	prop, ok := g.proposals[proposer]
	if !ok || proposer != enemy.Owner || prop.OtherPlayer != p.Name || g.battle != nil {
		return g.reject(apperrors.CodeIllegalProposal, "no such proposal", map[string]string{"Player": proposer})
	}
	accept := action.AcceptProposal(prop)
	accept.Header = g.header(p.Name)
	accept.OtherPlayer = proposer
	g.commit(accept)
	g.settle()
	return nil
}

// RejectProposal declines proposer's offer.
func (g *Game) RejectProposal(player, proposer string) error {
	p, _, enemy, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	prop, ok := g.proposals[proposer]
	if !ok || proposer != enemy.Owner {
		return g.reject(apperrors.CodeIllegalProposal, "no such proposal", map[string]string{"Player": proposer})
	}
	reject := action.RejectProposal(prop)
	reject.Header = g.header(p.Name)
	reject.OtherPlayer = proposer
	g.commit(reject, p.Name, proposer)
	return nil
}

// Fight starts a battle for the open engagement.
func (g *Game) Fight(player string) error {
	p, _, _, err := g.engagementSide(player)
	if err != nil {
		return err
	}
	if g.battle != nil {
		return g.reject(apperrors.CodePendingDecision, "battle already started", map[string]string{"Player": player})
	}
	attacker, defender := g.engagedLegions(g.engagement)
	hex, _ := g.tables.Board().Hex(g.engagement)
	if _, ok := g.tables.BattleMap(hex.Terrain, attacker.EntrySide); !ok {
		return g.reject(apperrors.CodeNoBattle, "no battle map for entry side", map[string]string{"Hex": itoa(g.engagement)})
	}
	g.commit(action.Fight{
		Header:         g.header(p.Name),
		AttackerMarker: attacker.Marker,
		DefenderMarker: defender.Marker,
		Hex:            g.engagement,
	})
	return nil
}

// DoneWithEngagements ends the fight phase once every engagement is
// resolved and no decision is pending.
func (g *Game) DoneWithEngagements(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Fight); err != nil {
		return err
	}
	if g.battle != nil || g.pendingDecision() {
		return g.reject(apperrors.CodePendingDecision, "a decision is still pending", map[string]string{"Player": player})
	}
	if len(g.Engagements()) > 0 {
		return g.reject(apperrors.CodePhaseIncomplete, "engagements remain", map[string]string{"Player": player, "Phase": string(g.phase)})
	}
	g.commit(action.StartMusterPhase{Header: g.header(p.Name)})
	g.settle()
	return nil
}

// pendingDecision reports whether a carry, summon, reinforcement or angel
// acquisition still waits on a player.
func (g *Game) pendingDecision() bool {
	if b := g.battle; b != nil && (b.carry != nil || b.pendingSummon || b.pendingReinforce) {
		return true
	}
	return g.anyPendingAcquire()
}

func (g *Game) foldFlee(a action.Flee) error {
	l, ok := g.Legion(a.Marker)
	if !ok {
		return unknown("legion %s", a.Marker)
	}
	enemy, _ := g.Legion(a.EnemyMarker)
	g.die(l, enemy, true, false)
	g.engagement = 0
	return nil
}

func (g *Game) foldConcede(a action.Concede) error {
	l, ok := g.Legion(a.Marker)
	if !ok {
		return unknown("legion %s", a.Marker)
	}
	if g.battle != nil && (g.battle.attacker == a.Marker || g.battle.defender == a.Marker) {
		for _, c := range l.Creatures {
			c.Kill()
		}
		return nil
	}
	enemy, _ := g.Legion(a.EnemyMarker)
	g.die(l, enemy, false, false)
	g.engagement = 0
	return nil
}

func (g *Game) foldAcceptProposal(a action.AcceptProposal) error {
	attacker, ok := g.Legion(a.AttackerMarker)
	if !ok {
		return unknown("legion %s", a.AttackerMarker)
	}
	defender, ok := g.Legion(a.DefenderMarker)
	if !ok {
		return unknown("legion %s", a.DefenderMarker)
	}
	clear(g.proposals)
	g.engagement = 0
	switch {
	case len(a.AttackerCreatureNames) == 0 && len(a.DefenderCreatureNames) == 0:
		g.mutualKill(attacker, defender)
	case len(a.DefenderCreatureNames) == 0:
		g.trim(attacker, a.AttackerCreatureNames)
		g.die(defender, attacker, false, false)
	default:
		g.trim(defender, a.DefenderCreatureNames)
		g.die(attacker, defender, false, false)
	}
	return nil
}

// trim kills every creature of l not among the survivors.
func (g *Game) trim(l *Legion, survivors []string) {
	keep := bag.New(survivors...)
	var kept []*Creature
	for _, c := range l.Creatures {
		if keep.Remove(c.Name) {
			kept = append(kept, c)
			continue
		}
		g.caretaker.KillOne(c.Name)
	}
	l.Creatures = kept
}

func (g *Game) foldStartMusterPhase() {
	g.phase = phase.Muster
	g.engagement = 0
	clear(g.proposals)
	for _, p := range g.players {
		for _, l := range p.Legions() {
			if len(l.Creatures) == 0 {
				p.removeLegion(l.Marker)
			}
		}
	}
}
