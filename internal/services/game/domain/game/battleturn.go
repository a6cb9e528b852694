package game

import (
	"fmt"
	"slices"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// battleAuthorize checks that a battle is running and player owns the legion
// taking its battle turn, which must be in one of phases.
func (g *Game) battleAuthorize(player string, phases ...phase.Battle) (*Player, *Legion, error) {
	p, err := g.authorize(player)
	if err != nil {
		return nil, nil, err
	}
	b := g.battle
	if b == nil || b.over {
		return nil, nil, g.reject(apperrors.CodeNoBattle, "no battle in progress", map[string]string{"Player": player})
	}
	l := g.activeBattleLegion()
	if l == nil || l.Owner != p.Name {
		return nil, nil, g.reject(apperrors.CodeNotYourTurn, "not the active battle player", map[string]string{"Player": player})
	}
	if !slices.Contains(phases, b.phase) {
		return nil, nil, g.reject(apperrors.CodeWrongPhase, "wrong battle phase", map[string]string{"Player": player, "Phase": string(b.phase)})
	}
	return p, l, nil
}

// MoveCreature maneuvers a creature of the active legion.
func (g *Game) MoveCreature(player, name, oldHex, newHex string) error {
	p, l, err := g.battleAuthorize(player, phase.Maneuver)
	if err != nil {
		return err
	}
	c := findBattleCreature(l, name, oldHex)
	if c == nil {
		return g.reject(apperrors.CodeCreatureNotFound, "no such creature", map[string]string{"Creature": name, "Hex": oldHex})
	}
	if !slices.Contains(g.FindBattleMoves(c, false), newHex) {
		return g.reject(apperrors.CodeIllegalBattleMove, "illegal battle move", map[string]string{"Creature": name, "Hex": newHex})
	}
	g.commit(action.MoveCreature{Header: g.header(p.Name), CreatureName: name, OldHex: oldHex, NewHex: newHex})
	return nil
}

// UndoMoveCreature returns a creature moved this maneuver to where it was.
func (g *Game) UndoMoveCreature(player, name, hex string) error {
	p, l, err := g.battleAuthorize(player, phase.Maneuver)
	if err != nil {
		return err
	}
	c := findBattleCreature(l, name, hex)
	if c == nil || !c.Moved {
		return g.reject(apperrors.CodeNothingToUndo, "creature has not moved", map[string]string{"Creature": name, "Hex": hex})
	}
	g.commit(action.UndoMoveCreature{Header: g.header(p.Name), CreatureName: name, OldHex: c.PreviousHex, NewHex: c.Hex})
	return nil
}

// DoneWithReinforcements ends the reinforce phase.
func (g *Game) DoneWithReinforcements(player string) error {
	p, _, err := g.battleAuthorize(player, phase.Reinforce)
	if err != nil {
		return err
	}
	g.commit(action.StartManeuverBattlePhase{Header: g.header(p.Name)})
	return nil
}

// DoneWithManeuvers ends the maneuver phase; drift damage is applied and
// the strike phase begins.
func (g *Game) DoneWithManeuvers(player string) error {
	p, _, err := g.battleAuthorize(player, phase.Maneuver)
	if err != nil {
		return err
	}
	g.commit(action.StartStrikeBattlePhase{Header: g.header(p.Name)})
	return nil
}

// Strike rolls numDice for striker against target, needing strikeNumber.
// Zero dice means the most allowed and a zero strike number the lowest;
// a striker may take fewer dice or a higher number to enable carries.
func (g *Game) Strike(player, strikerName, strikerHex, targetName, targetHex string, numDice, strikeNumber int) error {
	p, l, err := g.battleAuthorize(player, phase.Strike, phase.Counterstrike)
	if err != nil {
		return err
	}
	meta := map[string]string{"Striker": strikerName, "Target": targetName, "Hex": targetHex}
	if g.battle.carry != nil {
		return g.reject(apperrors.CodePendingDecision, "a carry is pending", meta)
	}
	striker := findBattleCreature(l, strikerName, strikerHex)
	if striker == nil {
		return g.reject(apperrors.CodeCreatureNotFound, "no such striker", meta)
	}
	target := g.creatureAt(targetHex)
	if target == nil || target.Name != targetName || !slices.Contains(g.StrikeTargets(striker), target) {
		return g.reject(apperrors.CodeIllegalStrike, "illegal strike target", meta)
	}
	maxDice := g.NumberOfDice(striker, target)
	minNumber := g.StrikeNumber(striker, target)
	if numDice == 0 {
		numDice = maxDice
	}
	if strikeNumber == 0 {
		strikeNumber = minNumber
	}
	if numDice < 1 || numDice > maxDice || strikeNumber < minNumber || strikeNumber > maxStrikeNumber {
		return g.reject(apperrors.CodeIllegalStrike, "illegal dice or strike number", meta)
	}
	rolls := g.roller.Roll(numDice)
	hits := 0
	for _, r := range rolls {
		if r >= strikeNumber {
			hits++
		}
	}
	excess := hits - (target.Power() - target.Hits)
	carries := 0
	if excess > 0 {
		carries = min(excess, g.MaxPossibleCarries(striker, target, numDice, strikeNumber))
	}
	g.commit(action.Strike{
		Header:       g.header(p.Name),
		StrikerName:  strikerName,
		StrikerHex:   strikerHex,
		TargetName:   targetName,
		TargetHex:    targetHex,
		NumDice:      numDice,
		StrikeNumber: strikeNumber,
		Rolls:        rolls,
		Hits:         hits,
		Carries:      carries,
	})
	return nil
}

// Carry applies up to carries of the pending excess hits to target. Zero
// applies as many as target can take.
func (g *Game) Carry(player, targetName, targetHex string, carries int) error {
	p, _, err := g.battleAuthorize(player, phase.Strike, phase.Counterstrike)
	if err != nil {
		return err
	}
	pending := g.battle.carry
	meta := map[string]string{"Target": targetName, "Hex": targetHex}
	if pending == nil {
		return g.reject(apperrors.CodeIllegalCarry, "no carry pending", meta)
	}
	target := g.creatureAt(targetHex)
	targets := g.CarryTargets()
	if target == nil || target.Name != targetName || !slices.Contains(targets, target) {
		return g.reject(apperrors.CodeIllegalCarry, "illegal carry target", meta)
	}
	capacity := target.Power() - target.Hits
	if carries <= 0 || carries > pending.carries {
		carries = pending.carries
	}
	carries = min(carries, capacity)
	left := pending.carries - carries
	if left > 0 {
		remaining := 0
		for _, other := range targets {
			if other != target || carries < capacity {
				remaining++
			}
		}
		if remaining == 0 {
			left = 0
		}
	}
	g.commit(action.Carry{
		Header:          g.header(p.Name),
		CarryTargetName: targetName,
		CarryTargetHex:  targetHex,
		Carries:         carries,
		CarriesLeft:     left,
	})
	return nil
}

// DoneWithStrikes ends the strike phase. Every engaged creature must have
// struck and no carry may be pending.
func (g *Game) DoneWithStrikes(player string) error {
	_, l, err := g.battleAuthorize(player, phase.Strike)
	if err != nil {
		return err
	}
	if g.battle.carry != nil || g.mustStrike() {
		return g.reject(apperrors.CodePhaseIncomplete, "strikes remain", map[string]string{"Player": player})
	}
	other := g.otherBattleLegion(l.Marker)
	if other == nil {
		return g.reject(apperrors.CodeNoBattle, "no opposing legion", map[string]string{"Player": player})
	}
	g.commit(action.StartCounterstrikeBattlePhase{Header: g.header(other.Owner)})
	return nil
}

// DoneWithCounterstrikes ends the battle turn of the counterstriking legion.
// The battle ends when a legion is dead or the seventh turn has passed;
// otherwise the counterstriking legion begins its own turn.
func (g *Game) DoneWithCounterstrikes(player string) error {
	p, l, err := g.battleAuthorize(player, phase.Counterstrike)
	if err != nil {
		return err
	}
	b := g.battle
	if b.carry != nil || g.mustStrike() {
		return g.reject(apperrors.CodePhaseIncomplete, "strikes remain", map[string]string{"Player": player})
	}
	turn := b.turn
	if l.Marker == b.defender {
		turn++
	}
	attacker, defender := g.attackerLegion(), g.defenderLegion()
	attackerDead, defenderDead := attacker.Dead(), defender.Dead()
	if attackerDead || defenderDead || turn > phase.MaxBattleTurn {
		timeLoss := !attackerDead && !defenderDead
		winner, loser := attacker, defender
		if timeLoss || attackerDead {
			winner, loser = defender, attacker
		}
		if !timeLoss {
			turn = b.turn
		}
		g.commit(action.BattleOver{
			Header:       g.header(p.Name),
			WinnerMarker: winner.Marker,
			LoserMarker:  loser.Marker,
			TimeLoss:     timeLoss,
			Hex:          b.hex,
			BattleTurn:   turn,
		})
		g.settle()
		return nil
	}
	g.commit(action.StartReinforceBattlePhase{Header: g.header(p.Name), BattleTurn: turn})
	return nil
}

func (g *Game) initBattle(a action.Fight) error {
	attacker, ok := g.Legion(a.AttackerMarker)
	if !ok {
		return unknown("legion %s", a.AttackerMarker)
	}
	defender, ok := g.Legion(a.DefenderMarker)
	if !ok {
		return unknown("legion %s", a.DefenderMarker)
	}
	hex, ok := g.tables.Board().Hex(a.Hex)
	if !ok {
		return unknown("hex %d", a.Hex)
	}
	bmap, ok := g.tables.BattleMap(hex.Terrain, attacker.EntrySide)
	if !ok {
		return unknown("battle map %s side %d", hex.Terrain, attacker.EntrySide)
	}
	g.battle = &battleState{
		hex:      a.Hex,
		attacker: attacker.Marker,
		defender: defender.Marker,
		bmap:     bmap,
		turn:     phase.FirstBattleTurn,
		phase:    phase.Maneuver,
		active:   defender.Marker,
	}
	g.engagement = a.Hex
	clear(g.proposals)
	for _, pair := range []struct {
		l       *Legion
		station string
	}{{attacker, rules.Attacker}, {defender, rules.Defender}} {
		for _, c := range pair.l.Creatures {
			c.Hex = pair.station
			c.PreviousHex = ""
			c.Moved = false
			c.Struck = false
		}
	}
	return nil
}

func (g *Game) foldMoveCreature(a action.MoveCreature) error {
	c := findBattleCreature(g.activeBattleLegion(), a.CreatureName, a.OldHex)
	if c == nil {
		return unknown("creature %s in %s", a.CreatureName, a.OldHex)
	}
	c.Move(a.NewHex)
	return nil
}

func (g *Game) foldUndoMoveCreature(a action.UndoMoveCreature) error {
	c := findBattleCreature(g.activeBattleLegion(), a.CreatureName, a.NewHex)
	if c == nil {
		return unknown("creature %s in %s", a.CreatureName, a.NewHex)
	}
	c.UndoMove()
	c.Hex = a.OldHex
	return nil
}

func (g *Game) foldStartStrike() {
	b := g.battle
	if !b.attackerEntered && b.active == b.attacker {
		if l := g.attackerLegion(); l != nil {
			b.attackerEntered = l.find("", func(c *Creature) bool {
				return !c.Dead() && c.Hex != "" && !c.Offboard()
			}) != nil
		}
	}
	b.phase = phase.DriftDamage
	for _, c := range g.BattleCreatures() {
		if hex, ok := b.bmap.Hex(c.Hex); ok && hex.Terrain == rules.TerrainDrift && !g.IsNative(c, hex.Terrain) {
			c.addHits(1)
		}
	}
	b.phase = phase.Strike
}

func (g *Game) foldStrike(a action.Strike) error {
	b := g.battle
	target := g.creatureAt(a.TargetHex)
	if target == nil {
		return unknown("target in %s", a.TargetHex)
	}
	striker := g.creatureAt(a.StrikerHex)
	if striker == nil {
		return unknown("striker in %s", a.StrikerHex)
	}
	target.addHits(a.Hits)
	striker.Struck = true
	b.carry = nil
	if a.Carries > 0 {
		b.carry = &pendingCarry{
			strikerName:  a.StrikerName,
			strikerHex:   a.StrikerHex,
			targetName:   a.TargetName,
			targetHex:    a.TargetHex,
			numDice:      a.NumDice,
			strikeNumber: a.StrikeNumber,
			carries:      a.Carries,
		}
	}
	return nil
}

func (g *Game) foldCarry(a action.Carry) error {
	b := g.battle
	target := g.creatureAt(a.CarryTargetHex)
	if target == nil {
		return unknown("carry target in %s", a.CarryTargetHex)
	}
	target.addHits(a.Carries)
	if a.CarriesLeft > 0 && b.carry != nil {
		b.carry.carries = a.CarriesLeft
	} else {
		b.carry = nil
	}
	return nil
}

func (g *Game) foldStartCounterstrike() {
	b := g.battle
	b.phase = phase.Counterstrike
	b.carry = nil
	if b.active == b.attacker {
		b.active = b.defender
	} else {
		b.active = b.attacker
	}
}

// foldStartReinforce begins a battle turn: flags are cleared, creatures the
// previous legion left offboard are removed and dead creatures leave the
// map.
func (g *Game) foldStartReinforce(a action.StartReinforceBattlePhase) {
	b := g.battle
	for _, c := range g.BattleCreatures() {
		c.Moved = false
		c.Struck = false
		c.PreviousHex = ""
	}
	if l := g.otherBattleLegion(b.active); l != nil {
		g.cleanupOffboard(l, a.BattleTurn)
	}
	for _, l := range g.battleLegions() {
		for _, c := range l.Creatures {
			if !c.Dead() || c.Hex == "" {
				continue
			}
			if l.Marker == b.defender && !c.Offboard() && b.firstAttackerKill == 0 {
				b.firstAttackerKill = a.BattleTurn
			}
			c.Hex = ""
		}
	}
	b.turn = a.BattleTurn
	b.phase = phase.Reinforce
	b.carry = nil
}

// cleanupOffboard removes l's living creatures that never entered the map.
// In the first two turns they die; later a summoned lord returns to its
// donor and an unplaced reinforcement returns to the pool.
func (g *Game) cleanupOffboard(l *Legion, turn int) {
	b := g.battle
	for _, c := range slices.Clone(l.Creatures) {
		if c.Dead() || !c.Offboard() {
			continue
		}
		switch {
		case turn <= 2:
			c.Kill()
			c.Hex = ""
		case l.Marker == b.attacker:
			if _, ok := g.Legion(b.summonDonor); ok && c.kind.Summonable {
				_ = g.unsummon(l, c.Name, b.summonDonor)
				continue
			}
			c.Kill()
			c.Hex = ""
		default:
			l.removeLast(c.Name)
			g.caretaker.PutOneBack(c.Name)
			if n := len(l.recruiterNames); n > 0 {
				l.recruiterNames = l.recruiterNames[:n-1]
			}
			l.Recruited = false
		}
	}
}

// endBattle decides what the winner may still do once a battle is over. A
// defender that held may owe a reinforcement and an attacker that won may
// owe a summon; the legions are settled once those are done.
func (g *Game) endBattle(a action.BattleOver) {
	b := g.battle
	b.over = true
	b.timeLoss = a.TimeLoss
	b.turn = a.BattleTurn
	b.carry = nil
	attacker, defender := g.attackerLegion(), g.defenderLegion()
	switch {
	case b.timeLoss:
		b.pendingReinforce = defender != nil && g.canRecruit(defender)
	case attacker != nil && attacker.Dead() && defender != nil && defender.Dead():
	case attacker != nil && attacker.Dead():
		b.pendingReinforce = defender != nil && b.attackerEntered && g.canRecruit(defender)
	case defender != nil && defender.Dead():
		b.pendingSummon = attacker != nil && g.canSummon(attacker)
	}
	g.finishBattle()
}

// finishBattle removes the losing legions, awards points and heals the
// survivors, once no summon or reinforcement is pending.
func (g *Game) finishBattle() {
	b := g.battle
	if b == nil || !b.over || b.pendingSummon || b.pendingReinforce {
		return
	}
	attacker, defender := g.attackerLegion(), g.defenderLegion()
	switch {
	case attacker == nil || defender == nil:
	case b.timeLoss:
		g.die(attacker, defender, false, true)
	case attacker.Dead() && defender.Dead():
		g.mutualKill(attacker, defender)
	case attacker.Dead():
		g.die(attacker, defender, false, false)
	case defender.Dead():
		g.die(defender, attacker, false, false)
	default:
		panic(fmt.Sprintf("game %s: battle in hex %d ended with %s and %s alive", g.Name, b.hex, attacker.Marker, defender.Marker))
	}
	for _, l := range []*Legion{g.attackerLegion(), g.defenderLegion()} {
		if l == nil {
			continue
		}
		var living []*Creature
		for _, c := range l.Creatures {
			if c.Dead() {
				g.caretaker.KillOne(c.Name)
				continue
			}
			c.Heal()
			c.Hex = ""
			c.PreviousHex = ""
			c.Moved = false
			c.Struck = false
			living = append(living, c)
		}
		l.Creatures = living
	}
	g.battle = nil
	g.engagement = 0
	clear(g.proposals)
}
