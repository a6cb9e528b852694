package game

import (
	"fmt"
	"slices"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/bag"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
)

// SplitLegion moves childNames out of parent into a new legion under
// childMarker.
func (g *Game) SplitLegion(player, parentMarker, childMarker string, parentNames, childNames []string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Split); err != nil {
		return err
	}
	parent, err := g.ownLegion(p, parentMarker)
	if err != nil {
		return err
	}
	if !p.HasMarker(childMarker) {
		return g.reject(apperrors.CodeMarkerUnavailable, "marker is not available", map[string]string{"Marker": childMarker})
	}
	if !parent.CanBeSplit(g.turn) || !parent.IsLegalSplit(parentNames, childNames) {
		return g.reject(apperrors.CodeIllegalSplit, "illegal split", map[string]string{"Marker": parentMarker})
	}
	g.commit(action.SplitLegion{
		Header:              g.header(p.Name),
		ParentMarker:        parentMarker,
		ChildMarker:         childMarker,
		ParentCreatureNames: slices.Clone(parentNames),
		ChildCreatureNames:  slices.Clone(childNames),
	})
	return nil
}

// UndoSplit merges a legion split this phase back into its parent.
func (g *Game) UndoSplit(player, parentMarker, childMarker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Split); err != nil {
		return err
	}
	parent, err := g.ownLegion(p, parentMarker)
	if err != nil {
		return err
	}
	child, err := g.ownLegion(p, childMarker)
	if err != nil {
		return err
	}
	if p.splits[childMarker] != parentMarker || parent.Hex != child.Hex {
		return g.reject(apperrors.CodeNothingToUndo, "legion was not split off this turn", map[string]string{"Marker": childMarker})
	}
	g.commit(action.UndoSplit{
		Header:              g.header(p.Name),
		ParentMarker:        parentMarker,
		ChildMarker:         childMarker,
		ParentCreatureNames: parent.CreatureNames(),
		ChildCreatureNames:  child.CreatureNames(),
	})
	return nil
}

// DoneWithSplits ends the split phase and rolls for movement. On the first
// turn every starting legion must have been split.
func (g *Game) DoneWithSplits(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Split); err != nil {
		return err
	}
	if !g.canExitSplitPhase(p) {
		return g.reject(apperrors.CodePhaseIncomplete, "starting legion must be split", map[string]string{"Player": player, "Phase": string(g.phase)})
	}
	g.commitRoll(p, p.MulligansLeft)
	g.settle()
	return nil
}

func (g *Game) canExitSplitPhase(p *Player) bool {
	for _, l := range p.legions {
		if g.turn == 1 && len(l.Creatures) == 8 {
			return false
		}
	}
	return true
}

// TakeMulligan rerolls the movement die. Each player has one mulligan, usable
// on the first turn before any legion has moved.
func (g *Game) TakeMulligan(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Move); err != nil {
		return err
	}
	if p.MulligansLeft <= 0 || g.turn != 1 || g.anyMoved(p) {
		return g.reject(apperrors.CodeMulliganUnavailable, "no mulligan available", map[string]string{"Player": player})
	}
	g.commitRoll(p, p.MulligansLeft-1)
	return nil
}

func (g *Game) commitRoll(p *Player, mulligans int) {
	g.commit(action.RollMovement{
		Header:        g.header(p.Name),
		MovementRoll:  g.roller.Roll(1)[0],
		MulligansLeft: mulligans,
	})
}

func (g *Game) anyMoved(p *Player) bool {
	for _, l := range p.legions {
		if l.Moved {
			return true
		}
	}
	return false
}

// MoveLegion moves a legion on the masterboard. A teleport names the lord
// it reveals.
func (g *Game) MoveLegion(player, marker string, hex, entrySide int, teleport bool, lord string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Move); err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if !g.CanMoveLegion(p, l, hex, entrySide, teleport, lord) {
		return g.reject(apperrors.CodeIllegalMove, "illegal move", map[string]string{"Marker": marker, "Hex": itoa(hex)})
	}
	if !teleport {
		lord = ""
	}
	g.commit(action.MoveLegion{
		Header:          g.header(p.Name),
		Marker:          marker,
		Hex:             hex,
		EntrySide:       entrySide,
		Teleport:        teleport,
		TeleportingLord: lord,
		PreviousHex:     l.Hex,
	})
	return nil
}

// UndoMoveLegion returns a legion to where it started the phase.
func (g *Game) UndoMoveLegion(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Move); err != nil {
		return err
	}
	l, err := g.ownLegion(p, marker)
	if err != nil {
		return err
	}
	if !l.Moved {
		return g.reject(apperrors.CodeNothingToUndo, "legion has not moved", map[string]string{"Marker": marker})
	}
	g.commit(action.UndoMoveLegion{
		Header:          g.header(p.Name),
		Marker:          marker,
		Hex:             l.Hex,
		EntrySide:       l.EntrySide,
		Teleport:        l.Teleported,
		TeleportingLord: l.TeleportingLord,
		PreviousHex:     l.PreviousHex,
	})
	return nil
}

// DoneWithMoves ends the move phase. At least one legion must move when any
// can, and split legions still sharing a hex must separate if they can.
func (g *Game) DoneWithMoves(player string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if err := g.activeIn(p, phase.Move); err != nil {
		return err
	}
	if !g.canExitMovePhase(p) {
		return g.reject(apperrors.CodePhaseIncomplete, "legions still have to move", map[string]string{"Player": player, "Phase": string(g.phase)})
	}
	g.commit(action.StartFightPhase{Header: g.header(p.Name)})
	g.settle()
	return nil
}

func (g *Game) canExitMovePhase(p *Player) bool {
	legions := p.Legions()
	if !g.anyMoved(p) {
		for _, l := range legions {
			if g.legionHasMove(l) {
				return false
			}
		}
	}
	byHex := make(map[int][]*Legion)
	for _, l := range legions {
		byHex[l.Hex] = append(byHex[l.Hex], l)
	}
	for _, stack := range byHex {
		if len(stack) < 2 {
			continue
		}
		for _, l := range stack {
			if !l.Moved && g.legionHasMove(l) {
				return false
			}
		}
	}
	return true
}

func (g *Game) foldSplit(p *Player, a action.SplitLegion) error {
	parent, ok := p.legions[a.ParentMarker]
	if !ok {
		return unknown("legion %s", a.ParentMarker)
	}
	if !bag.New(parent.CreatureNames()...).Contains(bag.New(a.ChildCreatureNames...)) {
		return unknown("creatures %v in %s", a.ChildCreatureNames, a.ParentMarker)
	}
	child := &Legion{Marker: a.ChildMarker, Owner: p.Name, Hex: parent.Hex, tables: g.tables}
	for _, name := range a.ChildCreatureNames {
		c := parent.removeLast(name)
		c.Marker = child.Marker
		child.Creatures = append(child.Creatures, c)
	}
	p.takeMarker(a.ChildMarker)
	p.addLegion(child)
	p.splits[a.ChildMarker] = a.ParentMarker
	return nil
}

func (g *Game) foldUndoSplit(p *Player, a action.UndoSplit) error {
	parent, ok := p.legions[a.ParentMarker]
	if !ok {
		return unknown("legion %s", a.ParentMarker)
	}
	child, ok := p.legions[a.ChildMarker]
	if !ok {
		return unknown("legion %s", a.ChildMarker)
	}
	if p.splits[a.ChildMarker] != a.ParentMarker {
		return unknown("split of %s from %s this turn", a.ChildMarker, a.ParentMarker)
	}
	if parent.Height()+child.Height() > splitHeightLimit(g.turn) {
		return fmt.Errorf("merge %s into %s: height %d over limit", a.ChildMarker, a.ParentMarker, parent.Height()+child.Height())
	}
	for _, c := range child.Creatures {
		c.Marker = parent.Marker
		parent.Creatures = append(parent.Creatures, c)
	}
	child.Creatures = nil
	p.removeLegion(child.Marker)
	delete(p.splits, a.ChildMarker)
	return nil
}

// splitHeightLimit is the tallest a legion may be before it splits: the
// eight-high starting legion on the first turn, MaxHeight afterwards.
func splitHeightLimit(turn int) int {
	if turn == 1 {
		return MaxHeight + 1
	}
	return MaxHeight
}

func (g *Game) foldRoll(p *Player, a action.RollMovement) {
	g.phase = phase.Move
	p.MovementRoll = a.MovementRoll
	p.MulligansLeft = a.MulligansLeft
}

func (g *Game) foldMove(l *Legion, a action.MoveLegion) {
	l.PreviousHex = l.Hex
	l.Hex = a.Hex
	l.Moved = true
	l.EntrySide = a.EntrySide
	l.Teleported = a.Teleport
	l.TeleportingLord = a.TeleportingLord
}

func (g *Game) foldUndoMove(l *Legion) {
	if l.PreviousHex != 0 {
		l.Hex = l.PreviousHex
	}
	l.Moved = false
	l.EntrySide = 0
	l.Teleported = false
	l.TeleportingLord = ""
	l.PreviousHex = 0
}
