package game

import (
	"slices"
	"sort"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/phase"
)

// Join adds a player before the game starts.
func (g *Game) Join(player string) error {
	if err := g.lobbyCheck(player); err != nil {
		return err
	}
	if g.player(player) != nil {
		return g.reject(apperrors.CodePlayerExists, "player already joined", map[string]string{"Player": player})
	}
	if len(g.players) >= g.maxPlayers {
		return g.reject(apperrors.CodeGameFull, "game is full", nil)
	}
	g.commit(action.JoinGame{Header: g.header(player)})
	return nil
}

// Leave removes a player before the game starts.
func (g *Game) Leave(player string) error {
	if err := g.lobbyCheck(player); err != nil {
		return err
	}
	if g.player(player) == nil {
		return g.reject(apperrors.CodePlayerNotFound, "no such player", map[string]string{"Player": player})
	}
	g.commit(action.LeaveGame{Header: g.header(player)})
	return nil
}

func (g *Game) lobbyCheck(player string) error {
	if !g.master {
		return g.reject(apperrors.CodeNotAuthoritative, "mirror games only replay actions", nil)
	}
	if player == "" {
		return g.reject(apperrors.CodePlayerNameEmpty, "player name is empty", nil)
	}
	if g.started {
		return g.reject(apperrors.CodeGameStarted, "game already started", nil)
	}
	return nil
}

// Start assigns every player a random tower. Only the owner may start, and
// only with enough players.
func (g *Game) Start(player string) error {
	if err := g.lobbyCheck(player); err != nil {
		return err
	}
	if g.Owner() != player {
		return g.reject(apperrors.CodeNotOwner, "only the owner can start the game", map[string]string{"Player": player})
	}
	if len(g.players) < g.minPlayers {
		return g.reject(apperrors.CodeNotEnoughPlayers, "not enough players", map[string]string{"Min": itoa(g.minPlayers)})
	}
	towers := g.tables.Board().Towers()
	g.roller.Shuffle(len(towers), func(i, j int) { towers[i], towers[j] = towers[j], towers[i] })
	for i, p := range g.players {
		g.commit(action.AssignTower{Header: g.header(p.Name), Tower: towers[i]})
	}
	g.commit(action.AssignedAllTowers{Header: g.header(player)})
	return nil
}

// ColorsLeft returns the colors no player has picked, in table order.
func (g *Game) ColorsLeft() []string {
	var out []string
	for _, c := range g.tables.Colors() {
		taken := false
		for _, p := range g.players {
			if p.Color == c.Name {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, c.Name)
		}
	}
	return out
}

// NextColorPicker returns the player who picks a color next: the lowest
// tower without one.
func (g *Game) NextColorPicker() string {
	var next *Player
	for _, p := range g.players {
		if p.Color == "" && (next == nil || p.Tower < next.Tower) {
			next = p
		}
	}
	if next == nil {
		return ""
	}
	return next.Name
}

// PickColor records a player's color choice. Players pick in ascending
// tower order.
func (g *Game) PickColor(player, color string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if g.NextColorPicker() != player {
		return g.reject(apperrors.CodeNotYourPick, "not your turn to pick a color", map[string]string{"Player": player})
	}
	if !slices.Contains(g.ColorsLeft(), color) {
		return g.reject(apperrors.CodeColorUnavailable, "color is not available", map[string]string{"Color": color})
	}
	g.commit(action.PickedColor{Header: g.header(p.Name), Color: color})
	return nil
}

// PickFirstMarker selects the marker of a player's starting legion. Once
// every player has one, the starting legions are created.
func (g *Game) PickFirstMarker(player, marker string) error {
	p, err := g.authorize(player)
	if err != nil {
		return err
	}
	if p.Color == "" || g.NextColorPicker() != "" {
		return g.reject(apperrors.CodeNotYourPick, "colors are still being picked", map[string]string{"Player": player})
	}
	if len(p.legions) > 0 || !p.HasMarker(marker) {
		return g.reject(apperrors.CodeMarkerUnavailable, "marker is not available", map[string]string{"Marker": marker})
	}
	p.SelectedMarker = marker
	for _, other := range g.players {
		if other.SelectedMarker == "" {
			return nil
		}
	}
	for _, other := range g.players {
		g.commit(action.CreateStartingLegion{
			Header:        g.header(other.Name),
			Marker:        other.SelectedMarker,
			CreatureNames: g.tables.StartingCreatures(),
		})
	}
	return nil
}

func (g *Game) foldJoin(a action.JoinGame) {
	g.players = append(g.players, newPlayer(a.Player, g.joined))
	g.joined++
}

func (g *Game) foldLeave(a action.LeaveGame) {
	g.players = slices.DeleteFunc(g.players, func(p *Player) bool { return p.Name == a.Player })
}

func (g *Game) foldAssignedAllTowers() {
	sort.SliceStable(g.players, func(i, j int) bool { return g.players[i].Tower > g.players[j].Tower })
	g.started = true
	g.turn = 1
	g.phase = phase.Split
	if len(g.players) > 0 {
		g.active = g.players[0].Name
	}
}

func (g *Game) foldCreateStartingLegion(p *Player, a action.CreateStartingLegion) {
	l := &Legion{Marker: a.Marker, Owner: p.Name, Hex: p.Tower, tables: g.tables}
	for _, name := range a.CreatureNames {
		g.caretaker.TakeOne(name)
		l.Creatures = append(l.Creatures, newCreature(g.tables, name, a.Marker))
	}
	p.takeMarker(a.Marker)
	p.addLegion(l)
	p.SelectedMarker = ""
}
