package game

import "github.com/louisbranch/legions/internal/services/game/domain/phase"

// Snapshot is a copy of the visible game state for clients and AIs. It
// shares nothing with the Game it was taken from.
type Snapshot struct {
	Name        string             `json:"name"`
	Started     bool               `json:"started"`
	Over        bool               `json:"over"`
	Winners     []string           `json:"winners,omitempty"`
	Turn        int                `json:"turn"`
	Phase       phase.Master       `json:"phase"`
	Active      string             `json:"active"`
	Owner       string             `json:"owner"`
	Engagement  int                `json:"engagement,omitempty"`
	Players     []PlayerSnapshot   `json:"players"`
	Battle      *BattleSnapshot    `json:"battle,omitempty"`
	Caretaker   map[string]int     `json:"caretaker"`
	Graveyard   map[string]int     `json:"graveyard"`
	Engagements []int              `json:"engagements,omitempty"`
	Proposals   []ProposalSnapshot `json:"proposals,omitempty"`
}

type PlayerSnapshot struct {
	Name             string           `json:"name"`
	Tower            int              `json:"tower"`
	Color            string           `json:"color,omitempty"`
	Score            int              `json:"score"`
	MovementRoll     int              `json:"movement_roll,omitempty"`
	MulligansLeft    int              `json:"mulligans_left"`
	Dead             bool             `json:"dead,omitempty"`
	Paused           bool             `json:"paused,omitempty"`
	MarkersLeft      []string         `json:"markers_left"`
	EliminatedColors []string         `json:"eliminated_colors,omitempty"`
	Legions          []LegionSnapshot `json:"legions"`
}

type LegionSnapshot struct {
	Marker            string             `json:"marker"`
	Hex               int                `json:"hex"`
	Moved             bool               `json:"moved,omitempty"`
	Recruited         bool               `json:"recruited,omitempty"`
	AngelsPending     int                `json:"angels_pending,omitempty"`
	ArchangelsPending int                `json:"archangels_pending,omitempty"`
	Creatures         []CreatureSnapshot `json:"creatures"`
}

type CreatureSnapshot struct {
	Name   string `json:"name"`
	Hex    string `json:"hex,omitempty"`
	Hits   int    `json:"hits,omitempty"`
	Power  int    `json:"power"`
	Moved  bool   `json:"moved,omitempty"`
	Struck bool   `json:"struck,omitempty"`
}

// BattleSnapshot is the battle view plus the pending carry targets.
type BattleSnapshot struct {
	Battle
	CarryTargets []string `json:"carry_targets,omitempty"`
}

type ProposalSnapshot struct {
	Proposer  string   `json:"proposer"`
	Attacker  []string `json:"attacker"`
	Defender  []string `json:"defender"`
	Recipient string   `json:"recipient"`
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Name:        g.Name,
		Started:     g.started,
		Over:        g.over,
		Winners:     g.Winners(),
		Turn:        g.turn,
		Phase:       g.phase,
		Active:      g.active,
		Owner:       g.Owner(),
		Engagement:  g.engagement,
		Caretaker:   g.caretaker.Counts(),
		Graveyard:   g.caretaker.Graveyard(),
		Engagements: g.Engagements(),
	}
	for _, p := range g.players {
		ps := PlayerSnapshot{
			Name:             p.Name,
			Tower:            p.Tower,
			Color:            p.Color,
			Score:            p.Score,
			MovementRoll:     p.MovementRoll,
			MulligansLeft:    p.MulligansLeft,
			Dead:             p.Dead,
			Paused:           p.Paused,
			MarkersLeft:      p.MarkersLeft(),
			EliminatedColors: append([]string(nil), p.EliminatedColors...),
		}
		for _, l := range p.Legions() {
			ls := LegionSnapshot{
				Marker:            l.Marker,
				Hex:               l.Hex,
				Moved:             l.Moved,
				Recruited:         l.Recruited,
				AngelsPending:     l.AngelsPending,
				ArchangelsPending: l.ArchangelsPending,
			}
			for _, c := range l.Creatures {
				ls.Creatures = append(ls.Creatures, CreatureSnapshot{
					Name:   c.Name,
					Hex:    c.Hex,
					Hits:   c.Hits,
					Power:  c.Power(),
					Moved:  c.Moved,
					Struck: c.Struck,
				})
			}
			ps.Legions = append(ps.Legions, ls)
		}
		s.Players = append(s.Players, ps)
	}
	if b, ok := g.Battle(); ok {
		bs := &BattleSnapshot{Battle: b}
		for _, c := range g.CarryTargets() {
			bs.CarryTargets = append(bs.CarryTargets, c.Hex)
		}
		s.Battle = bs
	}
	for _, p := range g.players {
		prop, ok := g.proposals[p.Name]
		if !ok {
			continue
		}
		s.Proposals = append(s.Proposals, ProposalSnapshot{
			Proposer:  prop.Player,
			Attacker:  append([]string(nil), prop.AttackerCreatureNames...),
			Defender:  append([]string(nil), prop.DefenderCreatureNames...),
			Recipient: prop.OtherPlayer,
		})
	}
	return s
}
