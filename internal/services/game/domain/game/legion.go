package game

import (
	"slices"
	"strings"

	"github.com/louisbranch/legions/internal/services/game/domain/bag"
	"github.com/louisbranch/legions/internal/services/game/domain/caretaker"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
)

// MaxHeight is the most creatures a legion may hold after the opening split.
const MaxHeight = 7

// Legion is a stack of creatures under one marker.
type Legion struct {
	Marker    string
	Owner     string
	Hex       int
	Creatures []*Creature

	Moved           bool
	Recruited       bool
	Teleported      bool
	TeleportingLord string
	EntrySide       int
	PreviousHex     int

	AngelsPending     int
	ArchangelsPending int

	// recruiterNames holds the recruiters of each recruit, for undo.
	recruiterNames [][]string
	tables         *rules.Tables
}

// Recruit is one way to muster a creature: the recruit and the creatures
// that must be revealed for it.
type Recruit struct {
	Name       string
	Recruiters []string
}

func (r Recruit) tuple() []string {
	return append([]string{r.Name}, r.Recruiters...)
}

// Height returns the number of living creatures.
func (l *Legion) Height() int {
	n := 0
	for _, c := range l.Creatures {
		if !c.Dead() {
			n++
		}
	}
	return n
}

// Dead reports whether the legion is eliminated: its Titan died or nothing
// in it is alive.
func (l *Legion) Dead() bool {
	alive := false
	for _, c := range l.Creatures {
		if c.Dead() {
			if c.Name == rules.Titan {
				return true
			}
			continue
		}
		alive = true
	}
	return !alive
}

// CreatureNames returns every creature name, dead ones included.
func (l *Legion) CreatureNames() []string {
	return creatureNames(l.Creatures)
}

// LivingNames returns the names of the living creatures.
func (l *Legion) LivingNames() []string {
	var out []string
	for _, c := range l.Creatures {
		if !c.Dead() {
			out = append(out, c.Name)
		}
	}
	return out
}

// NumLords counts the lords in the legion.
func (l *Legion) NumLords() int {
	n := 0
	for _, c := range l.Creatures {
		if c.IsLord() {
			n++
		}
	}
	return n
}

// HasTitan reports whether the legion carries its player's Titan.
func (l *Legion) HasTitan() bool {
	return l.find(rules.Titan, nil) != nil
}

// HasSummonable reports whether any living creature may be summoned.
func (l *Legion) HasSummonable() bool {
	return l.find("", func(c *Creature) bool { return c.kind.Summonable && !c.Dead() }) != nil
}

// Score is the point value of the whole legion.
func (l *Legion) Score() int {
	total := 0
	for _, c := range l.Creatures {
		total += c.Score()
	}
	return total
}

// LivingScore is the point value of the living creatures.
func (l *Legion) LivingScore() int {
	total := 0
	for _, c := range l.Creatures {
		if !c.Dead() {
			total += c.Score()
		}
	}
	return total
}

// CanFlee reports whether the legion may flee an engagement.
func (l *Legion) CanFlee() bool {
	return l.NumLords() == 0
}

// CanBeSplit reports whether the legion is tall enough to split this turn.
func (l *Legion) CanBeSplit(turn int) bool {
	if turn == 1 {
		return len(l.Creatures) == 8
	}
	return len(l.Creatures) >= 4
}

// IsLegalSplit reports whether the legion's creatures can be divided into
// child1 and child2.
func (l *Legion) IsLegalSplit(child1, child2 []string) bool {
	height := len(l.Creatures)
	if height < 4 || height != len(child1)+len(child2) {
		return false
	}
	if len(child1) < 2 || len(child2) < 2 {
		return false
	}
	if !bag.New(l.CreatureNames()...).Equal(bag.New(child1...).Union(bag.New(child2...))) {
		return false
	}
	if height == 8 {
		if len(child1) != 4 || len(child2) != 4 {
			return false
		}
		if l.countLords(child1) != 1 || l.countLords(child2) != 1 {
			return false
		}
	}
	return true
}

func (l *Legion) countLords(names []string) int {
	n := 0
	for _, name := range names {
		if l.tables.MustCreature(name).IsLord() {
			n++
		}
	}
	return n
}

// AvailableRecruitsAndRecruiters lists every way the legion could muster in
// a hex of terrain, best recruit first.
//
// Each ladder of the terrain's recruit table allows three productions: a
// basic recruit after ANYTHING, a guardian after CREATURE paid with enough
// creatures of one ordinary type, and ordinary recruiting up the ladder (with
// enough of the creature below) or at and below any creature held.
func (l *Legion) AvailableRecruitsAndRecruiters(terrain string, ct *caretaker.Caretaker) []Recruit {
	counts := bag.New(l.LivingNames()...)
	var out []Recruit
	seen := make(map[string]bool)
	add := func(name string, recruiters ...string) {
		r := Recruit{Name: name, Recruiters: recruiters}
		key := strings.Join(r.tuple(), ",")
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, r)
	}
	inStock := func(e rules.RecruitEntry) bool {
		return e.Count > 0 && ct.NumLeft(e.Name) > 0
	}

	for _, ladder := range l.tables.Recruits(terrain) {
		for i, entry := range ladder {
			prev := ""
			if i > 0 {
				prev = ladder[i-1].Name
			}
			if prev == rules.Anything {
				for _, e := range ladder[:i+1] {
					if inStock(e) {
						add(e.Name)
					}
				}
				continue
			}
			if prev == rules.AnyCreature && l.maxOrdinaryOfOneType(counts) >= entry.Count {
				var recruiters []string
				for _, name := range counts.Keys() {
					if counts.Count(name) >= entry.Count && l.tables.MustCreature(name).Character == rules.Ordinary {
						recruiters = append(recruiters, name)
					}
				}
				for _, e := range ladder[:i+1] {
					if !inStock(e) {
						continue
					}
					for _, r := range recruiters {
						add(e.Name, repeat(r, entry.Count)...)
					}
				}
			}
			if prev != "" && entry.Count > 0 && counts.Count(prev) >= entry.Count && ct.NumLeft(entry.Name) > 0 {
				add(entry.Name, repeat(prev, entry.Count)...)
			}
			if entry.Count > 0 && counts.Count(entry.Name) > 0 {
				for _, e := range ladder[:i+1] {
					if inStock(e) {
						add(e.Name, entry.Name)
					}
				}
			}
		}
	}

	slices.SortStableFunc(out, func(a, b Recruit) int {
		return l.compareTuples(a.tuple(), b.tuple())
	})
	return out
}

// AvailableRecruits returns the distinct creatures the legion could muster
// in terrain, best first.
func (l *Legion) AvailableRecruits(terrain string, ct *caretaker.Caretaker) []string {
	var out []string
	for _, r := range l.AvailableRecruitsAndRecruiters(terrain, ct) {
		if !slices.Contains(out, r.Name) {
			out = append(out, r.Name)
		}
	}
	return out
}

// compareTuples orders recruit tuples by descending sort value, element by
// element; a shorter tuple sorts first when it is a prefix of the other.
func (l *Legion) compareTuples(a, b []string) int {
	for i := 0; ; i++ {
		switch {
		case i >= len(a) && i >= len(b):
			return 0
		case i >= len(a):
			return -1
		case i >= len(b):
			return 1
		}
		if a[i] == b[i] {
			continue
		}
		va := l.tables.MustCreature(a[i]).SortValue()
		vb := l.tables.MustCreature(b[i]).SortValue()
		if va > vb {
			return -1
		}
		if va < vb {
			return 1
		}
	}
}

func (l *Legion) maxOrdinaryOfOneType(counts *bag.Bag) int {
	most := 0
	for _, name := range counts.Keys() {
		if n := counts.Count(name); n > most && l.tables.MustCreature(name).Character == rules.Ordinary {
			most = n
		}
	}
	return most
}

// find returns the first creature named name (any name when empty) that
// also satisfies match, if given.
func (l *Legion) find(name string, match func(*Creature) bool) *Creature {
	for _, c := range l.Creatures {
		if name != "" && c.Name != name {
			continue
		}
		if match == nil || match(c) {
			return c
		}
	}
	return nil
}

// removeLast removes the last creature named name.
func (l *Legion) removeLast(name string) *Creature {
	for i := len(l.Creatures) - 1; i >= 0; i-- {
		if c := l.Creatures[i]; c.Name == name {
			l.Creatures = append(l.Creatures[:i], l.Creatures[i+1:]...)
			return c
		}
	}
	return nil
}

func (l *Legion) add(c *Creature) {
	if l.Height() >= MaxHeight {
		panic("game: legion " + l.Marker + " would exceed height 7")
	}
	c.Marker = l.Marker
	l.Creatures = append(l.Creatures, c)
}

func (l *Legion) resetTurn() {
	l.Moved = false
	l.Recruited = false
	l.Teleported = false
	l.TeleportingLord = ""
	l.EntrySide = 0
	l.PreviousHex = 0
	l.recruiterNames = nil
}

func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}
