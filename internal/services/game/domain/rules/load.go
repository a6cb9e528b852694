package rules

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const dataRoot = "data"

var (
	// ErrInvalidTables marks rule data that fails validation.
	ErrInvalidTables = errors.New("invalid rule tables")

	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Source is the decoded, unvalidated form of the rule data. Tests build
// small custom boards by editing a Source before calling Build.
type Source struct {
	Creatures         []CreatureType
	Recruits          map[string][]Ladder
	MarkersPerColor   int
	Colors            []Color
	StartingCreatures []string
	Hexes             []HexSource
	BattleRadius      int
	BattleMaps        map[string]BattleMapSource
}

// HexSource describes one masterboard hex.
type HexSource struct {
	Label     int    `yaml:"label"`
	Terrain   string `yaml:"terrain"`
	Inverted  bool   `yaml:"inverted"`
	Exits     []Gate `yaml:"exits"`
	Neighbors []int  `yaml:"neighbors"`
}

// BattleMapSource lists the non-default hexes of one battle map.
type BattleMapSource struct {
	Startlist []string                   `yaml:"startlist"`
	Hexes     map[string]BattleHexSource `yaml:"hexes"`
}

// BattleHexSource describes one battle hex; omitted hexes are level Plains.
type BattleHexSource struct {
	Terrain   string         `yaml:"terrain"`
	Elevation int            `yaml:"elevation"`
	Borders   map[int]string `yaml:"borders"`
}

type creatureFile struct {
	Creatures []CreatureType `yaml:"creatures"`
}

type recruitFile struct {
	Recruits map[string][]Ladder `yaml:"recruits"`
}

type playerFile struct {
	MarkersPerColor   int      `yaml:"markers_per_color"`
	Colors            []Color  `yaml:"colors"`
	StartingCreatures []string `yaml:"starting_creatures"`
}

type boardFile struct {
	Hexes []HexSource `yaml:"hexes"`
}

type battleFile struct {
	Radius int                        `yaml:"radius"`
	Maps   map[string]BattleMapSource `yaml:"maps"`
}

// Default returns the tables built from the embedded rule data. The result
// is built once per process.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Load(embedded)
	})
	return defaultTables, defaultErr
}

// MustDefault is Default for callers that cannot recover from broken
// embedded data, such as tests and process start.
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultSource decodes the embedded rule data without building it.
func DefaultSource() (Source, error) {
	return ReadSource(embedded)
}

// Load reads rule data from fsys, which must hold a data/ directory with the
// same files as the embedded set, and builds validated tables.
func Load(fsys fs.FS) (*Tables, error) {
	src, err := ReadSource(fsys)
	if err != nil {
		return nil, err
	}
	return Build(src)
}

// ReadSource decodes the rule files under data/ in fsys.
func ReadSource(fsys fs.FS) (Source, error) {
	var (
		creatures creatureFile
		recruits  recruitFile
		players   playerFile
		board     boardFile
		battles   battleFile
	)
	files := []struct {
		name string
		out  any
	}{
		{"creatures.yaml", &creatures},
		{"recruits.yaml", &recruits},
		{"players.yaml", &players},
		{"masterboard.yaml", &board},
		{"battlemaps.yaml", &battles},
	}
	for _, f := range files {
		if err := decodeFile(fsys, f.name, f.out); err != nil {
			return Source{}, err
		}
	}
	return Source{
		Creatures:         creatures.Creatures,
		Recruits:          recruits.Recruits,
		MarkersPerColor:   players.MarkersPerColor,
		Colors:            players.Colors,
		StartingCreatures: players.StartingCreatures,
		Hexes:             board.Hexes,
		BattleRadius:      battles.Radius,
		BattleMaps:        battles.Maps,
	}, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, dataRoot+"/"+name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Build validates a Source and derives the immutable tables.
func Build(src Source) (*Tables, error) {
	t := &Tables{
		creatures:         make(map[string]CreatureType, len(src.Creatures)),
		recruits:          make(map[string][]Ladder, len(src.Recruits)),
		battleMaps:        make(map[battleKey]*BattleMap),
		colors:            append([]Color(nil), src.Colors...),
		markersPerColor:   src.MarkersPerColor,
		startingCreatures: append([]string(nil), src.StartingCreatures...),
	}
	for _, c := range src.Creatures {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: creature with empty name", ErrInvalidTables)
		}
		if _, dup := t.creatures[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate creature %q", ErrInvalidTables, c.Name)
		}
		if c.Power <= 0 || c.Skill <= 0 || c.MaxCount <= 0 {
			return nil, fmt.Errorf("%w: creature %q needs positive power, skill and max_count", ErrInvalidTables, c.Name)
		}
		switch c.Character {
		case Lord, DemiLord, Ordinary:
		default:
			return nil, fmt.Errorf("%w: creature %q has character %q", ErrInvalidTables, c.Name, c.Character)
		}
		t.creatures[c.Name] = c
		t.creatureOrder = append(t.creatureOrder, c.Name)
	}
	if _, ok := t.creatures[Titan]; !ok {
		return nil, fmt.Errorf("%w: roster has no %s", ErrInvalidTables, Titan)
	}

	for terrain, ladders := range src.Recruits {
		for _, ladder := range ladders {
			for _, entry := range ladder {
				if entry.Name == Anything || entry.Name == AnyCreature {
					continue
				}
				if _, ok := t.creatures[entry.Name]; !ok {
					return nil, fmt.Errorf("%w: %s recruits unknown creature %q", ErrInvalidTables, terrain, entry.Name)
				}
			}
			t.recruits[terrain] = append(t.recruits[terrain], append(Ladder(nil), ladder...))
		}
	}

	if len(t.colors) == 0 || t.markersPerColor <= 0 {
		return nil, fmt.Errorf("%w: players need colors and markers", ErrInvalidTables)
	}
	for _, name := range t.startingCreatures {
		if _, ok := t.creatures[name]; !ok {
			return nil, fmt.Errorf("%w: unknown starting creature %q", ErrInvalidTables, name)
		}
	}

	board, err := newMasterBoard(src.Hexes)
	if err != nil {
		return nil, err
	}
	t.board = board

	for terrain, ms := range src.BattleMaps {
		for _, side := range attackerEntrySides {
			m, err := newBattleMap(terrain, src.BattleRadius, ms, side)
			if err != nil {
				return nil, err
			}
			t.battleMaps[battleKey{terrain: terrain, entrySide: side}] = m
		}
	}
	for _, label := range board.Labels() {
		hex, _ := board.Hex(label)
		if _, ok := src.BattleMaps[hex.Terrain]; !ok {
			return nil, fmt.Errorf("%w: no battle map for terrain %q", ErrInvalidTables, hex.Terrain)
		}
	}

	t.buildNativity()
	return t, nil
}
