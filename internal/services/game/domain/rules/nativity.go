package rules

import "sort"

// buildNativity derives which hazards each creature is native to: a creature
// recruitable in a masterboard terrain is native to every hazard on that
// terrain's battle map, except that only the Dragon is native to Volcano.
func (t *Tables) buildNativity() {
	t.nativity = make(map[string]map[string]bool)
	t.terrainCreatures = make(map[string][]string)

	terrains := make([]string, 0, len(t.recruits))
	for terrain := range t.recruits {
		terrains = append(terrains, terrain)
	}
	sort.Strings(terrains)

	for _, terrain := range terrains {
		seen := make(map[string]bool)
		for _, ladder := range t.recruits[terrain] {
			for _, entry := range ladder {
				if entry.Name == Anything || entry.Name == AnyCreature || entry.Count <= 0 {
					continue
				}
				if !seen[entry.Name] {
					seen[entry.Name] = true
					t.terrainCreatures[terrain] = append(t.terrainCreatures[terrain], entry.Name)
				}
			}
		}
		m, ok := t.battleMaps[battleKey{terrain: terrain, entrySide: attackerEntrySides[0]}]
		if !ok {
			continue
		}
		for _, creature := range t.terrainCreatures[terrain] {
			for _, hazard := range m.Hazards() {
				if hazard == TerrainVolcano && creature != Dragon {
					continue
				}
				if t.nativity[creature] == nil {
					t.nativity[creature] = make(map[string]bool)
				}
				t.nativity[creature][hazard] = true
			}
		}
	}
}
