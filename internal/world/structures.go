package world

import (
	"github.com/google/uuid"
)

// StructureType enumerates buildable structures.
type StructureType uint8

const (
	StructureVillage StructureType = iota
	StructureGranary
	StructureWarehouse
	StructureHut
	StructureTemple
	StructureFarmhouse
	StructureWall
	StructureWatchtower
)

// StructureName returns a human-readable name for a structure type.
func StructureName(t StructureType) string {
	names := [...]string{
		"Village", "Granary", "Warehouse", "Hut",
		"Temple", "Farmhouse", "Wall", "Watchtower",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// Structure is a completed building occupying one or more cells.
type Structure struct {
	Type StructureType `json:"type"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
}

// RestCapable reports whether citizens recover fatigue inside the structure.
func (s *Structure) RestCapable() bool {
	switch s.Type {
	case StructureVillage, StructureHut, StructureTemple, StructureFarmhouse:
		return true
	}
	return false
}

// Storage reports whether the structure accepts resource deposits.
func (s *Structure) Storage() bool {
	switch s.Type {
	case StructureVillage, StructureGranary, StructureWarehouse:
		return true
	}
	return false
}

// blueprint describes the build cost of a structure type.
type blueprint struct {
	stone, wood int
	labor       float64
	footprint   [][2]int // offsets from anchor
}

var blueprints = map[StructureType]blueprint{
	StructureGranary:    {stone: 10, wood: 15, labor: 30, footprint: [][2]int{{0, 0}}},
	StructureWarehouse:  {stone: 15, wood: 20, labor: 40, footprint: [][2]int{{0, 0}, {1, 0}}},
	StructureHut:        {stone: 2, wood: 8, labor: 15, footprint: [][2]int{{0, 0}}},
	StructureTemple:     {stone: 25, wood: 10, labor: 60, footprint: [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
	StructureFarmhouse:  {stone: 5, wood: 12, labor: 20, footprint: [][2]int{{0, 0}}},
	StructureWall:       {stone: 8, wood: 0, labor: 10, footprint: [][2]int{{0, 0}}},
	StructureWatchtower: {stone: 12, wood: 6, labor: 25, footprint: [][2]int{{0, 0}}},
}

// ConstructionSite is an in-progress structure with material and labor
// requirements tracked separately from the finished building.
type ConstructionSite struct {
	ID        string        `json:"id"`
	Type      StructureType `json:"type"`
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Footprint [][2]int      `json:"footprint"`

	RequiredStone  int     `json:"required_stone"`
	RequiredWood   int     `json:"required_wood"`
	DeliveredStone int     `json:"delivered_stone"`
	DeliveredWood  int     `json:"delivered_wood"`
	Labor          float64 `json:"labor"`
	RequiredLabor  float64 `json:"required_labor"`
}

// StoneDeficit returns how much stone the site still needs delivered.
func (s *ConstructionSite) StoneDeficit() int {
	d := s.RequiredStone - s.DeliveredStone
	if d < 0 {
		return 0
	}
	return d
}

// WoodDeficit returns how much wood the site still needs delivered.
func (s *ConstructionSite) WoodDeficit() int {
	d := s.RequiredWood - s.DeliveredWood
	if d < 0 {
		return 0
	}
	return d
}

// MaterialsMet reports whether labor can be applied.
func (s *ConstructionSite) MaterialsMet() bool {
	return s.StoneDeficit() == 0 && s.WoodDeficit() == 0
}

// PlanResult reports the outcome of PlanConstruction.
type PlanResult struct {
	OK     bool              `json:"ok"`
	Reason string            `json:"reason,omitempty"`
	Site   *ConstructionSite `json:"site,omitempty"`
}

// PlanConstruction opens a construction site anchored at (x, y).
func (g *Grid) PlanConstruction(t StructureType, x, y int) PlanResult {
	bp, ok := blueprints[t]
	if !ok {
		return PlanResult{Reason: "not buildable"}
	}
	for _, off := range bp.footprint {
		c := g.At(x+off[0], y+off[1])
		if c == nil || !Walkable(c.Terrain) {
			return PlanResult{Reason: "terrain not buildable"}
		}
		if c.Structure != nil || c.SiteID != "" {
			return PlanResult{Reason: "cell occupied"}
		}
	}
	site := &ConstructionSite{
		ID:            uuid.NewString(),
		Type:          t,
		X:             x,
		Y:             y,
		Footprint:     bp.footprint,
		RequiredStone: bp.stone,
		RequiredWood:  bp.wood,
		RequiredLabor: bp.labor,
	}
	for _, off := range bp.footprint {
		g.At(x+off[0], y+off[1]).SiteID = site.ID
	}
	g.Sites[site.ID] = site
	return PlanResult{OK: true, Site: site}
}

// CancelResult reports the outcome of CancelConstruction.
type CancelResult struct {
	OK            bool   `json:"ok"`
	Reason        string `json:"reason,omitempty"`
	StoneReturned int    `json:"stone_returned,omitempty"`
	WoodReturned  int    `json:"wood_returned,omitempty"`
}

// CancelConstruction removes a site, optionally reclaiming delivered
// materials into the stockpile.
func (g *Grid) CancelConstruction(siteID string, reclaim bool) CancelResult {
	site, ok := g.Sites[siteID]
	if !ok {
		return CancelResult{Reason: "no such site"}
	}
	res := CancelResult{OK: true}
	if reclaim {
		res.StoneReturned = g.Stockpile.Deposit(ResourceStone, site.DeliveredStone)
		res.WoodReturned = g.Stockpile.Deposit(ResourceWood, site.DeliveredWood)
	}
	for _, off := range site.Footprint {
		if c := g.At(site.X+off[0], site.Y+off[1]); c != nil && c.SiteID == siteID {
			c.SiteID = ""
		}
	}
	delete(g.Sites, siteID)
	return res
}

// CompleteSite converts a finished site into its structure and returns it.
// Callers must have verified MaterialsMet and Labor >= RequiredLabor.
func (g *Grid) CompleteSite(site *ConstructionSite) *Structure {
	st := &Structure{Type: site.Type, X: site.X, Y: site.Y}
	for _, off := range site.Footprint {
		if c := g.At(site.X+off[0], site.Y+off[1]); c != nil {
			c.SiteID = ""
			c.Structure = st
		}
	}
	g.Structures = append(g.Structures, st)
	delete(g.Sites, site.ID)
	if st.Type == StructureGranary {
		g.Stockpile.AddGranary(g.eco.GranaryFoodBonus)
	}
	g.invalidatePaths()
	return st
}

// placeStructure stamps a pre-built structure during world generation.
func (g *Grid) placeStructure(t StructureType, x, y int) *Structure {
	c := g.At(x, y)
	if c == nil || !Walkable(c.Terrain) {
		return nil
	}
	st := &Structure{Type: t, X: x, Y: y}
	c.Structure = st
	g.Structures = append(g.Structures, st)
	if t == StructureGranary {
		g.Stockpile.AddGranary(g.eco.GranaryFoodBonus)
	}
	return st
}

// NearestStructure returns the closest structure satisfying pred, by
// Chebyshev distance from (x, y).
func (g *Grid) NearestStructure(x, y int, pred func(*Structure) bool) *Structure {
	var best *Structure
	bestD := 1 << 30
	for _, st := range g.Structures {
		if !pred(st) {
			continue
		}
		d := chebyshev(x, y, st.X, st.Y)
		if d < bestD {
			bestD = d
			best = st
		}
	}
	return best
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
