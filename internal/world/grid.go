// Package world owns the terrain grid, resources, structures, construction
// sites, the tribe stockpile, and grid pathfinding.
package world

import (
	"math/rand"

	"hearthstead/internal/tuning"
)

// CitizenID identifies a citizen. Declared here so the grid can track cell
// occupancy without importing the citizen package.
type CitizenID uint64

// Terrain enumerates cell terrain types.
type Terrain uint8

const (
	TerrainGrass Terrain = iota
	TerrainForest
	TerrainDesert
	TerrainMountain
	TerrainWater // inland lake
	TerrainRiver
	TerrainOcean
	TerrainBeach
	TerrainTundra
	TerrainSnow
	TerrainSwamp
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	names := [...]string{
		"Grass", "Forest", "Desert", "Mountain", "Water",
		"River", "Ocean", "Beach", "Tundra", "Snow", "Swamp",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// Walkable reports whether citizens can stand on the terrain.
// River is walkable but costs extra fatigue (see FatigueCost).
func Walkable(t Terrain) bool {
	switch t {
	case TerrainOcean, TerrainMountain, TerrainSnow, TerrainWater:
		return false
	}
	return true
}

// FatigueCost returns the fatigue multiplier for stepping onto a terrain.
func FatigueCost(t Terrain) float64 {
	switch t {
	case TerrainRiver:
		return 1.5
	case TerrainSwamp:
		return 1.3
	case TerrainDesert:
		return 1.2
	}
	return 1.0
}

// Fertile reports whether the terrain supports crops and moisture drift.
func Fertile(t Terrain) bool {
	switch t {
	case TerrainGrass, TerrainForest, TerrainRiver, TerrainSwamp:
		return true
	}
	return false
}

// ResourceType enumerates gatherable resources.
type ResourceType uint8

const (
	ResourceFood ResourceType = iota
	ResourceStone
	ResourceWood
	ResourceWater // spring
)

// ResourceName returns a human-readable name for a resource type.
func ResourceName(r ResourceType) string {
	names := [...]string{"Food", "Stone", "Wood", "Water"}
	if int(r) < len(names) {
		return names[r]
	}
	return "Unknown"
}

// ResourceNode is a harvestable deposit on a cell.
type ResourceNode struct {
	Type      ResourceType `json:"type"`
	Amount    float64      `json:"amount"`
	Renewable bool         `json:"renewable"`
	Richness  float64      `json:"richness"` // yield multiplier
}

// PriorityMark is a player-assigned cell designation steering AI choices.
type PriorityMark uint8

const (
	PriorityNone PriorityMark = iota
	PriorityExplore
	PriorityDefend
	PriorityFarm
	PriorityMine
	PriorityGather
)

// FarmTask is the work sub-state of a farmed cell.
type FarmTask uint8

const (
	FarmNone FarmTask = iota
	FarmSow
	FarmFertilize
	FarmHarvest
)

// Cell is one grid square.
type Cell struct {
	X, Y      int
	Terrain   Terrain
	Elevation float64
	Fertility float64
	Moisture  float64

	Resource  *ResourceNode
	Structure *Structure
	SiteID    string // construction site anchor, "" when none

	Occupants []CitizenID

	Priority     PriorityMark
	CropProgress float64
	CropStage    int
	FarmTask     FarmTask
}

// Climate is the prevailing weather state fed into the environment tick.
type Climate uint8

const (
	ClimateClear Climate = iota
	ClimateRain
	ClimateDrought
)

// Grid is the world engine: terrain, resources, structures, sites, stockpile.
type Grid struct {
	Size  int
	Cells []Cell // row-major, Size*Size

	Stockpile  *Stockpile
	Structures []*Structure
	Sites      map[string]*ConstructionSite

	VillageX, VillageY int

	cfg tuning.World
	eco tuning.Economy
	rng *rand.Rand

	// Pathfinding cache; terrainGen bumps on any terrain or structure change
	// and invalidates all cached paths.
	pathCache  map[pathKey][]Step
	terrainGen uint64
}

// At returns the cell at (x, y), or nil when out of bounds.
func (g *Grid) At(x, y int) *Cell {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.Cells[y*g.Size+x]
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Size && y < g.Size
}

// WalkableAt reports whether a citizen can stand on (x, y).
func (g *Grid) WalkableAt(x, y int) bool {
	c := g.At(x, y)
	return c != nil && Walkable(c.Terrain)
}

// EnterCell records a citizen on a cell's occupant list.
func (g *Grid) EnterCell(id CitizenID, x, y int) {
	if c := g.At(x, y); c != nil {
		c.Occupants = append(c.Occupants, id)
	}
}

// LeaveCell removes a citizen from a cell's occupant list.
func (g *Grid) LeaveCell(id CitizenID, x, y int) {
	c := g.At(x, y)
	if c == nil {
		return
	}
	for i, o := range c.Occupants {
		if o == id {
			c.Occupants = append(c.Occupants[:i], c.Occupants[i+1:]...)
			return
		}
	}
}

// MoveOccupant moves a citizen between cells, preserving the invariant that
// an id appears in exactly one occupant list. Fails if the target cell is
// not walkable.
func (g *Grid) MoveOccupant(id CitizenID, fromX, fromY, toX, toY int) bool {
	if !g.WalkableAt(toX, toY) {
		return false
	}
	g.LeaveCell(id, fromX, fromY)
	g.EnterCell(id, toX, toY)
	return true
}

// Result reports the outcome of a fallible world operation.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// SetPriorityAt stamps a priority mark on a cell. A farm mark on fertile
// open terrain assigns a sow task so farmers pick the plot up.
func (g *Grid) SetPriorityAt(x, y int, mark PriorityMark) {
	c := g.At(x, y)
	if c == nil {
		return
	}
	c.Priority = mark
	if mark == PriorityFarm && (c.Terrain == TerrainGrass || c.Terrain == TerrainForest) {
		if c.FarmTask == FarmNone && c.CropStage == 0 {
			c.FarmTask = FarmSow
		}
	}
}

// ClearPriorityAt removes a priority mark from a cell.
func (g *Grid) ClearPriorityAt(x, y int) Result {
	c := g.At(x, y)
	if c == nil {
		return Result{Reason: "out of bounds"}
	}
	if c.Priority == PriorityNone {
		return Result{Reason: "no mark"}
	}
	c.Priority = PriorityNone
	if c.FarmTask == FarmSow && c.CropStage == 0 {
		c.FarmTask = FarmNone
	}
	return Result{OK: true}
}

// NodeCeiling returns the clamp ceiling for a resource node type.
func (g *Grid) NodeCeiling(t ResourceType) float64 {
	switch t {
	case ResourceFood:
		return float64(g.eco.FoodNodeCeiling)
	case ResourceStone:
		return float64(g.eco.StoneNodeCeiling)
	case ResourceWood:
		return float64(g.eco.WoodNodeCeiling)
	}
	return float64(g.eco.WaterCapacity)
}

// HarvestAt draws up to want units from the cell's resource node, clearing
// exhausted non-renewable nodes and drawing down crop progress when the cell
// is farmed. Returns the amount actually harvested.
func (g *Grid) HarvestAt(x, y int, want float64) float64 {
	c := g.At(x, y)
	if c == nil || c.Resource == nil {
		return 0
	}
	n := c.Resource
	got := want * n.Richness
	if got > n.Amount {
		got = n.Amount
	}
	n.Amount -= got
	// Harvesting a farmed food cell draws down the crop, not just the node.
	if n.Type == ResourceFood && c.CropStage > 0 {
		c.CropProgress -= got / g.NodeCeiling(ResourceFood)
		if c.CropProgress < 0 {
			c.CropProgress = 0
		}
	}
	if n.Amount <= 0 {
		n.Amount = 0
		if !n.Renewable {
			c.Resource = nil
		}
	}
	return got
}

// neighbor8 is the Moore neighborhood in scan order.
var neighbor8 = [8][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}
