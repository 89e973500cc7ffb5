package engine

import (
	"fmt"

	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// GatherEngine drives the per-citizen gathering state machine:
// idle -> goingToResource -> gathering -> goingToStorage -> idle.
// Targets are claimed through the task manager so two citizens never finish
// a tick believing they both own the same cell.
type GatherEngine struct {
	grid  *world.Grid
	nav   *Navigator
	tasks *CellTaskManager
	cfg   tuning.Gather
	emit  *Emitter
}

// NewGatherEngine wires a gather engine; dependencies are explicit, never
// package-level.
func NewGatherEngine(g *world.Grid, nav *Navigator, tasks *CellTaskManager, cfg tuning.Gather, emit *Emitter) *GatherEngine {
	return &GatherEngine{grid: g, nav: nav, tasks: tasks, cfg: cfg, emit: emit}
}

// Tick advances one citizen's brain by one tick for the resource type held
// in the brain state.
func (e *GatherEngine) Tick(c *citizen.Citizen, tick uint64) {
	switch c.Brain.Phase {
	case citizen.BrainIdle:
		e.tickIdle(c, tick)
	case citizen.BrainGoingToResource:
		e.tickGoingToResource(c, tick)
	case citizen.BrainGathering:
		e.tickGathering(c)
	case citizen.BrainGoingToStorage:
		e.tickGoingToStorage(c)
	}
}

// Begin points the brain at a resource type; no-op if already mid-cycle.
func (e *GatherEngine) Begin(c *citizen.Citizen, t world.ResourceType) {
	if c.Brain.Phase == citizen.BrainIdle {
		c.Brain.Resource = t
	}
}

func (e *GatherEngine) tickIdle(c *citizen.Citizen, tick uint64) {
	if c.Carrying.Total() > 0 {
		c.Brain.Phase = citizen.BrainGoingToStorage
		return
	}
	target := e.findResourceCell(c, c.Brain.Resource, tick)
	if target == nil {
		return // nothing visible this tick
	}
	c.Brain.Phase = citizen.BrainGoingToResource
	c.Brain.TargetX, c.Brain.TargetY = target.X, target.Y
	c.ActiveTask = true
}

func (e *GatherEngine) tickGoingToResource(c *citizen.Citizen, tick uint64) {
	cell := e.grid.At(c.Brain.TargetX, c.Brain.TargetY)
	contested := cell != nil && e.tasks.Owner(cell.X, cell.Y) != 0 && e.tasks.Owner(cell.X, cell.Y) != c.ID
	if cell == nil || cell.Resource == nil || cell.Resource.Amount <= 0 || contested {
		// Target vanished or someone else won it: redirect.
		e.abandonTarget(c)
		e.tickIdle(c, tick)
		return
	}
	e.tasks.Claim(cell.X, cell.Y, TaskGatherCell, c.ID, tick)
	e.nav.MoveTowards(c, cell.X, cell.Y, "")
	if chebyshevDist(c.X, c.Y, cell.X, cell.Y) <= 1 {
		c.Brain.Phase = citizen.BrainGathering
	}
}

func (e *GatherEngine) tickGathering(c *citizen.Citizen) {
	cell := e.grid.At(c.Brain.TargetX, c.Brain.TargetY)
	if cell == nil || cell.Resource == nil || cell.Resource.Amount <= 0 {
		// Anything drawn but not yet banked still counts.
		e.bankProgress(c, c.Brain.Resource, true)
		e.abandonTarget(c)
		c.Brain.Phase = citizen.BrainIdle
		return
	}
	t := cell.Resource.Type

	// One unit per tick; farmers pull food in a little faster. Richness
	// scales the draw, so lean nodes pay out in fractions across ticks.
	want := 1.0
	if t == world.ResourceFood && c.Role == citizen.RoleFarmer {
		want = e.cfg.FarmerBonus
	}
	c.Brain.Progress += e.grid.HarvestAt(cell.X, cell.Y, want)
	exhausted := cell.Resource == nil || cell.Resource.Amount <= 0
	e.bankProgress(c, t, exhausted)

	if c.Carrying.Amount(t) >= e.cfg.CarryCap {
		e.abandonTarget(c)
		c.Brain.Phase = citizen.BrainGoingToStorage
	} else if exhausted {
		e.abandonTarget(c)
		c.Brain.Phase = citizen.BrainIdle
	}
}

// bankProgress moves whole harvested units from the brain's progress into
// carry. A finished node's trailing fraction still yields a final unit.
func (e *GatherEngine) bankProgress(c *citizen.Citizen, t world.ResourceType, finished bool) {
	if finished && c.Brain.Progress > 0 && c.Brain.Progress < 1 {
		c.Brain.Progress = 1
	}
	if whole := int(c.Brain.Progress); whole > 0 {
		c.Brain.Progress -= float64(whole)
		c.Carrying.Add(t, whole, e.cfg.CarryCap)
	}
	if finished {
		c.Brain.Progress = 0
	}
}

func (e *GatherEngine) tickGoingToStorage(c *citizen.Citizen) {
	st := e.grid.NearestStructure(c.X, c.Y, (*world.Structure).Storage)
	if st == nil {
		return
	}
	key := "structure:" + world.StructureName(st.Type)
	e.nav.MoveTowards(c, st.X, st.Y, key)
	if chebyshevDist(c.X, c.Y, st.X, st.Y) <= 1 {
		e.DepositCarry(c)
		c.Brain.Phase = citizen.BrainIdle
		c.ActiveTask = false
	}
}

// DepositCarry empties the citizen's inventory into the stockpile, logging
// what the stockpile accepted.
func (e *GatherEngine) DepositCarry(c *citizen.Citizen) {
	food := e.grid.Stockpile.Deposit(world.ResourceFood, c.Carrying.Take(world.ResourceFood, c.Carrying.Food))
	stone := e.grid.Stockpile.Deposit(world.ResourceStone, c.Carrying.Take(world.ResourceStone, c.Carrying.Stone))
	wood := e.grid.Stockpile.Deposit(world.ResourceWood, c.Carrying.Take(world.ResourceWood, c.Carrying.Wood))
	if food+stone+wood > 0 && e.emit != nil {
		e.emit.Log(fmt.Sprintf("%s stored %d food, %d stone, %d wood", c.Name, food, stone, wood), "")
	}
}

func (e *GatherEngine) abandonTarget(c *citizen.Citizen) {
	e.tasks.Release(c.Brain.TargetX, c.Brain.TargetY, c.ID)
}

// findResourceCell scans for the closest eligible cell holding the wanted
// resource: unreserved, not occupied by another citizen, with matching
// priority marks breaking distance ties in their favor.
func (e *GatherEngine) findResourceCell(c *citizen.Citizen, t world.ResourceType, tick uint64) *world.Cell {
	var best *world.Cell
	bestCost := 1e18
	for i := range e.grid.Cells {
		cell := &e.grid.Cells[i]
		if cell.Resource == nil || cell.Resource.Type != t || cell.Resource.Amount <= 0 {
			continue
		}
		if owner := e.tasks.Owner(cell.X, cell.Y); owner != 0 && owner != c.ID {
			continue
		}
		if occupiedByOther(cell, c.ID) {
			continue
		}
		cost := float64(manhattan(c.X, c.Y, cell.X, cell.Y))
		if markMatches(cell.Priority, t) {
			cost -= 0.5 // marked cells win distance ties
		}
		if cost < bestCost {
			bestCost = cost
			best = cell
		}
	}
	if best != nil && !e.tasks.Claim(best.X, best.Y, TaskGatherCell, c.ID, tick) {
		return nil
	}
	return best
}

func occupiedByOther(cell *world.Cell, self citizen.ID) bool {
	for _, o := range cell.Occupants {
		if o != self {
			return true
		}
	}
	return false
}

func markMatches(p world.PriorityMark, t world.ResourceType) bool {
	switch p {
	case world.PriorityFarm:
		return t == world.ResourceFood
	case world.PriorityMine:
		return t == world.ResourceStone
	case world.PriorityGather:
		return t == world.ResourceWood || t == world.ResourceFood
	}
	return false
}

// ShouldHarvestWood gates a worker's choice to cut wood: carry room, a
// visible node, and either a gather mark, an unmet site deficit, or wood
// being the scarcer construction material.
func (e *GatherEngine) ShouldHarvestWood(c *citizen.Citizen) bool {
	return e.shouldHarvest(c, world.ResourceWood)
}

// ShouldHarvestStone mirrors ShouldHarvestWood for stone.
func (e *GatherEngine) ShouldHarvestStone(c *citizen.Citizen) bool {
	return e.shouldHarvest(c, world.ResourceStone)
}

func (e *GatherEngine) shouldHarvest(c *citizen.Citizen, t world.ResourceType) bool {
	if c.Carrying.Amount(t) >= e.cfg.CarryCap {
		return false
	}
	if !e.anyVisibleNode(t) {
		return false
	}
	// Site deficits trump everything.
	for _, site := range e.grid.Sites {
		if t == world.ResourceWood && site.WoodDeficit() > 0 {
			return true
		}
		if t == world.ResourceStone && site.StoneDeficit() > 0 {
			return true
		}
	}
	// Priority marks invite harvesting.
	if e.anyMark(t) {
		return true
	}
	// Otherwise prefer the scarcer of wood and stone.
	wood := e.grid.Stockpile.Amount(world.ResourceWood)
	stone := e.grid.Stockpile.Amount(world.ResourceStone)
	if t == world.ResourceWood {
		return wood <= stone
	}
	return stone < wood
}

func (e *GatherEngine) anyVisibleNode(t world.ResourceType) bool {
	for i := range e.grid.Cells {
		n := e.grid.Cells[i].Resource
		if n != nil && n.Type == t && n.Amount > 0 {
			return true
		}
	}
	return false
}

func (e *GatherEngine) anyMark(t world.ResourceType) bool {
	for i := range e.grid.Cells {
		if markMatches(e.grid.Cells[i].Priority, t) {
			return true
		}
	}
	return false
}

func chebyshevDist(x1, y1, x2, y2 int) int {
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
