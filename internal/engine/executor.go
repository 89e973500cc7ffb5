package engine

import (
	"fmt"

	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// ActionExecutor applies decided actions to the world. It owns every side
// effect of a citizen's turn so behaviors stay pure decision code.
type ActionExecutor struct {
	grid   *world.Grid
	repo   *citizen.Repository
	nav    *Navigator
	gather *GatherEngine
	tasks  *CellTaskManager
	emit   *Emitter

	combat tuning.Combat
	needs  tuning.Needs
	gcfg   tuning.Gather
}

// NewActionExecutor wires an executor.
func NewActionExecutor(g *world.Grid, repo *citizen.Repository, nav *Navigator, gather *GatherEngine, tasks *CellTaskManager, emit *Emitter, cfg tuning.Tuning) *ActionExecutor {
	return &ActionExecutor{
		grid:   g,
		repo:   repo,
		nav:    nav,
		gather: gather,
		tasks:  tasks,
		emit:   emit,
		combat: cfg.Combat,
		needs:  cfg.Needs,
		gcfg:   cfg.Gather,
	}
}

// Apply executes one citizen's decision for this tick.
func (e *ActionExecutor) Apply(c *citizen.Citizen, dec Decision, tick uint64) {
	c.RecordAction(tick, dec.signature())

	switch dec.Action.Kind {
	case ActionIdle:
		c.ActiveTask = false
	case ActionMove:
		e.nav.MoveTowards(c, dec.Action.TargetX, dec.Action.TargetY, "")
	case ActionGather:
		e.gather.Begin(c, dec.Action.Resource)
		e.gather.Tick(c, tick)
	case ActionStoreResources:
		e.storeResources(c)
	case ActionRefillFood:
		e.refillFood(c)
	case ActionRest:
		e.rest(c)
	case ActionAttack:
		e.attack(c, dec.Action.TargetID)
	case ActionMate:
		e.mate(c, dec.Action.TargetID)
	case ActionTendCrops:
		e.tendCrops(c, dec.Action)
	case ActionConstruct:
		e.construct(c, dec.Action.SiteID)
	}
}

func (e *ActionExecutor) storeResources(c *citizen.Citizen) {
	st := e.grid.NearestStructure(c.X, c.Y, (*world.Structure).Storage)
	if st == nil {
		return
	}
	if chebyshevDist(c.X, c.Y, st.X, st.Y) > 1 {
		e.nav.MoveTowards(c, st.X, st.Y, "structure:"+world.StructureName(st.Type))
		return
	}
	e.gather.DepositCarry(c)
	c.ActiveTask = false
}

// refillFood walks to storage and takes a few rations into carry; the needs
// simulator eats from carry on its own.
func (e *ActionExecutor) refillFood(c *citizen.Citizen) {
	st := e.grid.NearestStructure(c.X, c.Y, (*world.Structure).Storage)
	if st == nil {
		return
	}
	if chebyshevDist(c.X, c.Y, st.X, st.Y) > 1 {
		e.nav.MoveTowards(c, st.X, st.Y, "structure:"+world.StructureName(st.Type))
		return
	}
	got := e.grid.Stockpile.Consume(world.ResourceFood, 3)
	if got > 0 {
		c.Carrying.Food += got
	}
}

// rest recovers fatigue, fast under a roof and slowly in the open; a little
// morale comes back with it.
func (e *ActionExecutor) rest(c *citizen.Citizen) {
	rate := 1.0
	shelter := e.grid.NearestStructure(c.X, c.Y, (*world.Structure).RestCapable)
	if shelter != nil {
		if chebyshevDist(c.X, c.Y, shelter.X, shelter.Y) > 1 {
			e.nav.MoveTowards(c, shelter.X, shelter.Y, "structure:"+world.StructureName(shelter.Type))
		} else {
			rate = 3.0
		}
	}
	c.Needs.Fatigue -= rate
	if c.Needs.Fatigue < 0 {
		c.Needs.Fatigue = 0
	}
	c.Needs.Morale += 0.3
	if c.Needs.Morale > 100 {
		c.Needs.Morale = 100
	}
}

// attack strikes an adjacent target: role base damage minus the target's
// damage resistance, never less than one. Kills are finalized immediately,
// and a cross-tribe kill by the settlement credits power to the player.
func (e *ActionExecutor) attack(c *citizen.Citizen, targetID citizen.ID) {
	target := e.repo.Get(targetID)
	if target == nil || !target.Alive() || target.TribeID == c.TribeID {
		return
	}
	if chebyshevDist(c.X, c.Y, target.X, target.Y) > 1 {
		e.nav.MoveTowards(c, target.X, target.Y, "")
		return
	}

	dmg := e.baseDamage(c) - target.DamageResist
	if dmg < 1 {
		dmg = 1
	}
	target.Needs.Health -= dmg

	e.emit.Visual(VisualEvent{
		Kind:     "projectile",
		FromX:    c.X,
		FromY:    c.Y,
		ToX:      target.X,
		ToY:      target.Y,
		SourceID: c.ID,
	})

	if target.Needs.Health <= 0 {
		e.repo.FinalizeDeath(e.grid, target, "slain by "+c.Name)
		e.nav.Forget(target.ID)
		e.tasks.ReleaseAll(target.ID)
		c.Needs.Morale += 5
		e.emit.Log(fmt.Sprintf("%s slew %s", c.Name, target.Name), "combat")
		if c.TribeID == 0 {
			e.emit.PowerGain(e.combat.KillPowerGain)
		}
	}
}

func (e *ActionExecutor) baseDamage(c *citizen.Citizen) float64 {
	if c.Goal == citizen.GoalBeast {
		return e.combat.BeastDamage
	}
	if c.Role == citizen.RoleWarrior {
		return e.combat.WarriorDamage
	}
	return e.combat.WorkerDamage
}

// mate produces a child next to the parents when the stockpile can cover the
// food cost in full; a partial draw is refunded.
func (e *ActionExecutor) mate(c *citizen.Citizen, partnerID citizen.ID) {
	partner := e.repo.Get(partnerID)
	if partner == nil || !partner.Alive() || chebyshevDist(c.X, c.Y, partner.X, partner.Y) > 1 {
		return
	}
	got := e.grid.Stockpile.Consume(world.ResourceFood, e.combat.MateFoodCost)
	if got < e.combat.MateFoodCost {
		e.grid.Stockpile.Deposit(world.ResourceFood, got)
		return
	}
	x, y := e.openNeighbor(c.X, c.Y)
	child := e.repo.SpawnChild(e.grid, x, y, c.TribeID)
	e.emit.Log(fmt.Sprintf("%s was born to %s and %s", child.Name, c.Name, partner.Name), "birth")
}

func (e *ActionExecutor) openNeighbor(x, y int) (int, int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if cell := e.grid.At(x+dx, y+dy); cell != nil && world.Walkable(cell.Terrain) && len(cell.Occupants) == 0 {
				return x + dx, y + dy
			}
		}
	}
	return x, y
}

// tendCrops walks to the claimed plot and advances its farm cycle one step:
// sow plants, fertilize matures, harvest yields food scaled by fertility and
// resets the plot.
func (e *ActionExecutor) tendCrops(c *citizen.Citizen, a Action) {
	cell := e.grid.At(a.TargetX, a.TargetY)
	if cell == nil {
		e.tasks.Release(a.TargetX, a.TargetY, c.ID)
		c.ActiveTask = false
		return
	}
	if chebyshevDist(c.X, c.Y, cell.X, cell.Y) > 1 {
		c.ActiveTask = true
		e.nav.MoveTowards(c, cell.X, cell.Y, "")
		return
	}

	switch a.FarmTask {
	case TaskSow:
		if cell.FarmTask == world.FarmSow {
			cell.CropStage = 1
			cell.CropProgress = 0
			cell.FarmTask = world.FarmFertilize
		}
	case TaskFertilize:
		if cell.FarmTask == world.FarmFertilize && cell.CropStage >= 1 {
			cell.CropStage = 2
			cell.CropProgress += 0.2
			cell.FarmTask = world.FarmHarvest
		}
	case TaskHarvest:
		if cell.FarmTask == world.FarmHarvest && cell.CropStage >= 2 {
			yield := 1 + int(cell.Fertility*4)
			kept := c.Carrying.Add(world.ResourceFood, yield, e.gcfg.CarryCap)
			if kept < yield {
				e.grid.Stockpile.Deposit(world.ResourceFood, yield-kept)
			}
			cell.CropStage = 0
			cell.CropProgress = 0
			if cell.Priority == world.PriorityFarm {
				cell.FarmTask = world.FarmSow
			} else {
				cell.FarmTask = world.FarmNone
			}
			e.emit.Log(fmt.Sprintf("%s harvested %d food", c.Name, yield), "")
		}
	}
	e.tasks.Release(cell.X, cell.Y, c.ID)
	c.ActiveTask = false
}

// construct walks to the site, delivers any carried materials its deficits
// call for, then applies labor once materials are met. Labor never applies to
// an unsupplied site.
func (e *ActionExecutor) construct(c *citizen.Citizen, siteID string) {
	site, ok := e.grid.Sites[siteID]
	if !ok {
		c.ActiveTask = false
		return
	}
	if chebyshevDist(c.X, c.Y, site.X, site.Y) > 1 {
		c.ActiveTask = true
		e.nav.MoveTowards(c, site.X, site.Y, "site:"+siteID)
		return
	}

	if d := site.StoneDeficit(); d > 0 {
		site.DeliveredStone += c.Carrying.Take(world.ResourceStone, d)
	}
	if d := site.WoodDeficit(); d > 0 {
		site.DeliveredWood += c.Carrying.Take(world.ResourceWood, d)
	}
	if !site.MaterialsMet() {
		return
	}

	site.Labor++
	c.Needs.Fatigue += 0.5
	if site.Labor >= site.RequiredLabor {
		st := e.grid.CompleteSite(site)
		c.ActiveTask = false
		e.emit.Log(fmt.Sprintf("%s completed at (%d,%d)", world.StructureName(st.Type), st.X, st.Y), "construction")
	}
}
