package engine

import (
	"math/rand"

	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// BehaviorDirector picks one action per citizen per tick. Selection runs in
// three layers: urgent physiological overrides, then goal behaviors, then the
// role's default behavior. Every collaborator is injected; the director holds
// no package-level state.
type BehaviorDirector struct {
	grid   *world.Grid
	repo   *citizen.Repository
	gather *GatherEngine
	tasks  *CellTaskManager

	needs  tuning.Needs
	combat tuning.Combat
	gcfg   tuning.Gather

	rng *rand.Rand
}

// NewBehaviorDirector wires a director.
func NewBehaviorDirector(g *world.Grid, repo *citizen.Repository, gather *GatherEngine, tasks *CellTaskManager, cfg tuning.Tuning, seed int64) *BehaviorDirector {
	return &BehaviorDirector{
		grid:   g,
		repo:   repo,
		gather: gather,
		tasks:  tasks,
		needs:  cfg.Needs,
		combat: cfg.Combat,
		gcfg:   cfg.Gather,
		rng:    rand.New(rand.NewSource(seed + 700)),
	}
}

// Decide returns the citizen's action for this tick.
func (d *BehaviorDirector) Decide(c *citizen.Citizen, tick uint64) Decision {
	if dec, ok := d.urgent(c); ok {
		return dec
	}
	if dec, ok := d.goalBehavior(c, tick); ok {
		return dec
	}
	return d.roleBehavior(c, tick)
}

// threatViewRange is how far a citizen notices hostiles.
const threatViewRange = 6

// urgent handles overrides that preempt everything: fleeing from hostiles,
// rest hysteresis, and fetching food when hungry with an empty pack.
func (d *BehaviorDirector) urgent(c *citizen.Citizen) (Decision, bool) {
	// Hostiles in view rout non-combatants whatever their health; warriors
	// stand their ground unless badly hurt.
	if c.TribeID >= 0 && d.nearestEnemy(c, threatViewRange) != nil {
		if c.Role != citizen.RoleWarrior || c.Needs.Health < d.combat.FleeHealth {
			return Decision{
				Action: Action{Kind: ActionMove, TargetX: d.grid.VillageX, TargetY: d.grid.VillageY},
				Source: "urgent",
			}, true
		}
	}

	// Rest hysteresis: once resting, keep resting until fatigue drops well
	// below the start threshold so the state doesn't flicker.
	if c.Resting {
		if c.Needs.Fatigue > d.needs.RestStopFatigue {
			return Decision{Action: Action{Kind: ActionRest}, Source: "urgent"}, true
		}
		c.Resting = false
	} else if c.Needs.Fatigue >= d.needs.RestStartFatigue {
		c.Resting = true
		return Decision{Action: Action{Kind: ActionRest}, Source: "urgent"}, true
	}

	// Hungry with nothing carried: walk to storage and take a ration. The
	// needs simulator eats from carry on its own once food is in hand.
	if c.Needs.Hunger > d.needs.EatThreshold && c.Carrying.Food == 0 &&
		d.grid.Stockpile.Amount(world.ResourceFood) > 0 {
		return Decision{Action: Action{Kind: ActionRefillFood}, Source: "urgent"}, true
	}

	return Decision{}, false
}

// roleBehavior is the per-role default work loop.
func (d *BehaviorDirector) roleBehavior(c *citizen.Citizen, tick uint64) Decision {
	switch c.Role {
	case citizen.RoleWarrior:
		return d.warriorBehavior(c)
	case citizen.RoleFarmer:
		return d.farmerBehavior(c, tick)
	case citizen.RoleScout:
		return d.scoutBehavior(c)
	case citizen.RoleChild:
		return d.wanderNear(c, d.grid.VillageX, d.grid.VillageY, 4, "role:child")
	case citizen.RoleElder:
		return d.elderBehavior(c)
	default:
		return d.workerBehavior(c, tick)
	}
}

func (d *BehaviorDirector) warriorBehavior(c *citizen.Citizen) Decision {
	if enemy := d.nearestEnemy(c, 14); enemy != nil {
		if chebyshevDist(c.X, c.Y, enemy.X, enemy.Y) <= 1 {
			return Decision{Action: Action{Kind: ActionAttack, TargetID: enemy.ID, TargetX: enemy.X, TargetY: enemy.Y}, Source: "role:warrior"}
		}
		return Decision{Action: Action{Kind: ActionMove, TargetX: enemy.X, TargetY: enemy.Y}, Source: "role:warrior"}
	}
	// No threat: hold the nearest defend mark, else patrol the village.
	if cell := d.nearestMark(c, world.PriorityDefend); cell != nil {
		return d.wanderNear(c, cell.X, cell.Y, 2, "role:warrior")
	}
	return d.wanderNear(c, d.grid.VillageX, d.grid.VillageY, 3, "role:warrior")
}

func (d *BehaviorDirector) farmerBehavior(c *citizen.Citizen, tick uint64) Decision {
	// Ripe plots first, then tending, then sowing new ground.
	order := []TaskType{TaskHarvest, TaskFertilize, TaskSow}
	if cell, t, ok := d.tasks.PickTaskByPriority(order, c.X, c.Y, c.ID, tick, d.gcfg.SpreadSpacing); ok {
		return Decision{
			Action: Action{Kind: ActionTendCrops, TargetX: cell.X, TargetY: cell.Y, FarmTask: t},
			Source: "role:farmer",
		}
	}
	if dec, ok := d.tryMate(c, "role:farmer"); ok {
		return dec
	}
	return Decision{Action: Action{Kind: ActionGather, Resource: world.ResourceFood}, Source: "role:farmer"}
}

func (d *BehaviorDirector) workerBehavior(c *citizen.Citizen, tick uint64) Decision {
	// Construction comes first: deliver carried materials or apply labor at
	// the neediest site, fetching materials when the site lacks them.
	if site := d.neediestSite(c); site != nil {
		carriesNeeded := (site.StoneDeficit() > 0 && c.Carrying.Stone > 0) ||
			(site.WoodDeficit() > 0 && c.Carrying.Wood > 0)
		if carriesNeeded || site.MaterialsMet() {
			return Decision{
				Action: Action{Kind: ActionConstruct, TargetX: site.X, TargetY: site.Y, SiteID: site.ID},
				Source: "role:worker",
			}
		}
		if site.StoneDeficit() > 0 && d.gather.ShouldHarvestStone(c) {
			return Decision{Action: Action{Kind: ActionGather, Resource: world.ResourceStone}, Source: "role:worker"}
		}
		if site.WoodDeficit() > 0 && d.gather.ShouldHarvestWood(c) {
			return Decision{Action: Action{Kind: ActionGather, Resource: world.ResourceWood}, Source: "role:worker"}
		}
	}
	if d.gather.ShouldHarvestWood(c) {
		return Decision{Action: Action{Kind: ActionGather, Resource: world.ResourceWood}, Source: "role:worker"}
	}
	if d.gather.ShouldHarvestStone(c) {
		return Decision{Action: Action{Kind: ActionGather, Resource: world.ResourceStone}, Source: "role:worker"}
	}
	if dec, ok := d.tryMate(c, "role:worker"); ok {
		return dec
	}
	return Decision{Action: Action{Kind: ActionGather, Resource: world.ResourceFood}, Source: "role:worker"}
}

func (d *BehaviorDirector) scoutBehavior(c *citizen.Citizen) Decision {
	if cell := d.nearestMark(c, world.PriorityExplore); cell != nil {
		if c.X == cell.X && c.Y == cell.Y {
			// Arrived: the mark is spent.
			d.grid.ClearPriorityAt(cell.X, cell.Y)
			return Decision{Action: Action{Kind: ActionIdle}, Source: "role:scout"}
		}
		return Decision{Action: Action{Kind: ActionMove, TargetX: cell.X, TargetY: cell.Y}, Source: "role:scout"}
	}
	// No marks: range outward at random.
	tx := d.rng.Intn(d.grid.Size)
	ty := d.rng.Intn(d.grid.Size)
	if d.grid.WalkableAt(tx, ty) {
		return Decision{Action: Action{Kind: ActionMove, TargetX: tx, TargetY: ty}, Source: "role:scout"}
	}
	return Decision{Action: Action{Kind: ActionIdle}, Source: "role:scout"}
}

func (d *BehaviorDirector) elderBehavior(c *citizen.Citizen) Decision {
	if t := d.grid.NearestStructure(c.X, c.Y, func(s *world.Structure) bool { return s.Type == world.StructureTemple }); t != nil {
		return d.wanderNear(c, t.X, t.Y, 1, "role:elder")
	}
	return d.wanderNear(c, d.grid.VillageX, d.grid.VillageY, 2, "role:elder")
}

// tryMate gates reproduction: adult, healthy, content, an adult partner of
// the same tribe adjacent, and the stockpile able to cover the food cost.
func (d *BehaviorDirector) tryMate(c *citizen.Citizen, source string) (Decision, bool) {
	if c.Age < d.needs.AdultAge || c.Needs.Morale < 50 || c.Needs.Hunger > 50 {
		return Decision{}, false
	}
	if d.grid.Stockpile.Amount(world.ResourceFood) < d.combat.MateFoodCost*3 {
		return Decision{}, false
	}
	if d.rng.Float64() > 0.02 {
		return Decision{}, false
	}
	for _, other := range d.repo.Citizens() {
		if other.ID == c.ID || !other.Alive() || other.TribeID != c.TribeID {
			continue
		}
		if other.Age < d.needs.AdultAge || other.Role == citizen.RoleElder {
			continue
		}
		if chebyshevDist(c.X, c.Y, other.X, other.Y) <= 1 {
			return Decision{Action: Action{Kind: ActionMate, TargetID: other.ID}, Source: source}, true
		}
	}
	return Decision{}, false
}

// wanderNear keeps a citizen loitering within radius of an anchor.
func (d *BehaviorDirector) wanderNear(c *citizen.Citizen, ax, ay, radius int, source string) Decision {
	if chebyshevDist(c.X, c.Y, ax, ay) > radius {
		return Decision{Action: Action{Kind: ActionMove, TargetX: ax, TargetY: ay}, Source: source}
	}
	if d.rng.Float64() < 0.3 {
		tx := ax + d.rng.Intn(2*radius+1) - radius
		ty := ay + d.rng.Intn(2*radius+1) - radius
		if d.grid.WalkableAt(tx, ty) {
			return Decision{Action: Action{Kind: ActionMove, TargetX: tx, TargetY: ty}, Source: source}
		}
	}
	return Decision{Action: Action{Kind: ActionIdle}, Source: source}
}

// nearestEnemy returns the closest living citizen of a different tribe within
// range, or nil.
func (d *BehaviorDirector) nearestEnemy(c *citizen.Citizen, within int) *citizen.Citizen {
	var best *citizen.Citizen
	bestD := within + 1
	for _, other := range d.repo.Citizens() {
		if !other.Alive() || other.TribeID == c.TribeID {
			continue
		}
		dist := chebyshevDist(c.X, c.Y, other.X, other.Y)
		if dist < bestD {
			bestD = dist
			best = other
		}
	}
	return best
}

func (d *BehaviorDirector) nearestMark(c *citizen.Citizen, mark world.PriorityMark) *world.Cell {
	var best *world.Cell
	bestD := 1 << 30
	for i := range d.grid.Cells {
		cell := &d.grid.Cells[i]
		if cell.Priority != mark {
			continue
		}
		dist := manhattan(c.X, c.Y, cell.X, cell.Y)
		if dist < bestD {
			bestD = dist
			best = cell
		}
	}
	return best
}

// neediestSite prefers sites whose materials are met (labor finishes them),
// then the closest site still short on materials.
func (d *BehaviorDirector) neediestSite(c *citizen.Citizen) *world.ConstructionSite {
	var ready, short *world.ConstructionSite
	readyD, shortD := 1<<30, 1<<30
	for _, site := range d.grid.Sites {
		dist := chebyshevDist(c.X, c.Y, site.X, site.Y)
		if site.MaterialsMet() {
			if dist < readyD {
				readyD = dist
				ready = site
			}
		} else if dist < shortD {
			shortD = dist
			short = site
		}
	}
	if ready != nil {
		return ready
	}
	return short
}
