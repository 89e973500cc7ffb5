package engine

import (
	"hearthstead/internal/citizen"
	"hearthstead/internal/world"
)

// goalBehavior dispatches on the citizen's goal tag. Goals override the role
// default but yield to urgent overrides.
func (d *BehaviorDirector) goalBehavior(c *citizen.Citizen, tick uint64) (Decision, bool) {
	switch c.Goal {
	case citizen.GoalRaid:
		return d.raidGoal(c), true
	case citizen.GoalSettle:
		return d.settleGoal(c), true
	case citizen.GoalBeast:
		return d.beastGoal(c), true
	case citizen.GoalWorship:
		return d.worshipGoal(c), true
	case citizen.GoalPassive:
		return d.passiveGoal(c), true
	case citizen.GoalResting:
		return Decision{Action: Action{Kind: ActionRest}, Source: "goal:resting"}, true
	}
	return Decision{}, false
}

// raidGoal drives a hostile toward the village, striking anyone of another
// tribe along the way.
func (d *BehaviorDirector) raidGoal(c *citizen.Citizen) Decision {
	if enemy := d.nearestEnemy(c, 10); enemy != nil {
		if chebyshevDist(c.X, c.Y, enemy.X, enemy.Y) <= 1 {
			return Decision{Action: Action{Kind: ActionAttack, TargetID: enemy.ID, TargetX: enemy.X, TargetY: enemy.Y}, Source: "goal:raid"}
		}
		return Decision{Action: Action{Kind: ActionMove, TargetX: enemy.X, TargetY: enemy.Y}, Source: "goal:raid"}
	}
	return Decision{Action: Action{Kind: ActionMove, TargetX: d.grid.VillageX, TargetY: d.grid.VillageY}, Source: "goal:raid"}
}

// settleGoal walks a migrant to the village; arrival clears the goal and the
// citizen falls into its role behavior next tick.
func (d *BehaviorDirector) settleGoal(c *citizen.Citizen) Decision {
	if chebyshevDist(c.X, c.Y, d.grid.VillageX, d.grid.VillageY) <= 3 {
		c.Goal = citizen.GoalNone
		return Decision{Action: Action{Kind: ActionIdle}, Source: "goal:settle"}
	}
	return Decision{Action: Action{Kind: ActionMove, TargetX: d.grid.VillageX, TargetY: d.grid.VillageY}, Source: "goal:settle"}
}

// beastGoal hunts the nearest citizen of any other tribe; beasts never
// settle or work.
func (d *BehaviorDirector) beastGoal(c *citizen.Citizen) Decision {
	if prey := d.nearestEnemy(c, d.grid.Size); prey != nil {
		if chebyshevDist(c.X, c.Y, prey.X, prey.Y) <= 1 {
			return Decision{Action: Action{Kind: ActionAttack, TargetID: prey.ID, TargetX: prey.X, TargetY: prey.Y}, Source: "goal:beast"}
		}
		return Decision{Action: Action{Kind: ActionMove, TargetX: prey.X, TargetY: prey.Y}, Source: "goal:beast"}
	}
	return d.wanderNear(c, c.X, c.Y, 3, "goal:beast")
}

// worshipGoal sends the citizen to the temple (or village center without
// one); lingering there restores morale through the rest action.
func (d *BehaviorDirector) worshipGoal(c *citizen.Citizen) Decision {
	ax, ay := d.grid.VillageX, d.grid.VillageY
	if t := d.grid.NearestStructure(c.X, c.Y, func(s *world.Structure) bool { return s.Type == world.StructureTemple }); t != nil {
		ax, ay = t.X, t.Y
	}
	if chebyshevDist(c.X, c.Y, ax, ay) <= 1 {
		return Decision{Action: Action{Kind: ActionRest}, Source: "goal:worship"}
	}
	return Decision{Action: Action{Kind: ActionMove, TargetX: ax, TargetY: ay}, Source: "goal:worship"}
}

// passiveGoal: the citizen mopes near home and does no work. Cleared by the
// needs simulator once morale recovers.
func (d *BehaviorDirector) passiveGoal(c *citizen.Citizen) Decision {
	return d.wanderNear(c, d.grid.VillageX, d.grid.VillageY, 5, "goal:passive")
}
