package citizen

import (
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// NeedsSimulator advances per-tick physiology: aging, hunger, fatigue,
// morale, eating, starvation and exhaustion damage, and elder frailty.
type NeedsSimulator struct {
	cfg tuning.Needs
}

// NewNeedsSimulator creates a simulator with the given tuning.
func NewNeedsSimulator(cfg tuning.Needs) *NeedsSimulator {
	return &NeedsSimulator{cfg: cfg}
}

// Tick advances one citizen by tickHours of simulated time and reports
// whether health dropped to or below zero. Death finalization is the
// caller's job so it runs through the single repository routine.
func (s *NeedsSimulator) Tick(c *Citizen, g *world.Grid, tickHours float64) (died bool) {
	if !c.Alive() {
		return false
	}

	// One in-game day is roughly one citizen year.
	c.Age += tickHours / s.cfg.HoursPerYear

	// Hunger climbs faster on harsh terrain.
	terrainRate := 1.0
	if cell := g.At(c.X, c.Y); cell != nil {
		terrainRate = world.FatigueCost(cell.Terrain)
	}
	c.Needs.Hunger += s.cfg.HungerPerTick * terrainRate
	c.Needs.Fatigue += s.cfg.FatiguePerTick
	c.Needs.Morale -= s.cfg.MoraleDecay

	clampNeed(&c.Needs.Hunger)
	clampNeed(&c.Needs.Fatigue)
	clampNeed(&c.Needs.Morale)

	// Eat before damage thresholds apply: personal carry first, then the
	// tribe stockpile.
	if c.Needs.Hunger > s.cfg.EatThreshold {
		s.tryEat(c, g)
	}

	// Starvation and exhaustion are incremental, not instant: fixed damage
	// on a fixed period while over the threshold.
	c.needTickCounter++
	if c.needTickCounter%s.cfg.DamagePeriod == 0 {
		if c.Needs.Hunger > s.cfg.HungerDamageAt {
			c.Needs.Health -= s.cfg.NeedDamage
		}
		if c.Needs.Fatigue > s.cfg.FatigueDamageAt {
			c.Needs.Health -= s.cfg.NeedDamage
		}
	}
	// Elder frailty runs on its own period, independent of need damage.
	if c.Age > s.cfg.ElderAge && c.needTickCounter%s.cfg.ElderDamagePeriod == 0 {
		c.Needs.Health -= s.cfg.ElderDamage
	}

	// Low morale slips the citizen into a passive funk; it lifts only once
	// morale recovers well past the trigger, so the goal doesn't flicker.
	if c.Needs.Morale < s.cfg.MoraleLow && c.Goal == GoalNone {
		c.Goal = GoalPassive
	} else if c.Goal == GoalPassive && c.Needs.Morale > s.cfg.MoraleRecovered {
		c.Goal = GoalNone
	}

	return c.Needs.Health <= 0
}

// tryEat consumes one food unit from carry, falling back to the stockpile.
func (s *NeedsSimulator) tryEat(c *Citizen, g *world.Grid) bool {
	if c.Carrying.Take(world.ResourceFood, 1) == 1 {
		c.eat()
		return true
	}
	if g.Stockpile.Consume(world.ResourceFood, 1) == 1 {
		c.eat()
		return true
	}
	return false
}

func (c *Citizen) eat() {
	c.Needs.Hunger -= 30
	if c.Needs.Hunger < 0 {
		c.Needs.Hunger = 0
	}
	c.Needs.Morale += 2
	clampNeed(&c.Needs.Morale)
}

func clampNeed(v *float64) {
	if *v < -50 {
		*v = -50
	} else if *v > 100 {
		*v = 100
	}
}
