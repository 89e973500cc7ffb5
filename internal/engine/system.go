package engine

import (
	"fmt"
	"log/slog"

	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// CitizenSystem runs the per-tick citizen loop: needs, decision, execution,
// age promotions, deferred role changes, and dead-citizen cleanup.
type CitizenSystem struct {
	grid     *world.Grid
	repo     *citizen.Repository
	needsSim *citizen.NeedsSimulator
	director *BehaviorDirector
	executor *ActionExecutor
	nav      *Navigator
	tasks    *CellTaskManager
	emit     *Emitter

	needs tuning.Needs

	// OnExtinction fires once when the player tribe has no living citizens.
	OnExtinction func()
	extinct      bool
}

// NewCitizenSystem wires the full citizen pipeline over shared collaborators.
func NewCitizenSystem(g *world.Grid, repo *citizen.Repository, nav *Navigator, gather *GatherEngine, tasks *CellTaskManager, emit *Emitter, cfg tuning.Tuning, seed int64) *CitizenSystem {
	director := NewBehaviorDirector(g, repo, gather, tasks, cfg, seed)
	executor := NewActionExecutor(g, repo, nav, gather, tasks, emit, cfg)
	return &CitizenSystem{
		grid:     g,
		repo:     repo,
		needsSim: citizen.NewNeedsSimulator(cfg.Needs),
		director: director,
		executor: executor,
		nav:      nav,
		tasks:    tasks,
		emit:     emit,
		needs:    cfg.Needs,
	}
}

// Tick advances every living citizen by one tick.
func (s *CitizenSystem) Tick(tick uint64, tickHours float64) {
	s.emit.SetTick(tick)

	for _, c := range s.repo.Citizens() {
		if !c.Alive() {
			continue
		}

		if s.needsSim.Tick(c, s.grid, tickHours) {
			s.finalize(c, deathCause(c))
			continue
		}

		s.promote(c)

		dec := s.director.Decide(c, tick)
		s.executor.Apply(c, dec, tick)

		// Deferred role changes land once the citizen is between tasks.
		if c.PendingRole != nil && !c.ActiveTask {
			s.assignRole(c, *c.PendingRole)
			c.PendingRole = nil
		}
	}

	if n := s.repo.PruneDead(); n > 0 {
		slog.Debug("pruned dead citizens", "count", n)
	}
	s.checkExtinction()
}

func (s *CitizenSystem) finalize(c *citizen.Citizen, cause string) {
	s.repo.FinalizeDeath(s.grid, c, cause)
	s.nav.Forget(c.ID)
	s.tasks.ReleaseAll(c.ID)
	s.emit.Log(fmt.Sprintf("%s died of %s", c.Name, cause), "death")
}

func deathCause(c *citizen.Citizen) string {
	switch {
	case c.Needs.Hunger > 80:
		return "starvation"
	case c.Needs.Fatigue > 80:
		return "exhaustion"
	default:
		return "old age"
	}
}

// promote handles age-driven role transitions: children come of age as
// workers, the old step back as elders. Mid-task citizens are deferred.
func (s *CitizenSystem) promote(c *citizen.Citizen) {
	switch {
	case c.Role == citizen.RoleChild && c.Age >= s.needs.AdultAge:
		s.deferOrAssign(c, citizen.RoleWorker)
		s.emit.Log(fmt.Sprintf("%s came of age", c.Name), "")
	case c.Role != citizen.RoleElder && c.Role != citizen.RoleChild && c.Age >= s.needs.ElderAge && c.TribeID >= 0:
		s.deferOrAssign(c, citizen.RoleElder)
	}
}

func (s *CitizenSystem) deferOrAssign(c *citizen.Citizen, r citizen.Role) {
	if c.ActiveTask {
		c.PendingRole = &r
		return
	}
	s.assignRole(c, r)
}

// assignRole swaps the role immediately, resetting the gather brain and any
// held reservations so the new behavior starts clean.
func (s *CitizenSystem) assignRole(c *citizen.Citizen, r citizen.Role) {
	if c.Role == r {
		return
	}
	c.Role = r
	c.Brain = citizen.Brain{}
	s.tasks.ReleaseAll(c.ID)
}

// assignable roles for rebalancing; children and elders keep their age roles.
var rebalanceRoles = []citizen.Role{
	citizen.RoleWorker, citizen.RoleFarmer, citizen.RoleWarrior, citizen.RoleScout,
}

// RebalanceRoles retargets the tribe's adult workforce toward the requested
// per-role counts. Negative targets clamp to zero; targets exceeding the pool
// scale down proportionally; citizens already in a wanted role keep it;
// everyone left over defaults to worker. Mid-task citizens pick their new
// role up via PendingRole once free.
func (s *CitizenSystem) RebalanceRoles(targets map[citizen.Role]int, tribeID int) {
	want := make(map[citizen.Role]int, len(rebalanceRoles))
	total := 0
	for _, r := range rebalanceRoles {
		n := targets[r]
		if n < 0 {
			n = 0
		}
		want[r] = n
		total += n
	}

	var pool []*citizen.Citizen
	for _, c := range s.repo.Citizens() {
		if c.Alive() && c.TribeID == tribeID &&
			c.Role != citizen.RoleChild && c.Role != citizen.RoleElder {
			pool = append(pool, c)
		}
	}

	// Proportional scale-down when the ask exceeds the workforce.
	if total > len(pool) && total > 0 {
		scaled := 0
		for _, r := range rebalanceRoles {
			want[r] = want[r] * len(pool) / total
			scaled += want[r]
		}
	}

	// First pass: citizens already in a wanted role keep it.
	assigned := make(map[citizen.ID]bool, len(pool))
	for _, c := range pool {
		if want[c.Role] > 0 {
			want[c.Role]--
			assigned[c.ID] = true
		}
	}

	// Second pass: fill remaining slots, everyone else defaults to worker.
	for _, c := range pool {
		if assigned[c.ID] {
			continue
		}
		newRole := citizen.RoleWorker
		for _, r := range rebalanceRoles {
			if want[r] > 0 {
				want[r]--
				newRole = r
				break
			}
		}
		s.deferOrAssign(c, newRole)
	}
}

func (s *CitizenSystem) checkExtinction() {
	if s.extinct || s.OnExtinction == nil {
		return
	}
	for _, c := range s.repo.Citizens() {
		if c.Alive() && c.TribeID == 0 {
			return
		}
	}
	s.extinct = true
	slog.Warn("settlement extinct")
	s.OnExtinction()
}
