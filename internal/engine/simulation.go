package engine

import (
	"log/slog"
	"sync"
	"time"

	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// Simulation composes the whole engine: world grid, citizen repository,
// clock, climate, and the per-tick citizen pipeline. All mutation goes
// through Advance while holding the simulation lock; API readers take the
// same lock for consistent snapshots.
type Simulation struct {
	mu sync.Mutex

	Grid    *world.Grid
	Repo    *citizen.Repository
	Clock   *Clock
	Emitter *Emitter
	System  *CitizenSystem
	Climate *ClimateEngine

	Seed int64

	// Power is the player's accrued resource from cross-tribe kills and
	// other credited events, spendable by the wallet surface.
	Power int

	Extinct bool

	tick uint64
}

// initialBand is the founding population rolled at world creation.
var initialBand = []citizen.Role{
	citizen.RoleWorker, citizen.RoleWorker, citizen.RoleWorker,
	citizen.RoleFarmer, citizen.RoleFarmer,
	citizen.RoleWarrior,
	citizen.RoleScout,
	citizen.RoleChild,
}

// NewSimulation builds a world from seed and settles the founding band
// around the village.
func NewSimulation(seed int64, cfg tuning.Tuning) *Simulation {
	grid := world.NewGrid(seed, cfg.World, cfg.Economy)
	repo := citizen.NewRepository(seed)
	emit := &Emitter{}

	nav := NewNavigator(grid, cfg.Gather)
	tasks := NewCellTaskManager(grid)
	gather := NewGatherEngine(grid, nav, tasks, cfg.Gather, emit)
	system := NewCitizenSystem(grid, repo, nav, gather, tasks, emit, cfg, seed)
	climate := NewClimateEngine(grid, repo, emit, seed)

	s := &Simulation{
		Grid:    grid,
		Repo:    repo,
		Clock:   NewClock(cfg.Clock),
		Emitter: emit,
		System:  system,
		Climate: climate,
		Seed:    seed,
	}
	system.OnExtinction = func() { s.Extinct = true }

	s.settleFounders()

	// A starting larder so the first winter is survivable.
	grid.Stockpile.Deposit(world.ResourceFood, 60)
	grid.Stockpile.Deposit(world.ResourceWood, 20)
	grid.Stockpile.Deposit(world.ResourceStone, 10)

	slog.Info("simulation created",
		"seed", seed,
		"size", grid.Size,
		"founders", len(initialBand),
		"village_x", grid.VillageX,
		"village_y", grid.VillageY,
	)
	return s
}

// settleFounders spawns the founding band on walkable cells spiraling out
// from the village center.
func (s *Simulation) settleFounders() {
	placed := 0
	for radius := 1; radius <= 6 && placed < len(initialBand); radius++ {
		for dy := -radius; dy <= radius && placed < len(initialBand); dy++ {
			for dx := -radius; dx <= radius && placed < len(initialBand); dx++ {
				x, y := s.Grid.VillageX+dx, s.Grid.VillageY+dy
				if !s.Grid.WalkableAt(x, y) {
					continue
				}
				if cell := s.Grid.At(x, y); cell != nil && len(cell.Occupants) > 0 {
					continue
				}
				s.Repo.Spawn(s.Grid, x, y, 0, initialBand[placed])
				placed++
			}
		}
	}
}

// Advance folds real elapsed time into whole simulation ticks and returns
// the events those ticks produced. Power-gain events accrue into the player
// balance as they drain.
func (s *Simulation) Advance(elapsed time.Duration) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticks := s.Clock.Advance(elapsed)
	for i := 0; i < ticks; i++ {
		s.tickOnce()
	}
	if ticks == 0 {
		return nil
	}

	events := s.Emitter.Drain()
	for _, e := range events {
		if e.Kind == EventPowerGain {
			s.Power += e.Amount
		}
	}
	return events
}

func (s *Simulation) tickOnce() {
	s.tick++
	s.Emitter.SetTick(s.tick)
	s.Climate.Tick(s.tick)
	s.Grid.EnvironmentTick(s.Climate.Current())
	s.System.Tick(s.tick, s.Clock.TickHours())
}

// Tick returns the current tick number, taking the lock.
func (s *Simulation) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// CurrentTick returns the tick number without locking; callers must already
// hold the simulation lock.
func (s *Simulation) CurrentTick() uint64 {
	return s.tick
}

// ConsumeVisualEvents drains the one-shot renderer queue.
func (s *Simulation) ConsumeVisualEvents() []VisualEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Emitter.DrainVisual()
}

// SpendPower deducts from the player balance, refusing overdrafts.
func (s *Simulation) SpendPower(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 || amount > s.Power {
		return false
	}
	s.Power -= amount
	return true
}

// Lock takes the simulation lock for a multi-read snapshot; callers must
// Unlock.
func (s *Simulation) Lock() { s.mu.Lock() }

// Unlock releases the simulation lock.
func (s *Simulation) Unlock() { s.mu.Unlock() }
