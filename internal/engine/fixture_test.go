package engine

import (
	"testing"

	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// fixture wires the engine collaborators over a blank grid so scenarios can
// place terrain, nodes, and citizens exactly.
type fixture struct {
	cfg    tuning.Tuning
	grid   *world.Grid
	repo   *citizen.Repository
	emit   *Emitter
	nav    *Navigator
	tasks  *CellTaskManager
	gather *GatherEngine
}

func newFixture(size int) *fixture {
	cfg := tuning.Default()
	g := world.NewBlankGrid(size, cfg.World, cfg.Economy)
	repo := citizen.NewRepository(1)
	emit := &Emitter{}
	nav := NewNavigator(g, cfg.Gather)
	tasks := NewCellTaskManager(g)
	return &fixture{
		cfg:    cfg,
		grid:   g,
		repo:   repo,
		emit:   emit,
		nav:    nav,
		tasks:  tasks,
		gather: NewGatherEngine(g, nav, tasks, cfg.Gather, emit),
	}
}

func (f *fixture) system() *CitizenSystem {
	return NewCitizenSystem(f.grid, f.repo, f.nav, f.gather, f.tasks, f.emit, f.cfg, 1)
}

func (f *fixture) executor() *ActionExecutor {
	return NewActionExecutor(f.grid, f.repo, f.nav, f.gather, f.tasks, f.emit, f.cfg)
}

func (f *fixture) director() *BehaviorDirector {
	return NewBehaviorDirector(f.grid, f.repo, f.gather, f.tasks, f.cfg, 1)
}

// addStorage completes a granary at (x, y) so deposit runs have a target.
func (f *fixture) addStorage(t *testing.T, x, y int) *world.Structure {
	t.Helper()
	res := f.grid.PlanConstruction(world.StructureGranary, x, y)
	if !res.OK {
		t.Fatalf("granary plan failed: %s", res.Reason)
	}
	site := res.Site
	site.DeliveredStone = site.RequiredStone
	site.DeliveredWood = site.RequiredWood
	site.Labor = site.RequiredLabor
	return f.grid.CompleteSite(site)
}

// addNode places a resource node on a cell.
func (f *fixture) addNode(x, y int, rt world.ResourceType, amount float64, renewable bool) {
	f.grid.At(x, y).Resource = &world.ResourceNode{
		Type: rt, Amount: amount, Renewable: renewable, Richness: 1,
	}
}
