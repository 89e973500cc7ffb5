package engine

import (
	"testing"

	"hearthstead/internal/citizen"
	"hearthstead/internal/world"
)

func TestConstructRequiresMaterialsBeforeLabor(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	res := f.grid.PlanConstruction(world.StructureHut, 10, 10)
	if !res.OK {
		t.Fatalf("plan failed: %s", res.Reason)
	}
	site := res.Site

	c := f.repo.Spawn(f.grid, 10, 11, 0, citizen.RoleWorker)
	dec := Decision{Action: Action{Kind: ActionConstruct, SiteID: site.ID}, Source: "role:worker"}

	// Empty-handed at an unsupplied site: no labor applies.
	ex.Apply(c, dec, 1)
	if site.Labor != 0 {
		t.Fatalf("labor %.0f applied to an unsupplied site", site.Labor)
	}

	// Deliver the materials, then labor starts.
	c.Carrying.Stone = site.RequiredStone
	c.Carrying.Wood = site.RequiredWood
	ex.Apply(c, dec, 2)
	if !site.MaterialsMet() {
		t.Fatal("carried materials not delivered")
	}
	if site.Labor != 1 {
		t.Fatalf("labor = %.0f after first supplied visit, want 1", site.Labor)
	}
	if c.Carrying.Total() != 0 {
		t.Errorf("citizen kept %d materials after delivery", c.Carrying.Total())
	}
}

func TestConstructCompletesStructure(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	res := f.grid.PlanConstruction(world.StructureHut, 10, 10)
	if !res.OK {
		t.Fatalf("plan failed: %s", res.Reason)
	}
	site := res.Site
	site.DeliveredStone = site.RequiredStone
	site.DeliveredWood = site.RequiredWood

	c := f.repo.Spawn(f.grid, 10, 11, 0, citizen.RoleWorker)
	dec := Decision{Action: Action{Kind: ActionConstruct, SiteID: site.ID}, Source: "role:worker"}

	for tick := uint64(1); tick <= uint64(site.RequiredLabor)+2; tick++ {
		ex.Apply(c, dec, tick)
		if _, open := f.grid.Sites[site.ID]; !open {
			break
		}
	}

	st := f.grid.At(10, 10).Structure
	if st == nil || st.Type != world.StructureHut {
		t.Fatal("hut never completed")
	}
	if _, open := f.grid.Sites[site.ID]; open {
		t.Error("site still registered after completion")
	}
	if c.ActiveTask {
		t.Error("builder still flagged mid-task")
	}
}

func TestTendCropsFullCycle(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	f.grid.SetPriorityAt(8, 8, world.PriorityFarm)
	cell := f.grid.At(8, 8)
	c := f.repo.Spawn(f.grid, 8, 9, 0, citizen.RoleFarmer)

	tend := func(task TaskType, tick uint64) {
		ex.Apply(c, Decision{
			Action: Action{Kind: ActionTendCrops, TargetX: 8, TargetY: 8, FarmTask: task},
			Source: "role:farmer",
		}, tick)
	}

	tend(TaskSow, 1)
	if cell.CropStage != 1 || cell.FarmTask != world.FarmFertilize {
		t.Fatalf("after sowing: stage %d task %v", cell.CropStage, cell.FarmTask)
	}

	tend(TaskFertilize, 2)
	if cell.CropStage != 2 || cell.FarmTask != world.FarmHarvest {
		t.Fatalf("after fertilizing: stage %d task %v", cell.CropStage, cell.FarmTask)
	}

	tend(TaskHarvest, 3)
	if c.Carrying.Food < 1 {
		t.Error("harvest yielded no food")
	}
	if cell.CropStage != 0 || cell.CropProgress != 0 {
		t.Error("plot not reset after harvest")
	}
	// The farm mark keeps the plot in rotation.
	if cell.FarmTask != world.FarmSow {
		t.Errorf("farm task = %v after harvest under a farm mark, want sow", cell.FarmTask)
	}
	if f.tasks.Owner(8, 8) != 0 {
		t.Error("plot reservation not released")
	}
}

func TestHarvestWithoutMarkRetiresPlot(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	cell := f.grid.At(8, 8)
	cell.CropStage = 2
	cell.FarmTask = world.FarmHarvest
	c := f.repo.Spawn(f.grid, 8, 9, 0, citizen.RoleFarmer)

	ex.Apply(c, Decision{
		Action: Action{Kind: ActionTendCrops, TargetX: 8, TargetY: 8, FarmTask: TaskHarvest},
	}, 1)

	if cell.FarmTask != world.FarmNone {
		t.Errorf("unmarked plot task = %v after harvest, want none", cell.FarmTask)
	}
}

func TestHarvestOverflowFeedsStockpile(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	cell := f.grid.At(8, 8)
	cell.CropStage = 2
	cell.FarmTask = world.FarmHarvest
	cell.Fertility = 1 // yield 5

	c := f.repo.Spawn(f.grid, 8, 9, 0, citizen.RoleFarmer)
	c.Carrying.Food = f.cfg.Gather.CarryCap - 2

	ex.Apply(c, Decision{
		Action: Action{Kind: ActionTendCrops, TargetX: 8, TargetY: 8, FarmTask: TaskHarvest},
		Source: "role:farmer",
	}, 1)

	if c.Carrying.Food != f.cfg.Gather.CarryCap {
		t.Fatalf("carrying %d food, want capped at %d", c.Carrying.Food, f.cfg.Gather.CarryCap)
	}
	if got := f.grid.Stockpile.Amount(world.ResourceFood); got != 3 {
		t.Errorf("stockpile food = %d, want the 3-unit overflow", got)
	}
}

func TestAttackKillCreditsPower(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	w := f.repo.Spawn(f.grid, 5, 5, 0, citizen.RoleWarrior)
	beast := f.repo.SpawnBeast(f.grid, 5, 6)
	beast.Needs.Health = 5

	ex.Apply(w, Decision{
		Action: Action{Kind: ActionAttack, TargetID: beast.ID, TargetX: beast.X, TargetY: beast.Y},
		Source: "role:warrior",
	}, 1)

	if beast.Alive() {
		t.Fatalf("beast survived with %.1f health", beast.Needs.Health)
	}
	if len(f.grid.At(5, 6).Occupants) != 0 {
		t.Error("kill left the cell occupied")
	}

	powered := false
	for _, e := range f.emit.Drain() {
		if e.Kind == EventPowerGain && e.Amount == f.cfg.Combat.KillPowerGain {
			powered = true
		}
	}
	if !powered {
		t.Error("settlement kill emitted no power gain")
	}
	if len(f.emit.DrainVisual()) == 0 {
		t.Error("attack emitted no visual event")
	}
}

func TestAttackRespectsDamageResist(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	w := f.repo.Spawn(f.grid, 5, 5, 0, citizen.RoleWarrior)
	beast := f.repo.SpawnBeast(f.grid, 5, 6)
	beast.Needs.Health = 100

	ex.Apply(w, Decision{
		Action: Action{Kind: ActionAttack, TargetID: beast.ID},
	}, 1)

	want := 100 - (f.cfg.Combat.WarriorDamage - beast.DamageResist)
	if beast.Needs.Health != want {
		t.Errorf("beast health = %.1f, want %.1f", beast.Needs.Health, want)
	}
}

func TestBeastKillGrantsNoPower(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	beast := f.repo.SpawnBeast(f.grid, 5, 5)
	victim := f.repo.Spawn(f.grid, 5, 6, 0, citizen.RoleWorker)
	victim.Needs.Health = 1

	ex.Apply(beast, Decision{
		Action: Action{Kind: ActionAttack, TargetID: victim.ID},
	}, 1)

	if victim.Alive() {
		t.Fatal("victim survived")
	}
	for _, e := range f.emit.Drain() {
		if e.Kind == EventPowerGain {
			t.Error("a beast kill credited player power")
		}
	}
}

func TestMateConsumesFoodAndSpawnsChild(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	a := f.repo.Spawn(f.grid, 5, 5, 0, citizen.RoleWorker)
	b := f.repo.Spawn(f.grid, 5, 6, 0, citizen.RoleWorker)
	f.grid.Stockpile.Deposit(world.ResourceFood, 10)
	before := f.repo.Population()

	ex.Apply(a, Decision{Action: Action{Kind: ActionMate, TargetID: b.ID}}, 1)

	if f.repo.Population() != before+1 {
		t.Fatal("no child born")
	}
	if got := f.grid.Stockpile.Amount(world.ResourceFood); got != 10-f.cfg.Combat.MateFoodCost {
		t.Errorf("stockpile food = %d, want %d", got, 10-f.cfg.Combat.MateFoodCost)
	}
}

func TestMateRefundsPartialDraw(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	a := f.repo.Spawn(f.grid, 5, 5, 0, citizen.RoleWorker)
	b := f.repo.Spawn(f.grid, 5, 6, 0, citizen.RoleWorker)
	f.grid.Stockpile.Deposit(world.ResourceFood, f.cfg.Combat.MateFoodCost-1)
	before := f.repo.Population()

	ex.Apply(a, Decision{Action: Action{Kind: ActionMate, TargetID: b.ID}}, 1)

	if f.repo.Population() != before {
		t.Fatal("child born without covering the food cost")
	}
	if got := f.grid.Stockpile.Amount(world.ResourceFood); got != f.cfg.Combat.MateFoodCost-1 {
		t.Errorf("partial draw not refunded: %d food left", got)
	}
}

func TestRefillFoodTakesRations(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	f.addStorage(t, 10, 10)
	f.grid.Stockpile.Deposit(world.ResourceFood, 20)
	c := f.repo.Spawn(f.grid, 10, 11, 0, citizen.RoleWorker)

	ex.Apply(c, Decision{Action: Action{Kind: ActionRefillFood}, Source: "urgent"}, 1)

	if c.Carrying.Food != 3 {
		t.Errorf("carrying %d food after refill, want 3", c.Carrying.Food)
	}
	if f.grid.Stockpile.Amount(world.ResourceFood) != 17 {
		t.Errorf("stockpile = %d, want 17", f.grid.Stockpile.Amount(world.ResourceFood))
	}
}

func TestRestRecoversFatigue(t *testing.T) {
	f := newFixture(24)
	ex := f.executor()
	c := f.repo.Spawn(f.grid, 10, 10, 0, citizen.RoleWorker)
	c.Needs.Fatigue = 50
	c.Needs.Morale = 40

	ex.Apply(c, Decision{Action: Action{Kind: ActionRest}, Source: "urgent"}, 1)

	if c.Needs.Fatigue >= 50 {
		t.Error("rest recovered no fatigue")
	}
	if c.Needs.Morale <= 40 {
		t.Error("rest lifted no morale")
	}
}
