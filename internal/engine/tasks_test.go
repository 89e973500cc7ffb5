package engine

import (
	"testing"

	"hearthstead/internal/world"
)

func TestClaimContention(t *testing.T) {
	f := newFixture(16)

	if !f.tasks.Claim(5, 5, TaskGatherCell, 1, 1) {
		t.Fatal("first claim failed")
	}
	if f.tasks.Claim(5, 5, TaskGatherCell, 2, 1) {
		t.Fatal("second citizen claimed a held cell")
	}
	if f.tasks.Owner(5, 5) != 1 {
		t.Errorf("owner = %d, want 1", f.tasks.Owner(5, 5))
	}

	// Re-claiming one's own cell refreshes, not fails.
	if !f.tasks.Claim(5, 5, TaskGatherCell, 1, 2) {
		t.Error("owner could not refresh its own claim")
	}

	f.tasks.Release(5, 5, 1)
	if !f.tasks.Claim(5, 5, TaskGatherCell, 2, 3) {
		t.Error("claim failed after release")
	}
}

func TestReleaseIgnoresNonOwner(t *testing.T) {
	f := newFixture(16)
	f.tasks.Claim(5, 5, TaskGatherCell, 1, 1)
	f.tasks.Release(5, 5, 2)
	if f.tasks.Owner(5, 5) != 1 {
		t.Error("non-owner release freed the cell")
	}
}

func TestReleaseAll(t *testing.T) {
	f := newFixture(16)
	f.tasks.Claim(1, 1, TaskSow, 7, 1)
	f.tasks.Claim(2, 2, TaskHarvest, 7, 1)
	f.tasks.Claim(3, 3, TaskGatherCell, 8, 1)

	f.tasks.ReleaseAll(7)

	if f.tasks.Owner(1, 1) != 0 || f.tasks.Owner(2, 2) != 0 {
		t.Error("ReleaseAll left the owner's reservations")
	}
	if f.tasks.Owner(3, 3) != 8 {
		t.Error("ReleaseAll freed another citizen's reservation")
	}
}

func TestPickTaskHonorsTypeOrder(t *testing.T) {
	f := newFixture(24)
	// A sow plot next door and a ripe plot across the map.
	f.grid.At(5, 5).FarmTask = world.FarmSow
	f.grid.At(20, 20).FarmTask = world.FarmHarvest

	cell, tt, ok := f.tasks.PickTaskByPriority(
		[]TaskType{TaskHarvest, TaskFertilize, TaskSow}, 5, 4, 1, 1, 0)
	if !ok {
		t.Fatal("no task picked")
	}
	if tt != TaskHarvest || cell.X != 20 || cell.Y != 20 {
		t.Fatalf("picked %v at (%d,%d), want the distant harvest", tt, cell.X, cell.Y)
	}
	if f.tasks.Owner(20, 20) != 1 {
		t.Error("winning cell not claimed")
	}
}

func TestPickTaskSkipsReservedCells(t *testing.T) {
	f := newFixture(16)
	f.grid.At(5, 5).FarmTask = world.FarmSow
	f.grid.At(9, 5).FarmTask = world.FarmSow
	f.tasks.Claim(5, 5, TaskSow, 99, 1)

	cell, _, ok := f.tasks.PickTaskByPriority([]TaskType{TaskSow}, 5, 4, 1, 1, 0)
	if !ok {
		t.Fatal("no task picked")
	}
	if cell.X != 9 || cell.Y != 5 {
		t.Fatalf("picked reserved cell (%d,%d)", cell.X, cell.Y)
	}
}

func TestPickTaskSpreadsSameTypeWork(t *testing.T) {
	f := newFixture(24)
	// The nearer plot sits right next to someone else's sow reservation; with
	// spread spacing on, the penalty makes the farther lone plot win.
	f.grid.At(5, 0).FarmTask = world.FarmSow
	f.grid.At(0, 8).FarmTask = world.FarmSow
	f.tasks.Claim(4, 0, TaskSow, 99, 1)

	cell, _, ok := f.tasks.PickTaskByPriority([]TaskType{TaskSow}, 0, 0, 1, 1, f.cfg.Gather.SpreadSpacing)
	if !ok {
		t.Fatal("no task picked")
	}
	if cell.X != 0 || cell.Y != 8 {
		t.Fatalf("picked clustered plot (%d,%d), want the spread-out one", cell.X, cell.Y)
	}

	// Without the spacing penalty the nearer plot wins.
	f.tasks.Release(0, 8, 1)
	cell, _, _ = f.tasks.PickTaskByPriority([]TaskType{TaskSow}, 0, 0, 2, 1, 0)
	if cell.X != 5 || cell.Y != 0 {
		t.Fatalf("without spacing, picked (%d,%d), want (5,0)", cell.X, cell.Y)
	}
}
