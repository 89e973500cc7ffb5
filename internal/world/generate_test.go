package world

import (
	"testing"

	"hearthstead/internal/tuning"
)

func TestGenerationDeterministic(t *testing.T) {
	cfg := tuning.Default()
	cfg.World.Size = 48

	a := NewGrid(7, cfg.World, cfg.Economy)
	b := NewGrid(7, cfg.World, cfg.Economy)

	for i := range a.Cells {
		if a.Cells[i].Terrain != b.Cells[i].Terrain {
			t.Fatalf("terrain diverged at cell %d: %v vs %v",
				i, a.Cells[i].Terrain, b.Cells[i].Terrain)
		}
		if a.Cells[i].Elevation != b.Cells[i].Elevation {
			t.Fatalf("elevation diverged at cell %d", i)
		}
	}
	if a.VillageX != b.VillageX || a.VillageY != b.VillageY {
		t.Errorf("village placement diverged: (%d,%d) vs (%d,%d)",
			a.VillageX, a.VillageY, b.VillageX, b.VillageY)
	}
}

func TestGenerationSeedsDiffer(t *testing.T) {
	cfg := tuning.Default()
	cfg.World.Size = 48

	a := NewGrid(7, cfg.World, cfg.Economy)
	b := NewGrid(8, cfg.World, cfg.Economy)

	same := 0
	for i := range a.Cells {
		if a.Cells[i].Terrain == b.Cells[i].Terrain {
			same++
		}
	}
	if same == len(a.Cells) {
		t.Fatal("different seeds produced identical terrain")
	}
}

func TestVillagePlacement(t *testing.T) {
	cfg := tuning.Default()
	cfg.World.Size = 64

	g := NewGrid(42, cfg.World, cfg.Economy)

	if !g.WalkableAt(g.VillageX, g.VillageY) {
		t.Fatalf("village at (%d,%d) is not walkable", g.VillageX, g.VillageY)
	}
	hall := g.At(g.VillageX, g.VillageY).Structure
	if hall == nil || hall.Type != StructureVillage {
		t.Fatal("village center has no village hall")
	}
	if len(g.Structures) < 2 {
		t.Errorf("only %d structures placed, expected the hall plus layout", len(g.Structures))
	}
	for _, st := range g.Structures {
		if !g.WalkableAt(st.X, st.Y) {
			t.Errorf("structure %s on unwalkable cell (%d,%d)", StructureName(st.Type), st.X, st.Y)
		}
	}
}

func TestRiverTraceDescendsMonotonically(t *testing.T) {
	cfg := tuning.Default()
	g := NewBlankGrid(16, cfg.World, cfg.Economy)

	// A diagonal ramp: elevation falls toward the south-east corner.
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			g.At(x, y).Elevation = 1.0 - float64(x+y)/float64(2*g.Size)
		}
	}

	path := g.traceOne(g.At(2, 2))
	if len(path) < 2 {
		t.Fatalf("trace from a slope produced %d cells", len(path))
	}
	for i := 1; i < len(path); i++ {
		if path[i].Elevation > path[i-1].Elevation {
			t.Fatalf("river climbed at step %d: %.3f -> %.3f",
				i, path[i-1].Elevation, path[i].Elevation)
		}
	}
}

func TestRiverTraceStopsAtLocalMinimum(t *testing.T) {
	cfg := tuning.Default()
	g := NewBlankGrid(8, cfg.World, cfg.Economy)

	// A pit at (3,3) surrounded by higher ground everywhere.
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			g.At(x, y).Elevation = 0.9
		}
	}
	g.At(3, 3).Elevation = 0.2
	g.At(2, 2).Elevation = 0.8

	path := g.traceOne(g.At(2, 2))
	last := path[len(path)-1]
	if last.X != 3 || last.Y != 3 {
		t.Fatalf("trace ended at (%d,%d), want the pit at (3,3)", last.X, last.Y)
	}
}
