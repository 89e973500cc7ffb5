package world

import "testing"

func TestFindPathStraightLine(t *testing.T) {
	g := testGrid(10)

	steps, ok := g.FindPath(1, 1, 5, 1, "")
	if !ok {
		t.Fatal("no path on open grass")
	}
	if len(steps) != 4 {
		t.Fatalf("path length %d, want 4", len(steps))
	}
	if steps[0].X == 1 && steps[0].Y == 1 {
		t.Error("path includes the origin cell")
	}
	last := steps[len(steps)-1]
	if last.X != 5 || last.Y != 1 {
		t.Errorf("path ends at (%d,%d), want (5,1)", last.X, last.Y)
	}
}

func TestFindPathSameCell(t *testing.T) {
	g := testGrid(10)
	steps, ok := g.FindPath(3, 3, 3, 3, "")
	if !ok || steps != nil {
		t.Fatalf("origin == target gave (%v, %v), want (nil, true)", steps, ok)
	}
}

func TestFindPathUnwalkableTarget(t *testing.T) {
	g := testGrid(10)
	g.At(5, 5).Terrain = TerrainWater
	if _, ok := g.FindPath(1, 1, 5, 5, ""); ok {
		t.Fatal("found a path onto water")
	}
}

func TestFindPathAroundWall(t *testing.T) {
	g := testGrid(10)

	// A vertical water wall at x=4 with a gap at y=8.
	for y := 0; y < 8; y++ {
		g.At(4, y).Terrain = TerrainWater
	}

	steps, ok := g.FindPath(2, 2, 7, 2, "")
	if !ok {
		t.Fatal("no path around the wall")
	}
	for _, s := range steps {
		if !g.WalkableAt(s.X, s.Y) {
			t.Fatalf("path crosses unwalkable cell (%d,%d)", s.X, s.Y)
		}
	}
	// The detour must pass through the gap row.
	through := false
	for _, s := range steps {
		if s.X == 4 {
			through = true
			if s.Y < 8 {
				t.Fatalf("path crossed the wall at (%d,%d)", s.X, s.Y)
			}
		}
	}
	if !through {
		t.Error("path never crossed the wall column")
	}
}

func TestFindPathDiagonalCornerRule(t *testing.T) {
	g := testGrid(6)

	// With (1,0) blocked, the diagonal (0,0) -> (1,1) must be refused; the
	// path has to go through (0,1) first.
	g.At(1, 0).Terrain = TerrainWater

	steps, ok := g.FindPath(0, 0, 1, 1, "")
	if !ok {
		t.Fatal("no path to (1,1)")
	}
	if len(steps) < 2 {
		t.Fatalf("path cut the blocked corner: %v", steps)
	}
	if steps[0].X != 0 || steps[0].Y != 1 {
		t.Errorf("first step = (%d,%d), want (0,1)", steps[0].X, steps[0].Y)
	}
}

func TestPathCacheInvalidation(t *testing.T) {
	g := testGrid(10)

	first, ok := g.FindPath(1, 1, 8, 1, "structure:granary")
	if !ok {
		t.Fatal("no initial path")
	}

	// Block the straight route. The cached path is stale until terrain
	// changes invalidate it.
	for y := 0; y < 10; y++ {
		if y != 9 {
			g.At(4, y).Terrain = TerrainWater
		}
	}
	g.invalidatePaths()

	second, ok := g.FindPath(1, 1, 8, 1, "structure:granary")
	if !ok {
		t.Fatal("no path after terrain change")
	}
	if len(second) <= len(first) {
		t.Errorf("recomputed path length %d not longer than original %d; stale cache?",
			len(second), len(first))
	}
	for _, s := range second {
		if !g.WalkableAt(s.X, s.Y) {
			t.Fatalf("recomputed path crosses water at (%d,%d)", s.X, s.Y)
		}
	}
}

func TestFindPathPrefersDryGround(t *testing.T) {
	g := testGrid(10)

	// A river band across the middle; crossing costs 1.5x per cell, so the
	// path still crosses (no way around) but stays walkable.
	for x := 0; x < 10; x++ {
		g.At(x, 5).Terrain = TerrainRiver
	}

	steps, ok := g.FindPath(5, 2, 5, 8, "")
	if !ok {
		t.Fatal("no path across the river")
	}
	crossings := 0
	for _, s := range steps {
		if g.At(s.X, s.Y).Terrain == TerrainRiver {
			crossings++
		}
	}
	if crossings != 1 {
		t.Errorf("path fords the river %d times, want exactly 1", crossings)
	}
}
