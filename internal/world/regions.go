// Biome-region pass: a coarse Voronoi-like override of the threshold biomes.
// Region seeds are picked by farthest-point sampling with a coastal penalty;
// cells join the nearest seed under a noise-warped, climate-aware distance;
// majority-vote smoothing then removes speckle.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// regionBiomes are the terrains a region may impose. Ocean, beach, mountain
// and snow always survive the override.
var regionBiomes = []Terrain{
	TerrainGrass, TerrainForest, TerrainDesert, TerrainSwamp, TerrainTundra,
}

type regionSeed struct {
	x, y    int
	terrain Terrain
	elev    float64
	moist   float64
}

func (g *Grid) applyBiomeRegions(seed int64) {
	if g.cfg.BiomeRegions <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	warp := opensimplex.NewNormalized(seed)

	seeds := g.sampleRegionSeeds(rng)
	if len(seeds) == 0 {
		return
	}

	// Assign each overridable land cell to its nearest region.
	for i := range g.Cells {
		c := &g.Cells[i]
		if !regionOverridable(c.Terrain) {
			continue
		}
		best := -1
		bestD := math.Inf(1)
		for si, s := range seeds {
			d := g.regionDistance(c, s, warp)
			if d < bestD {
				bestD = d
				best = si
			}
		}
		c.Terrain = seeds[best].terrain
	}

	for pass := 0; pass < g.cfg.SmoothPasses; pass++ {
		g.majoritySmooth()
	}
}

func regionOverridable(t Terrain) bool {
	switch t {
	case TerrainOcean, TerrainBeach, TerrainMountain, TerrainSnow:
		return false
	}
	return true
}

// sampleRegionSeeds picks region centers by farthest-point sampling: each
// new seed maximizes distance to all chosen seeds, with a penalty for cells
// near the coast so regions anchor inland.
func (g *Grid) sampleRegionSeeds(rng *rand.Rand) []regionSeed {
	var land []*Cell
	for i := range g.Cells {
		c := &g.Cells[i]
		if regionOverridable(c.Terrain) {
			land = append(land, c)
		}
	}
	if len(land) == 0 {
		return nil
	}

	seeds := make([]regionSeed, 0, g.cfg.BiomeRegions)
	first := land[rng.Intn(len(land))]
	seeds = append(seeds, g.makeSeed(first, rng))

	for len(seeds) < g.cfg.BiomeRegions {
		var best *Cell
		bestScore := -1.0
		for _, c := range land {
			nearest := math.Inf(1)
			for _, s := range seeds {
				d := math.Hypot(float64(c.X-s.x), float64(c.Y-s.y))
				if d < nearest {
					nearest = d
				}
			}
			score := nearest - g.coastalPenalty(c)
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
		if best == nil {
			break
		}
		seeds = append(seeds, g.makeSeed(best, rng))
	}
	return seeds
}

func (g *Grid) makeSeed(c *Cell, rng *rand.Rand) regionSeed {
	// The region's terrain leans on the seed cell's climate but keeps a
	// random element so adjacent worlds differ.
	t := regionBiomes[rng.Intn(len(regionBiomes))]
	if c.Moisture > 0.6 && rng.Float64() < 0.6 {
		t = TerrainForest
	} else if c.Moisture < 0.3 && rng.Float64() < 0.6 {
		t = TerrainDesert
	}
	return regionSeed{x: c.X, y: c.Y, terrain: t, elev: c.Elevation, moist: c.Moisture}
}

// coastalPenalty discourages seeds within a few cells of ocean.
func (g *Grid) coastalPenalty(c *Cell) float64 {
	const reach = 4
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			n := g.At(c.X+dx, c.Y+dy)
			if n != nil && n.Terrain == TerrainOcean {
				d := chebyshev(c.X, c.Y, n.X, n.Y)
				return float64(reach+1-d) * 3
			}
		}
	}
	return 0
}

// regionDistance warps plain euclidean distance with jittered noise and a
// climate-similarity term, so borders wander and regions follow climate.
func (g *Grid) regionDistance(c *Cell, s regionSeed, warp opensimplex.Noise) float64 {
	d := math.Hypot(float64(c.X-s.x), float64(c.Y-s.y))
	jitter := warp.Eval2(float64(c.X)*0.08, float64(c.Y)*0.08) // [0,1]
	d *= 0.8 + jitter*0.4
	climate := math.Abs(c.Elevation-s.elev) + math.Abs(c.Moisture-s.moist)
	return d + climate*float64(g.Size)*0.15
}

// majoritySmooth replaces each overridable cell's terrain with the most
// common terrain in its 3x3 neighborhood, removing single-cell speckle.
func (g *Grid) majoritySmooth() {
	next := make([]Terrain, len(g.Cells))
	for i := range g.Cells {
		next[i] = g.Cells[i].Terrain
	}
	for i := range g.Cells {
		c := &g.Cells[i]
		if !regionOverridable(c.Terrain) {
			continue
		}
		counts := make(map[Terrain]int)
		counts[c.Terrain]++
		for _, d := range neighbor8 {
			n := g.At(c.X+d[0], c.Y+d[1])
			if n == nil || !regionOverridable(n.Terrain) {
				continue
			}
			counts[n.Terrain]++
		}
		best := c.Terrain
		bestN := counts[best]
		for t, n := range counts {
			if n > bestN {
				best, bestN = t, n
			}
		}
		next[i] = best
	}
	for i := range g.Cells {
		if regionOverridable(g.Cells[i].Terrain) {
			g.Cells[i].Terrain = next[i]
		}
	}
}
