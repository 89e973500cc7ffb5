// World generation: layered simplex noise for elevation and moisture, biome
// thresholds, a Voronoi-like biome-region override, downhill river tracing,
// then terrain-driven fertility, resource seeding, and village placement.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"hearthstead/internal/tuning"
)

// NewGrid generates a Size x Size world from the seed. Generation is
// deterministic for a given seed and tuning; cross-platform bit-exactness is
// not promised.
func NewGrid(seed int64, cfg tuning.World, eco tuning.Economy) *Grid {
	if seed == 0 {
		seed = rand.Int63()
	}

	g := &Grid{
		Size:      cfg.Size,
		Cells:     make([]Cell, cfg.Size*cfg.Size),
		Stockpile: NewStockpile(eco),
		Sites:     make(map[string]*ConstructionSite),
		cfg:       cfg,
		eco:       eco,
		rng:       rand.New(rand.NewSource(seed)),
		pathCache: make(map[pathKey][]Step),
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			c := g.At(x, y)
			c.X, c.Y = x, y

			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 5, 0.02, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 4, 0.03, 0.5)

			// Power-curve redistribution flattens lowlands, sharpens peaks.
			elev = math.Pow(elev, cfg.ElevationExp)

			c.Elevation = elev
			c.Moisture = moist
			c.Terrain = baseBiome(elev, moist, cfg)
		}
	}

	g.markBeaches()
	g.applyBiomeRegions(seed + 2)
	g.traceRivers(seed + 3)
	g.seedFertilityAndResources(seed + 4)
	g.placeVillage()

	return g
}

// NewBlankGrid builds an all-grass grid with no resources or structures,
// for scripted scenarios that need exact terrain control.
func NewBlankGrid(size int, cfg tuning.World, eco tuning.Economy) *Grid {
	g := &Grid{
		Size:      size,
		Cells:     make([]Cell, size*size),
		Stockpile: NewStockpile(eco),
		Sites:     make(map[string]*ConstructionSite),
		cfg:       cfg,
		eco:       eco,
		rng:       rand.New(rand.NewSource(1)),
		pathCache: make(map[pathKey][]Step),
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := g.At(x, y)
			c.X, c.Y = x, y
			c.Terrain = TerrainGrass
			c.Elevation = 0.5
			c.Moisture = 0.5
			c.Fertility = 0.6
		}
	}
	g.VillageX, g.VillageY = size/2, size/2
	return g
}

// baseBiome assigns terrain from elevation and moisture thresholds.
func baseBiome(elev, moist float64, cfg tuning.World) Terrain {
	if elev < cfg.SeaLevel {
		return TerrainOcean
	}
	if elev > cfg.SnowLevel {
		return TerrainSnow
	}
	if elev > cfg.MountainLevel {
		return TerrainMountain
	}
	if elev > cfg.MountainLevel-0.08 && moist < 0.35 {
		return TerrainTundra
	}
	if moist < 0.25 {
		return TerrainDesert
	}
	if moist > 0.75 && elev < cfg.SeaLevel+0.12 {
		return TerrainSwamp
	}
	if moist > 0.55 {
		return TerrainForest
	}
	return TerrainGrass
}

// markBeaches converts low land cells adjacent to ocean into beach.
func (g *Grid) markBeaches() {
	var marks []int
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.Terrain == TerrainOcean || c.Elevation > g.cfg.SeaLevel+0.05 {
			continue
		}
		for _, d := range neighbor8[:4] {
			n := g.At(c.X+d[0], c.Y+d[1])
			if n != nil && n.Terrain == TerrainOcean {
				marks = append(marks, i)
				break
			}
		}
	}
	for _, i := range marks {
		g.Cells[i].Terrain = TerrainBeach
	}
}

// seedFertilityAndResources derives fertility from final terrain and rolls
// the per-terrain resource spawn tables.
func (g *Grid) seedFertilityAndResources(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range g.Cells {
		c := &g.Cells[i]
		c.Fertility = baseFertility(c.Terrain, c.Moisture)
		c.Resource = rollResource(c.Terrain, rng, g.eco)
	}
}

func baseFertility(t Terrain, moist float64) float64 {
	switch t {
	case TerrainGrass:
		return 0.5 + moist*0.4
	case TerrainForest:
		return 0.4 + moist*0.3
	case TerrainRiver:
		return 0.8
	case TerrainSwamp:
		return 0.35
	case TerrainBeach:
		return 0.15
	case TerrainDesert, TerrainTundra:
		return 0.05
	}
	return 0
}

// rollResource spawns a resource node from the terrain's fixed spawn table,
// keyed by a single random roll.
func rollResource(t Terrain, rng *rand.Rand, eco tuning.Economy) *ResourceNode {
	roll := rng.Float64()
	richness := 0.8 + rng.Float64()*0.4

	switch t {
	case TerrainGrass:
		if roll < 0.20 {
			return &ResourceNode{Type: ResourceFood, Amount: float64(eco.FoodNodeCeiling) * 0.5, Renewable: true, Richness: richness}
		}
	case TerrainForest:
		if roll < 0.55 {
			return &ResourceNode{Type: ResourceWood, Amount: float64(eco.WoodNodeCeiling) * 0.8, Renewable: false, Richness: richness}
		}
		if roll < 0.70 {
			return &ResourceNode{Type: ResourceFood, Amount: float64(eco.FoodNodeCeiling) * 0.4, Renewable: true, Richness: richness}
		}
	case TerrainRiver:
		if roll < 0.40 {
			return &ResourceNode{Type: ResourceFood, Amount: float64(eco.FoodNodeCeiling) * 0.6, Renewable: true, Richness: richness}
		}
		if roll < 0.55 {
			return &ResourceNode{Type: ResourceWater, Amount: float64(eco.WaterCapacity), Renewable: true, Richness: richness}
		}
	case TerrainDesert, TerrainTundra:
		if roll < 0.25 {
			return &ResourceNode{Type: ResourceStone, Amount: float64(eco.StoneNodeCeiling) * 0.7, Renewable: false, Richness: richness}
		}
	case TerrainSwamp:
		if roll < 0.20 {
			return &ResourceNode{Type: ResourceWood, Amount: float64(eco.WoodNodeCeiling) * 0.4, Renewable: false, Richness: richness}
		}
	case TerrainBeach:
		if roll < 0.15 {
			return &ResourceNode{Type: ResourceStone, Amount: float64(eco.StoneNodeCeiling) * 0.3, Renewable: false, Richness: richness}
		}
	}
	return nil
}

// villageLayout places auxiliary structures at fixed offsets around the
// village hall; offsets landing on non-walkable terrain are skipped.
var villageLayout = []struct {
	t      StructureType
	dx, dy int
}{
	{StructureGranary, 2, 0},
	{StructureHut, -2, 0},
	{StructureHut, 0, 2},
	{StructureHut, -2, 2},
	{StructureFarmhouse, 2, 2},
}

// placeVillage scans the central sub-region for the walkable cell with the
// best fertility + moisture + river proximity, penalized by distance from
// the world center, then stamps the village and its auxiliary layout.
func (g *Grid) placeVillage() {
	center := g.Size / 2
	span := g.Size / 4
	bestScore := math.Inf(-1)
	bestX, bestY := center, center

	for y := center - span; y <= center+span; y++ {
		for x := center - span; x <= center+span; x++ {
			c := g.At(x, y)
			if c == nil || !Walkable(c.Terrain) || c.Terrain == TerrainRiver {
				continue
			}
			score := c.Fertility + c.Moisture + g.riverProximity(x, y, 6)
			dist := math.Hypot(float64(x-center), float64(y-center))
			score -= dist / float64(g.Size) * 2
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}

	g.VillageX, g.VillageY = bestX, bestY
	g.placeStructure(StructureVillage, bestX, bestY)
	for _, lay := range villageLayout {
		g.placeStructure(lay.t, bestX+lay.dx, bestY+lay.dy)
	}
}

// riverProximity scores closeness to river cells within radius.
func (g *Grid) riverProximity(x, y, radius int) float64 {
	best := 0.0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := g.At(x+dx, y+dy)
			if c == nil || c.Terrain != TerrainRiver {
				continue
			}
			d := chebyshev(x, y, c.X, c.Y)
			score := 1.0 - float64(d)/float64(radius+1)
			if score > best {
				best = score
			}
		}
	}
	return best
}

// octaveNoise layers multiple noise frequencies into fractal terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

// TerrainCounts returns the terrain distribution, for logging.
func (g *Grid) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range g.Cells {
		counts[g.Cells[i].Terrain]++
	}
	return counts
}
