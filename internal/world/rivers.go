// River tracing: greedy downhill walks from local elevation maxima, with a
// multiplicatively decaying water volume. Rivers override the biome pass.
package world

import "math/rand"

func (g *Grid) traceRivers(seed int64) {
	rng := rand.New(rand.NewSource(seed))

	var sources []*Cell
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.Terrain == TerrainOcean {
			continue
		}
		if c.Elevation < g.cfg.RiverMinHeight || c.Moisture < g.cfg.RiverWetness {
			continue
		}
		if g.isLocalMaximum(c) {
			sources = append(sources, c)
		}
	}

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})

	for _, src := range sources {
		path := g.traceOne(src)
		if len(path) < g.cfg.RiverMinLength {
			continue
		}
		g.stampRiver(path)
	}
}

func (g *Grid) isLocalMaximum(c *Cell) bool {
	for _, d := range neighbor8 {
		n := g.At(c.X+d[0], c.Y+d[1])
		if n != nil && n.Elevation > c.Elevation {
			return false
		}
	}
	return true
}

// traceOne walks downhill from src, always to the lowest unvisited neighbor,
// until the ocean, a local minimum, or volume exhaustion. The returned path
// is monotonically non-increasing in elevation.
func (g *Grid) traceOne(src *Cell) []*Cell {
	var path []*Cell
	visited := make(map[int]bool)
	current := src
	volume := g.cfg.RiverStartVolume

	for volume > 0.05 {
		path = append(path, current)
		visited[current.Y*g.Size+current.X] = true

		if current.Terrain == TerrainOcean {
			break
		}

		var next *Cell
		lowest := current.Elevation
		for _, d := range neighbor8 {
			n := g.At(current.X+d[0], current.Y+d[1])
			if n == nil || visited[n.Y*g.Size+n.X] {
				continue
			}
			if n.Elevation <= lowest {
				lowest = n.Elevation
				next = n
			}
		}
		if next == nil {
			break // local minimum
		}
		current = next
		volume *= g.cfg.RiverVolumeDecay
	}
	return path
}

// stampRiver marks the path cells as river terrain; at low elevation the
// channel widens by one neighbor.
func (g *Grid) stampRiver(path []*Cell) {
	for _, c := range path {
		if c.Terrain == TerrainOcean {
			continue
		}
		c.Terrain = TerrainRiver
		if c.Elevation < g.cfg.SeaLevel+0.1 {
			for _, d := range neighbor8[:4] {
				n := g.At(c.X+d[0], c.Y+d[1])
				if n != nil && n.Terrain != TerrainOcean && n.Terrain != TerrainRiver {
					n.Terrain = TerrainRiver
					break
				}
			}
		}
	}
}
