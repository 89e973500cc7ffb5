package world

// EnvironmentTick advances the grid one tick under the given climate:
// moisture drifts on fertile terrains, renewable food nodes regrow in
// proportion to fertility, and crops on farmed cells mature.
func (g *Grid) EnvironmentTick(climate Climate) {
	climateFactor := 1.0
	switch climate {
	case ClimateRain:
		climateFactor = 1.4
	case ClimateDrought:
		climateFactor = 0.4
	}

	for i := range g.Cells {
		c := &g.Cells[i]
		if !Fertile(c.Terrain) {
			continue
		}

		switch climate {
		case ClimateRain:
			c.Moisture += 0.004
		case ClimateDrought:
			c.Moisture -= 0.006
		default:
			c.Moisture -= 0.0005 // slow decay toward dry
		}
		if c.Moisture < 0 {
			c.Moisture = 0
		} else if c.Moisture > 1 {
			c.Moisture = 1
		}

		// Renewable food regrows toward its ceiling.
		if n := c.Resource; n != nil && n.Renewable && n.Type == ResourceFood {
			n.Amount += g.eco.RegrowthRate * c.Fertility * climateFactor
			if ceiling := g.NodeCeiling(n.Type); n.Amount > ceiling {
				n.Amount = ceiling
			}
		}

		// Crops advance once sown.
		if c.CropStage > 0 {
			c.CropProgress += g.eco.CropGrowthRate * c.Fertility * climateFactor * float64(c.CropStage)
			if c.CropProgress > 1 {
				c.CropProgress = 1
			}
		}
	}
}
