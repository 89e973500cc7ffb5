package engine

import (
	"fmt"
	"math/rand"

	"hearthstead/internal/citizen"
	"hearthstead/internal/world"
)

// ClimateEngine advances the prevailing weather and rolls threat events:
// beast spawns, raiding parties, and the occasional migrant band.
type ClimateEngine struct {
	grid *world.Grid
	repo *citizen.Repository
	emit *Emitter
	rng  *rand.Rand

	current   world.Climate
	remaining int // ticks until the next weather roll
}

// NewClimateEngine starts with clear skies.
func NewClimateEngine(g *world.Grid, repo *citizen.Repository, emit *Emitter, seed int64) *ClimateEngine {
	return &ClimateEngine{
		grid:      g,
		repo:      repo,
		emit:      emit,
		rng:       rand.New(rand.NewSource(seed + 900)),
		current:   world.ClimateClear,
		remaining: 40,
	}
}

// Current returns the prevailing climate fed into the environment tick.
func (e *ClimateEngine) Current() world.Climate {
	return e.current
}

// Tick advances weather and rolls threats once per simulation tick.
func (e *ClimateEngine) Tick(tick uint64) {
	e.remaining--
	if e.remaining <= 0 {
		e.rollWeather()
	}
	e.rollThreats()
}

func (e *ClimateEngine) rollWeather() {
	prev := e.current
	r := e.rng.Float64()
	switch {
	case r < 0.60:
		e.current = world.ClimateClear
	case r < 0.85:
		e.current = world.ClimateRain
	default:
		e.current = world.ClimateDrought
	}
	e.remaining = 30 + e.rng.Intn(60)
	if e.current == prev {
		return
	}
	switch e.current {
	case world.ClimateRain:
		e.emit.Log("Rain sweeps over the valley", "weather")
	case world.ClimateDrought:
		e.emit.Log("A drought sets in", "weather")
	default:
		e.emit.Log("The skies clear", "weather")
	}
}

// rollThreats scales hostile pressure with settlement size so an early camp
// isn't wiped out by bad luck.
func (e *ClimateEngine) rollThreats() {
	pop := e.repo.Population()
	if pop == 0 {
		return
	}

	// Beasts wander in from the wilds.
	if e.rng.Float64() < 0.002*float64(min(pop, 30)) {
		if x, y, ok := e.edgeSpawn(); ok {
			b := e.repo.SpawnBeast(e.grid, x, y)
			e.emit.Log(fmt.Sprintf("A %s prowls near the settlement", b.Name), "threat")
		}
	}

	// Raids only trouble settlements worth robbing.
	if pop >= 8 && e.rng.Float64() < 0.0008*float64(pop) {
		n := 2 + e.rng.Intn(3)
		spawned := 0
		for i := 0; i < n; i++ {
			x, y, ok := e.edgeSpawn()
			if !ok {
				continue
			}
			r := e.repo.Spawn(e.grid, x, y, 1, citizen.RoleWarrior)
			r.Goal = citizen.GoalRaid
			spawned++
		}
		if spawned > 0 {
			e.emit.Log(fmt.Sprintf("A raiding party of %d approaches!", spawned), "threat")
		}
	}

	// Word of a prosperous settlement draws newcomers.
	if pop >= 5 && e.grid.Stockpile.Amount(world.ResourceFood) > 100 &&
		e.rng.Float64() < 0.0005 {
		migrants := e.repo.SpawnMigrants(e.grid, 1+e.rng.Intn(3), 0)
		if len(migrants) > 0 {
			e.emit.Log(fmt.Sprintf("%d migrants arrive seeking a home", len(migrants)), "migration")
		}
	}
}

// edgeSpawn picks a walkable cell on the map rim.
func (e *ClimateEngine) edgeSpawn() (int, int, bool) {
	for attempt := 0; attempt < 20; attempt++ {
		var x, y int
		switch e.rng.Intn(4) {
		case 0:
			x, y = e.rng.Intn(e.grid.Size), 1
		case 1:
			x, y = e.rng.Intn(e.grid.Size), e.grid.Size-2
		case 2:
			x, y = 1, e.rng.Intn(e.grid.Size)
		default:
			x, y = e.grid.Size-2, e.rng.Intn(e.grid.Size)
		}
		if e.grid.WalkableAt(x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}
