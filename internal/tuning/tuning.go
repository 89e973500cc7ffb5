// Package tuning holds the simulation constants, loadable from YAML so a
// scenario can reshape the world without a rebuild.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning collects every dial the simulation exposes.
type Tuning struct {
	World   World   `yaml:"world"`
	Needs   Needs   `yaml:"needs"`
	Gather  Gather  `yaml:"gather"`
	Combat  Combat  `yaml:"combat"`
	Clock   Clock   `yaml:"clock"`
	Economy Economy `yaml:"economy"`
}

type World struct {
	Size             int     `yaml:"size"`              // grid is Size x Size
	SeaLevel         float64 `yaml:"sea_level"`         // elevation below = ocean
	MountainLevel    float64 `yaml:"mountain_level"`    // elevation above = mountain
	SnowLevel        float64 `yaml:"snow_level"`        // elevation above = snow cap
	ElevationExp     float64 `yaml:"elevation_exp"`     // power-curve redistribution
	BiomeRegions     int     `yaml:"biome_regions"`     // Voronoi-like region count
	SmoothPasses     int     `yaml:"smooth_passes"`     // majority-vote iterations
	RiverMinLength   int     `yaml:"river_min_length"`  // shorter traces discarded
	RiverStartVolume float64 `yaml:"river_start_volume"`
	RiverVolumeDecay float64 `yaml:"river_volume_decay"` // multiplicative per step
	RiverWetness     float64 `yaml:"river_wetness"`      // min moisture at a source
	RiverMinHeight   float64 `yaml:"river_min_height"`   // min elevation at a source
}

type Needs struct {
	HungerPerTick     float64 `yaml:"hunger_per_tick"`
	FatiguePerTick    float64 `yaml:"fatigue_per_tick"`
	MoraleDecay       float64 `yaml:"morale_decay"`
	EatThreshold      float64 `yaml:"eat_threshold"`      // hunger above this: try to eat
	HungerDamageAt    float64 `yaml:"hunger_damage_at"`   // hunger above this: damage
	FatigueDamageAt   float64 `yaml:"fatigue_damage_at"`  // fatigue above this: damage
	NeedDamage        float64 `yaml:"need_damage"`        // fixed periodic damage
	DamagePeriod      int     `yaml:"damage_period"`      // ticks between damage hits
	MoraleLow         float64 `yaml:"morale_low"`         // below: passive goal set
	MoraleRecovered   float64 `yaml:"morale_recovered"`   // above: passive goal cleared
	RestStartFatigue  float64 `yaml:"rest_start_fatigue"` // start resting
	RestStopFatigue   float64 `yaml:"rest_stop_fatigue"`  // keep resting until below
	ElderAge          float64 `yaml:"elder_age"`          // frailty onset, sim-years
	ElderDamage       float64 `yaml:"elder_damage"`
	ElderDamagePeriod int     `yaml:"elder_damage_period"`
	AdultAge          float64 `yaml:"adult_age"` // child -> worker promotion
	HoursPerYear      float64 `yaml:"hours_per_year"` // one in-game day ~ one citizen year
}

type Gather struct {
	CarryCap       int     `yaml:"carry_cap"`       // per resource type
	FarmerBonus    float64 `yaml:"farmer_bonus"`    // food yield multiplier for farmers
	SpreadSpacing  float64 `yaml:"spread_spacing"`  // desired farm-task spacing
	BackoffTicks   int     `yaml:"backoff_ticks"`   // unreachable-target cooldown
	StuckThreshold int     `yaml:"stuck_threshold"` // greedy fallback escape trigger
}

type Combat struct {
	WarriorDamage float64 `yaml:"warrior_damage"`
	WorkerDamage  float64 `yaml:"worker_damage"`
	BeastDamage   float64 `yaml:"beast_damage"`
	KillPowerGain int     `yaml:"kill_power_gain"`
	FleeHealth    float64 `yaml:"flee_health"` // below this, flee to village
	MateFoodCost  int     `yaml:"mate_food_cost"`
}

type Clock struct {
	TickHours float64 `yaml:"tick_hours"` // fixed simulated hours per tick
	HoursPerRealSecond float64 `yaml:"hours_per_real_second"`
}

type Economy struct {
	FoodCapacity       int `yaml:"food_capacity"`
	GranaryFoodBonus   int `yaml:"granary_food_bonus"`
	StoneCapacity      int `yaml:"stone_capacity"`
	WoodCapacity       int `yaml:"wood_capacity"`
	WaterCapacity      int `yaml:"water_capacity"`
	FoodNodeCeiling    int `yaml:"food_node_ceiling"`
	StoneNodeCeiling   int `yaml:"stone_node_ceiling"`
	WoodNodeCeiling    int `yaml:"wood_node_ceiling"`
	RegrowthRate       float64 `yaml:"regrowth_rate"` // renewable food per tick at fertility 1
	CropGrowthRate     float64 `yaml:"crop_growth_rate"`
}

// Default returns the compiled-in tuning used when no YAML file is supplied.
func Default() Tuning {
	return Tuning{
		World: World{
			Size:             96,
			SeaLevel:         0.32,
			MountainLevel:    0.78,
			SnowLevel:        0.88,
			ElevationExp:     1.6,
			BiomeRegions:     14,
			SmoothPasses:     3,
			RiverMinLength:   6,
			RiverStartVolume: 1.0,
			RiverVolumeDecay: 0.94,
			RiverWetness:     0.45,
			RiverMinHeight:   0.55,
		},
		Needs: Needs{
			HungerPerTick:     0.9,
			FatiguePerTick:    0.6,
			MoraleDecay:       0.15,
			EatThreshold:      70,
			HungerDamageAt:    80,
			FatigueDamageAt:   80,
			NeedDamage:        2,
			DamagePeriod:      4,
			MoraleLow:         20,
			MoraleRecovered:   40,
			RestStartFatigue:  75,
			RestStopFatigue:   30,
			ElderAge:          60,
			ElderDamage:       1,
			ElderDamagePeriod: 8,
			AdultAge:          14,
			HoursPerYear:      24,
		},
		Gather: Gather{
			CarryCap:       10,
			FarmerBonus:    1.5,
			SpreadSpacing:  3,
			BackoffTicks:   12,
			StuckThreshold: 5,
		},
		Combat: Combat{
			WarriorDamage: 12,
			WorkerDamage:  5,
			BeastDamage:   9,
			KillPowerGain: 5,
			FleeHealth:    25,
			MateFoodCost:  4,
		},
		Clock: Clock{
			TickHours:          0.5,
			HoursPerRealSecond: 2.0,
		},
		Economy: Economy{
			FoodCapacity:     200,
			GranaryFoodBonus: 300,
			StoneCapacity:    150,
			WoodCapacity:     150,
			WaterCapacity:    100,
			FoodNodeCeiling:  40,
			StoneNodeCeiling: 60,
			WoodNodeCeiling:  50,
			RegrowthRate:     0.05,
			CropGrowthRate:   0.02,
		},
	}
}

// Load reads tuning from a YAML file, layered over the defaults so a partial
// file only overrides what it names.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}
