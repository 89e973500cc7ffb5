package world

import "hearthstead/internal/tuning"

// Stockpile holds the tribe-wide resource counters. Deposit and Consume
// clamp so counters never go negative or exceed capacity.
type Stockpile struct {
	Food  int `json:"food"`
	Stone int `json:"stone"`
	Wood  int `json:"wood"`
	Water int `json:"water"`

	FoodCapacity  int `json:"food_capacity"`
	StoneCapacity int `json:"stone_capacity"`
	WoodCapacity  int `json:"wood_capacity"`
	WaterCapacity int `json:"water_capacity"`
}

// NewStockpile creates a stockpile with base capacities from tuning.
func NewStockpile(eco tuning.Economy) *Stockpile {
	return &Stockpile{
		FoodCapacity:  eco.FoodCapacity,
		StoneCapacity: eco.StoneCapacity,
		WoodCapacity:  eco.WoodCapacity,
		WaterCapacity: eco.WaterCapacity,
	}
}

// AddGranary raises the food capacity once a granary stands.
func (s *Stockpile) AddGranary(bonus int) {
	s.FoodCapacity += bonus
}

func (s *Stockpile) slot(t ResourceType) (count *int, cap int) {
	switch t {
	case ResourceFood:
		return &s.Food, s.FoodCapacity
	case ResourceStone:
		return &s.Stone, s.StoneCapacity
	case ResourceWood:
		return &s.Wood, s.WoodCapacity
	default:
		return &s.Water, s.WaterCapacity
	}
}

// Deposit accepts up to the remaining capacity and returns the accepted
// amount.
func (s *Stockpile) Deposit(t ResourceType, amount int) int {
	if amount <= 0 {
		return 0
	}
	count, capacity := s.slot(t)
	room := capacity - *count
	if room < 0 {
		room = 0
	}
	if amount > room {
		amount = room
	}
	*count += amount
	return amount
}

// Consume draws up to amount and returns what was actually available.
func (s *Stockpile) Consume(t ResourceType, amount int) int {
	if amount <= 0 {
		return 0
	}
	count, _ := s.slot(t)
	if amount > *count {
		amount = *count
	}
	*count -= amount
	return amount
}

// Amount returns the current count for a resource type.
func (s *Stockpile) Amount(t ResourceType) int {
	count, _ := s.slot(t)
	return *count
}

// Capacity returns the capacity for a resource type.
func (s *Stockpile) Capacity(t ResourceType) int {
	_, capacity := s.slot(t)
	return capacity
}
