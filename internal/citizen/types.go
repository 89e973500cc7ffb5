// Package citizen provides the citizen data model, repository, and the
// per-tick physiological needs simulator.
package citizen

import (
	"hearthstead/internal/world"
)

// ID identifies a citizen. Aliased to the world package's occupancy id so
// the grid can track occupants without importing this package.
type ID = world.CitizenID

// Role is a citizen's assigned occupation.
type Role uint8

const (
	RoleWorker Role = iota
	RoleFarmer
	RoleWarrior
	RoleScout
	RoleChild
	RoleElder
)

// RoleName returns a human-readable name for a role.
func RoleName(r Role) string {
	names := [...]string{"Worker", "Farmer", "Warrior", "Scout", "Child", "Elder"}
	if int(r) < len(names) {
		return names[r]
	}
	return "Unknown"
}

// Goal is a temporary behavior override superseding the role's default AI.
type Goal uint8

const (
	GoalNone Goal = iota
	GoalRaid
	GoalSettle
	GoalBeast
	GoalWorship
	GoalPassive
	GoalResting
)

// State is a citizen's life state.
type State uint8

const (
	StateAlive State = iota
	StateDead
)

// Needs holds the physiological state, each roughly in [-50, 100].
type Needs struct {
	Hunger  float64 `json:"hunger"`
	Fatigue float64 `json:"fatigue"`
	Morale  float64 `json:"morale"`
	Health  float64 `json:"health"`
}

// Carrying is the personal inventory, each amount capped per resource type.
type Carrying struct {
	Food  int `json:"food"`
	Stone int `json:"stone"`
	Wood  int `json:"wood"`
}

// Amount returns the carried amount of a resource type.
func (c *Carrying) Amount(t world.ResourceType) int {
	switch t {
	case world.ResourceFood:
		return c.Food
	case world.ResourceStone:
		return c.Stone
	case world.ResourceWood:
		return c.Wood
	}
	return 0
}

// Add stores up to cap-current of a resource type, returning the accepted
// amount.
func (c *Carrying) Add(t world.ResourceType, n, cap int) int {
	var slot *int
	switch t {
	case world.ResourceFood:
		slot = &c.Food
	case world.ResourceStone:
		slot = &c.Stone
	case world.ResourceWood:
		slot = &c.Wood
	default:
		return 0
	}
	room := cap - *slot
	if room < 0 {
		room = 0
	}
	if n > room {
		n = room
	}
	*slot += n
	return n
}

// Take removes up to n of a resource type, returning the removed amount.
func (c *Carrying) Take(t world.ResourceType, n int) int {
	var slot *int
	switch t {
	case world.ResourceFood:
		slot = &c.Food
	case world.ResourceStone:
		slot = &c.Stone
	case world.ResourceWood:
		slot = &c.Wood
	default:
		return 0
	}
	if n > *slot {
		n = *slot
	}
	*slot -= n
	return n
}

// Total returns the combined carried amount.
func (c *Carrying) Total() int {
	return c.Food + c.Stone + c.Wood
}

// BrainPhase is a state of the gatherer state machine.
type BrainPhase uint8

const (
	BrainIdle BrainPhase = iota
	BrainGoingToResource
	BrainGathering
	BrainGoingToStorage
)

// Brain is the per-citizen gatherer state machine: a tagged variant holding
// the active phase, the resource being gathered, and the claimed target
// cell.
type Brain struct {
	Phase    BrainPhase         `json:"phase"`
	Resource world.ResourceType `json:"resource"`
	TargetX  int                `json:"target_x"`
	TargetY  int                `json:"target_y"`

	// Progress accumulates sub-unit harvest draws (richness scales the
	// per-tick draw) until a whole unit can be carried.
	Progress float64 `json:"progress"`
}

// HistoryEntry is one deduplicated action record.
type HistoryEntry struct {
	Tick      uint64 `json:"tick"`
	Signature string `json:"signature"`
}

const historyCap = 16

// Citizen is an autonomous settlement inhabitant.
type Citizen struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Age     float64 `json:"age"` // sim-years, fractional
	TribeID int    `json:"tribe_id"`
	Role    Role   `json:"role"`

	Needs    Needs    `json:"needs"`
	Carrying Carrying `json:"carrying"`
	State    State    `json:"state"`

	Goal  Goal  `json:"goal"`
	Brain Brain `json:"brain"`

	// DamageResist reduces incoming attack damage (beasts, armored raiders).
	DamageResist float64 `json:"damage_resist"`

	// PendingRole defers reassignment until the citizen finishes its task.
	PendingRole    *Role `json:"pending_role,omitempty"`
	ActiveTask     bool  `json:"active_task"`

	// Resting tracks rest hysteresis between ticks.
	Resting bool `json:"resting"`

	// History is a ring buffer of recent distinct action signatures.
	History []HistoryEntry `json:"-"`

	needTickCounter int // periodic damage phase
}

// Alive reports whether the citizen is still living.
func (c *Citizen) Alive() bool {
	return c.State == StateAlive
}

// RecordAction appends a history entry unless the signature matches the most
// recent one, keeping the ring bounded.
func (c *Citizen) RecordAction(tick uint64, signature string) {
	if n := len(c.History); n > 0 && c.History[n-1].Signature == signature {
		return
	}
	c.History = append(c.History, HistoryEntry{Tick: tick, Signature: signature})
	if len(c.History) > historyCap {
		c.History = c.History[len(c.History)-historyCap:]
	}
}
