package engine

import (
	"fmt"

	"hearthstead/internal/citizen"
	"hearthstead/internal/world"
)

// ActionKind enumerates the side effects a citizen can request for a tick.
type ActionKind uint8

const (
	ActionIdle ActionKind = iota
	ActionMove
	ActionGather
	ActionStoreResources
	ActionRefillFood
	ActionRest
	ActionAttack
	ActionMate
	ActionTendCrops
	ActionConstruct
)

// ActionName returns a human-readable name for an action kind.
func ActionName(k ActionKind) string {
	names := [...]string{
		"idle", "move", "gather", "store", "refillFood",
		"rest", "attack", "mate", "tendCrops", "construct",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Action is one tick's chosen behavior with its parameters. Unused fields are
// zero; the kind determines which are read.
type Action struct {
	Kind ActionKind

	TargetX, TargetY int
	TargetID         citizen.ID         // attack, mate
	Resource         world.ResourceType // gather
	FarmTask         TaskType           // tendCrops
	SiteID           string             // construct
}

// Decision pairs an action with the behavior layer that produced it, for the
// citizen's history record.
type Decision struct {
	Action Action
	Source string // "urgent", "goal:raid", "role:farmer", ...
}

// signature builds the dedup key for the history ring.
func (d Decision) signature() string {
	return fmt.Sprintf("%s/%s@%d,%d", d.Source, ActionName(d.Action.Kind), d.Action.TargetX, d.Action.TargetY)
}
