package engine

import (
	"hearthstead/internal/citizen"
	"hearthstead/internal/world"
)

// TaskType enumerates reservable cell work items.
type TaskType uint8

const (
	TaskSow TaskType = iota
	TaskFertilize
	TaskHarvest
	TaskGatherCell // generic resource-cell claim
)

type cellKey struct{ X, Y int }

type reservation struct {
	Type  TaskType
	Owner citizen.ID
	Tick  uint64
}

// CellTaskManager is a reservation table keyed by cell coordinates. It keeps
// two citizens from committing to the same work item in the same tick and
// spreads same-type work out spatially.
type CellTaskManager struct {
	grid         *world.Grid
	reservations map[cellKey]reservation
}

// NewCellTaskManager creates an empty reservation table over the grid.
func NewCellTaskManager(g *world.Grid) *CellTaskManager {
	return &CellTaskManager{grid: g, reservations: make(map[cellKey]reservation)}
}

// Claim reserves a cell for a citizen. It fails when another citizen holds
// the cell; re-claiming one's own reservation refreshes the timestamp.
func (m *CellTaskManager) Claim(x, y int, t TaskType, owner citizen.ID, tick uint64) bool {
	key := cellKey{x, y}
	if r, ok := m.reservations[key]; ok && r.Owner != owner {
		return false
	}
	m.reservations[key] = reservation{Type: t, Owner: owner, Tick: tick}
	return true
}

// Owner returns the citizen holding a cell, or 0 when unreserved.
func (m *CellTaskManager) Owner(x, y int) citizen.ID {
	return m.reservations[cellKey{x, y}].Owner
}

// Release frees a reservation held by owner.
func (m *CellTaskManager) Release(x, y int, owner citizen.ID) {
	key := cellKey{x, y}
	if r, ok := m.reservations[key]; ok && r.Owner == owner {
		delete(m.reservations, key)
	}
}

// ReleaseAll frees every reservation held by owner (on death or reassignment).
func (m *CellTaskManager) ReleaseAll(owner citizen.ID) {
	for key, r := range m.reservations {
		if r.Owner == owner {
			delete(m.reservations, key)
		}
	}
}

// taskMatches maps a task type to the cell predicate it selects.
func taskMatches(c *world.Cell, t TaskType) bool {
	switch t {
	case TaskSow:
		return c.FarmTask == world.FarmSow
	case TaskFertilize:
		return c.FarmTask == world.FarmFertilize
	case TaskHarvest:
		return c.FarmTask == world.FarmHarvest
	case TaskGatherCell:
		return c.Resource != nil && c.Resource.Amount > 0
	}
	return false
}

// PickTaskByPriority selects, for an ordered list of task types, the nearest
// unreserved matching cell from (fromX, fromY). A positive spreadSpacing
// adds a linearly increasing cost when the candidate sits closer than the
// desired spacing to an existing same-type reservation, discouraging
// clustering. The winning cell is claimed for the citizen.
func (m *CellTaskManager) PickTaskByPriority(types []TaskType, fromX, fromY int, owner citizen.ID, tick uint64, spreadSpacing float64) (*world.Cell, TaskType, bool) {
	for _, t := range types {
		var best *world.Cell
		bestCost := 1e18
		for i := range m.grid.Cells {
			c := &m.grid.Cells[i]
			if !taskMatches(c, t) {
				continue
			}
			if r, ok := m.reservations[cellKey{c.X, c.Y}]; ok && r.Owner != owner {
				continue
			}
			cost := float64(manhattan(fromX, fromY, c.X, c.Y))
			if spreadSpacing > 0 {
				if d, ok := m.nearestSameType(c.X, c.Y, t, owner); ok && d < spreadSpacing {
					cost += (spreadSpacing - d) * 4
				}
			}
			if cost < bestCost {
				bestCost = cost
				best = c
			}
		}
		if best != nil {
			m.Claim(best.X, best.Y, t, owner, tick)
			return best, t, true
		}
	}
	return nil, 0, false
}

// nearestSameType returns the distance to the closest reservation of the
// same task type held by someone else.
func (m *CellTaskManager) nearestSameType(x, y int, t TaskType, exclude citizen.ID) (float64, bool) {
	best := 1e18
	found := false
	for key, r := range m.reservations {
		if r.Type != t || r.Owner == exclude {
			continue
		}
		d := float64(manhattan(x, y, key.X, key.Y))
		if d < best {
			best = d
			found = true
		}
	}
	return best, found
}
