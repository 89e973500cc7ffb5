package engine

import (
	"hearthstead/internal/citizen"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

// navState is the per-citizen navigation scratch: cached path, the target it
// was computed for, and backoff bookkeeping. Held in an arena keyed by
// citizen id rather than on the entity, so it can be tested and serialized
// apart from the citizen itself.
type navState struct {
	path            []world.Step
	pathTX, pathTY  int
	pathKey         string
	unreachX        int
	unreachY        int
	unreachKey      string
	unreachCooldown int
	stuck           int
}

// Navigator converts a desired destination into at most one step per tick,
// reusing cached multi-step paths and backing off unreachable targets.
type Navigator struct {
	grid  *world.Grid
	cfg   tuning.Gather
	arena map[citizen.ID]*navState
}

// NewNavigator creates a navigator over the grid.
func NewNavigator(g *world.Grid, cfg tuning.Gather) *Navigator {
	return &Navigator{grid: g, cfg: cfg, arena: make(map[citizen.ID]*navState)}
}

func (n *Navigator) state(id citizen.ID) *navState {
	s, ok := n.arena[id]
	if !ok {
		s = &navState{}
		n.arena[id] = s
	}
	return s
}

// Forget drops a citizen's nav state (on death).
func (n *Navigator) Forget(id citizen.ID) {
	delete(n.arena, id)
}

// MoveTowards advances the citizen at most one cell toward (tx, ty).
// Returns true when the citizen now stands on the target.
func (n *Navigator) MoveTowards(c *citizen.Citizen, tx, ty int, cacheKey string) bool {
	s := n.state(c.ID)

	// Already there: clear cached path and backoff state.
	if c.X == tx && c.Y == ty {
		s.path = nil
		s.unreachCooldown = 0
		s.stuck = 0
		return true
	}

	// Backoff window for a target we recently failed to reach.
	if s.unreachCooldown > 0 && s.unreachX == tx && s.unreachY == ty && s.unreachKey == cacheKey {
		s.unreachCooldown--
		return false
	}

	// (Re)request a path when the cache doesn't match the current target.
	if s.path == nil || s.pathTX != tx || s.pathTY != ty || s.pathKey != cacheKey {
		path, ok := n.grid.FindPath(c.X, c.Y, tx, ty, cacheKey)
		if !ok {
			n.markUnreachable(s, tx, ty, cacheKey)
			return n.greedyStep(c, s, tx, ty)
		}
		s.path = path
		s.pathTX, s.pathTY = tx, ty
		s.pathKey = cacheKey
	}

	if len(s.path) == 0 {
		s.path = nil
		return c.X == tx && c.Y == ty
	}

	// Pop the next cached step.
	step := s.path[0]
	if !n.grid.WalkableAt(step.X, step.Y) {
		// Terrain changed under the cached path.
		s.path = nil
		n.markUnreachable(s, tx, ty, cacheKey)
		return false
	}
	if n.grid.MoveOccupant(c.ID, c.X, c.Y, step.X, step.Y) {
		s.path = s.path[1:]
		n.applyStepFatigue(c, step.X, step.Y)
		s.stuck = 0
		s.unreachCooldown = 0
	}
	return c.X == tx && c.Y == ty
}

func (n *Navigator) markUnreachable(s *navState, tx, ty int, cacheKey string) {
	s.unreachX, s.unreachY = tx, ty
	s.unreachKey = cacheKey
	s.unreachCooldown = n.cfg.BackoffTicks
}

func (n *Navigator) applyStepFatigue(c *citizen.Citizen, x, y int) {
	c.X, c.Y = x, y
	cost := 1.0
	if cell := n.grid.At(x, y); cell != nil {
		cost = world.FatigueCost(cell.Terrain)
	}
	c.Needs.Fatigue += 0.4 * cost
	if c.Needs.Fatigue > 100 {
		c.Needs.Fatigue = 100
	}
}

// greedyStep is the fallback when no path exists: try the Chebyshev step
// toward the target, then its axis-aligned decompositions, preferring moves
// that strictly shrink the Manhattan distance, then non-increasing ones, and
// finally all eight neighbors once the stuck counter trips.
func (n *Navigator) greedyStep(c *citizen.Citizen, s *navState, tx, ty int) bool {
	sx := sign(tx - c.X)
	sy := sign(ty - c.Y)
	candidates := [][2]int{{sx, sy}, {sx, 0}, {0, sy}}

	cur := manhattan(c.X, c.Y, tx, ty)

	// Strictly closer first.
	for _, d := range candidates {
		if d[0] == 0 && d[1] == 0 {
			continue
		}
		nx, ny := c.X+d[0], c.Y+d[1]
		if manhattan(nx, ny, tx, ty) < cur && n.tryStep(c, s, nx, ny) {
			return c.X == tx && c.Y == ty
		}
	}
	// Then non-increasing.
	for _, d := range candidates {
		if d[0] == 0 && d[1] == 0 {
			continue
		}
		nx, ny := c.X+d[0], c.Y+d[1]
		if manhattan(nx, ny, tx, ty) <= cur && n.tryStep(c, s, nx, ny) {
			return c.X == tx && c.Y == ty
		}
	}

	s.stuck++
	if s.stuck > n.cfg.StuckThreshold {
		// Deadlocked: any open neighbor will do.
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if n.tryStep(c, s, c.X+dx, c.Y+dy) {
					s.stuck = 0
					return c.X == tx && c.Y == ty
				}
			}
		}
	}
	return false
}

func (n *Navigator) tryStep(c *citizen.Citizen, s *navState, nx, ny int) bool {
	if !n.grid.MoveOccupant(c.ID, c.X, c.Y, nx, ny) {
		return false
	}
	n.applyStepFatigue(c, nx, ny)
	return true
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func manhattan(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
