package engine

import (
	"time"

	"hearthstead/internal/tuning"
)

// maxTicksPerFrame caps catch-up after a long stall so one frame never burns
// unbounded CPU paying down time debt.
const maxTicksPerFrame = 16

// Clock converts real elapsed time into whole simulation ticks. Fractional
// tick time carries over as debt; pausing stops accrual without losing the
// debt already owed.
type Clock struct {
	cfg tuning.Clock

	hoursDebt float64
	simHours  float64
	paused    bool
}

// NewClock creates a clock at tick zero.
func NewClock(cfg tuning.Clock) *Clock {
	return &Clock{cfg: cfg}
}

// Advance folds a frame's real elapsed time into the debt and returns how
// many whole ticks to run now (possibly zero, possibly several).
func (c *Clock) Advance(elapsed time.Duration) int {
	if c.paused {
		return 0
	}
	c.hoursDebt += elapsed.Seconds() * c.cfg.HoursPerRealSecond
	ticks := int(c.hoursDebt / c.cfg.TickHours)
	if ticks > maxTicksPerFrame {
		// Drop the excess instead of stuttering through it.
		c.hoursDebt = 0
		ticks = maxTicksPerFrame
	} else {
		c.hoursDebt -= float64(ticks) * c.cfg.TickHours
	}
	c.simHours += float64(ticks) * c.cfg.TickHours
	return ticks
}

// Pause stops tick scheduling; simulation state is untouched.
func (c *Clock) Pause() { c.paused = true }

// Resume restarts tick scheduling.
func (c *Clock) Resume() { c.paused = false }

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool { return c.paused }

// SimHours returns total simulated hours elapsed.
func (c *Clock) SimHours() float64 { return c.simHours }

// TickHours returns the fixed simulated duration of one tick.
func (c *Clock) TickHours() float64 { return c.cfg.TickHours }
