// Package engine runs the per-tick citizen simulation: navigation,
// gathering, task reservation, behavior selection, action execution, and the
// top-level citizen system and clock.
package engine

import "hearthstead/internal/world"

// EventKind discriminates engine event variants.
type EventKind string

const (
	EventLog       EventKind = "log"
	EventPowerGain EventKind = "powerGain"
)

// Event is a notable occurrence surfaced to the owning shell.
type Event struct {
	Tick             uint64    `json:"tick"`
	Kind             EventKind `json:"type"`
	Message          string    `json:"message,omitempty"`
	NotificationType string    `json:"notificationType,omitempty"`
	Amount           int       `json:"amount,omitempty"`
}

// VisualEvent is a transient effect for the renderer (one-shot queue).
type VisualEvent struct {
	Kind     string          `json:"kind"` // e.g. "projectile"
	FromX    int             `json:"from_x"`
	FromY    int             `json:"from_y"`
	ToX      int             `json:"to_x"`
	ToY      int             `json:"to_y"`
	SourceID world.CitizenID `json:"source_id"`
}

// Emitter collects events during a tick. It is an explicit message-passing
// contract: behaviors and executors append, the shell drains.
type Emitter struct {
	events []Event
	visual []VisualEvent
	tick   uint64
}

// SetTick stamps subsequent events with the current tick.
func (e *Emitter) SetTick(tick uint64) {
	e.tick = tick
}

// Log appends a log event.
func (e *Emitter) Log(message, notificationType string) {
	e.events = append(e.events, Event{
		Tick: e.tick, Kind: EventLog,
		Message: message, NotificationType: notificationType,
	})
}

// PowerGain appends a player-resource accrual event.
func (e *Emitter) PowerGain(amount int) {
	e.events = append(e.events, Event{Tick: e.tick, Kind: EventPowerGain, Amount: amount})
}

// Visual appends a transient renderer event.
func (e *Emitter) Visual(v VisualEvent) {
	e.visual = append(e.visual, v)
}

// Drain returns and clears all accumulated events.
func (e *Emitter) Drain() []Event {
	out := e.events
	e.events = nil
	return out
}

// DrainVisual returns and clears the one-shot visual queue.
func (e *Emitter) DrainVisual() []VisualEvent {
	out := e.visual
	e.visual = nil
	return out
}
