package tracker

import (
	"time"

	"punchclock/internal/core/model"
)

// State represents the engine's clock state.
type State string

const (
	StateClockedOut State = "clocked_out"
	StateWorking    State = "working"
	StateOnBreak    State = "on_break"
)

// EventType defines the type of engine event.
type EventType string

const (
	// EventStateChange marks a transition between clock states.
	EventStateChange EventType = "state_change"
	// EventProgress is the per-second republish while working.
	EventProgress EventType = "progress"
	// EventWeekUpdate marks a change to the week's totals without a
	// state transition (manual edit, week reset).
	EventWeekUpdate EventType = "week_update"
)

// Event represents an engine update for observers. Every event carries the
// full observable status: state, elapsed session seconds, and week totals.
type Event struct {
	Type           EventType
	State          State
	ElapsedSeconds int64
	Week           model.WeekRecord
	At             time.Time
}
