package model

// SessionSnapshot captures an in-progress work session so that it can be
// reconstructed after a restart. The zero value is the inactive snapshot.
type SessionSnapshot struct {
	// Active reports whether a clock-in is currently open.
	Active bool
	// OnBreak reports whether the active session is paused on break.
	// OnBreak implies Active.
	OnBreak bool
	// SessionStartMillis is the epoch time when the current unbroken run
	// began. Reset each time work resumes after a break.
	SessionStartMillis int64
	// BankedSeconds is the time already counted toward this session before
	// the current unbroken run.
	BankedSeconds int64
	// BreakStartMillis is the epoch time when the current break began.
	// Zero when not on break.
	BreakStartMillis int64
}
