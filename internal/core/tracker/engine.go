package tracker

import (
	"sync"
	"time"

	"punchclock/internal/core/model"
)

// Storage is the persistence boundary the engine drives. It is the single
// source of truth across restarts; no other component touches it.
type Storage interface {
	LoadWeekRecord(weekAnchor time.Time) (model.WeekRecord, bool, error)
	SaveWeekRecord(record model.WeekRecord) error
	ResetWeekRecord(weekAnchor time.Time) (model.WeekRecord, error)
	LoadSessionSnapshot() (model.SessionSnapshot, error)
	SaveSessionSnapshot(snapshot model.SessionSnapshot) error
	ClearSessionSnapshot() error
}

// Config contains runtime options for Engine.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Status is the engine's observable state at one moment.
type Status struct {
	State          State
	ElapsedSeconds int64
	Week           model.WeekRecord
}

// Engine is the session state machine: clock in/out, break/resume, manual
// edits, and week reset over a persistent store. Construction runs the
// recovery protocol, so a new engine is always consistent with the store
// and the current date before it accepts commands.
type Engine struct {
	mu       sync.Mutex
	store    Storage
	options  Config
	state    State
	week     model.WeekRecord
	session  model.SessionSnapshot
	events   []chan Event
	tickStop chan struct{}
	stopped  bool
}

// New creates an Engine bound to store and reconciles persisted state with
// the current date. The returned engine is already in its recovered state;
// an open same-day session resumes ticking immediately.
func New(store Storage, options Config) (*Engine, error) {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	engine := &Engine{
		store:   store,
		options: options,
		state:   StateClockedOut,
	}
	if err := engine.recover(); err != nil {
		return nil, err
	}
	return engine, nil
}

// Subscribe registers a new observer channel. Events are dropped rather
// than block when the buffer is full.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// Status returns the current observable state.
func (engine *Engine) Status() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return Status{
		State:          engine.state,
		ElapsedSeconds: engine.elapsedLocked(engine.options.Now()),
		Week:           engine.week,
	}
}

// Stop cancels the tick loop and closes all observer channels.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	if engine.stopped {
		engine.mu.Unlock()
		return
	}
	engine.stopped = true
	engine.stopTickerLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// ClockIn opens a new session. No-op unless clocked out.
func (engine *Engine) ClockIn() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StateClockedOut {
		return nil
	}

	now := engine.options.Now()
	engine.session = model.SessionSnapshot{
		Active:             true,
		SessionStartMillis: now.UnixMilli(),
	}
	engine.state = StateWorking
	engine.startTickerLocked()
	err := engine.store.SaveSessionSnapshot(engine.session)
	engine.emitLocked(Event{
		Type:           EventStateChange,
		State:          engine.state,
		ElapsedSeconds: 0,
		Week:           engine.week,
		At:             now,
	})
	return err
}

// ClockOut closes the session, crediting its elapsed seconds to today's
// bucket. Break time is never credited. No-op while clocked out.
func (engine *Engine) ClockOut() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state == StateClockedOut {
		return nil
	}

	now := engine.options.Now()
	elapsed := engine.session.BankedSeconds
	if engine.state == StateWorking {
		elapsed += (now.UnixMilli() - engine.session.SessionStartMillis) / 1000
	}
	engine.week.DailySeconds[model.DayOf(now)] += elapsed
	engine.session = model.SessionSnapshot{}
	engine.state = StateClockedOut
	engine.stopTickerLocked()

	err := engine.store.SaveWeekRecord(engine.week)
	if clearErr := engine.store.ClearSessionSnapshot(); err == nil {
		err = clearErr
	}
	engine.emitLocked(Event{
		Type:           EventStateChange,
		State:          engine.state,
		ElapsedSeconds: 0,
		Week:           engine.week,
		At:             now,
	})
	return err
}

// StartBreak pauses the running session: the current run is banked and the
// displayed elapsed time freezes. No-op unless working.
func (engine *Engine) StartBreak() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StateWorking {
		return nil
	}

	now := engine.options.Now()
	engine.session.BankedSeconds += (now.UnixMilli() - engine.session.SessionStartMillis) / 1000
	engine.session.OnBreak = true
	engine.session.BreakStartMillis = now.UnixMilli()
	engine.state = StateOnBreak
	engine.stopTickerLocked()

	err := engine.store.SaveSessionSnapshot(engine.session)
	engine.emitLocked(Event{
		Type:           EventStateChange,
		State:          engine.state,
		ElapsedSeconds: engine.session.BankedSeconds,
		Week:           engine.week,
		At:             now,
	})
	return err
}

// Resume restarts the running clock after a break. No-op unless on break.
func (engine *Engine) Resume() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StateOnBreak {
		return nil
	}

	now := engine.options.Now()
	engine.session.OnBreak = false
	engine.session.SessionStartMillis = now.UnixMilli()
	engine.session.BreakStartMillis = 0
	engine.state = StateWorking
	engine.startTickerLocked()

	err := engine.store.SaveSessionSnapshot(engine.session)
	engine.emitLocked(Event{
		Type:           EventStateChange,
		State:          engine.state,
		ElapsedSeconds: engine.session.BankedSeconds,
		Week:           engine.week,
		At:             now,
	})
	return err
}

// ToggleClock clocks in when clocked out, and out otherwise.
func (engine *Engine) ToggleClock() error {
	engine.mu.Lock()
	clockedOut := engine.state == StateClockedOut
	engine.mu.Unlock()

	if clockedOut {
		return engine.ClockIn()
	}
	return engine.ClockOut()
}

// ToggleBreak starts a break while working and resumes while on break.
// No-op while clocked out.
func (engine *Engine) ToggleBreak() error {
	engine.mu.Lock()
	state := engine.state
	engine.mu.Unlock()

	switch state {
	case StateWorking:
		return engine.StartBreak()
	case StateOnBreak:
		return engine.Resume()
	}
	return nil
}

// SetManualTime overwrites one day's bucket with hours*3600 + minutes*60
// seconds. The set is absolute, not additive, and is allowed in any state.
// Inputs are assumed non-negative; the boundary layer clamps before calling.
func (engine *Engine) SetManualTime(day model.Day, hours, minutes int) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	now := engine.options.Now()
	engine.week.DailySeconds[day] = int64(hours)*3600 + int64(minutes)*60
	err := engine.store.SaveWeekRecord(engine.week)
	engine.emitLocked(Event{
		Type:           EventWeekUpdate,
		State:          engine.state,
		ElapsedSeconds: engine.elapsedLocked(now),
		Week:           engine.week,
		At:             now,
	})
	return err
}

// ResetWeek zeroes all seven buckets and force-clears any active session.
// In-progress time is discarded, not credited; callers that consider that
// loss unintended must gate the call themselves.
func (engine *Engine) ResetWeek() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	now := engine.options.Now()
	wasActive := engine.session.Active
	engine.week = model.NewWeekRecord(model.MondayOf(now))
	engine.session = model.SessionSnapshot{}
	engine.state = StateClockedOut
	engine.stopTickerLocked()

	err := engine.store.SaveWeekRecord(engine.week)
	if clearErr := engine.store.ClearSessionSnapshot(); err == nil {
		err = clearErr
	}

	eventType := EventWeekUpdate
	if wasActive {
		eventType = EventStateChange
	}
	engine.emitLocked(Event{
		Type:           eventType,
		State:          engine.state,
		ElapsedSeconds: 0,
		Week:           engine.week,
		At:             now,
	})
	return err
}

// recover reconciles persisted state with the current date. It runs once,
// before any command is accepted, and is idempotent: a second run over the
// same store produces the same state.
func (engine *Engine) recover() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	now := engine.options.Now()
	week, replaced, err := engine.store.LoadWeekRecord(model.MondayOf(now))
	if err != nil {
		return err
	}
	engine.week = week

	// A new week never starts with an open session carried over.
	if replaced {
		if err := engine.store.ClearSessionSnapshot(); err != nil {
			return err
		}
	}

	snapshot, err := engine.store.LoadSessionSnapshot()
	if err != nil {
		return err
	}
	if replaced || !snapshot.Active {
		engine.becomeClockedOutLocked(now)
		return nil
	}

	start := time.UnixMilli(snapshot.SessionStartMillis).In(now.Location())
	if sameDate(start, now) {
		engine.session = snapshot
		if snapshot.OnBreak {
			engine.state = StateOnBreak
		} else {
			engine.state = StateWorking
			engine.startTickerLocked()
		}
		engine.emitLocked(Event{
			Type:           EventStateChange,
			State:          engine.state,
			ElapsedSeconds: engine.elapsedLocked(now),
			Week:           engine.week,
			At:             now,
		})
		return nil
	}

	// The session crossed midnight while the process was down. Credit the
	// portion up to the end of its start day to that day and force-close;
	// the gap between that midnight and now is not tracked for any day.
	credit := snapshot.BankedSeconds
	if !snapshot.OnBreak {
		endOfStartDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()).AddDate(0, 0, 1)
		credit += (endOfStartDay.UnixMilli() - snapshot.SessionStartMillis) / 1000
	}
	if err := engine.creditDayLocked(start, credit, now); err != nil {
		return err
	}
	if err := engine.store.ClearSessionSnapshot(); err != nil {
		return err
	}
	engine.becomeClockedOutLocked(now)
	return nil
}

// creditDayLocked adds seconds to the bucket owning date, persisting into
// the week record that contains that date. When the date falls outside the
// retained week, its own week's record is revalidated and written first,
// then the current week's record is restored; only one week is kept.
func (engine *Engine) creditDayLocked(date time.Time, seconds int64, now time.Time) error {
	anchor := model.MondayOf(date)
	if anchor.Equal(engine.week.Anchor) {
		engine.week.DailySeconds[model.DayOf(date)] += seconds
		return engine.store.SaveWeekRecord(engine.week)
	}

	past, _, err := engine.store.LoadWeekRecord(anchor)
	if err != nil {
		return err
	}
	past.DailySeconds[model.DayOf(date)] += seconds
	if err := engine.store.SaveWeekRecord(past); err != nil {
		return err
	}
	return engine.store.SaveWeekRecord(engine.week)
}

func (engine *Engine) becomeClockedOutLocked(now time.Time) {
	engine.session = model.SessionSnapshot{}
	engine.state = StateClockedOut
	engine.stopTickerLocked()
	engine.emitLocked(Event{
		Type:           EventStateChange,
		State:          engine.state,
		ElapsedSeconds: 0,
		Week:           engine.week,
		At:             now,
	})
}

// elapsedLocked computes the displayed session seconds: running total while
// working, frozen banked total on break, zero when clocked out.
func (engine *Engine) elapsedLocked(now time.Time) int64 {
	switch engine.state {
	case StateWorking:
		return engine.session.BankedSeconds + (now.UnixMilli()-engine.session.SessionStartMillis)/1000
	case StateOnBreak:
		return engine.session.BankedSeconds
	}
	return 0
}

func (engine *Engine) startTickerLocked() {
	if engine.tickStop != nil || engine.stopped {
		return
	}
	stop := make(chan struct{})
	engine.tickStop = stop
	go engine.runTicker(stop)
}

func (engine *Engine) stopTickerLocked() {
	if engine.tickStop != nil {
		close(engine.tickStop)
		engine.tickStop = nil
	}
}

// runTicker republishes the elapsed display while working. It never mutates
// authoritative state; transitions out of working stop it via the channel.
func (engine *Engine) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(engine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case tickTime := <-ticker.C:
			engine.tick(tickTime)
		}
	}
}

func (engine *Engine) tick(tickTime time.Time) {
	engine.mu.Lock()
	if engine.state != StateWorking {
		engine.mu.Unlock()
		return
	}
	engine.emitLocked(Event{
		Type:           EventProgress,
		State:          engine.state,
		ElapsedSeconds: engine.elapsedLocked(engine.options.Now()),
		Week:           engine.week,
		At:             tickTime,
	})
	engine.mu.Unlock()
}

func (engine *Engine) emitLocked(event Event) {
	events := append([]chan Event(nil), engine.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}

func sameDate(a, b time.Time) bool {
	aYear, aMonth, aDay := a.Date()
	bYear, bMonth, bDay := b.Date()
	return aYear == bYear && aMonth == bMonth && aDay == bDay
}
