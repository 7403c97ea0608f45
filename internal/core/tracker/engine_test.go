package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchclock/internal/core/model"
	"punchclock/internal/storage"
)

// 2025-01-06 is a Monday; most tests run on Wednesday the 8th.
var wednesdayMorning = time.Date(2025, time.January, 8, 9, 0, 0, 0, time.Local)

type fakeClock struct {
	at time.Time
}

func (clock *fakeClock) now() time.Time {
	return clock.at
}

func (clock *fakeClock) advance(delta time.Duration) {
	clock.at = clock.at.Add(delta)
}

// newTestEngine runs recovery against dir at the fake clock's current time.
// The tick interval is long enough that the ticker never fires in tests.
func newTestEngine(t *testing.T, dir string, clock *fakeClock) *Engine {
	t.Helper()
	engine, err := New(storage.OpenAt(dir), Config{TickInterval: time.Hour, Now: clock.now})
	require.NoError(t, err)
	t.Cleanup(engine.Stop)
	return engine
}

func TestClockInClockOut_CreditsExactSeconds(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(600*time.Second + 900*time.Millisecond)
	require.NoError(t, engine.ClockOut())

	status := engine.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.ElapsedSeconds)
	assert.Equal(t, int64(600), status.Week.DailySeconds[model.Wednesday], "fractional second floors away")
	assert.Equal(t, int64(600), status.Week.TotalSeconds(), "exactly one bucket credited")
}

func TestBreakTime_NeverCredited(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(100 * time.Second)
	require.NoError(t, engine.StartBreak())
	clock.advance(400 * time.Second)
	require.NoError(t, engine.Resume())
	clock.advance(100 * time.Second)
	require.NoError(t, engine.ClockOut())

	status := engine.Status()
	assert.Equal(t, int64(200), status.Week.DailySeconds[model.Wednesday], "the 400s break gap is excluded")
}

func TestElapsed_FrozenOnBreak(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(250 * time.Second)
	require.NoError(t, engine.StartBreak())

	assert.Equal(t, int64(250), engine.Status().ElapsedSeconds)
	clock.advance(2 * time.Hour)
	assert.Equal(t, int64(250), engine.Status().ElapsedSeconds, "break time does not advance the display")

	require.NoError(t, engine.Resume())
	clock.advance(50 * time.Second)
	assert.Equal(t, int64(300), engine.Status().ElapsedSeconds)
}

func TestToggleClock_Dispatches(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ToggleClock())
	assert.Equal(t, StateWorking, engine.Status().State)

	clock.advance(90 * time.Second)
	require.NoError(t, engine.ToggleClock())
	status := engine.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Equal(t, int64(90), status.Week.DailySeconds[model.Wednesday])
}

func TestToggleBreak_Dispatches(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ClockIn())
	require.NoError(t, engine.ToggleBreak())
	assert.Equal(t, StateOnBreak, engine.Status().State)

	require.NoError(t, engine.ToggleBreak())
	assert.Equal(t, StateWorking, engine.Status().State)
}

func TestToggleBreak_NoopWhileClockedOut(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ToggleBreak())

	status := engine.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.ElapsedSeconds)
}

func TestMultipleSessions_AccumulateInOneDay(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	for _, seconds := range []int64{120, 300, 30} {
		require.NoError(t, engine.ClockIn())
		clock.advance(time.Duration(seconds) * time.Second)
		require.NoError(t, engine.ClockOut())
		clock.advance(time.Minute)
	}

	assert.Equal(t, int64(450), engine.Status().Week.DailySeconds[model.Wednesday])
}

func TestSetManualTime_AbsoluteAndIdempotent(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.SetManualTime(model.Monday, 2, 30))
	require.NoError(t, engine.SetManualTime(model.Monday, 2, 30))

	assert.Equal(t, int64(9000), engine.Status().Week.DailySeconds[model.Monday], "absolute set, not additive")
}

func TestSetManualTime_AllowedWhileWorking(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(100 * time.Second)
	require.NoError(t, engine.SetManualTime(model.Tuesday, 1, 0))

	status := engine.Status()
	assert.Equal(t, StateWorking, status.State)
	assert.Equal(t, int64(100), status.ElapsedSeconds, "session unaffected by the edit")
	assert.Equal(t, int64(3600), status.Week.DailySeconds[model.Tuesday])
}

func TestResetWeek_ZeroesBucketsAndDiscardsSession(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.SetManualTime(model.Monday, 8, 0))
	require.NoError(t, engine.ClockIn())
	clock.advance(30 * time.Minute)
	require.NoError(t, engine.ResetWeek())

	status := engine.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.Week.TotalSeconds(), "in-progress time is discarded, not credited")

	// The reset is durable: a fresh engine observes the same state.
	restarted := newTestEngine(t, dir, clock)
	status = restarted.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.Week.TotalSeconds())
}

func TestRecovery_NoSession(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)

	status := engine.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.ElapsedSeconds)
	assert.Zero(t, status.Week.TotalSeconds())
}

func TestRecovery_SameDayWorkingSessionRestored(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(300 * time.Second)
	engine.Stop()

	restarted := newTestEngine(t, dir, clock)
	status := restarted.Status()
	assert.Equal(t, StateWorking, status.State)
	assert.Equal(t, int64(300), status.ElapsedSeconds)
}

func TestRecovery_SameDayBreakRestoredFrozen(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(180 * time.Second)
	require.NoError(t, engine.StartBreak())
	engine.Stop()

	clock.advance(45 * time.Minute)
	restarted := newTestEngine(t, dir, clock)
	status := restarted.Status()
	assert.Equal(t, StateOnBreak, status.State)
	assert.Equal(t, int64(180), status.ElapsedSeconds, "still frozen at the banked total")
}

func TestRecovery_MidnightCrossingCreditsStartDay(t *testing.T) {
	dir := t.TempDir()
	lateEvening := time.Date(2025, time.January, 8, 23, 50, 0, 0, time.Local)
	clock := &fakeClock{at: lateEvening}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.ClockIn())
	engine.Stop()

	// Recovered at 00:10 the next day: 600s go to Wednesday, nothing to
	// Thursday, and the session is force-closed.
	clock.advance(20 * time.Minute)
	restarted := newTestEngine(t, dir, clock)

	status := restarted.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.ElapsedSeconds)
	assert.Equal(t, int64(600), status.Week.DailySeconds[model.Wednesday])
	assert.Zero(t, status.Week.DailySeconds[model.Thursday])
}

func TestRecovery_MidnightCrossingOnBreakCreditsBankedOnly(t *testing.T) {
	dir := t.TempDir()
	evening := time.Date(2025, time.January, 8, 23, 0, 0, 0, time.Local)
	clock := &fakeClock{at: evening}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.ClockIn())
	clock.advance(30 * time.Minute)
	require.NoError(t, engine.StartBreak())
	engine.Stop()

	clock.advance(2 * time.Hour)
	restarted := newTestEngine(t, dir, clock)

	status := restarted.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Equal(t, int64(1800), status.Week.DailySeconds[model.Wednesday], "only the banked 30 minutes count")
	assert.Zero(t, status.Week.DailySeconds[model.Thursday])
}

func TestRecovery_StaleWeekDropsSessionEntirely(t *testing.T) {
	dir := t.TempDir()
	sundayNight := time.Date(2025, time.January, 12, 23, 0, 0, 0, time.Local)
	clock := &fakeClock{at: sundayNight}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.SetManualTime(model.Friday, 6, 0))
	require.NoError(t, engine.ClockIn())
	engine.Stop()

	// Next Monday morning: the stored week is stale, so totals reset and
	// the open session does not carry into the new week.
	clock.advance(9 * time.Hour)
	restarted := newTestEngine(t, dir, clock)

	status := restarted.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Zero(t, status.Week.TotalSeconds(), "old totals never carry over")
	assert.True(t, status.Week.Anchor.Equal(time.Date(2025, time.January, 13, 0, 0, 0, 0, time.Local)))
}

func TestRecovery_CrossWeekStartDayWithCurrentAnchor(t *testing.T) {
	// The stored week record already carries the current week's anchor
	// while the open session started in the previous week. The start day
	// is credited against its own week's record and the current week's
	// totals survive untouched.
	dir := t.TempDir()
	store := storage.OpenAt(dir)

	currentMonday := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.Local)
	record := model.NewWeekRecord(currentMonday)
	record.DailySeconds[model.Monday] = 100
	require.NoError(t, store.SaveWeekRecord(record))

	sundayStart := time.Date(2025, time.January, 12, 23, 50, 0, 0, time.Local)
	require.NoError(t, store.SaveSessionSnapshot(model.SessionSnapshot{
		Active:             true,
		SessionStartMillis: sundayStart.UnixMilli(),
	}))

	clock := &fakeClock{at: currentMonday.Add(10 * time.Minute)}
	engine := newTestEngine(t, dir, clock)

	status := engine.Status()
	assert.Equal(t, StateClockedOut, status.State)
	assert.Equal(t, int64(100), status.Week.DailySeconds[model.Monday], "current week totals preserved")
	assert.Equal(t, int64(100), status.Week.TotalSeconds(), "stray credit never lands in the current week")
}

func TestRecovery_Idempotent(t *testing.T) {
	dir := t.TempDir()
	lateEvening := time.Date(2025, time.January, 8, 23, 50, 0, 0, time.Local)
	clock := &fakeClock{at: lateEvening}
	engine := newTestEngine(t, dir, clock)

	require.NoError(t, engine.ClockIn())
	engine.Stop()

	clock.advance(20 * time.Minute)
	first := newTestEngine(t, dir, clock)
	firstStatus := first.Status()
	first.Stop()

	second := newTestEngine(t, dir, clock)
	secondStatus := second.Status()

	assert.Equal(t, firstStatus.State, secondStatus.State)
	assert.Equal(t, firstStatus.ElapsedSeconds, secondStatus.ElapsedSeconds)
	assert.Equal(t, firstStatus.Week.DailySeconds, secondStatus.Week.DailySeconds)
	assert.Equal(t, int64(600), secondStatus.Week.DailySeconds[model.Wednesday], "no double credit")
}

func TestSubscribe_EmitsOnEveryTransition(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)
	events := engine.Subscribe(8)

	require.NoError(t, engine.ClockIn())
	clock.advance(60 * time.Second)
	require.NoError(t, engine.StartBreak())
	require.NoError(t, engine.Resume())
	clock.advance(60 * time.Second)
	require.NoError(t, engine.ClockOut())

	var received []Event
	for len(received) < 4 {
		received = append(received, <-events)
	}

	assert.Equal(t, StateWorking, received[0].State)
	assert.Equal(t, StateOnBreak, received[1].State)
	assert.Equal(t, int64(60), received[1].ElapsedSeconds)
	assert.Equal(t, StateWorking, received[2].State)
	assert.Equal(t, StateClockedOut, received[3].State)
	assert.Equal(t, int64(120), received[3].Week.DailySeconds[model.Wednesday], "final event carries the credited totals")

	for _, event := range received {
		assert.Equal(t, EventStateChange, event.Type)
	}
}

func TestSubscribe_WeekUpdateOnManualEdit(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)
	events := engine.Subscribe(4)

	require.NoError(t, engine.SetManualTime(model.Thursday, 0, 45))

	event := <-events
	assert.Equal(t, EventWeekUpdate, event.Type)
	assert.Equal(t, StateClockedOut, event.State)
	assert.Equal(t, int64(2700), event.Week.DailySeconds[model.Thursday])
}

func TestStop_ClosesObserverChannels(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	engine := newTestEngine(t, t.TempDir(), clock)
	events := engine.Subscribe(1)

	engine.Stop()

	_, open := <-events
	assert.False(t, open)
}

func TestTicker_PublishesProgressWhileWorking(t *testing.T) {
	clock := &fakeClock{at: wednesdayMorning}
	store := storage.OpenAt(t.TempDir())
	engine, err := New(store, Config{TickInterval: 5 * time.Millisecond, Now: clock.now})
	require.NoError(t, err)
	defer engine.Stop()

	events := engine.Subscribe(16)
	require.NoError(t, engine.ClockIn())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-events:
			if event.Type == EventProgress {
				assert.Equal(t, StateWorking, event.State)
				return
			}
		case <-deadline:
			t.Fatal("no progress event while working")
		}
	}
}
