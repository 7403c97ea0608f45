package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2025-01-06 is a Monday.
func localDate(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

func TestMondayOf_MidWeek(t *testing.T) {
	wednesday := localDate(2025, time.January, 8, 14, 30)

	anchor := MondayOf(wednesday)

	assert.Equal(t, localDate(2025, time.January, 6, 0, 0), anchor)
}

func TestMondayOf_MondayIsItsOwnAnchor(t *testing.T) {
	monday := localDate(2025, time.January, 6, 23, 59)

	assert.Equal(t, localDate(2025, time.January, 6, 0, 0), MondayOf(monday))
}

func TestMondayOf_SundayBelongsToPrecedingMonday(t *testing.T) {
	sunday := localDate(2025, time.January, 12, 1, 0)

	assert.Equal(t, localDate(2025, time.January, 6, 0, 0), MondayOf(sunday))
}

func TestMondayOf_NextMondayStartsNewWeek(t *testing.T) {
	nextMonday := localDate(2025, time.January, 13, 0, 0)

	assert.Equal(t, localDate(2025, time.January, 13, 0, 0), MondayOf(nextMonday))
}

func TestDayOf_MapsFullWeek(t *testing.T) {
	for offset, want := range Days {
		at := localDate(2025, time.January, 6+offset, 12, 0)
		assert.Equal(t, want, DayOf(at), "day offset %d", offset)
	}
}

func TestWeekRecord_TotalSeconds(t *testing.T) {
	record := NewWeekRecord(localDate(2025, time.January, 6, 0, 0))
	record.DailySeconds[Monday] = 3600
	record.DailySeconds[Friday] = 1800

	assert.Equal(t, int64(5400), record.TotalSeconds())
}

func TestNewWeekRecord_AllBucketsZero(t *testing.T) {
	record := NewWeekRecord(localDate(2025, time.January, 6, 0, 0))

	for _, day := range Days {
		assert.Zero(t, record.DailySeconds[day], day.String())
	}
}
