package model

import "time"

// Day identifies one weekday bucket of the tracked week, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days lists all weekdays in display order.
var Days = [7]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (day Day) String() string {
	if day < Monday || day > Sunday {
		return "unknown"
	}
	return dayNames[day]
}

// DayOf returns the bucket a local calendar date belongs to.
func DayOf(at time.Time) Day {
	return Day((int(at.Weekday()) + 6) % 7)
}

// MondayOf returns local midnight of the Monday on or before at.
func MondayOf(at time.Time) time.Time {
	midnight := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	return midnight.AddDate(0, 0, -((int(midnight.Weekday()) + 6) % 7))
}

// WeekRecord holds the accumulated seconds for one tracked week.
// Anchor is local midnight of the week's Monday; a record whose anchor
// is not the current week's Monday is stale and must be replaced.
type WeekRecord struct {
	Anchor       time.Time
	DailySeconds [7]int64
}

// NewWeekRecord returns a zeroed record for the given week anchor.
func NewWeekRecord(anchor time.Time) WeekRecord {
	return WeekRecord{Anchor: anchor}
}

// TotalSeconds sums all seven day buckets.
func (record WeekRecord) TotalSeconds() int64 {
	var total int64
	for _, seconds := range record.DailySeconds {
		total += seconds
	}
	return total
}
