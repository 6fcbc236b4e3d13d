package domain

import "time"

// DayLayout is the calendar-day key format used by ratings
const DayLayout = "2006-01-02"

// Rating is one row per (goal, calendar day); writes use upsert semantics.
type Rating struct {
	ID     int64
	GoalID int64
	Day    string // YYYY-MM-DD in the owner's timezone
	Value  int    // 1..3
}

// Today formats the current calendar day in the given timezone
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DayLayout)
}
