package domain

import (
	"fmt"
	"time"
)

// Reserved emoji/description pair marking the journaling goal, which gets a
// digest reminder instead of a single-line one.
const (
	JournalingEmoji       = "📗"
	JournalingDescription = "Journaling"
)

// ReminderTimeLayout is the stored format of a goal's daily reminder time
// (local wall-clock time in the owner's timezone).
const ReminderTimeLayout = "15:04:05"

// Goal represents one tracked habit. A goal with a non-nil ReminderTime is a
// scheduling subject for the reminder scheduler.
type Goal struct {
	ID           int64
	UserID       int64
	Emoji        string
	Description  string
	BoostLevel   int
	ReminderTime *string // "HH:MM:SS", nil when no reminder is configured
}

// IsJournaling reports whether the goal is the reserved journaling goal
func (g *Goal) IsJournaling() bool {
	return g.Emoji == JournalingEmoji && g.Description == JournalingDescription
}

// ReminderDueAt reports whether the goal's reminder fires at the given
// instant: the owner's local hour and minute must equal the configured
// reminder hour and minute exactly. Any other relationship, before or after,
// is not due. This is a pure function so a catch-up policy could be added
// without touching the scheduler loop.
func (g *Goal) ReminderDueAt(now time.Time, loc *time.Location) (bool, error) {
	if g.ReminderTime == nil {
		return false, nil
	}
	at, err := time.Parse(ReminderTimeLayout, *g.ReminderTime)
	if err != nil {
		return false, fmt.Errorf("failed to parse reminder time %q: %w", *g.ReminderTime, err)
	}
	local := now.In(loc)
	return local.Hour() == at.Hour() && local.Minute() == at.Minute(), nil
}
