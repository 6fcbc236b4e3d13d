package domain

import "time"

// StateName identifies a multi-turn conversation flow
type StateName string

const (
	// StateAwaitingReminderTime is entered by the add-goal handler right
	// after creating the goal; cleared once a reminder time is attached.
	StateAwaitingReminderTime StateName = "awaiting_reminder_time"
)

// ConversationState is the single-slot per-user marker driving multi-turn
// flows. A user has at most one active state; setting a new one overwrites
// the previous, clearing sets it to nil.
type ConversationState struct {
	Name StateName `json:"name"`

	// GoalID is the payload of StateAwaitingReminderTime.
	GoalID int64 `json:"goal_id,omitempty"`
}

// AwaitingReminderTime builds the state entered after goal creation
func AwaitingReminderTime(goalID int64) *ConversationState {
	return &ConversationState{Name: StateAwaitingReminderTime, GoalID: goalID}
}

// User represents a chat participant, created lazily on the first inbound
// message from an unseen phone number.
type User struct {
	ID             int64
	Phone          string
	Timezone       string // IANA zone name, "UTC" when unknown
	ClientType     ClientType
	State          *ConversationState
	SendTranscript bool
}

// Location resolves the user's timezone, falling back to UTC on unknown or
// invalid zone strings
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
