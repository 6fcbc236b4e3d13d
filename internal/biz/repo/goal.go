package repo

import (
	"context"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// GoalRepo is the goal record store
type GoalRepo interface {
	// Create inserts the goal and fills in its ID.
	Create(ctx context.Context, goal *domain.Goal) error

	// GetByID returns the goal, or (nil, nil) when absent.
	GetByID(ctx context.Context, goalID int64) (*domain.Goal, error)

	// ListByUser returns the user's goals in stable creation order; the
	// bulk-rating shorthand maps digits onto this order.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Goal, error)

	// ListWithReminders returns every goal with a configured reminder time,
	// across all users.
	ListWithReminders(ctx context.Context) ([]*domain.Goal, error)

	// SetReminderTime attaches a "HH:MM:SS" local reminder time.
	SetReminderTime(ctx context.Context, goalID int64, reminderTime string) error

	// Delete removes the goal and its ratings.
	Delete(ctx context.Context, goalID int64) error
}

// RatingRepo is the rating record store
type RatingRepo interface {
	// Upsert creates the rating for (goalID, day) if absent, else updates
	// the value in place.
	Upsert(ctx context.Context, goalID int64, day string, value int) error

	// UnratedGoals returns the user's goals with no rating for the day, in
	// creation order.
	UnratedGoals(ctx context.Context, userID int64, day string) ([]*domain.Goal, error)

	// ListByUser returns all ratings across the user's goals, ordered by
	// day then goal.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Rating, error)
}
