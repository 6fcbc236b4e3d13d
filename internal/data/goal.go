package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// goalRepo implements the Goal repository
type goalRepo struct {
	db *sql.DB
}

// Create inserts a goal and fills in its ID
func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (user_id, emoji, description, boost_level, reminder_time)
		VALUES (?, ?, ?, ?, ?)
	`, goal.UserID, goal.Emoji, goal.Description, goal.BoostLevel, goal.ReminderTime)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	goal.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read goal id: %w", err)
	}
	return nil
}

// GetByID gets a goal by ID; returns (nil, nil) when absent
func (r *goalRepo) GetByID(ctx context.Context, goalID int64) (*domain.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, emoji, description, boost_level, reminder_time
		FROM goals
		WHERE id = ?
	`, goalID)

	var goal domain.Goal
	err := row.Scan(&goal.ID, &goal.UserID, &goal.Emoji, &goal.Description, &goal.BoostLevel, &goal.ReminderTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return &goal, nil
}

// ListByUser lists the user's goals in creation order
func (r *goalRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Goal, error) {
	return r.list(ctx, `
		SELECT id, user_id, emoji, description, boost_level, reminder_time
		FROM goals
		WHERE user_id = ?
		ORDER BY id
	`, userID)
}

// ListWithReminders lists every goal with a configured reminder time
func (r *goalRepo) ListWithReminders(ctx context.Context) ([]*domain.Goal, error) {
	return r.list(ctx, `
		SELECT id, user_id, emoji, description, boost_level, reminder_time
		FROM goals
		WHERE reminder_time IS NOT NULL
		ORDER BY id
	`)
}

// SetReminderTime attaches a local reminder time to the goal
func (r *goalRepo) SetReminderTime(ctx context.Context, goalID int64, reminderTime string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE goals SET reminder_time = ? WHERE id = ?
	`, reminderTime, goalID)
	if err != nil {
		return fmt.Errorf("failed to set reminder time: %w", err)
	}
	return nil
}

// Delete removes the goal and its ratings
func (r *goalRepo) Delete(ctx context.Context, goalID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE goal_id = ?`, goalID); err != nil {
		return fmt.Errorf("failed to delete goal ratings: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, goalID); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (r *goalRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		var goal domain.Goal
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Emoji, &goal.Description, &goal.BoostLevel, &goal.ReminderTime); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, &goal)
	}
	return goals, rows.Err()
}
