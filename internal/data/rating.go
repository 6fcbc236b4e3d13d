package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// ratingRepo implements the Rating repository
type ratingRepo struct {
	db *sql.DB
}

// Upsert creates the rating for (goalID, day) if absent, else updates it
func (r *ratingRepo) Upsert(ctx context.Context, goalID int64, day string, value int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (goal_id, day, value)
		VALUES (?, ?, ?)
		ON CONFLICT(goal_id, day) DO UPDATE SET value = excluded.value
	`, goalID, day, value)
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

// UnratedGoals lists the user's goals with no rating for the day
func (r *ratingRepo) UnratedGoals(ctx context.Context, userID int64, day string) ([]*domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.user_id, g.emoji, g.description, g.boost_level, g.reminder_time
		FROM goals g
		WHERE g.user_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM ratings r WHERE r.goal_id = g.id AND r.day = ?
		  )
		ORDER BY g.id
	`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list unrated goals: %w", err)
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

// ListByUser lists all ratings across the user's goals
func (r *ratingRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.goal_id, r.day, r.value
		FROM ratings r
		JOIN goals g ON g.id = r.goal_id
		WHERE g.user_id = ?
		ORDER BY r.day, r.goal_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*domain.Rating
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(&rating.ID, &rating.GoalID, &rating.Day, &rating.Value); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}
