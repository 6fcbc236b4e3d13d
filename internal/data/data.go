// Package data implements the record store repositories on SQLite.
package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goalbot/goalbot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Store bundles all repositories over one database handle
type Store struct {
	db *sql.DB

	Users   repo.UserRepo
	Goals   repo.GoalRepo
	Ratings repo.RatingRepo
}

// Open opens (creating if needed) the SQLite database and all repositories
func Open(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		Users:   &userRepo{db: db},
		Goals:   &goalRepo{db: db},
		Ratings: &ratingRepo{db: db},
	}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			phone TEXT NOT NULL UNIQUE,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			client_type TEXT NOT NULL DEFAULT 'whatsapp_business',
			state_name TEXT NOT NULL DEFAULT '',
			state_data TEXT NOT NULL DEFAULT '',
			send_transcript INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			emoji TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL,
			boost_level INTEGER NOT NULL DEFAULT 0,
			reminder_time TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create goals table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to create goals index: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ratings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			goal_id INTEGER NOT NULL REFERENCES goals(id),
			day TEXT NOT NULL,
			value INTEGER NOT NULL,
			UNIQUE(goal_id, day)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create ratings table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
