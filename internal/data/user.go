package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// userRepo implements the User repository
type userRepo struct {
	db *sql.DB
}

// GetByPhone gets a user by phone number; returns (nil, nil) when absent
func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, phone, timezone, client_type, state_name, state_data, send_transcript
		FROM users
		WHERE phone = ?
	`, phone)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// Create inserts a user and fills in its ID
func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	stateName, stateData, err := encodeState(user.State)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO users (phone, timezone, client_type, state_name, state_data, send_transcript)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.Phone, user.Timezone, string(user.ClientType), stateName, stateData, boolToInt(user.SendTranscript))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	return nil
}

// SetState overwrites the conversation state; nil clears it
func (r *userRepo) SetState(ctx context.Context, userID int64, state *domain.ConversationState) error {
	stateName, stateData, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE users SET state_name = ?, state_data = ? WHERE id = ?
	`, stateName, stateData, userID)
	if err != nil {
		return fmt.Errorf("failed to set user state: %w", err)
	}
	return nil
}

// SetClientType records the transport channel last used by the user
func (r *userRepo) SetClientType(ctx context.Context, userID int64, clientType domain.ClientType) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET client_type = ? WHERE id = ?
	`, string(clientType), userID)
	if err != nil {
		return fmt.Errorf("failed to set client type: %w", err)
	}
	return nil
}

// SetSendTranscript toggles transcript-file delivery
func (r *userRepo) SetSendTranscript(ctx context.Context, userID int64, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET send_transcript = ? WHERE id = ?
	`, boolToInt(enabled), userID)
	if err != nil {
		return fmt.Errorf("failed to set send_transcript: %w", err)
	}
	return nil
}

// ListAll lists all users
func (r *userRepo) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, phone, timezone, client_type, state_name, state_data, send_transcript
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var clientType, stateName, stateData string
	var sendTranscript int
	if err := row.Scan(&user.ID, &user.Phone, &user.Timezone, &clientType, &stateName, &stateData, &sendTranscript); err != nil {
		return nil, err
	}
	user.ClientType = domain.ClientType(clientType)
	user.SendTranscript = sendTranscript != 0

	if stateName != "" {
		var state domain.ConversationState
		if err := json.Unmarshal([]byte(stateData), &state); err != nil {
			return nil, fmt.Errorf("failed to decode state data: %w", err)
		}
		state.Name = domain.StateName(stateName)
		user.State = &state
	}
	return &user, nil
}

func encodeState(state *domain.ConversationState) (string, string, error) {
	if state == nil {
		return "", "", nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode state data: %w", err)
	}
	return string(state.Name), string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
