package repo

import (
	"context"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// UserRepo is the user record store
type UserRepo interface {
	// GetByPhone returns the user for a phone number, or (nil, nil) when
	// no such user exists.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// Create inserts the user and fills in its ID.
	Create(ctx context.Context, user *domain.User) error

	// SetState overwrites the user's conversation state; nil clears it.
	SetState(ctx context.Context, userID int64, state *domain.ConversationState) error

	// SetClientType records the transport channel last used by the user.
	SetClientType(ctx context.Context, userID int64, clientType domain.ClientType) error

	// SetSendTranscript toggles transcript-file delivery for audio messages.
	SetSendTranscript(ctx context.Context, userID int64, enabled bool) error

	// ListAll returns every user, used by the reminder scheduler to build
	// its per-tick user map.
	ListAll(ctx context.Context) ([]*domain.User, error)
}
