package repo

import (
	"context"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// Transport delivers one outbound message over a specific channel
type Transport interface {
	Deliver(ctx context.Context, msg *domain.Message) error
}

// AudioProcessor turns an audio/ptt message into reply text plus optional
// attachments (e.g. a transcript file when the user opted in).
type AudioProcessor interface {
	Process(ctx context.Context, user *domain.User, msg *domain.Message) (string, map[string]any, error)
}

// VCardProcessor handles shared contact cards (referrals)
type VCardProcessor interface {
	Process(ctx context.Context, user *domain.User, msg *domain.Message) (string, error)
}

// TimezoneResolver derives an IANA timezone from a phone number's country
// code. Implementations return "UTC" when they cannot tell.
type TimezoneResolver interface {
	Resolve(phone string) string
}
