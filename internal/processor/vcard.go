package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// VCardProcessor handles shared contact cards. Receiving one is treated as a
// referral, so the reply thanks the user by the contact's name.
type VCardProcessor struct{}

func NewVCardProcessor() *VCardProcessor {
	return &VCardProcessor{}
}

// Process extracts the contact's display name and phone number from the vCard
// body and builds the thank-you reply.
func (p *VCardProcessor) Process(ctx context.Context, user *domain.User, msg *domain.Message) (string, error) {
	name, phone := parseVCard(msg.Body)
	if name == "" && phone == "" {
		return "", fmt.Errorf("vcard from %s has no FN or TEL field", msg.Sender)
	}
	if name == "" {
		name = phone
	}
	return fmt.Sprintf("Thanks for sharing %s's contact! We'll reach out and invite them to start tracking their goals too. 🙌", name), nil
}

// parseVCard pulls FN and TEL out of a vCard 3.0 body. TEL lines may carry
// parameters (TEL;type=CELL:+1555...), so only the part after the last colon
// counts.
func parseVCard(body string) (name, phone string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "FN:"):
			if name == "" {
				name = strings.TrimSpace(strings.TrimPrefix(line, "FN:"))
			}
		case strings.HasPrefix(line, "TEL"):
			if idx := strings.LastIndex(line, ":"); idx >= 0 && phone == "" {
				phone = strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return name, phone
}
