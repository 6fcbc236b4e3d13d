package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidPayload marks an interactive message that violates the API's
// field limits. Validation runs before any network call so malformed
// payloads are never sent.
var ErrInvalidPayload = errors.New("invalid interactive message payload")

// Field limits enforced by the Business API.
const (
	maxButtons            = 3
	maxButtonIDLen        = 256
	maxButtonTitleLen     = 20
	maxListSections       = 10
	maxListTotalRows      = 10
	maxListRowTitleLen    = 24
	maxListRowDescLen     = 72
	maxListSectionTitle   = 24
	maxListBodyLen        = 1024
	maxHeaderFooterLen    = 60
)

// Button is one reply button
type Button struct {
	ID    string
	Title string
}

// ListRow is one selectable row in a list message
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups rows under an optional title
type ListSection struct {
	Title string
	Rows  []ListRow
}

// ListMessage is an interactive list send
type ListMessage struct {
	Header     string
	Body       string
	Footer     string
	ButtonText string
	Sections   []ListSection
}

// SendReplyButtons sends 1-3 tappable reply buttons
func (c *Client) SendReplyButtons(ctx context.Context, to, body string, buttons []Button) error {
	if len(buttons) < 1 || len(buttons) > maxButtons {
		return fmt.Errorf("%w: need 1-%d buttons, got %d", ErrInvalidPayload, maxButtons, len(buttons))
	}
	for _, b := range buttons {
		if utf8.RuneCountInString(b.ID) > maxButtonIDLen {
			return fmt.Errorf("%w: button id exceeds %d chars", ErrInvalidPayload, maxButtonIDLen)
		}
		if utf8.RuneCountInString(b.Title) > maxButtonTitleLen {
			return fmt.Errorf("%w: button title %q exceeds %d chars", ErrInvalidPayload, b.Title, maxButtonTitleLen)
		}
	}

	wrapped := make([]buttonWrapper, len(buttons))
	for i, b := range buttons {
		wrapped[i] = buttonWrapper{Type: "reply", Reply: buttonReply{ID: b.ID, Title: b.Title}}
	}

	return c.post(ctx, interactivePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: interactive{
			Type:   "button",
			Body:   &interactiveText{Text: body},
			Action: &interactiveAction{Buttons: wrapped},
		},
	})
}

// SendList sends an interactive list message
func (c *Client) SendList(ctx context.Context, to string, list ListMessage) error {
	if err := validateList(list); err != nil {
		return err
	}

	sections := make([]sectionPayload, len(list.Sections))
	for i, s := range list.Sections {
		rows := make([]rowPayload, len(s.Rows))
		for j, r := range s.Rows {
			rows[j] = rowPayload{ID: r.ID, Title: r.Title, Description: r.Description}
		}
		sections[i] = sectionPayload{Title: s.Title, Rows: rows}
	}

	msg := interactive{
		Type:   "list",
		Body:   &interactiveText{Text: list.Body},
		Action: &interactiveAction{Button: list.ButtonText, Sections: sections},
	}
	if list.Header != "" {
		msg.Header = &interactiveText{Type: "text", Text: list.Header}
	}
	if list.Footer != "" {
		msg.Footer = &interactiveText{Text: list.Footer}
	}

	return c.post(ctx, interactivePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive:      msg,
	})
}

// SendCTAURL sends a call-to-action URL button
func (c *Client) SendCTAURL(ctx context.Context, to, body, displayText, url string) error {
	if utf8.RuneCountInString(body) > maxListBodyLen {
		return fmt.Errorf("%w: body exceeds %d chars", ErrInvalidPayload, maxListBodyLen)
	}
	return c.post(ctx, interactivePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: interactive{
			Type: "cta_url",
			Body: &interactiveText{Text: body},
			Action: &interactiveAction{
				Name:       "cta_url",
				Parameters: &ctaParameters{DisplayText: displayText, URL: url},
			},
		},
	})
}

func validateList(list ListMessage) error {
	if len(list.Sections) == 0 || len(list.Sections) > maxListSections {
		return fmt.Errorf("%w: need 1-%d sections, got %d", ErrInvalidPayload, maxListSections, len(list.Sections))
	}
	if utf8.RuneCountInString(list.Body) > maxListBodyLen {
		return fmt.Errorf("%w: body exceeds %d chars", ErrInvalidPayload, maxListBodyLen)
	}
	if utf8.RuneCountInString(list.Header) > maxHeaderFooterLen {
		return fmt.Errorf("%w: header exceeds %d chars", ErrInvalidPayload, maxHeaderFooterLen)
	}
	if utf8.RuneCountInString(list.Footer) > maxHeaderFooterLen {
		return fmt.Errorf("%w: footer exceeds %d chars", ErrInvalidPayload, maxHeaderFooterLen)
	}

	totalRows := 0
	for _, s := range list.Sections {
		if utf8.RuneCountInString(s.Title) > maxListSectionTitle {
			return fmt.Errorf("%w: section title %q exceeds %d chars", ErrInvalidPayload, s.Title, maxListSectionTitle)
		}
		for _, r := range s.Rows {
			if utf8.RuneCountInString(r.Title) > maxListRowTitleLen {
				return fmt.Errorf("%w: row title %q exceeds %d chars", ErrInvalidPayload, r.Title, maxListRowTitleLen)
			}
			if utf8.RuneCountInString(r.Description) > maxListRowDescLen {
				return fmt.Errorf("%w: row description exceeds %d chars", ErrInvalidPayload, maxListRowDescLen)
			}
		}
		totalRows += len(s.Rows)
	}
	if totalRows == 0 || totalRows > maxListTotalRows {
		return fmt.Errorf("%w: need 1-%d total rows, got %d", ErrInvalidPayload, maxListTotalRows, totalRows)
	}
	return nil
}

type interactivePayload struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Interactive      interactive `json:"interactive"`
}

type interactive struct {
	Type   string             `json:"type"`
	Header *interactiveText   `json:"header,omitempty"`
	Body   *interactiveText   `json:"body,omitempty"`
	Footer *interactiveText   `json:"footer,omitempty"`
	Action *interactiveAction `json:"action"`
}

type interactiveText struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

type interactiveAction struct {
	Buttons    []buttonWrapper  `json:"buttons,omitempty"`
	Button     string           `json:"button,omitempty"`
	Sections   []sectionPayload `json:"sections,omitempty"`
	Name       string           `json:"name,omitempty"`
	Parameters *ctaParameters   `json:"parameters,omitempty"`
}

type buttonWrapper struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type sectionPayload struct {
	Title string       `json:"title,omitempty"`
	Rows  []rowPayload `json:"rows"`
}

type rowPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ctaParameters struct {
	DisplayText string `json:"display_text"`
	URL         string `json:"url"`
}
