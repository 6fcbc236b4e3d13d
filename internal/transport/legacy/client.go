// Package legacy implements the whatsapp_web JSON bridge transport: a single
// POST per message with no retries.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// Client posts messages to the legacy bridge endpoint
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a legacy bridge client
func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendRequest struct {
	Number      string         `json:"number"`
	Message     string         `json:"message"`
	Attachments map[string]any `json:"attachments,omitempty"`
}

// Deliver sends one outbound message to the bridge
func (c *Client) Deliver(ctx context.Context, msg *domain.Message) error {
	reqBody, err := json.Marshal(sendRequest{
		Number:      msg.Sender,
		Message:     msg.Body,
		Attachments: msg.Attachments,
	})
	if err != nil {
		return fmt.Errorf("failed to encode bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bridge returned status %d: %q", resp.StatusCode, string(body))
	}
	return nil
}
