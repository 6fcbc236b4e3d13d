// Package whatsapp implements the WhatsApp Business Cloud API client used by
// the sender worker for whatsapp_business recipients.
package whatsapp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// Config configures the shared HTTP client. Retries apply only to
// connection/timeout errors; HTTP status >= 400 is terminal.
type Config struct {
	BaseURL       string
	Token         string
	PhoneNumberID string
	Timeout       time.Duration
	MaxRetries    int
	BackoffFactor float64 // wait = BackoffFactor * 2^attempt seconds
}

// APIError is a terminal protocol failure carrying the HTTP status and
// whatever error body the API returned. It is never retried.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status %d: %s", e.StatusCode, e.Body)
}

// Client is the Business API client
type Client struct {
	http          *resty.Client
	phoneNumberID string
}

// NewClient creates a client with retry/backoff configured per cfg
func NewClient(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.Token).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		AddRetryCondition(func(_ *resty.Response, err error) bool {
			// Only transport failures (connection refused, timeout) retry;
			// any HTTP response, including >= 400, is final.
			return err != nil
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			attempt := 1
			if resp != nil && resp.Request != nil {
				attempt = resp.Request.Attempt
			}
			wait := cfg.BackoffFactor * math.Pow(2, float64(attempt))
			return time.Duration(wait * float64(time.Second)), nil
		})

	return &Client{http: httpClient, phoneNumberID: cfg.PhoneNumberID}
}

// SendText sends a plain text message
func (c *Client) SendText(ctx context.Context, to, body string, previewURL bool) error {
	return c.post(ctx, textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body, PreviewURL: previewURL},
	})
}

// Deliver implements the sender worker's transport contract
func (c *Client) Deliver(ctx context.Context, msg *domain.Message) error {
	return c.SendText(ctx, msg.Sender, msg.Body, false)
}

func (c *Client) post(ctx context.Context, payload any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/" + c.phoneNumberID + "/messages")
	if err != nil {
		return fmt.Errorf("failed to reach whatsapp api: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}
