// Package processor implements the non-chat message processors the router
// worker delegates to.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// Transcripts longer than this many words get a one-line summary instead of
// being echoed back in full.
const summaryWordThreshold = 80

// AudioProcessor transcribes voice messages and, for long recordings,
// summarizes them before replying.
type AudioProcessor struct {
	client    *openai.Client
	chatModel string
	http      *http.Client
	log       zerolog.Logger
}

// NewAudioProcessor creates a processor backed by an OpenAI-compatible API
func NewAudioProcessor(apiKey string, log zerolog.Logger) *AudioProcessor {
	return &AudioProcessor{
		client:    openai.NewClient(apiKey),
		chatModel: openai.GPT4oMini,
		http:      &http.Client{Timeout: 60 * time.Second},
		log:       log.With().Str("component", "audio").Logger(),
	}
}

// Process downloads the voice recording, transcribes it and builds the reply
// text. When the user opted in, the full transcript comes back as an
// attachment alongside the reply.
func (p *AudioProcessor) Process(ctx context.Context, user *domain.User, msg *domain.Message) (string, map[string]any, error) {
	audio, err := p.fetchAudio(ctx, msg)
	if err != nil {
		return "", nil, err
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "voice-message.ogg",
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		return "I couldn't hear anything in that voice message — could you try again?", nil, nil
	}

	reply := "🎙 You said: " + transcript
	if len(strings.Fields(transcript)) > summaryWordThreshold {
		summary, err := p.summarize(ctx, transcript)
		if err != nil {
			// Fall back to the raw transcript rather than failing the turn.
			p.log.Warn().Err(err).Str("sender", msg.Sender).Msg("summarization failed")
		} else {
			reply = "🎙 Here's the gist: " + summary
		}
	}

	var attachments map[string]any
	if user.SendTranscript {
		attachments = map[string]any{"transcript": transcript}
	}
	return reply, attachments, nil
}

func (p *AudioProcessor) fetchAudio(ctx context.Context, msg *domain.Message) ([]byte, error) {
	if data, ok := msg.Attachments["data"].([]byte); ok {
		return data, nil
	}

	url := msg.Body
	if u, ok := msg.Attachments["url"].(string); ok {
		url = u
	}
	if url == "" {
		return nil, fmt.Errorf("audio message from %s has no media url", msg.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build media request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (p *AudioProcessor) summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Summarize the user's voice message in one or two sentences, keeping their point of view.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: transcript,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize transcript: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarization returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
