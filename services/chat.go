package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/rpupo63/portfolio-backend/errs"
)

// promptWindow caps how much history goes into the prompt.
const promptWindow = 6

// ChatMessage is one turn of the portfolio chat.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// ChatService proxies the portfolio chat to a generative text model.
type ChatService struct {
	llm    llms.Model
	model  string
	logger zerolog.Logger
}

// NewChatService builds the Gemini-backed chat proxy.
func NewChatService(ctx context.Context, apiKey, model string) (*ChatService, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init googleai client: %w", err)
	}
	return &ChatService{
		llm:    llm,
		model:  model,
		logger: log.With().Str("serviceName", "chatService").Logger(),
	}, nil
}

// NewChatServiceWithModel wires an existing model; used by tests.
func NewChatServiceWithModel(llm llms.Model, model string) *ChatService {
	return &ChatService{
		llm:    llm,
		model:  model,
		logger: log.With().Str("serviceName", "chatService").Logger(),
	}
}

// Reply generates the assistant's next turn from the recent history. Only
// the last few messages are kept in the prompt window.
func (s *ChatService) Reply(ctx context.Context, history []ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", errs.NewMissingRequiredFieldError("messages")
	}
	last := history[len(history)-1]
	if last.Role != "user" || strings.TrimSpace(last.Text) == "" {
		return "", errs.NewInvalidFieldError("messages", "last message must be a non-empty user turn")
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, s.llm, buildPrompt(history),
		llms.WithModel(s.model),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("chat generation failed")
		return "", errs.NewInternalError("chat generation failed")
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "…"
	}
	return reply, nil
}

func buildPrompt(history []ChatMessage) string {
	recent := history
	if len(recent) > promptWindow {
		recent = recent[len(recent)-promptWindow:]
	}

	var b strings.Builder
	for _, m := range recent {
		role := "Assistant"
		if m.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Text)
	}
	b.WriteString("Assistant:")
	return b.String()
}
