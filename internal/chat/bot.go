package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// FallbackReply is shown when the assistant cannot be reached.
const FallbackReply = "Sorry, I couldn't reach the assistant. Please try again later."

// BotAPI is the backend surface the FAQ assistant needs.
type BotAPI interface {
	AskChatbot(ctx context.Context, message string) (string, error)
}

// Exchange is one user utterance and the assistant's reply.
type Exchange struct {
	User     string
	Bot      string
	Fallback bool
}

// Bot is the FAQ assistant panel. Every utterance is sent on its own; the
// transcript exists only on the client.
type Bot struct {
	backend BotAPI
	logger  *slog.Logger

	mu         sync.Mutex
	transcript []Exchange
}

// NewBot builds the assistant controller.
func NewBot(backend BotAPI, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{backend: backend, logger: logger}
}

// Ask sends text and appends the (user, bot) pair. Failures never surface
// as errors; they produce FallbackReply. Blank input is ignored.
func (b *Bot) Ask(ctx context.Context, text string) (Exchange, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Exchange{}, false
	}
	exchange := Exchange{User: text}
	reply, err := b.backend.AskChatbot(ctx, text)
	switch {
	case err != nil:
		b.logger.Debug("chatbot request failed", "error", err)
		exchange.Bot, exchange.Fallback = FallbackReply, true
	case strings.TrimSpace(reply) == "":
		exchange.Bot, exchange.Fallback = FallbackReply, true
	default:
		exchange.Bot = reply
	}

	b.mu.Lock()
	b.transcript = append(b.transcript, exchange)
	b.mu.Unlock()
	return exchange, true
}

// Transcript returns the exchanges so far, oldest first.
func (b *Bot) Transcript() []Exchange {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Exchange, len(b.transcript))
	copy(out, b.transcript)
	return out
}
