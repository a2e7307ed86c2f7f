// Package oracle talks to the study assistant and turns its replies into
// quest proposals.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"studyquest/internal/config"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client sends a full conversation and returns the assistant reply.
type Client interface {
	Send(ctx context.Context, messages []Message) (string, error)
}

// SilentReply is returned when the provider answers with no content.
const SilentReply = "The Oracle is silent..."

var ErrNoAPIKey = errors.New("oracle api key not configured")

// NewClient returns the client for cfg.Provider.
func NewClient(cfg config.Oracle) (Client, error) {
	switch cfg.Provider {
	case "", "groq":
		return NewGroqClient(cfg), nil
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
