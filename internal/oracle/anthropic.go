package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"studyquest/internal/config"
)

const DefaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicClient sends conversations through the Messages API. System
// messages are lifted into the request's system prompt.
type AnthropicClient struct {
	client      anthropic.Client
	hasKey      bool
	model       string
	temperature float64
	maxTokens   int64
}

func NewAnthropicClient(cfg config.Oracle) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	c := &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		hasKey:      cfg.APIKey != "",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
	}
	if c.model == "" {
		c.model = DefaultAnthropicModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 1024
	}
	return c
}

func (c *AnthropicClient) Send(ctx context.Context, messages []Message) (string, error) {
	if !c.hasKey {
		return "", ErrNoAPIKey
	}

	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		System:      system,
		Messages:    turns,
		Temperature: anthropic.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return SilentReply, nil
	}
	return b.String(), nil
}
