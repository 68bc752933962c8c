// Package anthropic implements completion.Completer on the official
// Anthropic SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/completion"
)

const (
	// DefaultModel is the default Anthropic model.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens caps the synthesized reply length.
	DefaultMaxTokens = 1024
)

// Completer wraps the Anthropic messages API.
type Completer struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// Config holds configuration for the Anthropic completer.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model is the Anthropic model. Defaults to DefaultModel if empty.
	Model string

	// MaxTokens caps the reply length. Defaults to DefaultMaxTokens.
	MaxTokens int64
}

// NewCompleter creates a completer using the Anthropic messages API.
func NewCompleter(cfg Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	return &Completer{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends the messages and returns the concatenated text blocks of
// the reply. System-role messages are lifted into the request's system
// prompt, as the messages API requires.
func (c *Completer) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	var system string
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
	}

	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += msg.Content
		case chat.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", completion.ErrCompletion, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return text, nil
}

// Close releases resources held by the completer.
func (c *Completer) Close() error {
	return nil
}

// Ensure Completer implements completion.Completer.
var _ completion.Completer = (*Completer)(nil)
