// Package openai implements completion.Completer against the OpenAI chat
// completions API (or any API-compatible endpoint).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/completion"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the OpenAI API base URL.
	DefaultBaseURL = "https://api.openai.com"

	defaultTimeout = 120 * time.Second
)

// Completer wraps the OpenAI chat completions endpoint.
type Completer struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the OpenAI completer.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the chat model. Defaults to DefaultModel if empty.
	Model string

	// Timeout bounds each completion call. Defaults to 120s if zero.
	Timeout time.Duration
}

type completionRequest struct {
	Model    string         `json:"model"`
	Messages []chat.Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chat.Message `json:"message"`
	} `json:"choices"`
}

// NewCompleter creates a completer using the OpenAI chat completions API.
func NewCompleter(cfg Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Completer{
		baseURL: baseURL,
		model:   model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Complete sends the messages and returns the first choice's text.
func (c *Completer) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	reqBody := completionRequest{
		Model:    c.model,
		Messages: messages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", completion.ErrCompletion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", completion.ErrCompletion, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", completion.ErrCompletion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: openai returned status %d: %s", completion.ErrCompletion, resp.StatusCode, string(body))
	}

	var compResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&compResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", completion.ErrCompletion, err)
	}

	if len(compResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", completion.ErrCompletion)
	}

	return compResp.Choices[0].Message.Content, nil
}

// Close releases resources held by the completer.
func (c *Completer) Close() error {
	return nil
}

// Ensure Completer implements completion.Completer.
var _ completion.Completer = (*Completer)(nil)
