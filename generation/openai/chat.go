// Package openai completes prompts with the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/viant/projectlens/generation"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	completionsPath    = "/chat/completions"
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 90 * time.Second
)

// Message is a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Option configures a Generator.
type Option func(*Generator)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = &t }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// Generator calls the chat completions endpoint.
type Generator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
	maxTokens   int
	httpClient  *http.Client
}

// New creates a generator. An empty apiKey falls back to OPENAI_API_KEY.
func New(apiKey, model string, opts ...Option) *Generator {
	g := &Generator{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	if g.apiKey == "" {
		g.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if g.model == "" {
		g.model = defaultModel
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the model name.
func (g *Generator) Model() string { return g.model }

// Complete sends a system and a user message.
func (g *Generator) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []Message
	if strings.TrimSpace(system) != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})
	body, err := json.Marshal(request{Model: g.model, Messages: messages, Temperature: g.temperature, MaxTokens: g.maxTokens})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()
	var out response
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("openai: API error (%s): %s", out.Error.Type, out.Error.Message)
		}
		return "", fmt.Errorf("openai: API error: %s", resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", generation.ErrEmptyResponse
	}
	return generation.Text(out.Choices[0].Message.Content)
}
