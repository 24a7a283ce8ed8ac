// Package ollama completes prompts with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/projectlens/generation"
)

const (
	defaultBaseURL     = "http://localhost:11434"
	chatEndpoint       = "/api/chat"
	defaultModel       = "llama3.1"
	defaultHTTPTimeout = 120 * time.Second
)

// Option configures a Generator.
type Option func(*Generator)

// WithBaseURL overrides the server address.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// Generator calls the non-streaming /api/chat endpoint.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message message `json:"message"`
	Error   string  `json:"error"`
}

// New creates an Ollama generator.
func New(model string, opts ...Option) *Generator {
	g := &Generator{
		baseURL:    defaultBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
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
	var messages []message
	if strings.TrimSpace(system) != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	messages = append(messages, message{Role: "user", Content: prompt})
	body, err := json.Marshal(chatRequest{Model: g.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+chatEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: API error: %s", out.Error)
	}
	return generation.Text(out.Message.Content)
}
