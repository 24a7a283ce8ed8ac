// Package vertexai completes prompts with Gemini models on Vertex AI.
package vertexai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/viant/projectlens/generation"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultLocation   = "us-central1"
	defaultModel      = "gemini-2.5-flash"
	defaultHTTPTO     = 90 * time.Second
	defaultScopeCloud = "https://www.googleapis.com/auth/cloud-platform"
)

// Option configures a Generator.
type Option func(*Generator)

// WithLocation sets the Vertex AI region.
func WithLocation(location string) Option {
	return func(g *Generator) {
		if location != "" {
			g.location = location
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = &t }
}

// WithMaxOutputTokens caps the response length.
func WithMaxOutputTokens(n int) Option {
	return func(g *Generator) { g.maxOutputTokens = n }
}

// WithTokenSource replaces Google application default credentials.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(g *Generator) { g.tokenSource = ts }
}

// WithEndpoint overrides the generateContent URL.
func WithEndpoint(endpoint string) Option {
	return func(g *Generator) { g.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// Generator calls the Gemini generateContent endpoint.
type Generator struct {
	projectID       string
	location        string
	model           string
	temperature     *float64
	maxOutputTokens int
	endpoint        string
	httpClient      *http.Client

	mu          sync.Mutex
	tokenSource oauth2.TokenSource
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// New creates a Gemini generator for projectID.
func New(projectID, model string, opts ...Option) *Generator {
	g := &Generator{
		projectID:  projectID,
		location:   defaultLocation,
		model:      model,
		httpClient: &http.Client{Timeout: defaultHTTPTO},
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

func (g *Generator) url() string {
	if g.endpoint != "" {
		return g.endpoint
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		g.location, g.projectID, g.location, g.model)
}

func (g *Generator) token(ctx context.Context) (*oauth2.Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tokenSource == nil {
		if g.projectID == "" {
			return nil, fmt.Errorf("vertexai: project id is required")
		}
		ts, err := google.DefaultTokenSource(ctx, defaultScopeCloud)
		if err != nil {
			return nil, fmt.Errorf("vertexai: token source: %w", err)
		}
		g.tokenSource = oauth2.ReuseTokenSource(nil, ts)
	}
	tok, err := g.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("vertexai: token: %w", err)
	}
	return tok, nil
}

// Complete sends prompt as a single user turn with system as the system
// instruction.
func (g *Generator) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if g.temperature != nil || g.maxOutputTokens > 0 {
		req.GenerationConfig = &generationConfig{Temperature: g.temperature, MaxOutputTokens: g.maxOutputTokens}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("vertexai: marshal request: %w", err)
	}
	tok, err := g.token(ctx)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("vertexai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(httpReq)
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("vertexai: send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vertexai: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("vertexai: decode response: %w", err)
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("vertexai: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", generation.ErrEmptyResponse
	}
	var texts []string
	for _, p := range out.Candidates[0].Content.Parts {
		texts = append(texts, p.Text)
	}
	return generation.Text(texts...)
}
