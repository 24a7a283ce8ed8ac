// Package mem0 is a client for the Mem0 platform memory API.
package mem0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/viant/projectlens/memory"
)

const (
	defaultBaseURL     = "https://api.mem0.ai"
	addPath            = "/v1/memories/"
	searchPath         = "/v1/memories/search/"
	defaultHTTPTimeout = 15 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSearchLimit caps the number of facts returned by Search.
func WithSearchLimit(limit int) Option {
	return func(c *Client) { c.limit = limit }
}

// Client implements memory.Store over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
}

// New creates a client. An empty apiKey falls back to MEM0_API_KEY.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("MEM0_API_KEY")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type addRequest struct {
	Messages []memory.Turn `json:"messages"`
	UserID   string        `json:"user_id"`
}

type searchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

// Add stores turns for userID.
func (c *Client) Add(ctx context.Context, turns []memory.Turn, userID string) error {
	_, err := c.post(ctx, addPath, addRequest{Messages: turns, UserID: userID})
	return err
}

// Search returns facts for userID matching query.
func (c *Client) Search(ctx context.Context, query, userID string) ([]memory.Fact, error) {
	data, err := c.post(ctx, searchPath, searchRequest{Query: query, UserID: userID, Limit: c.limit})
	if err != nil {
		return nil, err
	}
	return decodeFacts(data)
}

// decodeFacts accepts both a bare array and a {"results": [...]} envelope.
func decodeFacts(data []byte) ([]memory.Fact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var facts []memory.Fact
	if data[0] == '[' {
		if err := json.Unmarshal(data, &facts); err != nil {
			return nil, fmt.Errorf("mem0: decode search: %w", err)
		}
		return facts, nil
	}
	var envelope struct {
		Results []memory.Fact `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("mem0: decode search: %w", err)
	}
	return envelope.Results, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("mem0: api key is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mem0: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mem0: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mem0: send request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mem0: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mem0: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
