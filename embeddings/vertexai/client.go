// Package vertexai embeds text with Vertex AI text embedding models.
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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultLocation   = "us-central1"
	defaultModel      = "text-embedding-004"
	defaultHTTPTO     = 30 * time.Second
	defaultScopeCloud = "https://www.googleapis.com/auth/cloud-platform"
)

// Option configures an Embedder.
type Option func(*Embedder)

// WithLocation sets the Vertex AI region.
func WithLocation(location string) Option {
	return func(e *Embedder) {
		if location != "" {
			e.location = location
		}
	}
}

// WithScopes sets OAuth scopes for the default token source.
func WithScopes(scopes ...string) Option {
	return func(e *Embedder) { e.scopes = append(e.scopes, scopes...) }
}

// WithTaskType sets the embedding task type, e.g. RETRIEVAL_DOCUMENT.
func WithTaskType(taskType string) Option {
	return func(e *Embedder) { e.taskType = taskType }
}

// WithTokenSource replaces Google application default credentials.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(e *Embedder) { e.tokenSource = ts }
}

// WithEndpoint overrides the predict URL.
func WithEndpoint(endpoint string) Option {
	return func(e *Embedder) { e.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Embedder) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// Embedder calls the Vertex AI predict endpoint. Credentials are resolved on
// first use.
type Embedder struct {
	projectID  string
	location   string
	model      string
	taskType   string
	scopes     []string
	endpoint   string
	httpClient *http.Client

	mu          sync.Mutex
	tokenSource oauth2.TokenSource
}

type predictRequest struct {
	Instances []predictInstance `json:"instances"`
}

type predictInstance struct {
	Content  string `json:"content"`
	TaskType string `json:"task_type,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
}

// New creates an embedder for projectID.
func New(projectID, model string, opts ...Option) *Embedder {
	e := &Embedder{
		projectID:  projectID,
		location:   defaultLocation,
		model:      model,
		httpClient: &http.Client{Timeout: defaultHTTPTO},
	}
	if e.model == "" {
		e.model = defaultModel
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{defaultScopeCloud}
	}
	return e
}

// Model returns the model name.
func (e *Embedder) Model() string { return e.model }

func (e *Embedder) predictURL() string {
	if e.endpoint != "" {
		return e.endpoint
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		e.location, e.projectID, e.location, e.model)
}

func (e *Embedder) token(ctx context.Context) (*oauth2.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tokenSource == nil {
		if e.projectID == "" {
			return nil, fmt.Errorf("vertexai: project id is required")
		}
		ts, err := google.DefaultTokenSource(ctx, e.scopes...)
		if err != nil {
			return nil, fmt.Errorf("vertexai: token source: %w", err)
		}
		e.tokenSource = oauth2.ReuseTokenSource(nil, ts)
	}
	tok, err := e.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("vertexai: token: %w", err)
	}
	return tok, nil
}

// EmbedDocuments embeds texts in one predict call.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("vertexai: no input texts provided")
	}
	instances := make([]predictInstance, 0, len(texts))
	for _, t := range texts {
		instances = append(instances, predictInstance{Content: t, TaskType: e.taskType})
	}
	body, err := json.Marshal(predictRequest{Instances: instances})
	if err != nil {
		return nil, fmt.Errorf("vertexai: marshal request: %w", err)
	}
	tok, err := e.token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.predictURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vertexai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(req)
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vertexai: send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vertexai: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vertexai: decode response: %w", err)
	}
	if len(out.Predictions) != len(texts) {
		return nil, fmt.Errorf("vertexai: returned %d vectors for %d texts", len(out.Predictions), len(texts))
	}
	vecs := make([][]float32, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		vecs = append(vecs, p.Embeddings.Values)
	}
	return vecs, nil
}

// EmbedQuery embeds a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
