package embeddings

import (
	"context"
	"strings"
	"time"

	"github.com/viant/projectlens/hash"
)

// DefaultTimeout bounds a single embedding call.
const DefaultTimeout = 15 * time.Second

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-call timeout; non-positive values disable it.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.timeout = timeout }
}

// WithCache enables an LRU of query vectors with the given capacity.
func WithCache(capacity int) Option {
	return func(s *Service) { s.cache = newCache(capacity) }
}

// WithModel overrides the model name used in errors and cache keys.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// Service wraps an Embedder with precondition checks, a timeout and an
// optional cache. A Service is safe for concurrent use.
type Service struct {
	embedder Embedder
	model    string
	timeout  time.Duration
	cache    *cache
}

// NewService creates a Service over embedder.
func NewService(embedder Embedder, opts ...Option) *Service {
	s := &Service{embedder: embedder, timeout: DefaultTimeout}
	if m, ok := embedder.(Modeler); ok {
		s.model = m.Model()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the configured model name.
func (s *Service) Model() string { return s.model }

// Embed returns the vector for text. It fails with ErrEmptyText on blank input
// and with *Error when the model errors, times out, or returns no vector.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if s == nil || s.embedder == nil {
		return nil, &Error{Err: ErrNoVector}
	}
	key := hash.String(s.model, text)
	if vec, ok := s.cache.get(key); ok {
		return vec, nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, &Error{Model: s.model, Err: err}
	}
	if len(vec) == 0 {
		return nil, &Error{Model: s.model, Err: ErrNoVector}
	}
	s.cache.add(key, vec)
	return cloneVec(vec), nil
}
