package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/projectlens/assembler"
	"github.com/viant/projectlens/auth"
	"github.com/viant/projectlens/blob"
	"github.com/viant/projectlens/conversation"
	"github.com/viant/projectlens/embeddings"
	"github.com/viant/projectlens/embeddings/hashing"
	ollamaembed "github.com/viant/projectlens/embeddings/ollama"
	openaiembed "github.com/viant/projectlens/embeddings/openai"
	vertexembed "github.com/viant/projectlens/embeddings/vertexai"
	"github.com/viant/projectlens/generation"
	ollamagen "github.com/viant/projectlens/generation/ollama"
	openaigen "github.com/viant/projectlens/generation/openai"
	vertexgen "github.com/viant/projectlens/generation/vertexai"
	"github.com/viant/projectlens/ingest"
	"github.com/viant/projectlens/memory"
	"github.com/viant/projectlens/memory/inmem"
	"github.com/viant/projectlens/memory/mem0"
	"github.com/viant/projectlens/store"
	"github.com/viant/projectlens/store/memstore"
	"github.com/viant/projectlens/store/sqlstore"
)

// Option configures the Service.
type Option func(*Service)

// WithStore sets an existing store; the Service does not close it.
func WithStore(st store.Store) Option {
	return func(s *Service) { s.store, s.ownsStore = st, false }
}

// WithEmbedder overrides the configured embedding model.
func WithEmbedder(embedder embeddings.Embedder) Option {
	return func(s *Service) { s.embedder = embedder }
}

// WithGenerator overrides the configured generation model.
func WithGenerator(generator generation.Generator) Option {
	return func(s *Service) { s.generator = generator }
}

// WithMemoryStore overrides the configured memory service.
func WithMemoryStore(m memory.Store) Option {
	return func(s *Service) { s.memoryStore = m }
}

// WithSession sets how the caller is resolved; auth.Context by default.
func WithSession(session auth.Session) Option {
	return func(s *Service) { s.session = session }
}

// Service holds the process lifetime collaborators built from Config.
type Service struct {
	config      *Config
	store       store.Store
	ownsStore   bool
	embedder    embeddings.Embedder
	generator   generation.Generator
	memoryStore memory.Store
	session     auth.Session

	blob         *blob.Storage
	embeddings   *embeddings.Service
	memory       *memory.Advisory
	assembler    *assembler.Assembler
	ingest       *ingest.Service
	conversation *conversation.Controller
}

// New builds every component once from cfg.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Init(ctx); err != nil {
		return nil, err
	}
	s := &Service{config: cfg, session: auth.Context{}}
	for _, opt := range opts {
		opt(s)
	}
	var err error
	if s.store == nil {
		if s.store, err = openStore(ctx, cfg.Store); err != nil {
			return nil, err
		}
		s.ownsStore = true
	}
	if s.embedder == nil {
		if s.embedder, err = newEmbedder(cfg.Embedder); err != nil {
			return nil, s.closeOnError(err)
		}
	}
	if s.generator == nil {
		if s.generator, err = newGenerator(cfg.Generator); err != nil {
			return nil, s.closeOnError(err)
		}
	}
	if s.memoryStore == nil {
		if s.memoryStore, err = newMemoryStore(cfg.Memory); err != nil {
			return nil, s.closeOnError(err)
		}
	}

	public := true
	if cfg.Blob.Public != nil {
		public = *cfg.Blob.Public
	}
	s.blob = blob.New(cfg.Blob.URL, blob.WithPublicURL(public))
	s.embeddings = embeddings.NewService(s.embedder,
		embeddings.WithModel(cfg.Embedder.Model),
		embeddings.WithTimeout(cfg.Timeouts.Embedding()),
		embeddings.WithCache(cfg.Embedder.CacheSize))

	assemblerOpts := []assembler.Option{assembler.WithConfig(cfg.Retrieval)}
	controllerOpts := []conversation.Option{
		conversation.WithEmbedder(s.embeddings),
		conversation.WithConfig(conversation.Config{GenerationTimeout: cfg.Timeouts.Generation()}),
	}
	if s.memoryStore != nil {
		s.memory = memory.NewAdvisory(s.memoryStore, memory.WithTimeout(cfg.Timeouts.Memory()))
		assemblerOpts = append(assemblerOpts, assembler.WithMemory(s.memory))
		controllerOpts = append(controllerOpts, conversation.WithMemory(s.memory))
	}
	s.assembler = assembler.New(s.store, s.embeddings, assemblerOpts...)
	s.ingest = ingest.New(s.store, s.blob, ingest.WithEmbedder(s.embeddings))
	s.conversation = conversation.New(s.store, s.session, s.assembler, s.generator, controllerOpts...)
	log.Printf("projectlens: store=%s embedder=%s generator=%s memory=%s", cfg.Store.Driver, cfg.Embedder.Provider, cfg.Generator.Provider, cfg.Memory.Provider)
	return s, nil
}

func (s *Service) closeOnError(err error) error {
	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
	}
	return err
}

// Close releases an owned store.
func (s *Service) Close() error {
	if s.ownsStore && s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Service) Config() *Config { return s.config }
func (s *Service) Store() store.Store { return s.store }
func (s *Service) Blob() *blob.Storage { return s.blob }
func (s *Service) Embeddings() *embeddings.Service { return s.embeddings }
func (s *Service) Assembler() *assembler.Assembler { return s.assembler }
func (s *Service) Ingest() *ingest.Service { return s.ingest }
func (s *Service) Conversation() *conversation.Controller { return s.conversation }

func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverMemory:
		return memstore.New(), nil
	case "", "sqlite", "sqlite3":
		if err := ensureSQLiteDir(cfg.DSN); err != nil {
			return nil, err
		}
	}
	st, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("service: open store: %w", err)
	}
	return st, nil
}

func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") || strings.HasPrefix(path, "memdb") {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

var errUnknownProvider = errors.New("unknown provider")

func newEmbedder(cfg EmbedderConfig) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case ProviderVertexAI:
		var opts []vertexembed.Option
		if cfg.Location != "" {
			opts = append(opts, vertexembed.WithLocation(cfg.Location))
		}
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("service: embedder %s: project id is required", cfg.Provider)
		}
		return vertexembed.New(cfg.ProjectID, cfg.Model, opts...), nil
	case ProviderOpenAI:
		var opts []openaiembed.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openaiembed.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Dimensions > 0 {
			opts = append(opts, openaiembed.WithDimensions(cfg.Dimensions))
		}
		return openaiembed.New(cfg.APIKey, cfg.Model, opts...), nil
	case ProviderOllama:
		var opts []ollamaembed.Option
		if cfg.BaseURL != "" {
			opts = append(opts, ollamaembed.WithBaseURL(cfg.BaseURL))
		}
		return ollamaembed.New(cfg.Model, opts...), nil
	case ProviderHashing:
		return hashing.New(cfg.Dimensions), nil
	}
	return nil, fmt.Errorf("service: embedder %q: %w", cfg.Provider, errUnknownProvider)
}

func newGenerator(cfg GeneratorConfig) (generation.Generator, error) {
	switch cfg.Provider {
	case ProviderVertexAI:
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("service: generator %s: project id is required", cfg.Provider)
		}
		var opts []vertexgen.Option
		if cfg.Location != "" {
			opts = append(opts, vertexgen.WithLocation(cfg.Location))
		}
		if cfg.Temperature > 0 {
			opts = append(opts, vertexgen.WithTemperature(cfg.Temperature))
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, vertexgen.WithMaxOutputTokens(cfg.MaxTokens))
		}
		return vertexgen.New(cfg.ProjectID, cfg.Model, opts...), nil
	case ProviderOpenAI:
		var opts []openaigen.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openaigen.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Temperature > 0 {
			opts = append(opts, openaigen.WithTemperature(cfg.Temperature))
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, openaigen.WithMaxTokens(cfg.MaxTokens))
		}
		return openaigen.New(cfg.APIKey, cfg.Model, opts...), nil
	case ProviderOllama:
		var opts []ollamagen.Option
		if cfg.BaseURL != "" {
			opts = append(opts, ollamagen.WithBaseURL(cfg.BaseURL))
		}
		return ollamagen.New(cfg.Model, opts...), nil
	}
	return nil, fmt.Errorf("service: generator %q: %w", cfg.Provider, errUnknownProvider)
}

func newMemoryStore(cfg MemoryConfig) (memory.Store, error) {
	switch cfg.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderInMemory:
		return inmem.New(), nil
	case ProviderMem0:
		var opts []mem0.Option
		if cfg.BaseURL != "" {
			opts = append(opts, mem0.WithBaseURL(cfg.BaseURL))
		}
		if cfg.SearchLimit > 0 {
			opts = append(opts, mem0.WithSearchLimit(cfg.SearchLimit))
		}
		return mem0.New(cfg.APIKey, opts...), nil
	}
	return nil, fmt.Errorf("service: memory %q: %w", cfg.Provider, errUnknownProvider)
}
