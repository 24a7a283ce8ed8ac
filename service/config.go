package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/projectlens/assembler"
	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	ProviderVertexAI = "vertexai"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderHashing  = "hashing"
	ProviderMem0     = "mem0"
	ProviderInMemory = "inmem"
	ProviderNone     = "none"
	DriverMemory     = "memory"
)

const (
	defaultHome      = "~/.projectlens"
	defaultCacheSize = 256
)

// Config defines the process wide settings.
type Config struct {
	Store     StoreConfig      `yaml:"store"`
	Blob      BlobConfig       `yaml:"blob"`
	Embedder  EmbedderConfig   `yaml:"embedder"`
	Generator GeneratorConfig  `yaml:"generator"`
	Memory    MemoryConfig     `yaml:"memory"`
	Retrieval assembler.Config `yaml:"retrieval"`
	Timeouts  TimeoutConfig    `yaml:"timeouts"`
	MCPServer MCPServerConfig  `yaml:"mcpServer"`
}

// StoreConfig defines persistence settings. Driver is sqlite, postgres,
// mysql or memory.
type StoreConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
	Secret string `yaml:"secret,omitempty"`
}

// BlobConfig defines where uploaded bytes are written.
type BlobConfig struct {
	URL    string `yaml:"url"`
	Public *bool  `yaml:"public,omitempty"`
}

// EmbedderConfig selects the embedding model.
type EmbedderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"apiKey,omitempty"`
	BaseURL    string `yaml:"baseURL,omitempty"`
	ProjectID  string `yaml:"projectId,omitempty"`
	Location   string `yaml:"location,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
	CacheSize  int    `yaml:"cacheSize,omitempty"`
}

// GeneratorConfig selects the generation model.
type GeneratorConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey,omitempty"`
	BaseURL     string  `yaml:"baseURL,omitempty"`
	ProjectID   string  `yaml:"projectId,omitempty"`
	Location    string  `yaml:"location,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"maxTokens,omitempty"`
}

// MemoryConfig selects the long-term memory service.
type MemoryConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"apiKey,omitempty"`
	BaseURL     string `yaml:"baseURL,omitempty"`
	SearchLimit int    `yaml:"searchLimit,omitempty"`
}

// TimeoutConfig holds per-call timeouts in seconds.
type TimeoutConfig struct {
	GenerationSeconds int `yaml:"generationSeconds"`
	EmbeddingSeconds  int `yaml:"embeddingSeconds"`
	MemorySeconds     int `yaml:"memorySeconds"`
}

func (t TimeoutConfig) Generation() time.Duration {
	return time.Duration(t.GenerationSeconds) * time.Second
}

func (t TimeoutConfig) Embedding() time.Duration {
	return time.Duration(t.EmbeddingSeconds) * time.Second
}

func (t TimeoutConfig) Memory() time.Duration {
	return time.Duration(t.MemorySeconds) * time.Second
}

// MCPServerConfig defines MCP server settings.
type MCPServerConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
}

// LoadConfig reads path, applies defaults and expands paths and secrets.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Init(context.Background()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init applies defaults and environment fallbacks, then expands user paths
// and the store secret.
func (c *Config) Init(ctx context.Context) error {
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.DSN == "" && c.Store.Driver == "sqlite" {
		c.Store.DSN = "file:" + defaultHome + "/projectlens.db"
	}
	if c.Blob.URL == "" {
		c.Blob.URL = defaultHome + "/blob"
	}
	c.Embedder.Provider = strings.ToLower(strings.TrimSpace(c.Embedder.Provider))
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = detectProvider(c.Embedder.ProjectID, c.Embedder.APIKey, ProviderHashing)
	}
	if c.Embedder.CacheSize == 0 {
		c.Embedder.CacheSize = defaultCacheSize
	}
	c.Generator.Provider = strings.ToLower(strings.TrimSpace(c.Generator.Provider))
	if c.Generator.Provider == "" {
		c.Generator.Provider = detectProvider(c.Generator.ProjectID, c.Generator.APIKey, ProviderOllama)
	}
	c.Memory.Provider = strings.ToLower(strings.TrimSpace(c.Memory.Provider))
	if c.Memory.Provider == "" {
		c.Memory.Provider = ProviderInMemory
		if c.Memory.APIKey != "" || os.Getenv("MEM0_API_KEY") != "" {
			c.Memory.Provider = ProviderMem0
		}
	}
	if c.Embedder.ProjectID == "" {
		c.Embedder.ProjectID = os.Getenv("VERTEXAI_PROJECT_ID")
	}
	if c.Generator.ProjectID == "" {
		c.Generator.ProjectID = os.Getenv("VERTEXAI_PROJECT_ID")
	}
	c.Retrieval.Init()
	if c.Timeouts.GenerationSeconds <= 0 {
		c.Timeouts.GenerationSeconds = 60
	}
	if c.Timeouts.EmbeddingSeconds <= 0 {
		c.Timeouts.EmbeddingSeconds = 15
	}
	if c.Timeouts.MemorySeconds <= 0 {
		c.Timeouts.MemorySeconds = 10
	}

	var err error
	if c.Store.DSN, err = expandStoreDSN(c.Store.DSN, c.Store.Driver); err != nil {
		return err
	}
	if c.Store.Secret != "" {
		if c.Store.DSN, err = ExpandDSNWithSecret(ctx, c.Store.DSN, c.Store.Secret); err != nil {
			return err
		}
	}
	if c.Blob.URL, err = expandUserPath(c.Blob.URL); err != nil {
		return err
	}
	return nil
}

func detectProvider(projectID, apiKey, fallback string) string {
	switch {
	case projectID != "" || os.Getenv("VERTEXAI_PROJECT_ID") != "":
		return ProviderVertexAI
	case apiKey != "" || os.Getenv("OPENAI_API_KEY") != "":
		return ProviderOpenAI
	}
	return fallback
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(trimmed, "~/") || trimmed == "~" {
		return filepath.Join(home, strings.TrimPrefix(trimmed, "~")), nil
	}
	// file: URI forms
	if strings.HasPrefix(trimmed, "file:") {
		prefix := "file://localhost"
		rest := strings.TrimPrefix(trimmed, prefix)
		if rest == trimmed {
			prefix = "file://"
			rest = strings.TrimPrefix(trimmed, prefix)
		}
		if rest == trimmed {
			prefix = "file:"
			rest = strings.TrimPrefix(trimmed, prefix)
		}
		if rest == "" {
			return path, nil
		}
		rest = strings.TrimLeft(rest, "/")
		if strings.HasPrefix(rest, "~") {
			abs := filepath.ToSlash(filepath.Join(home, strings.TrimPrefix(rest, "~")))
			if prefix == "file:" {
				if !strings.HasPrefix(abs, "/") {
					abs = "/" + abs
				}
				return prefix + abs, nil
			}
			return prefix + "/" + strings.TrimLeft(abs, "/"), nil
		}
	}
	if trimmed[0] != '~' {
		return path, nil
	}
	return "", fmt.Errorf("config: unsupported ~user path: %s", path)
}

func expandStoreDSN(dsn, driver string) (string, error) {
	if dsn == "" {
		return dsn, nil
	}
	if driver == "sqlite" || dsn[0] == '~' || dsn[0] == '/' || strings.HasPrefix(dsn, "file:") {
		return expandUserPath(dsn)
	}
	return dsn, nil
}

// ExpandDSNWithSecret loads a secret and expands placeholders in the DSN.
func ExpandDSNWithSecret(ctx context.Context, dsn, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return dsn, nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("secret %q provided but dsn is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(dsn), nil
}
