package assembler

// Scope selects the document candidates considered by similarity search.
type Scope string

const (
	// ScopeWorkspace searches every embedded document.
	ScopeWorkspace Scope = "workspace"
	// ScopeAttached searches only documents attached to the chat.
	ScopeAttached Scope = "attached"
)

const (
	DefaultDocumentThreshold = 0.6
	DefaultMessageThreshold  = 0.6
	DefaultLimit             = 5
)

// Config holds retrieval thresholds and limits.
type Config struct {
	// Thresholds are minimum cosine similarities; nil selects the default,
	// while zero or a negative value admits every embedded candidate.
	DocumentThreshold *float64 `yaml:"documentThreshold,omitempty" json:"documentThreshold,omitempty"`
	DocumentLimit     int      `yaml:"documentLimit" json:"documentLimit"`
	MessageThreshold  *float64 `yaml:"messageThreshold,omitempty" json:"messageThreshold,omitempty"`
	MessageLimit      int      `yaml:"messageLimit" json:"messageLimit"`
	Scope             Scope    `yaml:"scope" json:"scope"`
	// MaxDocumentChars caps the content rendered per document; 0 means no cap.
	MaxDocumentChars int `yaml:"maxDocumentChars" json:"maxDocumentChars"`
}

// DefaultConfig returns the default retrieval settings.
func DefaultConfig() Config {
	return Config{
		DocumentThreshold: Threshold(DefaultDocumentThreshold),
		DocumentLimit:     DefaultLimit,
		MessageThreshold:  Threshold(DefaultMessageThreshold),
		MessageLimit:      DefaultLimit,
		Scope:             ScopeWorkspace,
	}
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	def := DefaultConfig()
	if c.DocumentThreshold == nil {
		c.DocumentThreshold = def.DocumentThreshold
	}
	if c.DocumentLimit <= 0 {
		c.DocumentLimit = def.DocumentLimit
	}
	if c.MessageThreshold == nil {
		c.MessageThreshold = def.MessageThreshold
	}
	if c.MessageLimit <= 0 {
		c.MessageLimit = def.MessageLimit
	}
	if c.Scope == "" {
		c.Scope = def.Scope
	}
}

// Threshold returns a pointer to v for Config thresholds.
func Threshold(v float64) *float64 { return &v }

// DocumentMinSimilarity returns the document threshold, or the default when unset.
func (c Config) DocumentMinSimilarity() float64 {
	if c.DocumentThreshold == nil {
		return DefaultDocumentThreshold
	}
	return *c.DocumentThreshold
}

// MessageMinSimilarity returns the message threshold, or the default when unset.
func (c Config) MessageMinSimilarity() float64 {
	if c.MessageThreshold == nil {
		return DefaultMessageThreshold
	}
	return *c.MessageThreshold
}
