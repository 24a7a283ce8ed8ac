// Package assembler gathers documents, similar past messages and long-term
// memories for a chat turn and renders them into a single prompt.
package assembler

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/viant/projectlens/memory"
	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/vectordb"
)

// Section names reported in Context.Omitted.
const (
	SectionDocuments = "documents"
	SectionMessages  = "similar_messages"
	SectionMemories  = "memories"
)

// Embedder embeds the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the read-only persistence used during assembly.
type Store interface {
	ListEmbeddedDocuments(ctx context.Context) ([]*schema.Document, error)
	GetDocumentsByIDs(ctx context.Context, ids []string) ([]*schema.Document, error)
	ListMessageEmbeddings(ctx context.Context, userID string) ([]*schema.MessageEmbedding, error)
}

// Memory searches long-term facts; failures are expected to be absorbed by
// the implementation.
type Memory interface {
	Search(ctx context.Context, query, userID string) []memory.Fact
}

// Request is the input of a single assembly.
type Request struct {
	UserID  string
	ChatID  string
	Message schema.Message
	// History holds earlier turns of the chat in chronological order.
	History         []schema.Message
	AttachedFileIDs []string
}

// DocumentRef identifies a document rendered into the prompt.
type DocumentRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Score float64 `json:"score,omitempty"`
}

// SimilarMessage is a past message rendered as soft context.
type SimilarMessage struct {
	MessageID string  `json:"messageId"`
	ChatID    string  `json:"chatId,omitempty"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

// Context is the assembled prompt together with its provenance.
type Context struct {
	Prompt           string           `json:"prompt"`
	Documents        []DocumentRef    `json:"documents,omitempty"`
	FilesWithoutText []DocumentRef    `json:"filesWithoutText,omitempty"`
	SimilarMessages  []SimilarMessage `json:"similarMessages,omitempty"`
	Memories         []memory.Fact    `json:"memories,omitempty"`
	// DocumentsFromFallback is set when the attached documents were used
	// because similarity search was unavailable or found nothing.
	DocumentsFromFallback bool     `json:"documentsFromFallback,omitempty"`
	Omitted               []string `json:"omitted,omitempty"`
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithConfig sets retrieval settings.
func WithConfig(config Config) Option {
	return func(a *Assembler) { a.config = config }
}

// WithMemory enables the memory section.
func WithMemory(m Memory) Option {
	return func(a *Assembler) { a.memory = m }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Assembler builds prompts. It keeps no per-request state and is safe for
// concurrent use.
type Assembler struct {
	store    Store
	embedder Embedder
	memory   Memory
	config   Config
	logger   *log.Logger
}

// New creates an Assembler; embedder may be nil, in which case only the
// attached-document fallback and memories are used.
func New(store Store, embedder Embedder, opts ...Option) *Assembler {
	a := &Assembler{
		store:    store,
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   log.New(log.Writer(), "[ASSEMBLER] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.config.Init()
	return a
}

// Config returns the effective settings.
func (a *Assembler) Config() Config { return a.config }

type lookup struct {
	attached []*schema.Document
	docs     []vectordb.Result[*schema.Document]
	docsOK   bool
	messages []vectordb.Result[*schema.MessageEmbedding]
	memories []memory.Fact
}

// Build runs the lookups for req and renders the prompt. Lookup failures
// only remove the affected section.
func (a *Assembler) Build(ctx context.Context, req *Request) *Context {
	var res lookup
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.attached = a.attachedDocuments(ctx, req)
	}()
	go func() {
		defer wg.Done()
		if a.memory != nil {
			res.memories = a.memory.Search(ctx, req.Message.Text, req.UserID)
		}
	}()
	if query := a.queryVector(ctx, req); query != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			res.docs, res.docsOK = a.searchDocuments(ctx, req, query)
		}()
		go func() {
			defer wg.Done()
			res.messages = a.searchMessages(ctx, req, query)
		}()
	}
	wg.Wait()
	return a.render(req, &res)
}

func (a *Assembler) queryVector(ctx context.Context, req *Request) []float32 {
	if a.embedder == nil || strings.TrimSpace(req.Message.Text) == "" {
		return nil
	}
	vec, err := a.embedder.Embed(ctx, req.Message.Text)
	if err != nil {
		a.logger.Printf("query embedding failed: chat=%s err=%v", req.ChatID, err)
		return nil
	}
	return vec
}

func (a *Assembler) attachedDocuments(ctx context.Context, req *Request) []*schema.Document {
	if len(req.AttachedFileIDs) == 0 {
		return nil
	}
	docs, err := a.store.GetDocumentsByIDs(ctx, req.AttachedFileIDs)
	if err != nil {
		a.logger.Printf("attached documents failed: chat=%s err=%v", req.ChatID, err)
		return nil
	}
	return docs
}

func (a *Assembler) searchDocuments(ctx context.Context, req *Request, query []float32) ([]vectordb.Result[*schema.Document], bool) {
	var docs []*schema.Document
	var err error
	switch a.config.Scope {
	case ScopeAttached:
		if len(req.AttachedFileIDs) > 0 {
			docs, err = a.store.GetDocumentsByIDs(ctx, req.AttachedFileIDs)
		}
	default:
		docs, err = a.store.ListEmbeddedDocuments(ctx)
	}
	if err != nil {
		a.logger.Printf("document search failed: chat=%s err=%v", req.ChatID, err)
		return nil, false
	}
	candidates := make([]vectordb.Candidate[*schema.Document], 0, len(docs))
	for _, doc := range docs {
		if !doc.HasText() {
			continue
		}
		candidates = append(candidates, vectordb.Candidate[*schema.Document]{ID: doc.ID, Vector: doc.Embedding, Payload: doc})
	}
	return vectordb.Search(query, candidates, vectordb.Options{
		Limit:         a.config.DocumentLimit,
		MinSimilarity: a.config.DocumentMinSimilarity(),
	}), true
}

func (a *Assembler) searchMessages(ctx context.Context, req *Request, query []float32) []vectordb.Result[*schema.MessageEmbedding] {
	if req.UserID == "" {
		return nil
	}
	records, err := a.store.ListMessageEmbeddings(ctx, req.UserID)
	if err != nil {
		a.logger.Printf("message search failed: user=%s err=%v", req.UserID, err)
		return nil
	}
	candidates := make([]vectordb.Candidate[*schema.MessageEmbedding], 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, vectordb.Candidate[*schema.MessageEmbedding]{ID: rec.MessageID, Vector: rec.Embedding, Payload: rec})
	}
	var exclude map[string]bool
	if req.Message.ID != "" {
		exclude = map[string]bool{req.Message.ID: true}
	}
	return vectordb.Search(query, candidates, vectordb.Options{
		Limit:         a.config.MessageLimit,
		MinSimilarity: a.config.MessageMinSimilarity(),
		Exclude:       exclude,
	})
}
