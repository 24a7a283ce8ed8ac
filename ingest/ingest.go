// Package ingest turns uploaded bytes into stored, searchable documents.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/viant/projectlens/blob"
	"github.com/viant/projectlens/extract"
	"github.com/viant/projectlens/hash"
	"github.com/viant/projectlens/schema"
)

// ErrEmptyFile is returned for uploads without bytes.
var ErrEmptyFile = errors.New("ingest: empty file")

// Embedder computes the vector of a document's text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Documents is the persistence used by ingestion.
type Documents interface {
	CreateDocument(ctx context.Context, doc *schema.Document) error
	AttachFile(ctx context.Context, chatID, documentID string) error
}

// Request describes one uploaded file.
type Request struct {
	Data     []byte
	Name     string
	MimeType string
	UserID   string
	// ChatID, when set, attaches the new document to that chat.
	ChatID string
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor replaces the default text extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithEmbedder enables document embeddings.
func WithEmbedder(e Embedder) Option {
	return func(s *Service) { s.embedder = e }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service runs upload, extraction, embedding and persistence for a file.
// Only the upload and the document write are fatal.
type Service struct {
	documents Documents
	uploader  blob.Uploader
	extractor *extract.Extractor
	embedder  Embedder
	logger    *log.Logger
}

// New creates an ingestion Service.
func New(documents Documents, uploader blob.Uploader, opts ...Option) *Service {
	s := &Service{
		documents: documents,
		uploader:  uploader,
		logger:    log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.New(extract.WithLogger(s.logger))
	}
	return s
}

// Ingest stores req and returns the persisted document. A document whose
// text could not be extracted or embedded is still stored, without an
// embedding. When a chat attach fails the created document is returned
// together with the error.
func (s *Service) Ingest(ctx context.Context, req *Request) (*schema.Document, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyFile
	}
	URL, err := s.uploader.Upload(ctx, req.Data, req.Name, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	name := req.Name
	if name == "" {
		name = blob.DisplayName(URL)
	}
	doc := &schema.Document{
		Name:       name,
		Path:       URL,
		MimeType:   req.MimeType,
		UploadedBy: req.UserID,
		Format:     extract.DetectFormat(req.MimeType, name),
	}
	doc.ExtractedText = s.extractor.Extract(req.Data, req.MimeType, name)
	if contentHash, err := hash.Sum64(req.Data); err == nil {
		doc.ContentHash = contentHash
	}
	if doc.HasText() {
		doc.Embedding = s.embed(ctx, doc)
	} else {
		s.logger.Printf("no text extracted: name=%q mime=%q format=%s", name, req.MimeType, doc.Format)
	}
	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("ingest: store %s: %w", name, err)
	}
	s.logger.Printf("stored document: id=%s name=%q chars=%d embedded=%v", doc.ID, name, len(doc.ExtractedText), doc.HasEmbedding())
	if req.ChatID != "" {
		if err := s.documents.AttachFile(ctx, req.ChatID, doc.ID); err != nil {
			return doc, fmt.Errorf("ingest: attach %s to chat %s: %w", doc.ID, req.ChatID, err)
		}
	}
	return doc, nil
}

func (s *Service) embed(ctx context.Context, doc *schema.Document) []float32 {
	if s.embedder == nil {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, strings.TrimSpace(doc.ExtractedText))
	if err != nil {
		s.logger.Printf("embedding skipped: name=%q err=%v", doc.Name, err)
		return nil
	}
	return vec
}
