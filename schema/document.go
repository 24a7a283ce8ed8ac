package schema

import (
	"strings"
	"time"
)

// SourceFormat identifies the family of an uploaded file.
type SourceFormat string

const (
	FormatPDF          SourceFormat = "pdf"
	FormatSpreadsheet  SourceFormat = "spreadsheet"
	FormatPresentation SourceFormat = "presentation"
	FormatWord         SourceFormat = "word"
	FormatCSV          SourceFormat = "csv"
	FormatText         SourceFormat = "text"
	FormatMarkdown     SourceFormat = "markdown"
	FormatJSON         SourceFormat = "json"
	FormatXML          SourceFormat = "xml"
	FormatOther        SourceFormat = "other"
)

// Document represents an uploaded file together with its extracted text
// and an optional embedding of that text.
type Document struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Path          string       `json:"path"`
	MimeType      string       `json:"mimeType,omitempty"`
	UploadedBy    string       `json:"uploadedBy,omitempty"`
	Format        SourceFormat `json:"format"`
	ExtractedText string       `json:"extractedText,omitempty"`
	// Embedding is nil when extraction produced no text or embedding failed.
	Embedding   []float32 `json:"embedding,omitempty"`
	ContentHash uint64    `json:"contentHash,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasText reports whether the document carries usable extracted text.
func (d *Document) HasText() bool {
	return d != nil && strings.TrimSpace(d.ExtractedText) != ""
}

// HasEmbedding reports whether the document can take part in similarity search.
func (d *Document) HasEmbedding() bool {
	return d != nil && len(d.Embedding) > 0
}

// TypeLabel returns the declared type used when rendering the document.
func (d *Document) TypeLabel() string {
	if d.MimeType != "" {
		return d.MimeType
	}
	if d.Format != "" {
		return string(d.Format)
	}
	return "unknown"
}
