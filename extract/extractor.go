// Package extract converts uploaded file bytes into plain text.
//
// Extraction never fails from the caller's point of view: an unsupported type
// or a failed parse yields an empty string, which callers treat as "no text
// available".
package extract

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/viant/projectlens/schema"
)

const (
	// DefaultMaxUnknownSize caps best-effort decoding of unrecognized types.
	DefaultMaxUnknownSize = 1024 * 1024
	sniffLength           = 100
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxUnknownSize overrides the size ceiling for unrecognized types.
func WithMaxUnknownSize(size int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.maxUnknownSize = size
		}
	}
}

// WithLogger sets the logger used to report per-file extraction failures.
func WithLogger(logger *log.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// Extractor dispatches file bytes to a format specific text extractor.
type Extractor struct {
	maxUnknownSize int
	logger         *log.Logger
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{maxUnknownSize: DefaultMaxUnknownSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract extracts text using the default Extractor. declared is either a
// MIME type or a file name.
func Extract(data []byte, declared string) string {
	if isDeclaredMIME(declared) {
		return defaultExtractor.Extract(data, declared, "")
	}
	return defaultExtractor.Extract(data, "", declared)
}

// Extract returns the plain text of data, resolved by mimeType first and the
// extension of name second. It returns an empty string when nothing usable
// could be extracted.
func (e *Extractor) Extract(data []byte, mimeType, name string) string {
	format := DetectFormat(mimeType, name)
	text, err := e.extract(format, data)
	if err != nil {
		e.logf("extract failed: name=%q mime=%q format=%s err=%v", name, mimeType, format, err)
		return ""
	}
	return normalize(text)
}

func (e *Extractor) extract(format schema.SourceFormat, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%s: recovered: %v", format, r)
		}
	}()
	if len(data) == 0 {
		return "", nil
	}
	switch format {
	case schema.FormatPDF:
		return extractPDF(data)
	case schema.FormatSpreadsheet:
		return extractSpreadsheet(data)
	case schema.FormatPresentation:
		if isZip(data) {
			return extractPPTX(data)
		}
		return salvageText(data), nil
	case schema.FormatWord:
		if isZip(data) {
			return extractDOCX(data)
		}
		return salvageText(data), nil
	case schema.FormatCSV:
		return extractCSV(data), nil
	case schema.FormatJSON:
		return extractJSON(data), nil
	case schema.FormatText, schema.FormatMarkdown, schema.FormatXML:
		return decodeUTF8(data), nil
	default:
		if len(data) > e.maxUnknownSize || !looksLikeText(data) {
			return "", nil
		}
		return decodeUTF8(data), nil
	}
}

func (e *Extractor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// looksLikeText inspects the leading bytes for control characters.
func looksLikeText(data []byte) bool {
	sample := data
	if len(sample) > sniffLength {
		sample = sample[:sniffLength]
	}
	control := 0
	for _, b := range sample {
		if b == '\n' || b == '\r' || b == '\t' {
			continue
		}
		if b < 32 || b == 127 {
			control++
		}
	}
	return control*10 <= len(sample)
}

func decodeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

func normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToValidUTF8(text, "�")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}

func isZip(data []byte) bool {
	return len(data) > 3 && data[0] == 'P' && data[1] == 'K' && data[2] == 3 && data[3] == 4
}
