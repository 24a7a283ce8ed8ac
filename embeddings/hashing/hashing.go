// Package hashing provides a deterministic bag-of-words embedder that needs no
// model service. Texts sharing words score higher than unrelated texts.
package hashing

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/viant/projectlens/hash"
)

// DefaultDimensions is used when New is given a non-positive size.
const DefaultDimensions = 256

// Embedder hashes lowercased word tokens into a fixed number of buckets and
// L2-normalizes the counts.
type Embedder struct {
	dims int
}

// New creates an embedder producing vectors of dims length.
func New(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Model returns the embedder name.
func (e *Embedder) Model() string { return "hashing" }

// EmbedDocuments embeds every text.
func (e *Embedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

// EmbedQuery embeds a single text.
func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *Embedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	for _, token := range Tokens(text) {
		v[hash.String(token)%uint64(e.dims)]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// Tokens splits text into lowercase letter/digit runs, dropping one-letter
// tokens and common stop words.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "is": true, "was": true, "of": true, "and": true, "or": true,
	"an": true, "to": true, "in": true, "on": true, "for": true, "this": true,
	"that": true, "what": true, "me": true, "it": true, "be": true, "are": true,
}
