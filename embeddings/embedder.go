// Package embeddings turns text into fixed-length vectors through a pluggable
// model adapter.
package embeddings

import "context"

// Embedder is a model adapter. The core embeds documents, messages and
// queries through EmbedQuery; EmbedDocuments serves batch callers.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Modeler is implemented by embedders that report their model name. The name
// scopes cache entries so vectors from different models never mix.
type Modeler interface {
	Model() string
}
