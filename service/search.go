package service

import (
	"context"
	"fmt"

	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/vectordb"
)

// DocumentHit is a scored document without its vector.
type DocumentHit struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Path  string  `json:"path"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// MessageHit is a scored past message.
type MessageHit struct {
	MessageID string  `json:"messageId"`
	ChatID    string  `json:"chatId,omitempty"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

// SearchDocuments ranks the embedded documents against query using the
// configured document threshold.
func (s *Service) SearchDocuments(ctx context.Context, query string, limit int) ([]DocumentHit, error) {
	vec, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service: search documents: %w", err)
	}
	docs, err := s.store.ListEmbeddedDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: search documents: %w", err)
	}
	candidates := make([]vectordb.Candidate[*schema.Document], 0, len(docs))
	for _, doc := range docs {
		candidates = append(candidates, vectordb.Candidate[*schema.Document]{ID: doc.ID, Vector: doc.Embedding, Payload: doc})
	}
	results := vectordb.Search(vec, candidates, vectordb.Options{Limit: s.limit(limit, s.config.Retrieval.DocumentLimit), MinSimilarity: s.config.Retrieval.DocumentMinSimilarity()})
	hits := make([]DocumentHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, DocumentHit{ID: r.ID, Name: r.Payload.Name, Path: r.Payload.Path, Type: r.Payload.TypeLabel(), Score: r.Score})
	}
	return hits, nil
}

// SearchMessages ranks the session user's past messages against query.
func (s *Service) SearchMessages(ctx context.Context, query string, limit int) ([]MessageHit, error) {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return nil, fmt.Errorf("service: search messages: user not authenticated")
	}
	vec, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service: search messages: %w", err)
	}
	records, err := s.store.ListMessageEmbeddings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: search messages: %w", err)
	}
	candidates := make([]vectordb.Candidate[*schema.MessageEmbedding], 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, vectordb.Candidate[*schema.MessageEmbedding]{ID: rec.MessageID, Vector: rec.Embedding, Payload: rec})
	}
	results := vectordb.Search(vec, candidates, vectordb.Options{Limit: s.limit(limit, s.config.Retrieval.MessageLimit), MinSimilarity: s.config.Retrieval.MessageMinSimilarity()})
	hits := make([]MessageHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, MessageHit{MessageID: r.Payload.MessageID, ChatID: r.Payload.ChatID, Text: r.Payload.Text, Score: r.Score})
	}
	return hits, nil
}

func (s *Service) limit(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	return configured
}
