// Package inmem is a process-local memory.Store that matches facts by shared
// keywords.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/projectlens/embeddings/hashing"
	"github.com/viant/projectlens/memory"
)

// DefaultLimit caps search results.
const DefaultLimit = 5

// Store keeps user turns as facts.
type Store struct {
	mu    sync.RWMutex
	facts map[string][]memory.Fact
	limit int
}

// New creates an empty store.
func New() *Store {
	return &Store{facts: map[string][]memory.Fact{}, limit: DefaultLimit}
}

// Add records every user turn as a fact for userID.
func (s *Store) Add(_ context.Context, turns []memory.Turn, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, turn := range turns {
		if turn.Role != "user" || strings.TrimSpace(turn.Content) == "" {
			continue
		}
		s.facts[userID] = append(s.facts[userID], memory.Fact{
			ID:       uuid.NewString(),
			Memory:   strings.TrimSpace(turn.Content),
			Metadata: map[string]interface{}{"role": turn.Role},
		})
	}
	return nil
}

// Search scores facts by the fraction of query keywords they contain.
func (s *Store) Search(_ context.Context, query, userID string) ([]memory.Fact, error) {
	terms := hashing.Tokens(query)
	if len(terms) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []memory.Fact
	for _, fact := range s.facts[userID] {
		words := map[string]bool{}
		for _, w := range hashing.Tokens(fact.Memory) {
			words[w] = true
		}
		hits := 0
		for _, term := range terms {
			if words[term] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		fact.Score = float64(hits) / float64(len(terms))
		out = append(out, fact)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > s.limit {
		out = out[:s.limit]
	}
	return out, nil
}
