// Package memory defines the per-user long-term fact store consulted while
// building a prompt and updated after every completed turn.
package memory

import "context"

// Turn is one side of a completed exchange.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fact is an opaque unit returned by the memory service; the core renders
// Memory verbatim.
type Fact struct {
	ID       string                 `json:"id,omitempty"`
	Memory   string                 `json:"memory"`
	Score    float64                `json:"score,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Store is a memory service keyed by owner user id.
type Store interface {
	Add(ctx context.Context, turns []Turn, userID string) error
	Search(ctx context.Context, query, userID string) ([]Fact, error)
}
