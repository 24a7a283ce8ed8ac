package vectordb

import "sort"

// Candidate is a record scored by Search. Candidates without a vector are
// never returned.
type Candidate[T any] struct {
	ID      string
	Vector  []float32
	Payload T
}

// Result is a scored candidate payload.
type Result[T any] struct {
	ID      string
	Payload T
	Score   float64
}

// Options controls truncation and filtering.
type Options struct {
	// Limit caps the results; a non-positive limit yields none.
	Limit         int
	MinSimilarity float64
	// Exclude skips candidates by id, e.g. the message that triggered the query.
	Exclude map[string]bool
}

// Search scores every candidate with a vector against query and returns those
// scoring at least MinSimilarity, highest first. Ties keep candidate order.
func Search[T any](query []float32, candidates []Candidate[T], opts Options) []Result[T] {
	limit := max(opts.Limit, 0)
	out := make([]Result[T], 0, min(limit, len(candidates)))
	if len(query) == 0 || limit == 0 {
		return out
	}
	var hits []Result[T]
	for _, c := range candidates {
		if len(c.Vector) == 0 || opts.Exclude[c.ID] {
			continue
		}
		score := Cosine(query, c.Vector)
		if score < opts.MinSimilarity {
			continue
		}
		hits = append(hits, Result[T]{ID: c.ID, Payload: c.Payload, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return append(out, hits...)
}
