package store

// MaxBatch is the largest id list passed to a single "in" query.
const MaxBatch = 10

// Batches splits ids into consecutive chunks of at most size ids, dropping
// empty and duplicate ids.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxBatch
	}
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	var out [][]string
	for start := 0; start < len(unique); start += size {
		end := min(start+size, len(unique))
		out = append(out, unique[start:end])
	}
	return out
}

// Ordered returns the values of byID in ids order, skipping missing ids.
func Ordered[T any](ids []string, byID map[string]T) []T {
	out := make([]T, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
