package memory

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"
)

type stubStore struct {
	facts  []Fact
	err    error
	added  [][]Turn
	delay  time.Duration
	lastID string
}

func (s *stubStore) Add(ctx context.Context, turns []Turn, userID string) error {
	s.lastID = userID
	s.added = append(s.added, turns)
	return s.err
}

func (s *stubStore) Search(ctx context.Context, query, userID string) ([]Fact, error) {
	s.lastID = userID
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.facts, s.err
}

func TestAdvisory_SwallowsSearchFailure(t *testing.T) {
	var buf bytes.Buffer
	a := NewAdvisory(&stubStore{err: errors.New("boom")}, WithLogger(log.New(&buf, "", 0)))
	if facts := a.Search(context.Background(), "q", "u1"); facts != nil {
		t.Fatalf("expected nil facts, got %v", facts)
	}
	if !strings.Contains(buf.String(), "search failed") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
}

func TestAdvisory_SearchTimeout(t *testing.T) {
	a := NewAdvisory(&stubStore{facts: []Fact{{Memory: "x"}}, delay: time.Second},
		WithTimeout(10*time.Millisecond), WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	if facts := a.Search(context.Background(), "q", "u1"); facts != nil {
		t.Fatalf("expected timeout to yield nil, got %v", facts)
	}
}

func TestAdvisory_Add(t *testing.T) {
	store := &stubStore{}
	a := NewAdvisory(store)
	turns := []Turn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	if err := a.Add(context.Background(), turns, "u1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(store.added) != 1 || store.lastID != "u1" {
		t.Fatalf("unexpected store state: %+v", store)
	}
	store.err = errors.New("down")
	a = NewAdvisory(store, WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	if err := a.Add(context.Background(), turns, "u1"); err == nil {
		t.Fatalf("expected error to be reported")
	}
}

func TestAdvisory_Disabled(t *testing.T) {
	a := NewAdvisory(nil)
	if a.Enabled() {
		t.Fatalf("expected disabled")
	}
	if facts := a.Search(context.Background(), "q", "u"); facts != nil {
		t.Fatalf("expected nil facts")
	}
	if err := a.Add(context.Background(), []Turn{{Role: "user", Content: "x"}}, "u"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
