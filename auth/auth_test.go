package auth

import (
	"context"
	"testing"
)

func TestContextSession(t *testing.T) {
	var s Session = Context{}
	if _, ok := s.CurrentUserID(context.Background()); ok {
		t.Fatalf("expected no user on a bare context")
	}
	if _, ok := s.CurrentUserID(WithUserID(context.Background(), "")); ok {
		t.Fatalf("empty user id must not authenticate")
	}
	id, ok := s.CurrentUserID(WithUserID(context.Background(), "u1"))
	if !ok || id != "u1" {
		t.Fatalf("unexpected user: %q %v", id, ok)
	}
}

func TestStatic(t *testing.T) {
	if id, ok := Static("cli").CurrentUserID(context.Background()); !ok || id != "cli" {
		t.Fatalf("unexpected: %q %v", id, ok)
	}
	if _, ok := Static("").CurrentUserID(context.Background()); ok {
		t.Fatalf("expected no user")
	}
}
