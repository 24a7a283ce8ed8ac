package generation

import (
	"context"
	"errors"
	"testing"
)

func TestText(t *testing.T) {
	if got, err := Text(" Hello", " world ", "\n"); err != nil || got != "Hello world" {
		t.Fatalf("unexpected: %q %v", got, err)
	}
	if _, err := Text("  ", "\n"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestFunc(t *testing.T) {
	var g Generator = Func(func(ctx context.Context, system, prompt string) (string, error) {
		return system + "|" + prompt, nil
	})
	if got, _ := g.Complete(context.Background(), "s", "p"); got != "s|p" {
		t.Fatalf("unexpected: %q", got)
	}
}
