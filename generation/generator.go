// Package generation defines the chat-completion capability used to answer a
// turn and to title new chats.
package generation

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when a model answers with no text.
var ErrEmptyResponse = errors.New("generation: empty response")

// Generator completes a prompt under a system instruction kept separate from
// the per-call prompt.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, system, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// Text joins candidate parts and fails with ErrEmptyResponse when nothing but
// whitespace remains.
func Text(parts ...string) (string, error) {
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
