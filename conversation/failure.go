package conversation

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal turn failure.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindPersistence   Kind = "persistence"
	KindGeneration    Kind = "generation"
	KindInvalidInput  Kind = "invalid_input"
)

// Failure is the structured error reported to callers.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("conversation: %s: %s: %v", f.Op, f.Message, f.Err)
	}
	return fmt.Sprintf("conversation: %s: %s", f.Op, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// KindOf returns the failure kind of err, or "" when err is not a *Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func newFailure(kind Kind, op, message string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Message: message, Err: err}
}

// TaskResult reports a best-effort step that ran after the reply was stored.
type TaskResult struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// OK reports whether the task succeeded.
func (t TaskResult) OK() bool { return t.Err == nil }
