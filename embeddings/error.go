package embeddings

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned when the input is blank after trimming.
var ErrEmptyText = errors.New("embeddings: empty text")

// ErrNoVector is the cause recorded when the model returns no usable vector.
var ErrNoVector = errors.New("embeddings: model returned no vector")

// Error reports a failed embedding call. Callers treat it as non-fatal: the
// record is kept without a vector.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("embeddings: %v", e.Err)
	}
	return fmt.Sprintf("embeddings: model %s: %v", e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsError reports whether err is, or wraps, an *Error.
func IsError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}
