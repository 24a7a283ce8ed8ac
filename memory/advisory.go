package memory

import (
	"context"
	"errors"
	"log"
	"time"
)

// DefaultTimeout bounds a single memory service call.
const DefaultTimeout = 10 * time.Second

// ErrDisabled is reported by Add when no backing store is configured.
var ErrDisabled = errors.New("memory: disabled")

// Advisory wraps a Store so that failures are logged and never propagate
// into the caller's control flow. A nil store disables memory.
type Advisory struct {
	store   Store
	timeout time.Duration
	logger  *log.Logger
}

// AdvisoryOption configures Advisory.
type AdvisoryOption func(*Advisory)

// WithTimeout sets the per-call timeout; non-positive values disable it.
func WithTimeout(timeout time.Duration) AdvisoryOption {
	return func(a *Advisory) { a.timeout = timeout }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) AdvisoryOption {
	return func(a *Advisory) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdvisory wraps store.
func NewAdvisory(store Store, opts ...AdvisoryOption) *Advisory {
	a := &Advisory{
		store:   store,
		timeout: DefaultTimeout,
		logger:  log.New(log.Writer(), "[MEMORY] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a backing store is configured.
func (a *Advisory) Enabled() bool { return a != nil && a.store != nil }

// Search returns matching facts, or nil when the service is unavailable.
func (a *Advisory) Search(ctx context.Context, query, userID string) []Fact {
	if !a.Enabled() || query == "" || userID == "" {
		return nil
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	facts, err := a.store.Search(ctx, query, userID)
	if err != nil {
		a.logger.Printf("search failed: user=%s err=%v", userID, err)
		return nil
	}
	return facts
}

// Add records turns for userID. The returned error is informational: it has
// already been logged and callers only report it.
func (a *Advisory) Add(ctx context.Context, turns []Turn, userID string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	if len(turns) == 0 || userID == "" {
		return nil
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.store.Add(ctx, turns, userID); err != nil {
		a.logger.Printf("add failed: user=%s turns=%d err=%v", userID, len(turns), err)
		return err
	}
	return nil
}

func (a *Advisory) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
