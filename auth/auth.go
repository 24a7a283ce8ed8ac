// Package auth resolves the caller of the conversation core.
package auth

import "context"

// Session reports the authenticated user for a request.
type Session interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type userKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the user id stored by WithUserID.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

// Context is a Session backed by WithUserID.
type Context struct{}

func (Context) CurrentUserID(ctx context.Context) (string, bool) { return UserID(ctx) }

// Static always reports the same user; used by the CLI.
type Static string

func (s Static) CurrentUserID(context.Context) (string, bool) { return string(s), s != "" }
