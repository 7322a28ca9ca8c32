package entity

import (
	"context"
	"time"
)

// Session is the authenticated identity the core acts on behalf of.
// It travels through context.Context; nothing reads it from a global.
type Session struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session identifies a user and has not expired.
func (s Session) Valid(now time.Time) bool {
	if s.UserID == "" || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Handle returns the @-prefixed username.
func (s Session) Handle() string {
	if s.Username == "" {
		return ""
	}
	return "@" + s.Username
}

type sessionKey struct{}

// ContextWithSession returns a copy of ctx carrying s.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext extracts the session placed by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// RequireSession returns the ctx session or ErrAuthRequired when it is missing or expired.
func RequireSession(ctx context.Context, op string) (Session, error) {
	s, ok := SessionFromContext(ctx)
	if !ok || !s.Valid(time.Now()) {
		return Session{}, NewMutationError(ErrorKindAuthRequired, op, nil)
	}
	return s, nil
}
