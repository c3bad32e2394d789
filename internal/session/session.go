// Package session implements cookie-backed server-side sessions and the
// per-session anti-forgery token required on state-changing requests.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id does not resolve to a live session.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record an opaque cookie id points at.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Token     string    `json:"token"` // anti-forgery token
	CreatedAt time.Time `json:"created_at"`
}

// Store defines session persistence. A session is created on login or signup,
// destroyed on logout, and every session for a user is revoked when the user
// is deleted.
type Store interface {
	Create(ctx context.Context, userID uint) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	RevokeUser(ctx context.Context, userID uint) error
	Close() error
}

// newToken returns a hex-encoded 256-bit random value for anti-forgery use.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
