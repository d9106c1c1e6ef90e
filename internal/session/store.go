package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("no active session")

// Store keeps server-side session records keyed by token id.
type Store interface {
	Save(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error
	// Resolve reports the owner of an active session. ok is false for
	// unknown, expired or revoked ids.
	Resolve(ctx context.Context, tokenID string) (userID uint, ok bool, err error)
	// Revoke returns ErrNoSession if there was nothing active to revoke.
	Revoke(ctx context.Context, tokenID string) error
}
