package session

import "context"

// Store persists sessions.
type Store interface {
	// Load returns the session with the given ID.
	// Returns ErrNotFound or ErrExpired.
	Load(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces the session until its ExpiresAt.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
