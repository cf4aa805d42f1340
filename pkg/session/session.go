package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Session is a named set of values bound to a client by cookie.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Values    map[string]any `json:"values"`
	ID        string         `json:"id"`
	Name      string         `json:"name"`

	dirty     bool
	isNew     bool
	destroyed bool
}

// New creates a session with a random ID expiring after ttl.
func New(name string, ttl time.Duration) (*Session, error) {
	id, err := NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        id,
		Name:      name,
		Values:    make(map[string]any),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		dirty:     true,
		isNew:     true,
	}, nil
}

// NewID returns a random URL-safe session identifier.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Set stores a value and marks the session dirty.
func (s *Session) Set(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// Delete removes a value. The session becomes dirty only if the key existed.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Destroy marks the session for removal from the store and the client.
func (s *Session) Destroy() {
	s.destroyed = true
}

func (s *Session) IsDirty() bool     { return s.dirty }
func (s *Session) IsNew() bool       { return s.isNew }
func (s *Session) IsDestroyed() bool { return s.destroyed }

// MarkSaved clears the dirty and new flags after a successful save.
func (s *Session) MarkSaved() {
	s.dirty = false
	s.isNew = false
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime.
func (s *Session) TTL() time.Duration {
	return time.Until(s.ExpiresAt)
}

// Value returns a typed session value.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.Get(key)
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q", ErrTypeMismatch, key)
	}
	return typed, nil
}

// ValueOr returns a typed session value or def when it is missing or of another type.
func ValueOr[T any](s *Session, key string, def T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return def
	}
	return val
}
