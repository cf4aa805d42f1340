package internal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionTTL        = 30 * 24 * time.Hour
)

// SessionManager binds named sessions to cookies and a store.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	cookieName string
	ttl        time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookies:    cookie.New(),
		cookieName: defaultSessionCookieName,
		ttl:        defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the base cookie name. Defaults to "__sid".
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionTTL sets the session lifetime. Defaults to 30 days.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if ttl > 0 {
			sm.ttl = ttl
		}
	}
}

// Store returns the backing session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// setCookies replaces the cookie manager. Called by App so session cookies
// share the app's secret and attributes.
func (sm *SessionManager) setCookies(m *cookie.Manager) {
	if m != nil {
		sm.cookies = m
	}
}

// CookieName returns the cookie carrying the ID of the named session.
// The unnamed session uses the base name, others get "<base>_<name>".
func (sm *SessionManager) CookieName(name string) string {
	if name == "" {
		return sm.cookieName
	}
	return sm.cookieName + "_" + name
}

// Load returns the named session referenced by the request.
// Returns nil, nil when there is no cookie or the stored session is gone.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request, name string) (*session.Session, error) {
	id, err := sm.readID(r, name)
	if err != nil || id == "" {
		return nil, nil
	}

	sess, err := sm.store.Load(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return sess, nil
}

// Create returns a new, unsaved session.
func (sm *SessionManager) Create(name string) (*session.Session, error) {
	return session.New(name, sm.ttl)
}

// Save persists a dirty session and writes its cookie when it is new.
// Destroyed sessions are removed from the store and the client.
func (sm *SessionManager) Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error {
	if s.IsDestroyed() {
		sm.cookies.Delete(w, sm.CookieName(s.Name))
		return sm.store.Delete(ctx, s.ID)
	}
	if !s.IsDirty() {
		return nil
	}

	if err := sm.store.Save(ctx, s); err != nil {
		return err
	}
	if s.IsNew() {
		if err := sm.writeID(w, s); err != nil {
			return err
		}
	}
	s.MarkSaved()
	return nil
}

func (sm *SessionManager) readID(r *http.Request, name string) (string, error) {
	if sm.cookies.Signing() {
		return sm.cookies.GetSigned(r, sm.CookieName(name))
	}
	return sm.cookies.Get(r, sm.CookieName(name))
}

func (sm *SessionManager) writeID(w http.ResponseWriter, s *session.Session) error {
	maxAge := cookie.MaxAge(int(sm.ttl / time.Second))
	if sm.cookies.Signing() {
		return sm.cookies.SetSigned(w, sm.CookieName(s.Name), s.ID, maxAge)
	}
	sm.cookies.Set(w, sm.CookieName(s.Name), s.ID, maxAge)
	return nil
}
