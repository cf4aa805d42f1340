package csrf

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/anvil/pkg/cookie"
)

const (
	DefaultCookieName = "csrf_token"
	HeaderName        = "X-CSRF-Token"
	FieldName         = "csrf_token"
)

// ErrInvalidToken is returned by Check when the submitted token does not match.
var ErrInvalidToken = errors.New("csrf: invalid token")

// Manager issues and reads CSRF tokens.
type Manager struct {
	cookies    *cookie.Manager
	cookieName string
}

// Option configures the Manager.
type Option func(*Manager)

// WithCookieName overrides the token cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// New creates a Manager storing tokens through the given cookie manager.
func New(cookies *cookie.Manager, opts ...Option) *Manager {
	m := &Manager{cookies: cookies, cookieName: DefaultCookieName}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token is the CSRF token of one request.
type Token struct {
	value string
	fresh bool
}

// Value returns the token string to embed in forms and scripts.
func (t *Token) Value() string {
	return t.value
}

// Fresh reports whether the token was issued during this request.
func (t *Token) Fresh() bool {
	return t.fresh
}

// Validate compares the submitted token with this one in constant time.
func (t *Token) Validate(r *http.Request) bool {
	if t.fresh || t.value == "" {
		return false
	}
	submitted := Submitted(r)
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(t.value)) == 1
}

// Get returns the request's token, issuing and storing a new one when the
// cookie is missing or fails verification.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Token {
	if value, err := m.read(r); err == nil && value != "" {
		return &Token{value: value}
	}

	value := uuid.NewString()
	if m.cookies.Signing() {
		// Signing is enabled, so SetSigned cannot fail.
		_ = m.cookies.SetSigned(w, m.cookieName, value)
	} else {
		m.cookies.Set(w, m.cookieName, value)
	}
	return &Token{value: value, fresh: true}
}

// Check validates the request against its token.
func (m *Manager) Check(w http.ResponseWriter, r *http.Request) error {
	if !m.Get(w, r).Validate(r) {
		return ErrInvalidToken
	}
	return nil
}

func (m *Manager) read(r *http.Request) (string, error) {
	if m.cookies.Signing() {
		return m.cookies.GetSigned(r, m.cookieName)
	}
	return m.cookies.Get(r, m.cookieName)
}

// Submitted returns the token sent with the request: the X-CSRF-Token
// header, else the csrf_token form field.
func Submitted(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	return r.FormValue(FieldName)
}
