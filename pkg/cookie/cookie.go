package cookie

import (
	"errors"
	"net/http"
	"time"
)

// Manager writes and reads cookies with shared default attributes.
type Manager struct {
	secret   []byte // nil disables signing
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the signing secret. Secrets shorter than 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the default cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithPath sets the default cookie path.
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithSecure sets the default Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithHTTPOnly sets the default HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

// WithSameSite sets the default SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// Attr overrides a single attribute of one written cookie.
type Attr func(*http.Cookie)

// MaxAge sets Max-Age in seconds. Zero leaves a session cookie.
func MaxAge(seconds int) Attr {
	return func(c *http.Cookie) { c.MaxAge = seconds }
}

// Expires sets an absolute expiry time.
func Expires(t time.Time) Attr {
	return func(c *http.Cookie) { c.Expires = t }
}

// Path overrides the cookie path.
func Path(path string) Attr {
	return func(c *http.Cookie) { c.Path = path }
}

// Domain overrides the cookie domain.
func Domain(domain string) Attr {
	return func(c *http.Cookie) { c.Domain = domain }
}

// Secure overrides the Secure flag.
func Secure(secure bool) Attr {
	return func(c *http.Cookie) { c.Secure = secure }
}

// HTTPOnly overrides the HttpOnly flag.
func HTTPOnly(httpOnly bool) Attr {
	return func(c *http.Cookie) { c.HttpOnly = httpOnly }
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, attrs ...Attr) {
	http.SetCookie(w, m.cookie(name, value, attrs))
}

// Delete expires a cookie on the client.
func (m *Manager) Delete(w http.ResponseWriter, name string, attrs ...Attr) {
	attrs = append(attrs, MaxAge(-1))
	http.SetCookie(w, m.cookie(name, "", attrs))
}

// Signing reports whether the manager has a secret configured.
func (m *Manager) Signing() bool {
	return m.secret != nil
}

func (m *Manager) cookie(name, value string, attrs []Attr) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
	for _, attr := range attrs {
		attr(c)
	}
	return c
}
