// Package cookie provides response cookie management with optional signing.
//
// A Manager carries the default attributes (path, domain, Secure, HttpOnly,
// SameSite) applied to every cookie it writes. Individual writes may
// override them with [Attr] values, which mirrors the classic
// setcookie(name, value, expires, path, domain, secure, httponly) call.
//
//	m := cookie.New(cookie.WithSecret(secret), cookie.WithSecure(true))
//	m.Set(w, "theme", "dark", cookie.MaxAge(86400))
//	theme, err := m.Get(r, "theme")
//
// Signed cookies append an HMAC-SHA256 signature and detect tampering:
//
//	err := m.SetSigned(w, "sid", id, cookie.MaxAge(3600))
//	id, err := m.GetSigned(r, "sid")
//
// Signing needs a secret of at least 32 bytes; without one the signed
// operations return [ErrNoSecret].
package cookie
