package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource looks a value up in the request context.
// It reports false when the value is absent or empty.
type ExtractorSource = func(Context) (string, bool)

// Extractor resolves a value from an ordered list of sources.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor returns an Extractor trying sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value found.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// ExtractOr returns the first non-empty value found, or fallback.
func (e Extractor) ExtractOr(c Context, fallback string) string {
	if v, ok := e.Extract(c); ok {
		return v
	}
	return fallback
}

func present(v string) (string, bool) {
	return v, v != ""
}

func presentErr(v string, err error) (string, bool) {
	if err != nil {
		return "", false
	}
	return present(v)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Header(name)) }
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Query(name)) }
}

// FromForm reads a form field.
func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Form(name)) }
}

// FromParam reads a route parameter. Route defaults count as values.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Param(name)) }
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) { return presentErr(c.Cookie(name)) }
}

// FromCookieSigned reads a signed cookie. Tampered values miss.
func FromCookieSigned(name string) ExtractorSource {
	return func(c Context) (string, bool) { return presentErr(c.CookieSigned(name)) }
}

// FromSession reads a value of the named session without creating it.
// Non-string values are formatted with fmt.Sprint.
func FromSession(name, key string) ExtractorSource {
	return func(c Context) (string, bool) {
		sess, ok, err := c.SessionIfExists(name)
		if err != nil || !ok {
			return "", false
		}
		switch v, _ := sess.Get(key); v := v.(type) {
		case nil:
			return "", false
		case string:
			return present(v)
		default:
			return present(fmt.Sprint(v))
		}
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		scheme, token, ok := strings.Cut(c.Header("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", false
		}
		return present(strings.TrimSpace(token))
	}
}
