package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
)

// newParamContext builds a context whose chi route carries params.
func newParamContext(params map[string]string, queryString string) internal.Context {
	target := "/"
	if queryString != "" {
		target += "?" + queryString
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	return internal.New().NewContext(httptest.NewRecorder(), req)
}

func TestParam(t *testing.T) {
	t.Parallel()

	c := newParamContext(map[string]string{
		"slug":  "hello world",
		"id":    "42",
		"neg":   "-7",
		"big":   "9999999999",
		"price": "3.14",
		"on":    "TRUE",
		"off":   "0",
		"bad":   "abc",
	}, "")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", internal.Param[string](c, "slug"), "hello world"},
		{"int", internal.Param[int](c, "id"), 42},
		{"negative int", internal.Param[int](c, "neg"), -7},
		{"int64", internal.Param[int64](c, "big"), int64(9999999999)},
		{"float as int", internal.Param[int](c, "price"), 0},
		{"float64", internal.Param[float64](c, "price"), 3.14},
		{"int as float64", internal.Param[float64](c, "id"), 42.0},
		{"bool upper case", internal.Param[bool](c, "on"), true},
		{"bool zero", internal.Param[bool](c, "off"), false},
		{"malformed int", internal.Param[int](c, "bad"), 0},
		{"malformed bool", internal.Param[bool](c, "bad"), false},
		{"missing string", internal.Param[string](c, "missing"), ""},
		{"missing int64", internal.Param[int64](c, "missing"), int64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.got)
		})
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	c := newParamContext(nil, "page=5&id=9876543210&price=19.99&verbose=1&empty=&bad=yes")

	require.Equal(t, 5, internal.Query[int](c, "page"))
	require.Equal(t, "5", internal.Query[string](c, "page"))
	require.Equal(t, int64(9876543210), internal.Query[int64](c, "id"))
	require.InDelta(t, 19.99, internal.Query[float64](c, "price"), 0.001)
	require.True(t, internal.Query[bool](c, "verbose"))
	require.False(t, internal.Query[bool](c, "bad"))
	require.Zero(t, internal.Query[int](c, "empty"))
	require.Zero(t, internal.Query[int](c, "missing"))
}

func TestQueryDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"present", "page=5", 5},
		{"missing", "", 1},
		{"empty value", "page=", 1},
		{"malformed", "page=abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newParamContext(nil, tt.query)
			require.Equal(t, tt.want, internal.QueryDefault(c, "page", 1))
		})
	}

	t.Run("other kinds", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(nil, "name=hello&flag=false")
		require.Equal(t, "hello", internal.QueryDefault(c, "name", "default"))
		require.False(t, internal.QueryDefault(c, "flag", true))
		require.InDelta(t, 9.99, internal.QueryDefault(c, "price", 9.99), 0.001)
	})
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	type key struct{}
	type author struct {
		Name string
		ID   int
	}

	c := newParamContext(nil, "")
	require.Equal(t, author{}, internal.ContextValue[author](c, key{}))

	c.Set(key{}, author{Name: "Alice", ID: 30})
	require.Equal(t, author{Name: "Alice", ID: 30}, internal.ContextValue[author](c, key{}))
	require.Empty(t, internal.ContextValue[string](c, key{}))
}

func TestParam_NamedTypes(t *testing.T) {
	t.Parallel()

	type postID int
	type slug string
	type flag bool

	c := newParamContext(map[string]string{"id": "42", "slug": "hello", "on": "true", "bad": "x"}, "page=3")

	require.Equal(t, postID(42), internal.Param[postID](c, "id"))
	require.Equal(t, slug("hello"), internal.Param[slug](c, "slug"))
	require.Equal(t, flag(true), internal.Param[flag](c, "on"))
	require.Equal(t, postID(0), internal.Param[postID](c, "bad"))
	require.Equal(t, postID(3), internal.Query[postID](c, "page"))
	require.Equal(t, postID(1), internal.QueryDefault(c, "missing", postID(1)))
}
