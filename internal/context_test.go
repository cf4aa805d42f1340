package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/pjax"
	"github.com/dmitrymomot/anvil/pkg/session"
)

func TestContext_HeaderLine(t *testing.T) {
	t.Parallel()

	t.Run("set and add", func(t *testing.T) {
		t.Parallel()

		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.NoError(t, c.HeaderLine("X-Tag: one", true))
			require.NoError(t, c.HeaderLine("X-Tag: two", false))
			require.NoError(t, c.HeaderLine("X-Mode:  fast ", true))
			require.NoError(t, c.HeaderLine("X-Mode: slow", true))
		})

		require.Equal(t, []string{"one", "two"}, w.Header().Values("X-Tag"))
		require.Equal(t, "slow", w.Header().Get("X-Mode"))
	})

	t.Run("status line", func(t *testing.T) {
		t.Parallel()

		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.NoError(t, c.HeaderLine("HTTP/1.1 404 Not Found", true))
			_, _ = c.Output().Write([]byte("gone"))
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "gone", w.Body.String())
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			for _, raw := range []string{"no colon", ": empty name", "Bad Name: x", "HTTP/1.1", "HTTP/1.1 abc", "HTTP/1.1 42"} {
				require.ErrorIs(t, c.HeaderLine(raw, true), internal.ErrBadHeaderLine, raw)
			}
		})
	})
}

func TestContext_Status(t *testing.T) {
	t.Parallel()

	w := serve(newTestApp(&trace{}, func(c internal.Context) (any, error) {
		c.Status(http.StatusAccepted)
		return textComponent("queued"), nil
	}), httptest.NewRequest(http.MethodGet, "/host", nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "queued", w.Body.String())
}

func TestContext_Expires(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			c.Expires(time.Time{}, "")
		})

		require.Equal(t, "private, must-revalidate", w.Header().Get("Cache-Control"))
		require.Equal(t, "Thu, 01 Jan 1970 00:00:00 GMT", w.Header().Get("Expires"))
	})

	t.Run("explicit", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2030, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600))
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			c.Expires(at, "public, max-age=60")
		})

		require.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
		require.Equal(t, "Mon, 06 May 2030 06:08:09 GMT", w.Header().Get("Expires"))
	})
}

func TestContext_BasicAuth(t *testing.T) {
	t.Parallel()

	check := func(user, pass string) bool {
		return user == "admin" && pass == "secret"
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "secret")

		var err error
		w := requestVia(t, req, nil, func(c internal.Context) {
			err = c.BasicAuth("Admin", check)
		})

		require.NoError(t, err)
		require.Empty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong credentials", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "nope")

		app := newTestApp(&trace{}, func(c internal.Context) (any, error) {
			return nil, c.BasicAuth("Admin", check)
		})
		req.URL.Path = "/host"
		w := serve(app, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, `Basic realm="Admin", charset="UTF-8"`, w.Header().Get("WWW-Authenticate"))
		require.Contains(t, w.Body.String(), "Restricted access to Admin")
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		var err error
		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			err = c.BasicAuth("Admin", check)
		})

		require.ErrorIs(t, err, internal.ErrBasicAuth)
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestContext_Redirect(t *testing.T) {
	t.Parallel()

	t.Run("plain", func(t *testing.T) {
		t.Parallel()

		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.NoError(t, c.Redirect(http.StatusSeeOther, "/login"))
		})

		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, "/login", w.Header().Get("Location"))
		require.Empty(t, w.Header().Get(pjax.HeaderPJAXURL))
	})

	t.Run("pjax", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(pjax.HeaderPJAX, "true")

		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Redirect(http.StatusFound, "/dashboard"))
		})

		require.Equal(t, "/dashboard", w.Header().Get(pjax.HeaderPJAXURL))
	})
}

func TestContext_URL(t *testing.T) {
	t.Parallel()

	var u string
	var err error
	requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
		u, err = c.URL("user", map[string]string{"id": "9"})
	})

	require.NoError(t, err)
	require.Equal(t, "/u/9", u)
}

func TestContext_IsContext(t *testing.T) {
	t.Parallel()

	var deadline bool
	requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
		ctx, cancel := context.WithTimeout(c, time.Minute)
		defer cancel()
		_, deadline = ctx.Deadline()
	})
	require.True(t, deadline)
}

func TestContext_Sessions(t *testing.T) {
	t.Parallel()

	t.Run("new session is saved on write", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), []internal.Option{internal.WithSession(store)}, func(c internal.Context) {
			sess, err := c.Session("")
			require.NoError(t, err)
			sess.Set("user", "ann")
			_ = c.String(http.StatusOK, "hi")
		})

		cookies := cookiesOf(w)
		require.Len(t, cookies, 1)
		require.Equal(t, "__sid", cookies[0].Name)
		require.Equal(t, 1, store.Len())

		loaded, err := store.Load(context.Background(), cookies[0].Value)
		require.NoError(t, err)
		v, _ := loaded.Get("user")
		require.Equal(t, "ann", v)
	})

	t.Run("saved when nothing is written", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), []internal.Option{internal.WithSession(store)}, func(c internal.Context) {
			sess, err := c.Session("cart")
			require.NoError(t, err)
			sess.Set("items", 2)
		})

		cookies := cookiesOf(w)
		require.Len(t, cookies, 1)
		require.Equal(t, "__sid_cart", cookies[0].Name)
		require.Equal(t, 1, store.Len())
	})

	t.Run("destroy", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		sess, err := session.New("", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Save(context.Background(), sess))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "__sid", Value: sess.ID})

		w := requestVia(t, req, []internal.Option{internal.WithSession(store)}, func(c internal.Context) {
			require.NoError(t, c.DestroySession(""))
			_, ok, err := c.SessionIfExists("")
			require.NoError(t, err)
			require.False(t, ok)
		})

		require.Zero(t, store.Len())
		cookies := cookiesOf(w)
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("session after destroy starts fresh", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		old, err := session.New("", time.Hour)
		require.NoError(t, err)
		old.Set("user", "ann")
		require.NoError(t, store.Save(context.Background(), old))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "__sid", Value: old.ID})

		var freshID string
		w := requestVia(t, req, []internal.Option{internal.WithSession(store)}, func(c internal.Context) {
			require.NoError(t, c.DestroySession(""))

			fresh, err := c.Session("")
			require.NoError(t, err)
			require.NotEqual(t, old.ID, fresh.ID)
			_, ok := fresh.Get("user")
			require.False(t, ok)
			fresh.Set("user", "guest")
			freshID = fresh.ID
		})

		_, err = store.Load(context.Background(), old.ID)
		require.ErrorIs(t, err, session.ErrNotFound)
		require.Equal(t, 1, store.Len())

		var sid *http.Cookie
		for _, ck := range cookiesOf(w) {
			if ck.Name == "__sid" {
				sid = ck
			}
		}
		require.NotNil(t, sid)
		require.Equal(t, freshID, sid.Value)
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			_, err := c.Session("")
			require.ErrorIs(t, err, session.ErrNotConfigured)
		})
	})
}
