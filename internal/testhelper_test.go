package internal_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/route"
)

var errBoom = errors.New("boom")

const testBuildTimestamp = 1700000000

// trace records lifecycle steps in order.
type trace struct {
	events []string
	mu     sync.Mutex
}

func (t *trace) add(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *trace) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.events)
}

func (t *trace) count(event string) int {
	n := 0
	for _, e := range t.list() {
		if e == event {
			n++
		}
	}
	return n
}

// textComponent renders a fixed string.
type textComponent string

func (s textComponent) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(s))
	return err
}

// hostController runs a test-provided action as "index".
type hostController struct {
	fn func(c internal.Context) (any, error)
	internal.Base
}

func (h *hostController) Actions() internal.Actions {
	return internal.Actions{
		"index": func(c internal.Context, _ ...any) (any, error) {
			return h.fn(c)
		},
	}
}

// widget is an embeddable controller tracing its lifecycle.
type widget struct {
	beforeErr error
	trace     *trace
	Title     string
	internal.Base
	Count int
}

func (w *widget) Before(c internal.Context) error {
	w.trace.add("before:" + w.ActionName())
	if w.beforeErr != nil {
		return w.beforeErr
	}
	return w.Base.Before(c)
}

func (w *widget) After(internal.Context) {
	w.trace.add("after:" + w.ActionName())
}

func (w *widget) Props() internal.Props {
	return internal.Props{
		"title": internal.Prop(&w.Title),
		"count": internal.Prop(&w.Count),
	}
}

func (w *widget) Actions() internal.Actions {
	return internal.Actions{
		"show": func(internal.Context, ...any) (any, error) {
			w.trace.add("action:show")
			return textComponent("[" + w.Title + "]"), nil
		},
		"json": func(c internal.Context, args ...any) (any, error) {
			w.trace.add("action:json")
			return map[string]any{"title": w.Title, "id": c.Param("id"), "args": len(args)}, nil
		},
		"nothing": func(internal.Context, ...any) (any, error) {
			w.trace.add("action:nothing")
			return nil, nil
		},
		"fail": func(internal.Context, ...any) (any, error) {
			w.trace.add("action:fail")
			return nil, errBoom
		},
		"panic": func(internal.Context, ...any) (any, error) {
			w.trace.add("action:panic")
			panic("kaboom")
		},
	}
}

func testRoutes() *route.Table {
	return route.MustTable(map[string]route.Route{
		"host": {
			Path:     "/host",
			Defaults: route.Params{"controller": "host"},
		},
		"widget": {
			Path:     "/widget/{action}",
			Defaults: route.Params{"controller": "widget", "action": "show"},
		},
		"user": {
			Path:     "/u/{id}",
			Defaults: route.Params{"controller": "widget", "action": "json", "id": "0"},
			Methods:  []string{http.MethodGet},
		},
	})
}

// newTestApp builds an app with the "host" and "widget" controllers.
func newTestApp(tr *trace, fn func(c internal.Context) (any, error), opts ...internal.Option) *internal.App {
	base := []internal.Option{
		internal.WithRoutes(testRoutes()),
		internal.WithBuildTimestamp(testBuildTimestamp),
		internal.WithController("host", func() internal.Controller {
			return &hostController{fn: fn}
		}),
		internal.WithController("widget", func() internal.Controller {
			return &widget{trace: tr}
		}),
	}
	return internal.New(append(base, opts...)...)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// requestVia sends req (its path is replaced by /host) through an app whose
// host action runs fn. The origin check is off.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	req.URL.Path = "/host"
	opts = append(opts, internal.WithController("host", func() internal.Controller {
		h := &hostController{fn: func(c internal.Context) (any, error) {
			fn(c)
			return nil, nil
		}}
		h.SkipOriginCheck = true
		return h
	}))
	return serve(newTestApp(&trace{}, nil, opts...), req)
}

func cookiesOf(w *httptest.ResponseRecorder) []*http.Cookie {
	return w.Result().Cookies()
}
