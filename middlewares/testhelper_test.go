package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/route"
)

// newTestContext returns a request context of a bare app logging into logs.
func newTestContext(w http.ResponseWriter, r *http.Request, logs *bytes.Buffer) internal.Context {
	if logs == nil {
		logs = &bytes.Buffer{}
	}
	log := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return internal.New(internal.WithCustomLogger(log)).NewContext(w, r)
}

// pingController answers "pong", or panics when the action is "panic".
type pingController struct {
	internal.Base
}

func (p *pingController) Actions() internal.Actions {
	return internal.Actions{
		"index": func(c internal.Context, _ ...any) (any, error) {
			return nil, c.String(http.StatusOK, "pong")
		},
		"panic": func(internal.Context, ...any) (any, error) {
			panic("controller exploded")
		},
	}
}

// newTestApp mounts the ping controller at /ping/{action}.
func newTestApp(opts ...internal.Option) *internal.App {
	routes := route.MustTable(map[string]route.Route{
		"ping": {
			Path:     "/ping/{action}",
			Defaults: route.Params{"controller": "ping", "action": "index"},
		},
	})
	base := []internal.Option{
		internal.WithRoutes(routes),
		internal.WithController("ping", func() internal.Controller { return &pingController{} }),
	}
	return internal.New(append(base, opts...)...)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
