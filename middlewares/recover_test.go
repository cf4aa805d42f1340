package middlewares_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("recovers from panic and returns PanicError", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), &logs)

		handler := middlewares.Recover()(func(internal.Context) error {
			panic("test panic")
		})

		err := handler(ctx)
		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		require.Equal(t, "test panic", pe.Value)
		require.NotEmpty(t, pe.Stack)
		require.Contains(t, logs.String(), "panic recovered")
		require.Contains(t, logs.String(), "stack=")
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		handler := middlewares.Recover()(func(internal.Context) error {
			return nil
		})

		require.NoError(t, handler(ctx))
	})

	t.Run("handler error is returned unchanged", func(t *testing.T) {
		t.Parallel()

		want := errors.New("handler failed")
		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		handler := middlewares.Recover()(func(internal.Context) error {
			return want
		})

		require.Same(t, want, handler(ctx))
	})

	t.Run("disable stack", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), &logs)
		handler := middlewares.Recover(middlewares.WithRecoverDisablePrintStack())(func(internal.Context) error {
			panic("test panic")
		})

		pe, ok := middlewares.AsPanicError(handler(ctx))
		require.True(t, ok)
		require.Nil(t, pe.Stack)
		require.NotContains(t, logs.String(), "stack=")
	})

	t.Run("stack size", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		handler := middlewares.Recover(middlewares.WithRecoverStackSize(64))(func(internal.Context) error {
			panic("small")
		})

		pe, ok := middlewares.AsPanicError(handler(ctx))
		require.True(t, ok)
		require.NotEmpty(t, pe.Stack)
		require.LessOrEqual(t, len(pe.Stack), 64)
	})

	t.Run("zero stack size falls back to default", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		handler := middlewares.Recover(middlewares.WithRecoverStackSize(0))(func(internal.Context) error {
			panic("zero")
		})

		pe, ok := middlewares.AsPanicError(handler(ctx))
		require.True(t, ok)
		require.NotEmpty(t, pe.Stack)
	})

	t.Run("panic(nil) is caught as *runtime.PanicNilError", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		handler := middlewares.Recover()(func(internal.Context) error {
			panic(nil)
		})

		err := handler(ctx)
		var pne *runtime.PanicNilError
		require.ErrorAs(t, err, &pne)
	})

	t.Run("error panic value is unwrapped", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("bad state")
		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		handler := middlewares.Recover()(func(internal.Context) error {
			panic(cause)
		})

		require.ErrorIs(t, handler(ctx), cause)
	})
}

func TestRecover_InApp(t *testing.T) {
	t.Parallel()

	var handled error
	app := newTestApp(
		internal.WithMiddleware(middlewares.Recover()),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			return internal.DefaultErrorHandler(c, err)
		}),
	)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/ping/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	pe, ok := middlewares.AsPanicError(handled)
	require.True(t, ok)
	require.Equal(t, "ping", pe.Route)
	require.Equal(t, "controller exploded", pe.Value)
}
