package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusBadRequest, "bad request")
		err := fmt.Errorf("handler failed: %w", httpErr)
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("inside an embed error", func(t *testing.T) {
		t.Parallel()
		err := &internal.EmbedError{Controller: "user", Action: "card", Err: internal.ErrForbidden("nope")}
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(errors.New("something went wrong")))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.ErrForbidden("Bad CSRF token.", internal.WithError(internal.ErrCSRF), internal.WithRequestID("req-1"))
		err := fmt.Errorf("before: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusForbidden, got.Code)
		require.Equal(t, "Bad CSRF token.", got.Message)
		require.Equal(t, "req-1", got.RequestID)
		require.ErrorIs(t, err, internal.ErrCSRF)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(errors.New("plain error")))
	})
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *internal.HTTPError
		name string
		code int
	}{
		{internal.ErrBadRequest("x"), "bad request", http.StatusBadRequest},
		{internal.ErrUnauthorized("x"), "unauthorized", http.StatusUnauthorized},
		{internal.ErrForbidden("x"), "forbidden", http.StatusForbidden},
		{internal.ErrNotFound("x"), "not found", http.StatusNotFound},
		{internal.ErrMethodNotAllowed("x"), "method not allowed", http.StatusMethodNotAllowed},
		{internal.ErrInternal("x"), "internal", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.code, tt.err.StatusCode())
			require.Equal(t, http.StatusText(tt.code), tt.err.StatusText())
			require.Equal(t, "x", tt.err.Error())
		})
	}

	t.Run("message includes cause", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrInternal("render failed", internal.WithError(errors.New("boom")))
		require.Equal(t, "render failed: boom", err.Error())
	})
}

func TestEmbedError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &internal.EmbedError{Controller: "user", Action: "card", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "error occurred in an embed call")
	require.Contains(t, err.Error(), "user/card")
}
