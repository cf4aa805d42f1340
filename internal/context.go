package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/csrf"
	"github.com/dmitrymomot/anvil/pkg/pjax"
	"github.com/dmitrymomot/anvil/pkg/route"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// Component is the interface for renderable components.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request/response access and helper methods.
// One Context serves an outer request and every embed nested in it.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the response writer.
	Response() http.ResponseWriter

	// ResponseWriter returns the wrapped writer with hook support.
	ResponseWriter() *ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns a route parameter: the URL value, else the route default.
	Param(name string) string

	// Params returns all route parameters of the dispatched route.
	Params() route.Params

	// RouteName returns the name of the dispatched route, or "".
	RouteName() string

	// Query returns a query string parameter.
	Query(name string) string

	// QueryDefault returns a query parameter or defaultValue if empty.
	QueryDefault(name, defaultValue string) string

	// Form returns a form value.
	Form(name string) string

	// Header returns a request header.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// HeaderLine applies a raw "Name: value" header line.
	// A "HTTP/1.1 404" status line sets the status instead.
	HeaderLine(raw string, replace bool) error

	// RemoveHeader removes a response header.
	RemoveHeader(name string)

	// Status sets the status code used when the response is first written.
	Status(code int)

	// Expires sets the Expires and Cache-Control headers.
	// An empty cacheControl means "private, must-revalidate".
	Expires(t time.Time, cacheControl string)

	// Written returns true if the response has been written.
	Written() bool

	// Output returns the current output sink: the response, or the capture
	// buffer of the innermost embed in progress.
	Output() io.Writer

	// IsPJAX reports whether the request asks for a PJAX fragment.
	IsPJAX() bool

	// SetPjaxVersion sets the PJAX version response header.
	SetPjaxVersion(version string)

	// CheckOrigin reports whether the request comes from the app's own host
	// or a trusted origin.
	CheckOrigin() bool

	// CSRFToken returns the request's CSRF token, issuing one if needed.
	CSRFToken() *csrf.Token

	// BasicAuth checks HTTP basic credentials. On failure it sets the
	// WWW-Authenticate challenge and returns a 401 HTTPError.
	BasicAuth(realm string, check func(user, password string) bool) error

	// URL builds the path of a named route.
	URL(name string, params route.Params, query ...route.QueryParam) (string, error)

	// Embed runs a nested controller inside the current request.
	Embed(p EmbedParams) (string, error)

	// EmbedDepth returns the nesting level; 0 for the outer request.
	EmbedDepth() int

	// Env returns the application environment name.
	Env() string

	// BuildTimestamp returns the build timestamp used in PJAX versions.
	BuildTimestamp() int64

	// DefaultLayout returns the layout used when a controller sets none.
	DefaultLayout() string

	// Diagnostics returns the request's render/embed recorder.
	Diagnostics() *Diagnostics

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects the request to the given URL.
	Redirect(code int, url string) error

	// Render writes a component as HTML with the given status code.
	Render(code int, component Component) error

	// Error creates an HTTPError with the given status code and message.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	Cookie(name string) (string, error)
	SetCookie(name, value string, attrs ...cookie.Attr)
	DeleteCookie(name string)
	CookieSigned(name string) (string, error)
	SetCookieSigned(name, value string, attrs ...cookie.Attr) error

	// Session returns the named session, creating it when the client has none.
	// The unnamed session is "".
	Session(name string) (*session.Session, error)

	// SessionIfExists returns the named session only when the client already
	// has one. Returns nil, false if not.
	SessionIfExists(name string) (*session.Session, bool, error)

	// DestroySession removes the named session from the store and the client.
	DestroySession(name string) error
}

type ctxKey struct{}

// requestContext is the per-request state shared by the outer dispatch
// and all embeds nested in it.
type requestContext struct {
	request        *http.Request
	responseWriter *ResponseWriter
	app            *App
	logger         *slog.Logger
	params         route.Params
	sessions       map[string]*session.Session
	csrfToken      *csrf.Token
	diag           *Diagnostics
	routeName      string
	output         []io.Writer
	fragmentType   string
	embedDepth     int
	sessionHook    bool
}

// newContext creates a new context with the response wrapper.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}

	c := &requestContext{
		responseWriter: rw,
		app:            app,
		logger:         app.logger,
		diag:           newDiagnostics(),
	}
	c.request = r.WithContext(context.WithValue(r.Context(), ctxKey{}, c))
	return c
}

// contextFor returns the request's context, creating it on first use.
func contextFor(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	if c, ok := r.Context().Value(ctxKey{}).(*requestContext); ok && c.app == app {
		return c
	}
	return newContext(w, r, app)
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	if v, ok := c.params[name]; ok {
		return v
	}
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Params() route.Params {
	out := make(route.Params, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

func (c *requestContext) RouteName() string {
	return c.routeName
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.responseWriter.Header().Set(name, value)
}

func (c *requestContext) HeaderLine(raw string, replace bool) error {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "HTTP/") {
		fields := strings.Fields(raw)
		if len(fields) < 2 {
			return fmt.Errorf("%w: %q", ErrBadHeaderLine, raw)
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil || code < 100 || code > 999 {
			return fmt.Errorf("%w: %q", ErrBadHeaderLine, raw)
		}
		c.Status(code)
		return nil
	}

	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return fmt.Errorf("%w: %q", ErrBadHeaderLine, raw)
	}
	value = strings.TrimSpace(value)

	if replace {
		c.responseWriter.Header().Set(name, value)
	} else {
		c.responseWriter.Header().Add(name, value)
	}
	return nil
}

func (c *requestContext) RemoveHeader(name string) {
	c.responseWriter.Header().Del(name)
}

func (c *requestContext) Status(code int) {
	c.responseWriter.SetStatus(code)
}

func (c *requestContext) Expires(t time.Time, cacheControl string) {
	if cacheControl == "" {
		cacheControl = "private, must-revalidate"
	}
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	h := c.responseWriter.Header()
	h.Set("Cache-Control", cacheControl)
	h.Set("Expires", t.UTC().Format(http.TimeFormat))
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Output() io.Writer {
	if n := len(c.output); n > 0 {
		return c.output[n-1]
	}
	return c.responseWriter
}

// capture runs fn with a fresh buffer as the output sink and returns
// everything written to it.
func (c *requestContext) capture(fn func(w io.Writer) error) (string, error) {
	var buf bytes.Buffer
	c.output = append(c.output, &buf)
	defer func() { c.output = c.output[:len(c.output)-1] }()

	if err := fn(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *requestContext) IsPJAX() bool {
	return pjax.IsPJAX(c.request)
}

func (c *requestContext) SetPjaxVersion(version string) {
	pjax.SetVersion(c.responseWriter, version)
}

func (c *requestContext) CheckOrigin() bool {
	return c.app.origin.Check(c.request)
}

func (c *requestContext) CSRFToken() *csrf.Token {
	if c.csrfToken == nil {
		c.csrfToken = c.app.csrf.Get(c.responseWriter, c.request)
	}
	return c.csrfToken
}

func (c *requestContext) BasicAuth(realm string, check func(user, password string) bool) error {
	if user, pass, ok := c.request.BasicAuth(); ok && check(user, pass) {
		return nil
	}
	c.SetHeader("WWW-Authenticate", fmt.Sprintf(`Basic realm="%s", charset="UTF-8"`, realm))
	return ErrUnauthorized("Restricted access to "+realm, WithError(ErrBasicAuth))
}

func (c *requestContext) URL(name string, params route.Params, query ...route.QueryParam) (string, error) {
	if c.app.routes == nil {
		return "", ErrRoutesNotConfigured
	}
	return c.app.routes.Build(name, params, query)
}

// urlFunc is the "url" template function.
func (c *requestContext) urlFunc(name string, args ...any) (string, error) {
	params, query, err := route.ParseArgs(args...)
	if err != nil {
		return "", err
	}
	return c.URL(name, params, query...)
}

func (c *requestContext) EmbedDepth() int {
	return c.embedDepth
}

func (c *requestContext) Env() string {
	return c.app.env
}

func (c *requestContext) BuildTimestamp() int64 {
	return c.app.buildTimestamp
}

func (c *requestContext) DefaultLayout() string {
	return c.app.defaultLayout
}

func (c *requestContext) Diagnostics() *Diagnostics {
	return c.diag
}

func (c *requestContext) JSON(code int, v any) error {
	c.responseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	return json.NewEncoder(c.responseWriter).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.responseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	_, err := io.WriteString(c.responseWriter, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.responseWriter.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	if pjax.IsPJAX(c.request) {
		c.responseWriter.Header().Set(pjax.HeaderPJAXURL, url)
	}
	http.Redirect(c.responseWriter, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.responseWriter.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	return component.Render(c.request.Context(), c.responseWriter)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, attrs ...cookie.Attr) {
	c.app.cookieManager.Set(c.responseWriter, name, value, attrs...)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookieManager.Delete(c.responseWriter, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.app.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, attrs ...cookie.Attr) error {
	return c.app.cookieManager.SetSigned(c.responseWriter, name, value, attrs...)
}

// registerSessionHook ensures the session flush hook is registered once.
// It runs before the response is written to persist session changes.
func (c *requestContext) registerSessionHook() {
	if c.sessionHook {
		return
	}
	c.sessionHook = true
	c.responseWriter.OnBeforeWrite(c.flushSessions)
}

// flushSessions saves every loaded session. Errors are logged, not returned,
// because the response is already on its way.
func (c *requestContext) flushSessions() {
	for name, sess := range c.sessions {
		if err := c.app.sessionManager.Save(c.Context(), c.responseWriter, sess); err != nil {
			c.LogError("failed to save session", slog.String("session", name), slog.Any("error", err))
		}
	}
}

func (c *requestContext) Session(name string) (*session.Session, error) {
	sess, ok, err := c.SessionIfExists(name)
	if err != nil || ok {
		return sess, err
	}

	// A session destroyed earlier in this request is replaced by a fresh one
	// with a new ID.
	if old, ok := c.sessions[name]; ok {
		if err := c.app.sessionManager.Store().Delete(c.Context(), old.ID); err != nil {
			return nil, err
		}
	}

	sess, err = c.app.sessionManager.Create(name)
	if err != nil {
		return nil, err
	}
	c.sessions[name] = sess
	return sess, nil
}

func (c *requestContext) SessionIfExists(name string) (*session.Session, bool, error) {
	if c.app.sessionManager == nil {
		return nil, false, session.ErrNotConfigured
	}
	c.registerSessionHook()

	if c.sessions == nil {
		c.sessions = make(map[string]*session.Session)
	}
	if sess, ok := c.sessions[name]; ok {
		if sess.IsDestroyed() {
			return nil, false, nil
		}
		return sess, true, nil
	}

	sess, err := c.app.sessionManager.Load(c.Context(), c.request, name)
	if err != nil {
		return nil, false, err
	}
	if sess == nil {
		return nil, false, nil
	}
	c.sessions[name] = sess
	return sess, true, nil
}

func (c *requestContext) DestroySession(name string) error {
	sess, ok, err := c.SessionIfExists(name)
	if err != nil || !ok {
		return err
	}
	sess.Destroy()
	if c.responseWriter.Written() {
		// The flush hook already ran; drop it from the store right away.
		return c.app.sessionManager.Save(c.Context(), c.responseWriter, sess)
	}
	return nil
}
