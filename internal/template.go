package internal

import (
	"fmt"
	"html/template"
	"io"
	"maps"

	"github.com/dmitrymomot/anvil/pkg/view"
)

// Reserved scope keys. They overwrite user values of the same name.
const (
	ScopeEnv            = "env"
	ScopeIsPjax         = "isPjax"
	ScopeCSRFToken      = "csrfToken"
	ScopeBuildTimestamp = "buildTimestamp"
	ScopeDiagnostics    = "diagnostics"
)

// TemplateCallback runs right before a template is rendered.
type TemplateCallback func(engine view.Engine, t *Template) error

// Template is a rendering directive: a template name and its scope.
type Template struct {
	scope      map[string]any
	callback   TemplateCallback
	controller Controller
	file       string
	code       int
}

// NewTemplate creates a template envelope. The scope is copied.
func NewTemplate(file string, scope map[string]any) *Template {
	t := &Template{file: file, scope: make(map[string]any, len(scope))}
	maps.Copy(t.scope, scope)
	return t
}

// File returns the template name.
func (t *Template) File() string {
	return t.file
}

// SetFile replaces the template name.
func (t *Template) SetFile(file string) *Template {
	t.file = file
	return t
}

// Assign sets one scope variable.
func (t *Template) Assign(key string, value any) *Template {
	t.scope[key] = value
	return t
}

// AssignAll merges vars into the scope.
func (t *Template) AssignAll(vars map[string]any) *Template {
	maps.Copy(t.scope, vars)
	return t
}

// Scope returns a copy of the scope.
func (t *Template) Scope() map[string]any {
	return maps.Clone(t.scope)
}

// SetCallback sets the pre-render callback.
func (t *Template) SetCallback(fn TemplateCallback) *Template {
	t.callback = fn
	return t
}

// SetController binds the template to a controller.
// The renderer binds the invoking controller when none is set.
func (t *Template) SetController(ctrl Controller) *Template {
	t.controller = ctrl
	return t
}

// Controller returns the bound controller, or nil.
func (t *Template) Controller() Controller {
	return t.controller
}

// WithStatus sets the status code of an outer render.
func (t *Template) WithStatus(code int) *Template {
	t.code = code
	return t
}

func (*Template) isResponse() {}

// render runs the engine in a fixed order: scope, reserved keys, callback,
// functions, existence check, then output.
func (t *Template) render(c *requestContext) error {
	if c.app.views == nil {
		return ErrViewsNotConfigured
	}

	engine := c.app.views.NewEngine()
	engine.Assign(c.app.scopeDefaults)
	engine.Assign(t.scope)
	engine.Assign(c.reservedScope())

	if t.callback != nil {
		if err := t.callback(engine, t); err != nil {
			return err
		}
	}

	if err := engine.RegisterFunction("url", view.URLFunc(c.urlFunc)); err != nil {
		return err
	}
	if err := engine.RegisterFunction("embed", view.EmbedFunc(c.embedFunc)); err != nil {
		return err
	}

	if !engine.TemplateExists(t.file) {
		return fmt.Errorf("%w: %q", view.ErrTemplateNotFound, t.file)
	}

	return c.emit("text/html; charset=utf-8", t.code, func(w io.Writer) error {
		return engine.Display(c.Context(), w, t.file)
	})
}

func (c *requestContext) reservedScope() map[string]any {
	return map[string]any{
		ScopeEnv:            c.app.env,
		ScopeIsPjax:         c.IsPJAX(),
		ScopeCSRFToken:      c.CSRFToken().Value(),
		ScopeBuildTimestamp: c.app.buildTimestamp,
		ScopeDiagnostics:    c.diag,
	}
}

// embedFunc is the "embed" template function.
func (c *requestContext) embedFunc(args ...any) (template.HTML, error) {
	p, err := ParseEmbedArgs(args...)
	if err != nil {
		return "", err
	}
	out, err := c.Embed(p)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil //nolint:gosec // output of our own renderer
}
