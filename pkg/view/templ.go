package view

import (
	"context"
	"fmt"
	"io"
	"maps"
	"reflect"
	"sync"

	"github.com/a-h/templ"
)

// TemplFunc builds a component from the render data.
type TemplFunc func(d *TemplData) templ.Component

// TemplRegistry maps template names to templ component constructors.
type TemplRegistry struct {
	components map[string]TemplFunc
	mu         sync.RWMutex
}

// NewTemplRegistry creates an empty registry.
func NewTemplRegistry() *TemplRegistry {
	return &TemplRegistry{components: make(map[string]TemplFunc)}
}

// Register adds or replaces a named component.
func (r *TemplRegistry) Register(name string, fn TemplFunc) *TemplRegistry {
	r.mu.Lock()
	r.components[name] = fn
	r.mu.Unlock()
	return r
}

func (r *TemplRegistry) lookup(name string) (TemplFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.components[name]
	return fn, ok
}

// NewEngine returns a fresh engine over the registry.
func (r *TemplRegistry) NewEngine() Engine {
	return &TemplEngine{
		registry: r,
		data:     &TemplData{Scope: make(map[string]any), funcs: make(map[string]any)},
	}
}

// TemplEngine renders components of a TemplRegistry.
type TemplEngine struct {
	registry *TemplRegistry
	data     *TemplData
}

func (e *TemplEngine) Assign(vars map[string]any) {
	maps.Copy(e.data.Scope, vars)
}

func (e *TemplEngine) RegisterFunction(name string, fn any) error {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%w: %s", ErrNotAFunction, name)
	}
	e.data.funcs[name] = fn
	return nil
}

func (e *TemplEngine) TemplateExists(name string) bool {
	_, ok := e.registry.lookup(name)
	return ok
}

func (e *TemplEngine) Fetch(ctx context.Context, name string) (string, error) {
	fn, ok := e.registry.lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	html, err := templ.ToGoHTML(ctx, fn(e.data))
	if err != nil {
		return "", err
	}
	return string(html), nil
}

func (e *TemplEngine) Display(ctx context.Context, w io.Writer, name string) error {
	fn, ok := e.registry.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return fn(e.data).Render(ctx, w)
}

var _ Engine = (*TemplEngine)(nil)

// TemplData is the scope and function table passed to templ components.
type TemplData struct {
	Scope map[string]any
	funcs map[string]any
}

// Get returns a scope value.
func (d *TemplData) Get(key string) any {
	return d.Scope[key]
}

// String returns a scope value formatted as a string.
func (d *TemplData) String(key string) string {
	v, ok := d.Scope[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Func returns a registered function.
func (d *TemplData) Func(name string) (any, bool) {
	fn, ok := d.funcs[name]
	return fn, ok
}

// URL calls the registered url function.
func (d *TemplData) URL(name string, args ...any) (string, error) {
	fn, ok := d.funcs["url"].(URLFunc)
	if !ok {
		return "", fmt.Errorf("%w: url", ErrFunctionNotRegistered)
	}
	return fn(name, args...)
}

// Embed returns a component running the registered embed function when rendered.
func (d *TemplData) Embed(args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		fn, ok := d.funcs["embed"].(EmbedFunc)
		if !ok {
			return fmt.Errorf("%w: embed", ErrFunctionNotRegistered)
		}
		html, err := fn(args...)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, string(html))
		return err
	})
}
