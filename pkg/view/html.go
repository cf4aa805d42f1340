package view

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"maps"
	"reflect"
)

// HTMLEngine renders templates of a Set.
type HTMLEngine struct {
	set   *Set
	vars  map[string]any
	funcs template.FuncMap
}

func (e *HTMLEngine) Assign(vars map[string]any) {
	maps.Copy(e.vars, vars)
}

func (e *HTMLEngine) RegisterFunction(name string, fn any) error {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%w: %s", ErrNotAFunction, name)
	}
	e.funcs[name] = fn
	return nil
}

func (e *HTMLEngine) TemplateExists(name string) bool {
	root, err := e.set.templates()
	if err != nil {
		return false
	}
	return e.set.resolve(root, name) != ""
}

func (e *HTMLEngine) Fetch(ctx context.Context, name string) (string, error) {
	var buf bytes.Buffer
	if err := e.Display(ctx, &buf, name); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Display executes a clone of the parsed set with this engine's functions bound.
func (e *HTMLEngine) Display(_ context.Context, w io.Writer, name string) error {
	root, err := e.set.templates()
	if err != nil {
		return err
	}
	resolved := e.set.resolve(root, name)
	if resolved == "" {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	clone, err := root.Clone()
	if err != nil {
		return err
	}
	if len(e.funcs) > 0 {
		clone.Funcs(e.funcs)
	}
	return clone.ExecuteTemplate(w, resolved, e.vars)
}

var _ Engine = (*HTMLEngine)(nil)
