package route

import (
	"maps"
	"slices"
	"strings"
)

// Params maps placeholder names to values.
type Params map[string]string

// Action is the shorthand for Params{"action": name}.
func Action(name string) Params {
	return Params{"action": name}
}

// Route is a named entry of the route table.
type Route struct {
	Defaults   Params   `yaml:"defaults,omitempty" toml:"defaults"`
	Name       string   `yaml:"-" toml:"-"`
	Path       string   `yaml:"path" toml:"path"`
	PathExport string   `yaml:"path_export,omitempty" toml:"path_export"`
	Methods    []string `yaml:"methods,omitempty" toml:"methods"`

	path   *pattern
	export *pattern
}

// compile prepares the path templates. Called once when the table is built.
func (r *Route) compile() error {
	if r.Path == "" {
		return ErrEmptyPath
	}
	r.path = compilePattern(r.Path)
	if r.PathExport != "" {
		r.export = compilePattern(r.PathExport)
	}
	for i, m := range r.Methods {
		r.Methods[i] = strings.ToUpper(m)
	}
	return nil
}

// Default returns the default value of a parameter.
func (r *Route) Default(name string) string {
	return r.Defaults[name]
}

// Placeholders returns the placeholder names of the URL template, in order.
func (r *Route) Placeholders() []string {
	return r.urlPattern().params()
}

// urlPattern selects the export template when present.
func (r *Route) urlPattern() *pattern {
	if r.export != nil {
		return r.export
	}
	return r.path
}

// build expands the URL template. Never fails: unknown placeholders become "".
func (r *Route) build(params Params, query Query) string {
	u := r.urlPattern().expand(func(name string) string {
		if v, ok := params[name]; ok {
			return v
		}
		return r.Defaults[name]
	})

	if u != "/" {
		u = strings.TrimRight(u, "/")
	}

	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// clone returns a deep copy so callers cannot mutate table state.
func (r *Route) clone() Route {
	c := *r
	c.Defaults = maps.Clone(r.Defaults)
	c.Methods = slices.Clone(r.Methods)
	return c
}
