package route

import (
	"fmt"
	"maps"
	"slices"
)

// Table is the process-wide, read-only set of named routes.
type Table struct {
	routes map[string]*Route
	names  []string
}

// NewTable compiles the given routes into a table.
// The map key is the route name.
func NewTable(routes map[string]Route) (*Table, error) {
	t := &Table{routes: make(map[string]*Route, len(routes))}
	for name, r := range routes {
		rt := r.clone()
		rt.Name = name
		if err := rt.compile(); err != nil {
			return nil, fmt.Errorf("route %q: %w", name, err)
		}
		t.routes[name] = &rt
	}
	t.names = slices.Sorted(maps.Keys(t.routes))
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(routes map[string]Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns a copy of the named route.
func (t *Table) Lookup(name string) (Route, bool) {
	r, ok := t.routes[name]
	if !ok {
		return Route{}, false
	}
	return r.clone(), true
}

// Names returns the route names in lexical order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Build resolves a named route into a path.
// Placeholders take values from params, then from the route defaults, then
// the empty string. Trailing slashes are stripped unless the result is "/".
// A non-empty query is appended in the given order.
// Returns ErrRouteNotFound if the name is unknown.
func (t *Table) Build(name string, params Params, query Query) (string, error) {
	r, ok := t.routes[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}
	return r.build(params, query), nil
}
