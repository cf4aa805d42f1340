// Package route holds the named route table and builds URLs from it.
//
// A route has a path template with {param} placeholders, an optional export
// path preferred for URL generation, and default parameter values. The same
// templates are mounted on the router, so a URL built here always maps back
// to the route it was built from.
//
// # Building URLs
//
//	table, err := route.NewTable(map[string]route.Route{
//		"user": {Path: "/u/{id}", Defaults: route.Params{"id": "0"}},
//	})
//
//	table.Build("user", nil, nil)                                // "/u/0"
//	table.Build("user", route.Params{"id": "7"}, route.Q("tab", "x")) // "/u/7?tab=x"
//
// Missing parameters fall back to the route defaults and then to the empty
// string, so Build only fails when the route name is unknown.
//
// # Loading
//
// Route tables are usually loaded once at startup from a YAML or TOML file:
//
//	user:
//	  path: /u/{id}
//	  defaults:
//	    controller: users
//	    action: show
//	    id: "0"
//
//	table, err := route.LoadFile("config/routes.yaml")
//
// A table is immutable after construction and safe for concurrent use.
package route
