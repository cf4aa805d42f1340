// Package view provides the templating engines used to render Template
// responses.
//
// An [Engine] is a single-use rendering session: variables are assigned,
// functions registered, and one named template is fetched (returned as a
// string) or displayed (streamed to a writer). A [Factory] hands out fresh
// engines so no state leaks between renders.
//
// Two engine families are provided:
//
//   - [Set] parses every template file of an fs.FS with html/template.
//     Template names are slash-separated paths relative to the root, e.g.
//     "users/show.html". Functions registered on an engine replace the
//     placeholders declared at parse time (url and embed by default, more
//     via [WithPlaceholders]). A markdown function renders trusted or
//     user-supplied markdown through goldmark and a bluemonday policy.
//
//   - [TemplRegistry] maps names to templ components built from
//     [TemplData], which carries the assigned scope and the registered
//     functions.
//
// Example:
//
//	set := view.NewSet(os.DirFS("templates"), view.WithReload(cfg.Debug))
//	eng := set.NewEngine()
//	eng.Assign(map[string]any{"title": "Hello"})
//	html, err := eng.Fetch(ctx, "home.html")
package view
