package view_test

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/pkg/view"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html":       {Data: []byte(`<main>{{block "content" .}}{{end}}</main>`)},
		"home.html":         {Data: []byte(`<h1>{{.title}}</h1>`)},
		"users/show.html":   {Data: []byte(`<a href="{{url "user" "id" .id}}">{{.name}}</a>`)},
		"users/embed.tmpl":  {Data: []byte(`[{{embed "controller" "widgets"}}]`)},
		"docs/readme.html":  {Data: []byte(`{{markdown .body}}`)},
		"partials/nav.html": {Data: []byte(`{{define "nav"}}<nav>{{.}}</nav>{{end}}`)},
		"uses_nav.html":     {Data: []byte(`{{template "nav" .section}}`)},
		"notes.txt":         {Data: []byte(`{{ not parsed`)},
	}
}

func TestSet_Names(t *testing.T) {
	t.Parallel()

	set := view.NewSet(testFS())
	require.NoError(t, set.Load())

	names, err := set.Names()
	require.NoError(t, err)
	require.Contains(t, names, "users/show.html")
	require.Contains(t, names, "users/embed.tmpl")
	require.Contains(t, names, "nav")
	require.NotContains(t, names, "notes.txt")
}

func TestHTMLEngine_Fetch(t *testing.T) {
	t.Parallel()

	set := view.NewSet(testFS())
	ctx := context.Background()

	t.Run("assigns scope and escapes", func(t *testing.T) {
		t.Parallel()
		eng := set.NewEngine()
		eng.Assign(map[string]any{"title": "<b>Hi</b>"})
		eng.Assign(map[string]any{"title": "Hello & bye"})

		out, err := eng.Fetch(ctx, "home.html")
		require.NoError(t, err)
		require.Equal(t, "<h1>Hello &amp; bye</h1>", out)
	})

	t.Run("name without extension", func(t *testing.T) {
		t.Parallel()
		eng := set.NewEngine()
		require.True(t, eng.TemplateExists("home"))
		require.True(t, eng.TemplateExists("/home.html"))
		require.True(t, eng.TemplateExists("users/embed"))
		require.False(t, eng.TemplateExists("missing"))
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()
		_, err := set.NewEngine().Fetch(ctx, "missing.html")
		require.ErrorIs(t, err, view.ErrTemplateNotFound)
	})

	t.Run("registered functions", func(t *testing.T) {
		t.Parallel()
		eng := set.NewEngine()
		var urlFn view.URLFunc = func(name string, args ...any) (string, error) {
			require.Equal(t, "user", name)
			require.Equal(t, []any{"id", 5}, args)
			return "/users/5", nil
		}
		require.NoError(t, eng.RegisterFunction("url", urlFn))
		eng.Assign(map[string]any{"id": 5, "name": "Ann"})

		out, err := eng.Fetch(ctx, "users/show.html")
		require.NoError(t, err)
		require.Equal(t, `<a href="/users/5">Ann</a>`, out)
	})

	t.Run("embed returns html", func(t *testing.T) {
		t.Parallel()
		eng := set.NewEngine()
		var embedFn view.EmbedFunc = func(args ...any) (template.HTML, error) {
			return template.HTML("<i>" + args[1].(string) + "</i>"), nil
		}
		require.NoError(t, eng.RegisterFunction("embed", embedFn))

		out, err := eng.Fetch(ctx, "users/embed.tmpl")
		require.NoError(t, err)
		require.Equal(t, "[<i>widgets</i>]", out)
	})

	t.Run("unbound placeholder fails", func(t *testing.T) {
		t.Parallel()
		_, err := set.NewEngine().Fetch(ctx, "users/show.html")
		require.ErrorIs(t, err, view.ErrFunctionNotRegistered)
	})

	t.Run("function errors propagate", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		eng := set.NewEngine()
		require.NoError(t, eng.RegisterFunction("url", func(string, ...any) (string, error) { return "", boom }))
		_, err := eng.Fetch(ctx, "users/show.html")
		require.ErrorIs(t, err, boom)
	})

	t.Run("not a function", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, set.NewEngine().RegisterFunction("url", "nope"), view.ErrNotAFunction)
		require.ErrorIs(t, set.NewEngine().RegisterFunction("url", nil), view.ErrNotAFunction)
	})

	t.Run("defined templates across files", func(t *testing.T) {
		t.Parallel()
		eng := set.NewEngine()
		eng.Assign(map[string]any{"section": "docs"})
		out, err := eng.Fetch(ctx, "uses_nav.html")
		require.NoError(t, err)
		require.Equal(t, "<nav>docs</nav>", out)
	})
}

func TestHTMLEngine_Display(t *testing.T) {
	t.Parallel()

	eng := view.NewSet(testFS()).NewEngine()
	eng.Assign(map[string]any{"title": "x"})

	var buf bytes.Buffer
	require.NoError(t, eng.Display(context.Background(), &buf, "home"))
	require.Equal(t, "<h1>x</h1>", buf.String())
}

func TestHTMLEngine_Markdown(t *testing.T) {
	t.Parallel()

	eng := view.NewSet(testFS()).NewEngine()
	eng.Assign(map[string]any{"body": "# Title\n\n*hi* <script>alert(1)</script>"})

	out, err := eng.Fetch(context.Background(), "docs/readme.html")
	require.NoError(t, err)
	require.Contains(t, out, "<h1>Title</h1>")
	require.Contains(t, out, "<em>hi</em>")
	require.NotContains(t, out, "<script>")
}

func TestSet_ParseError(t *testing.T) {
	t.Parallel()

	set := view.NewSet(fstest.MapFS{"bad.html": {Data: []byte(`{{ if }}`)}})
	err := set.Load()
	require.ErrorIs(t, err, view.ErrParse)
	require.Contains(t, err.Error(), "bad.html")

	_, err = set.NewEngine().Fetch(context.Background(), "bad.html")
	require.ErrorIs(t, err, view.ErrParse)
	require.False(t, set.NewEngine().TemplateExists("bad.html"))
}

func TestSet_Options(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"page.gohtml": {Data: []byte(`{{upper .name}} {{ts}}`)},
		"page.html":   {Data: []byte(`ignored`)},
	}
	set := view.NewSet(fsys,
		view.WithExtensions(".gohtml"),
		view.WithFuncs(template.FuncMap{"upper": strings.ToUpper}),
		view.WithPlaceholders("ts"),
	)

	eng := set.NewEngine()
	require.False(t, eng.TemplateExists("page.html"))
	require.NoError(t, eng.RegisterFunction("ts", func() string { return "42" }))
	eng.Assign(map[string]any{"name": "ann"})

	out, err := eng.Fetch(context.Background(), "page")
	require.NoError(t, err)
	require.Equal(t, "ANN 42", out)
}

func TestSet_Reload(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"a.html": {Data: []byte(`v1`)}}
	cached := view.NewSet(fsys)
	live := view.NewSet(fsys, view.WithReload(true))

	out, err := cached.NewEngine().Fetch(context.Background(), "a.html")
	require.NoError(t, err)
	require.Equal(t, "v1", out)
	out, err = live.NewEngine().Fetch(context.Background(), "a.html")
	require.NoError(t, err)
	require.Equal(t, "v1", out)

	fsys["a.html"] = &fstest.MapFile{Data: []byte(`v2`)}

	out, err = cached.NewEngine().Fetch(context.Background(), "a.html")
	require.NoError(t, err)
	require.Equal(t, "v1", out)
	out, err = live.NewEngine().Fetch(context.Background(), "a.html")
	require.NoError(t, err)
	require.Equal(t, "v2", out)
}

func TestSet_ConcurrentRenders(t *testing.T) {
	t.Parallel()

	set := view.NewSet(testFS())
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			eng := set.NewEngine()
			eng.Assign(map[string]any{"title": i})
			out, err := eng.Fetch(context.Background(), "home.html")
			require.NoError(t, err)
			require.Contains(t, out, "<h1>")
		})
	}
	wg.Wait()
}
