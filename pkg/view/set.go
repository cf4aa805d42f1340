package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/anvil/pkg/sanitizer"
)

// DefaultPlaceholders are the function names every template set reserves.
var DefaultPlaceholders = []string{"url", "embed"}

// Set is a parsed collection of html/template files.
type Set struct {
	fsys         fs.FS
	md           goldmark.Markdown
	funcs        template.FuncMap
	root         *template.Template
	group        singleflight.Group
	extensions   []string
	placeholders []string
	reload       bool
	mu           sync.RWMutex
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithExtensions sets the file extensions treated as templates.
// Default: ".html", ".tmpl".
func WithExtensions(exts ...string) SetOption {
	return func(s *Set) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithFuncs adds functions available to every render.
func WithFuncs(funcs template.FuncMap) SetOption {
	return func(s *Set) {
		for name, fn := range funcs {
			s.funcs[name] = fn
		}
	}
}

// WithPlaceholders declares extra function names that engines bind per render.
func WithPlaceholders(names ...string) SetOption {
	return func(s *Set) {
		s.placeholders = append(s.placeholders, names...)
	}
}

// WithReload re-parses the templates on every engine creation. Use in development.
func WithReload(reload bool) SetOption {
	return func(s *Set) {
		s.reload = reload
	}
}

// NewSet creates a template set over fsys. Templates are parsed lazily on first use.
func NewSet(fsys fs.FS, opts ...SetOption) *Set {
	s := &Set{
		fsys:         fsys,
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM)),
		funcs:        template.FuncMap{},
		extensions:   []string{".html", ".tmpl"},
		placeholders: slices.Clone(DefaultPlaceholders),
	}
	s.funcs["markdown"] = s.markdown
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses all templates now and reports parse errors.
func (s *Set) Load() error {
	_, err := s.parse()
	return err
}

// Names returns the sorted template names of the set.
func (s *Set) Names() ([]string, error) {
	root, err := s.templates()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, t := range root.Templates() {
		if t.Name() != "" {
			names = append(names, t.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// NewEngine returns a fresh engine over the set.
func (s *Set) NewEngine() Engine {
	return &HTMLEngine{
		set:   s,
		vars:  make(map[string]any),
		funcs: template.FuncMap{},
	}
}

// templates returns the parsed root, parsing it on first use or on every call in reload mode.
func (s *Set) templates() (*template.Template, error) {
	if !s.reload {
		s.mu.RLock()
		root := s.root
		s.mu.RUnlock()
		if root != nil {
			return root, nil
		}
	}
	return s.parse()
}

// parse walks the file system once per concurrent burst of callers.
func (s *Set) parse() (*template.Template, error) {
	v, err, _ := s.group.Do("parse", func() (any, error) {
		root := template.New("").Funcs(s.funcMap())
		err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !slices.Contains(s.extensions, path.Ext(p)) {
				return nil
			}
			content, err := fs.ReadFile(s.fsys, p)
			if err != nil {
				return err
			}
			if _, err := root.New(p).Parse(string(content)); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		s.mu.Lock()
		s.root = root
		s.mu.Unlock()
		return root, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

// funcMap merges placeholders and set-wide functions.
func (s *Set) funcMap() template.FuncMap {
	fm := template.FuncMap{}
	for _, name := range s.placeholders {
		fm[name] = placeholder(name)
	}
	for name, fn := range s.funcs {
		fm[name] = fn
	}
	return fm
}

// resolve maps a template name to its parsed name, trying the configured
// extensions when name has none.
func (s *Set) resolve(root *template.Template, name string) string {
	name = strings.TrimPrefix(name, "/")
	if root.Lookup(name) != nil {
		return name
	}
	if path.Ext(name) == "" {
		for _, ext := range s.extensions {
			if root.Lookup(name+ext) != nil {
				return name + ext
			}
		}
	}
	return ""
}

// markdown converts markdown to sanitized HTML.
func (s *Set) markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeMarkdownHTML(buf.String())), nil
}

func placeholder(name string) func(...any) (string, error) {
	return func(...any) (string, error) {
		return "", fmt.Errorf("%w: %s", ErrFunctionNotRegistered, name)
	}
}
