package view

import (
	"context"
	"html/template"
	"io"
)

// Engine is a single-use rendering session.
type Engine interface {
	// Assign merges variables into the template scope. Later calls win.
	Assign(vars map[string]any)
	// RegisterFunction binds a callable under name for this render.
	RegisterFunction(name string, fn any) error
	// TemplateExists reports whether name resolves to a template.
	TemplateExists(name string) bool
	// Fetch renders name and returns the output.
	Fetch(ctx context.Context, name string) (string, error)
	// Display renders name into w.
	Display(ctx context.Context, w io.Writer, name string) error
}

// Factory creates fresh engines.
type Factory interface {
	NewEngine() Engine
}

// URLFunc is the signature of the url function bound by the renderer.
type URLFunc = func(name string, args ...any) (string, error)

// EmbedFunc is the signature of the embed function bound by the renderer.
// It returns the captured fragment, or "" when the fragment was written
// directly to the output.
type EmbedFunc = func(args ...any) (template.HTML, error)
