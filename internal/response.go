package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Response is a renderable action result: *Template, *Payload or *Opaque.
type Response interface {
	isResponse()
}

// Payload is a value serialized as JSON.
type Payload struct {
	Value any
	Code  int
}

// NewPayload wraps v as a JSON payload.
func NewPayload(v any) *Payload {
	return &Payload{Value: v}
}

// WithStatus sets the status code of an outer render.
func (p *Payload) WithStatus(code int) *Payload {
	p.Code = code
	return p
}

func (*Payload) isResponse() {}

// Opaque is a component rendering itself, such as a templ component.
type Opaque struct {
	Component Component
	Code      int
}

// NewOpaque wraps a component.
func NewOpaque(c Component) *Opaque {
	return &Opaque{Component: c}
}

// WithStatus sets the status code of an outer render.
func (o *Opaque) WithStatus(code int) *Opaque {
	o.Code = code
	return o
}

func (*Opaque) isResponse() {}

// AsResponse returns v as a Response: envelopes as is, components as
// Opaque, everything else as a Payload.
func AsResponse(v any) Response {
	switch r := v.(type) {
	case *Template:
		return r
	case *Payload:
		return r
	case *Opaque:
		return r
	case Component:
		return NewOpaque(r)
	default:
		return NewPayload(v)
	}
}

// render writes value to the current sink.
func (c *requestContext) render(ctrl Controller, value any) (err error) {
	resp := AsResponse(value)

	start := time.Now()
	defer func() {
		c.diag.Record(EventRender, responseName(resp), start, c.embedDepth, err)
	}()

	switch r := resp.(type) {
	case *Template:
		if r.controller == nil {
			r.controller = ctrl
		}
		return r.render(c)
	case *Payload:
		return r.render(c)
	case *Opaque:
		return r.render(c)
	default:
		return fmt.Errorf("anvil: unsupported response %T", resp)
	}
}

func (p *Payload) render(c *requestContext) error {
	data, err := json.Marshal(p.Value)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return c.emit("application/json; charset=utf-8", p.Code, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (o *Opaque) render(c *requestContext) error {
	if o.Component == nil {
		return nil
	}
	return c.emit("text/html; charset=utf-8", o.Code, func(w io.Writer) error {
		return o.Component.Render(c.Context(), w)
	})
}

// emit runs write against the current sink. Only the outer render, with
// nothing captured and nothing written yet, touches headers.
func (c *requestContext) emit(contentType string, code int, write func(io.Writer) error) error {
	if c.fragmentType == "" {
		c.fragmentType = contentType
	}
	if c.embedDepth == 0 && len(c.output) == 0 && !c.responseWriter.Written() {
		h := c.responseWriter.Header()
		if contentType != "" && h.Get("Content-Type") == "" {
			h.Set("Content-Type", contentType)
		}
		if code > 0 {
			c.responseWriter.SetStatus(code)
		}
	}
	return write(c.Output())
}

func responseName(r Response) string {
	switch v := r.(type) {
	case *Template:
		return v.file
	case *Payload:
		return "payload"
	case *Opaque:
		return fmt.Sprintf("%T", v.Component)
	}
	return ""
}
