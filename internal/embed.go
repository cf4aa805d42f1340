package internal

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
)

// Reserved embed keys.
const (
	embedKeyController = "controller"
	embedKeyAction     = "action"
	embedKeyArgs       = "args"
	embedKeyFetch      = "fetch"
	embedKeySilent     = "silent"
	embedPropPrefix    = "prop-"
)

// EmbedProp is a value assigned to the embedded controller before Before runs.
type EmbedProp struct {
	Value any
	Name  string
}

// EmbedParams describes a nested controller run.
type EmbedParams struct {
	Controller string
	Action     string
	Args       []any
	Props      []EmbedProp

	// Fetch returns the output instead of writing it.
	Fetch bool

	// Silent swallows failures instead of returning them.
	Silent bool
}

// WithProp returns a copy of p with one more prop.
func (p EmbedParams) WithProp(name string, value any) EmbedParams {
	p.Props = append(slices.Clip(p.Props), EmbedProp{Name: name, Value: value})
	return p
}

// ParseEmbedArgs builds EmbedParams from template function arguments:
// either a single map, or alternating keys and values.
//
//	{{ embed "controller" "user" "action" "card" "fetch" true "prop-title" "Hi" }}
//
// Props keep their argument order.
func ParseEmbedArgs(args ...any) (EmbedParams, error) {
	if len(args) == 1 {
		if m, ok := args[0].(map[string]any); ok {
			return EmbedParamsFromMap(m)
		}
	}
	if len(args)%2 != 0 {
		return EmbedParams{}, fmt.Errorf("%w: odd number of arguments", ErrBadEmbedParams)
	}

	var p EmbedParams
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return EmbedParams{}, fmt.Errorf("%w: key %v is not a string", ErrBadEmbedParams, args[i])
		}
		if err := p.set(key, args[i+1]); err != nil {
			return EmbedParams{}, err
		}
	}
	return p, p.validate()
}

// EmbedParamsFromMap builds EmbedParams from a mapping.
// Props are applied in lexical order of their names.
func EmbedParamsFromMap(m map[string]any) (EmbedParams, error) {
	var p EmbedParams
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if err := p.set(key, m[key]); err != nil {
			return EmbedParams{}, err
		}
	}
	return p, p.validate()
}

func (p *EmbedParams) set(key string, value any) error {
	var ok bool
	switch key {
	case embedKeyController:
		p.Controller, ok = value.(string)
	case embedKeyAction:
		p.Action, ok = value.(string)
	case embedKeyFetch:
		p.Fetch, ok = value.(bool)
	case embedKeySilent:
		p.Silent, ok = value.(bool)
	case embedKeyArgs:
		switch v := value.(type) {
		case []any:
			p.Args, ok = v, true
		case nil:
			p.Args, ok = nil, true
		default:
			p.Args, ok = []any{v}, true
		}
	default:
		name, isProp := strings.CutPrefix(key, embedPropPrefix)
		if !isProp || name == "" {
			return fmt.Errorf("%w: unknown key %q", ErrBadEmbedParams, key)
		}
		p.Props = append(p.Props, EmbedProp{Name: name, Value: value})
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %q has type %T", ErrBadEmbedParams, key, value)
	}
	return nil
}

func (p EmbedParams) validate() error {
	if p.Controller == "" {
		return fmt.Errorf("%w: controller is required", ErrBadEmbedParams)
	}
	return nil
}

// Embed runs a nested controller lifecycle on the current request.
// After runs exactly once on the nested controller whatever happens.
// Failures are wrapped in *EmbedError, or logged and dropped when silent.
func (c *requestContext) Embed(p EmbedParams) (string, error) {
	start := time.Now()
	out, err := c.runEmbed(p)
	c.diag.Record(EventEmbed, p.Controller+"/"+p.Action, start, c.embedDepth+1, err)

	if err == nil {
		return out, nil
	}
	if p.Silent {
		c.LogWarn("embed failed",
			"controller", p.Controller,
			"action", p.Action,
			"error", err,
		)
		return "", nil
	}
	return "", &EmbedError{Controller: p.Controller, Action: p.Action, Err: err}
}

func (c *requestContext) runEmbed(p EmbedParams) (string, error) {
	if c.embedDepth >= c.app.maxEmbedDepth {
		return "", fmt.Errorf("%w: limit %d", ErrEmbedDepthExceeded, c.app.maxEmbedDepth)
	}

	out, contentType, err := c.runFragment(p)
	if err != nil || p.Fetch || out == "" {
		return out, err
	}
	return "", c.emit(contentType, 0, func(w io.Writer) error {
		_, err := io.WriteString(w, out)
		return err
	})
}

// runFragment runs the nested lifecycle into a private buffer, so a
// failing fragment leaves nothing behind in the enclosing sink. It also
// reports the content type of the fragment's own render.
func (c *requestContext) runFragment(p EmbedParams) (out, contentType string, err error) {
	prevType := c.fragmentType
	c.fragmentType = ""
	c.embedDepth++
	defer func() {
		c.embedDepth--
		contentType, c.fragmentType = c.fragmentType, prevType
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrEmbedPanic, r)
		}
	}()

	out, err = c.capture(func(io.Writer) error {
		return c.invoke(p.Controller, p.Action, p.Props, p.Args)
	})
	return out, "", err
}
