package route

import "strings"

// segment is a piece of a compiled path template: literal text or a placeholder.
type segment struct {
	text  string
	param bool
}

// pattern is a path template compiled into segments once at load time.
type pattern struct {
	raw      string
	segments []segment
}

// compilePattern splits a template like "/u/{id}/posts/{slug}" into segments.
// A placeholder name ends at the first ':' so chi regex placeholders such as
// {id:[0-9]+} resolve by "id". Braces nested inside a regex are balanced.
// An unterminated '{' is kept as literal text.
func compilePattern(raw string) *pattern {
	p := &pattern{raw: raw}
	var lit strings.Builder

	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			lit.WriteByte(raw[i])
			continue
		}

		end := closingBrace(raw, i)
		if end < 0 {
			lit.WriteString(raw[i:])
			break
		}

		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{text: lit.String()})
			lit.Reset()
		}

		name := raw[i+1 : end]
		if idx := strings.IndexByte(name, ':'); idx >= 0 {
			name = name[:idx]
		}
		p.segments = append(p.segments, segment{text: strings.TrimSpace(name), param: true})
		i = end
	}

	if lit.Len() > 0 {
		p.segments = append(p.segments, segment{text: lit.String()})
	}
	return p
}

// closingBrace returns the index of the brace closing the one at open, or -1.
func closingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// params returns the placeholder names in order of appearance.
func (p *pattern) params() []string {
	var names []string
	for _, seg := range p.segments {
		if seg.param {
			names = append(names, seg.text)
		}
	}
	return names
}

// expand substitutes every placeholder using lookup.
func (p *pattern) expand(lookup func(name string) string) string {
	var b strings.Builder
	b.Grow(len(p.raw))
	for _, seg := range p.segments {
		if seg.param {
			b.WriteString(lookup(seg.text))
			continue
		}
		b.WriteString(seg.text)
	}
	return b.String()
}
