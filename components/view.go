package components

import (
	"context"
	"html"
	"io"
	"maps"

	"github.com/a-h/templ"

	"github.com/pthm/ccpricing/hx"
)

// markup writes HTML with a sticky error, so views can be written as a
// straight sequence of calls and checked once.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *markup) text(s string) {
	m.raw(html.EscapeString(s))
}

func (m *markup) open(tag string, attrs templ.Attributes) {
	m.raw("<" + tag)
	if m.err == nil {
		m.err = hx.WriteAttrs(m.w, attrs)
	}
	m.raw(">")
}

func (m *markup) close(tag string) {
	m.raw("</" + tag + ">")
}

// elem writes a whole element with escaped text content.
func (m *markup) elem(tag string, attrs templ.Attributes, content string) {
	m.open(tag, attrs)
	m.text(content)
	m.close(tag)
}

func (m *markup) render(ctx context.Context, c templ.Component) {
	if m.err != nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// view adapts a markup function to templ.Component.
func view(fn func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		fn(ctx, m)
		return m.err
	})
}

// merge returns a copy of base with extra added.
func merge(base templ.Attributes, extra templ.Attributes) templ.Attributes {
	out := make(templ.Attributes, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

// oob marks a fragment root for an out-of-band swap.
func oob(attrs templ.Attributes, enabled bool) templ.Attributes {
	if !enabled {
		return attrs
	}
	return merge(attrs, templ.Attributes{"hx-swap-oob": "true"})
}

func class(name string) templ.Attributes {
	return templ.Attributes{"class": name}
}
