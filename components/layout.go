package components

import (
	"context"

	"github.com/a-h/templ"

	"github.com/pthm/ccpricing/hx"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

// Layout wraps body in the HTML document loading htmx, the hxcmp extension
// and the toast container.
func Layout(title string, body templ.Component) templ.Component {
	return view(func(ctx context.Context, m *markup) {
		m.raw("<!DOCTYPE html>")
		m.open("html", templ.Attributes{"lang": "en"})
		m.open("head", nil)
		m.open("meta", templ.Attributes{"charset": "utf-8"})
		m.open("meta", templ.Attributes{"name": "viewport", "content": "width=device-width, initial-scale=1"})
		m.elem("title", nil, title)
		m.open("script", templ.Attributes{"src": htmxScript})
		m.close("script")
		m.render(ctx, hx.Script())
		m.close("head")

		m.open("body", nil)
		m.render(ctx, body)
		m.render(ctx, hx.ToastContainer())
		m.close("body")
		m.close("html")
	})
}
