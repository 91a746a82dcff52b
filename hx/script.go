package hx

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

//go:embed static/hxcmp.js
var static embed.FS

// ScriptPath is where ScriptHandler is expected to be mounted.
const ScriptPath = "/_hx/hxcmp.js"

// ScriptHandler serves the hxcmp htmx extension.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := static.ReadFile("static/hxcmp.js")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(b)
	})
}

// Script renders the <script> tag loading the extension. Pages enable it
// with hx-ext="hxcmp" on an ancestor element.
func Script() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<script src="%s" defer></script>`, ScriptPath)
		return err
	})
}
