package hx

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels, used as the toast-<level> CSS modifier.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time toast notification attached to a Result.
//
// Flashes are rendered as out-of-band swaps appended to the #toasts
// container, whether or not the component itself renders, so an intent
// action answering with Skip can still warn the visitor:
//
//	return hx.Skip[Props]().Flash(hx.FlashWarning, "Enter a volume to estimate first")
//	return hx.OK(props).Flash(hx.FlashError, "Could not load redis-addon")
//
// Each flash of a Result becomes its own toast.
type Flash struct {
	Level   string // one of the Flash* levels
	Message string
}

// RenderFlashesOOB renders flashes as an out-of-band swap appended to the
// #toasts container with hx-swap-oob="beforeend". It returns "" when there
// is nothing to show.
//
// The hxcmp extension removes each toast after data-auto-dismiss
// milliseconds.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div id="toasts" hx-swap-oob="beforeend">`)
	for _, f := range flashes {
		sb.WriteString(`<div class="toast toast-`)
		sb.WriteString(html.EscapeString(f.Level))
		sb.WriteString(`" data-auto-dismiss="3000">`)
		sb.WriteString(html.EscapeString(f.Message))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer renders the #toasts element targeted by flash swaps.
// Place it once in the layout, near the end of <body>:
//
//	hx.ToastContainer().Render(ctx, w)
//
// Positioning is left to the stylesheet (.toast-container).
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container"></div>`)
		return err
	})
}
