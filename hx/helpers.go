package hx

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// BuildTriggerHeader builds the HX-Trigger header value:
//
//	"item-updated"                                     no data
//	{"pricing-header:change-zone":{"zoneId":"par"}}   with data
//
// HTMX fires the event with evt.detail set to the data; the hxcmp extension
// copies it into the parameters of listener requests.
func BuildTriggerHeader(trigger string, data map[string]any) string {
	if trigger == "" {
		return ""
	}
	if data == nil {
		return trigger
	}
	encoded, err := json.Marshal(map[string]any{trigger: data})
	if err != nil {
		return trigger
	}
	return string(encoded)
}

// WriteAttrs renders attrs as HTML attributes with a leading space each,
// in key order. true renders a bare attribute; false and nil are dropped.
func WriteAttrs(w io.Writer, attrs templ.Attributes) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case nil:
		case bool:
			if v {
				sb.WriteString(" " + html.EscapeString(k))
			}
		case string:
			sb.WriteString(" " + html.EscapeString(k) + `="` + html.EscapeString(v) + `"`)
		default:
			sb.WriteString(" " + html.EscapeString(k) + `="` + html.EscapeString(fmt.Sprint(v)) + `"`)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
