package hx

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// ActionBuilder is returned by Component.Action to override the method.
type ActionBuilder struct {
	method *string
}

// Method overrides the default POST method:
//
//	c.Action("poll", c.handlePoll).Method(http.MethodGet)
func (ab *ActionBuilder) Method(m string) *ActionBuilder {
	*ab.method = m
	return ab
}

// Action builds the hx-* attributes of one request. It is obtained from
// Component.Call or Component.Refresh and rendered with Attrs.
type Action struct {
	url      string
	method   string
	target   string
	swap     SwapMode
	triggers []string
	confirm  string
	include  string
	vals     map[string]any
}

// NewAction creates an action for url. An empty method means GET.
func NewAction(url, method string) *Action {
	if method == "" {
		method = http.MethodGet
	}
	return &Action{url: url, method: method, swap: SwapOuter}
}

// URL returns the request URL.
func (a *Action) URL() string {
	return a.url
}

// Method returns the HTTP method.
func (a *Action) Method() string {
	return a.method
}

// Target sets hx-target to a CSS selector.
func (a *Action) Target(selector string) *Action {
	a.target = selector
	return a
}

// TargetThis targets the element carrying the attributes.
func (a *Action) TargetThis() *Action {
	return a.Target("this")
}

// TargetClosest targets the closest ancestor matching selector.
func (a *Action) TargetClosest(selector string) *Action {
	return a.Target("closest " + selector)
}

// TargetFind targets the first descendant matching selector.
func (a *Action) TargetFind(selector string) *Action {
	return a.Target("find " + selector)
}

// TargetNext targets the next sibling matching selector.
func (a *Action) TargetNext(selector string) *Action {
	return a.Target("next " + selector)
}

// TargetPrevious targets the previous sibling matching selector.
func (a *Action) TargetPrevious(selector string) *Action {
	return a.Target("previous " + selector)
}

// Swap sets hx-swap.
func (a *Action) Swap(mode SwapMode) *Action {
	a.swap = mode
	return a
}

func (a *Action) SwapOuter() *Action       { return a.Swap(SwapOuter) }
func (a *Action) SwapBeforeEnd() *Action   { return a.Swap(SwapBeforeEnd) }
func (a *Action) SwapAfterEnd() *Action    { return a.Swap(SwapAfterEnd) }
func (a *Action) SwapBeforeBegin() *Action { return a.Swap(SwapBeforeBegin) }
func (a *Action) SwapAfterBegin() *Action  { return a.Swap(SwapAfterBegin) }
func (a *Action) SwapDelete() *Action      { return a.Swap(SwapDelete) }
func (a *Action) SwapNone() *Action        { return a.Swap(SwapNone) }

// On adds a raw hx-trigger specification ("change", "keyup delay:300ms").
// Several triggers are joined with commas.
func (a *Action) On(trigger string) *Action {
	a.triggers = append(a.triggers, trigger)
	return a
}

// Every polls at the given interval.
func (a *Action) Every(d time.Duration) *Action {
	return a.On("every " + formatDuration(d))
}

// OnEvent fires on an event bubbling to body, typically one emitted with
// Result.Trigger by another component.
func (a *Action) OnEvent(event string) *Action {
	return a.On(event + " from:body")
}

// OnLoad fires once the element is loaded.
func (a *Action) OnLoad() *Action {
	return a.On("load")
}

// OnIntersect fires once when the element enters the viewport.
func (a *Action) OnIntersect() *Action {
	return a.On("intersect once")
}

// OnRevealed fires when the element is scrolled into view.
func (a *Action) OnRevealed() *Action {
	return a.On("revealed")
}

// Confirm asks the user before sending the request.
func (a *Action) Confirm(message string) *Action {
	a.confirm = message
	return a
}

// Include adds the values of other elements to the request.
func (a *Action) Include(selector string) *Action {
	a.include = selector
	return a
}

// Vals merges extra parameters sent with the request (hx-vals).
func (a *Action) Vals(vals map[string]any) *Action {
	if a.vals == nil {
		a.vals = make(map[string]any, len(vals))
	}
	maps.Copy(a.vals, vals)
	return a
}

// Attrs returns the attributes to spread on the triggering element.
func (a *Action) Attrs() templ.Attributes {
	attrs := templ.Attributes{
		"hx-" + strings.ToLower(a.method): a.url,
		"hx-swap":                         string(a.swap),
	}
	if a.target != "" {
		attrs["hx-target"] = a.target
	}
	if len(a.triggers) > 0 {
		attrs["hx-trigger"] = strings.Join(a.triggers, ", ")
	}
	if a.confirm != "" {
		attrs["hx-confirm"] = a.confirm
	}
	if a.include != "" {
		attrs["hx-include"] = a.include
	}
	if len(a.vals) > 0 {
		if data, err := json.Marshal(a.vals); err == nil {
			attrs["hx-vals"] = string(data)
		}
	}
	return attrs
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%ds", int(d/time.Second))
}
