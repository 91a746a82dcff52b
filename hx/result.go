package hx

// Result is returned from handlers to control rendering and side effects.
//
// Handlers never write to the ResponseWriter. The dispatcher processes the
// Result once the handler returns: it sets headers, status and events,
// appends flashes, then renders the component with the returned props
// unless the result skips rendering or carries an error.
//
//	// re-render with updated props
//	return hx.OK(props)
//
//	// re-render and notify
//	return hx.OK(props).Flash(hx.FlashError, "Zones are unavailable")
//
//	// emit an intent; the page listener applies it
//	return hx.Skip[Props]().Trigger("pricing-product:add-product", map[string]any{"product": token})
//
//	// hand the failure to Registry.OnError
//	return hx.Err(props, err)
type Result[P any] struct {
	props              P
	err                error
	redirect           string
	flashes            []Flash
	trigger            string
	triggerData        map[string]any
	triggerAfterSettle string
	headers            map[string]string
	status             int
	skip               bool
}

// OK renders the component with props. This is the usual outcome of an
// action that changed its own props, such as a calculator input.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err hands err to the registry's OnError, which picks the response.
// DefaultErrorHandler answers 404 for ErrNotFound, 400 for decode errors
// and 500 otherwise. Props are kept so a custom OnError can render a
// fallback.
//
// Decode and Hydrate failures take the same path without a Result.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip sends headers, events and flashes without rendering the component.
// Pair it with SwapNone on the emitting element:
//
//	c.Call("add-product", props).SwapNone().Attrs()
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// Redirect performs a client-side redirect through HX-Redirect. HTMX
// navigates the whole page; nothing is rendered.
//
//	return hx.Redirect[Props]("/pricing")
func Redirect[P any](url string) Result[P] {
	return Result[P]{redirect: url}
}

// Flash adds a toast rendered as an out-of-band swap into #toasts. Calls
// chain, one toast each:
//
//	return hx.OK(props).
//	    Flash(hx.FlashSuccess, "Added to the estimation").
//	    Flash(hx.FlashInfo, "Prices are shown in USD")
func (r Result[P]) Flash(level, message string) Result[P] {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// Trigger emits event through HX-Trigger. Only the last call counts.
//
// Data, when given, becomes the event detail. The hxcmp extension copies
// it into the parameters of listener requests, so a listener reads it as
// form values:
//
//	// emitter
//	return hx.Skip[Props]().Trigger("pricing-header:change-zone", map[string]any{"zoneId": "par"})
//
//	// listener
//	page.Call("change-zone", props).OnEvent("pricing-header:change-zone").SwapNone().Attrs()
//	zoneID := r.FormValue("zoneId")
func (r Result[P]) Trigger(event string, data ...map[string]any) Result[P] {
	r.trigger = event
	if len(data) > 0 {
		r.triggerData = data[0]
	}
	return r
}

// TriggerAfterSettle emits event through HX-Trigger-After-Settle, once the
// new content is in place.
func (r Result[P]) TriggerAfterSettle(event string) Result[P] {
	r.triggerAfterSettle = event
	return r
}

// PushURL updates the browser URL via HX-Push-Url.
func (r Result[P]) PushURL(url string) Result[P] {
	return r.Header("HX-Push-Url", url)
}

// Header sets a response header. Later calls with the same key win.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status sets the HTTP status code; 0 means 200.
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

// Accessors for the dispatcher and tests.

func (r Result[P]) GetProps() P                    { return r.props }
func (r Result[P]) GetErr() error                  { return r.err }
func (r Result[P]) GetRedirect() string            { return r.redirect }
func (r Result[P]) GetFlashes() []Flash            { return r.flashes }
func (r Result[P]) GetTrigger() string             { return r.trigger }
func (r Result[P]) GetTriggerData() map[string]any { return r.triggerData }
func (r Result[P]) GetTriggerAfterSettle() string  { return r.triggerAfterSettle }
func (r Result[P]) GetHeaders() map[string]string  { return r.headers }
func (r Result[P]) GetStatus() int                 { return r.status }
func (r Result[P]) ShouldSkip() bool               { return r.skip }
