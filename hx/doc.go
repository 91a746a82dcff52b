// Package hx is the server-rendered component runtime behind the pricing
// pages: typed components, signed props, HTMX actions and events.
//
// # Core Concepts
//
// Components embed *Component[P] where P is the Props type. Props travel in
// the request and should hold identifiers and small values only; anything
// richer is rebuilt during hydration.
//
//	type Product struct {
//	    *hx.Component[ProductProps]
//	    sessions *session.Manager
//	}
//
// The lifecycle is the Lifecycle[P] interface, attached with Bind:
//   - Hydrate(ctx, *P) rebuilds state from the props
//   - Render(ctx, P) produces the templ.Component output
//
// Hydrate runs before every handler. After a successful handler the
// component renders itself unless the Result asks to skip.
//
// # Actions and Routing
//
// Actions are registered with semantic names:
//
//	c.Action("change-quantity", c.handleChangeQuantity)
//	c.Action("poll", c.handlePoll).Method(http.MethodGet)
//
// Call builds the request attributes for an action:
//
//	c.Call("change-quantity", props).Target("#estimation").Attrs()
//
// Each component receives a URL prefix derived from its name and the source
// location of New. The registry rejects prefix collisions at registration.
//
// # Security Model
//
// Props are encoded with msgpack and then either:
//   - signed (default): HMAC-SHA256, readable but tamper-proof
//   - encrypted: AES-GCM, opaque to clients (use .Sensitive())
//
// Mutating methods (POST/PUT/DELETE/PATCH) require the HX-Request: true
// header that HTMX sends, which blocks plain cross-origin form posts.
//
// # Component Communication
//
// Components talk through events and flash messages:
//
//	// emitter
//	return hx.OK(props).Trigger("pricing-header:change-currency", map[string]any{"code": "USD"})
//
//	// listener
//	page.Call("change-currency", props).OnEvent("pricing-header:change-currency").Attrs()
//
//	// flash, rendered as an out-of-band toast
//	return hx.OK(props).Flash(hx.FlashError, "Could not load product")
//
// The hxcmp JavaScript extension served by ScriptHandler copies event
// details into the listener's request parameters.
//
// # Registration
//
//	reg := hx.NewRegistry(key)
//	reg.Add(page, header, estimation, product)
//	mux.Handle("/_c/", reg.Handler())
//
// Errors from decoding, hydration and handlers go through Registry.OnError,
// DefaultErrorHandler when unset.
package hx
