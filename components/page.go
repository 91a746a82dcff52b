package components

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/samber/lo"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/logger"
	"github.com/pthm/ccpricing/internal/session"
)

// Fragment selects the parts of the page re-rendered out of band after an
// intent.
type Fragment uint8

const (
	FragmentHeader Fragment = 1 << iota
	FragmentEstimation
	FragmentProducts
)

// PageProps identify the page of one session.
type PageProps struct {
	SessionID string `msgpack:"s"`

	// Hydrated
	Session *session.Session `msgpack:"-"`
	// Fragments is set by intent handlers; zero renders the whole page.
	Fragments Fragment `msgpack:"-"`
}

// Page is the orchestrator of the pricing components. It listens for their
// intents, applies them to the session's orchestrator and re-renders the
// affected components.
type Page struct {
	*hx.Component[PageProps]
	sessions   Sessions
	header     *Header
	estimation *Estimation
	product    *Product
}

// NewPage creates the page component around the children it re-renders.
// The children must be registered on the same registry, since the page
// reads the tokens they emit.
func NewPage(sessions Sessions, header *Header, estimation *Estimation, product *Product) *Page {
	c := &Page{
		Component:  hx.New[PageProps]("pricing-page"),
		sessions:   sessions,
		header:     header,
		estimation: estimation,
		product:    product,
	}
	c.Bind(c)
	c.Action("add-product", c.handleAddProduct)
	c.Action("change-quantity", c.handleChangeQuantity)
	c.Action("delete-quantity", c.handleDeleteQuantity)
	c.Action("change-currency", c.handleChangeCurrency)
	c.Action("change-zone", c.handleChangeZone)
	return c
}

// Hydrate attaches the session, or fails with a not-found error once it
// has expired.
func (c *Page) Hydrate(ctx context.Context, props *PageProps) error {
	s, err := lookup(c.sessions, props.SessionID)
	if err != nil {
		return err
	}
	props.Session = s
	return nil
}

// View hydrates and renders the page of sessionID, for embedding in a
// layout.
func (c *Page) View(ctx context.Context, sessionID string) templ.Component {
	props := PageProps{SessionID: sessionID}
	if err := c.Hydrate(ctx, &props); err != nil {
		return hx.ErrorComponent(err)
	}
	return c.Render(ctx, props)
}

// listeners maps each child intent to the page action handling it.
var listeners = []struct {
	event  string
	action string
}{
	{EventAddProduct, "add-product"},
	{EventChangeQuantity, "change-quantity"},
	{EventDeleteQuantity, "delete-quantity"},
	{EventChangeCurrency, "change-currency"},
	{EventChangeZone, "change-zone"},
}

// Render draws the whole page: one hidden listener per intent, the header,
// the deferred products and the estimation. With Fragments set it only
// renders those children, out of band.
func (c *Page) Render(ctx context.Context, props PageProps) templ.Component {
	return view(func(ctx context.Context, m *markup) {
		if props.Fragments != 0 {
			c.renderFragments(ctx, m, props)
			return
		}

		sid := props.SessionID
		m.open("div", templ.Attributes{"id": "pricing-page", "class": "pricing-page", "hx-ext": "hxcmp"})

		base := PageProps{SessionID: sid}
		for _, l := range listeners {
			m.open("div", merge(templ.Attributes{"hidden": true, "class": "pricing-page__listener"},
				c.Call(l.action, base).OnEvent(l.event).SwapNone().Attrs()))
			m.close("div")
		}

		c.renderHeader(ctx, m, sid, false)

		m.open("div", class("pricing-page__products"))
		for _, id := range props.Session.ProductIDs() {
			m.render(ctx, c.product.Deferred(ProductProps{SessionID: sid, ProductID: id}))
		}
		m.close("div")

		c.renderEstimation(ctx, m, sid, false)
		m.close("div")
	})
}

func (c *Page) renderFragments(ctx context.Context, m *markup, props PageProps) {
	sid := props.SessionID
	if props.Fragments&FragmentHeader != 0 {
		c.renderHeader(ctx, m, sid, true)
	}
	if props.Fragments&FragmentEstimation != 0 {
		c.renderEstimation(ctx, m, sid, true)
	}
	if props.Fragments&FragmentProducts != 0 {
		for _, id := range props.Session.ProductIDs() {
			pp := ProductProps{SessionID: sid, ProductID: id}
			if m.err == nil {
				m.err = c.product.Hydrate(ctx, &pp)
			}
			pp.OOB = true
			m.render(ctx, c.product.Render(ctx, pp))
		}
	}
}

func (c *Page) renderHeader(ctx context.Context, m *markup, sid string, oob bool) {
	hp := HeaderProps{SessionID: sid}
	if m.err == nil {
		m.err = c.header.Hydrate(ctx, &hp)
	}
	hp.OOB = oob
	m.render(ctx, c.header.Render(ctx, hp))
}

func (c *Page) renderEstimation(ctx context.Context, m *markup, sid string, oob bool) {
	ep := EstimationProps{SessionID: sid}
	if m.err == nil {
		m.err = c.estimation.Hydrate(ctx, &ep)
	}
	ep.OOB = oob
	m.render(ctx, c.estimation.Render(ctx, ep))
}

// readProduct decodes the signed product of an intent payload.
func (c *Page) readProduct(ctx context.Context, r *http.Request) (ccpricing.Product, bool) {
	var p ccpricing.Product
	if err := c.ReadToken(r.FormValue("product"), &p); err != nil {
		logger.Debug(ctx, "invalid product payload ignored", logger.ErrorF(err))
		return p, false
	}
	return p, true
}

// storeChanged re-renders what depends on the selection.
func storeChanged(props PageProps) hx.Result[PageProps] {
	props.Fragments = FragmentHeader | FragmentEstimation
	return hx.OK(props)
}

func (c *Page) handleAddProduct(ctx context.Context, props PageProps, r *http.Request) hx.Result[PageProps] {
	if p, ok := c.readProduct(ctx, r); ok {
		props.Session.Dispatch(ccpricing.AddProduct{Product: p})
	}
	return storeChanged(props)
}

func (c *Page) handleChangeQuantity(ctx context.Context, props PageProps, r *http.Request) hx.Result[PageProps] {
	if p, ok := c.readProduct(ctx, r); ok {
		props.Session.Dispatch(ccpricing.ChangeQuantity{Product: p, Quantity: parseQuantity(r.FormValue("quantity"))})
	}
	return storeChanged(props)
}

func (c *Page) handleDeleteQuantity(ctx context.Context, props PageProps, r *http.Request) hx.Result[PageProps] {
	if p, ok := c.readProduct(ctx, r); ok {
		props.Session.Dispatch(ccpricing.DeleteQuantity{Product: p})
	}
	return storeChanged(props)
}

func (c *Page) handleChangeCurrency(ctx context.Context, props PageProps, r *http.Request) hx.Result[PageProps] {
	props.Fragments = FragmentHeader | FragmentEstimation | FragmentProducts

	// The rate comes from the session list; the one in the payload is
	// never trusted.
	code := r.FormValue("code")
	cur, ok := ccpricing.FindCurrency(props.Session.Currencies().Value, code)
	if !ok {
		logger.Debug(ctx, "unknown currency ignored", logger.String("code", code))
		return hx.OK(props)
	}

	props.Session.Dispatch(ccpricing.ChangeCurrency{Currency: cur})
	return hx.OK(props).Trigger(EventPageChangeCurrency, map[string]any{
		"code":       cur.Code(),
		"changeRate": cur.ChangeRate.String(),
	})
}

func (c *Page) handleChangeZone(ctx context.Context, props PageProps, r *http.Request) hx.Result[PageProps] {
	props.Fragments = FragmentHeader | FragmentEstimation | FragmentProducts

	zoneID := r.FormValue("zoneId")
	if !lo.ContainsBy(props.Session.Zones().Value, func(z ccpricing.Zone) bool { return z.Name == zoneID }) {
		logger.Debug(ctx, "unknown zone ignored", logger.String("zone", zoneID))
		return hx.OK(props)
	}

	props.Session.Dispatch(ccpricing.ChangeZone{ZoneID: zoneID})
	return hx.OK(props).Trigger(EventPageChangeZone, map[string]any{"zoneId": zoneID})
}
