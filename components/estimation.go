package components

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/logger"
)

// Links are the recap call-to-actions.
type Links struct {
	Contact string
	Signup  string
}

// EstimationProps identify the estimation of one session.
type EstimationProps struct {
	SessionID string `msgpack:"s"`

	// Hydrated
	Lines    []ccpricing.Line   `msgpack:"-"`
	Total    decimal.Decimal    `msgpack:"-"`
	Currency ccpricing.Currency `msgpack:"-"`
	OOB      bool               `msgpack:"-"`
}

// Estimation lists the selected products with their daily and monthly
// prices.
type Estimation struct {
	*hx.Component[EstimationProps]
	sessions Sessions
	links    Links
}

// NewEstimation creates the recap component. links are the call-to-actions
// shown under the total.
func NewEstimation(sessions Sessions, links Links) *Estimation {
	c := &Estimation{
		Component: hx.New[EstimationProps]("pricing-estimation"),
		sessions:  sessions,
		links:     links,
	}
	c.Bind(c)
	c.Action("change-quantity", c.handleChangeQuantity)
	c.Action("delete-quantity", c.handleDeleteQuantity)
	return c
}

// Hydrate computes the lines and the total from the store snapshot.
func (c *Estimation) Hydrate(ctx context.Context, props *EstimationProps) error {
	s, err := lookup(c.sessions, props.SessionID)
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	props.Currency = displayCurrency(s)
	props.Lines = ccpricing.Lines(snap.Store, props.Currency)
	props.Total = snap.Total
	return nil
}

// row carries the per-line request attributes shared by both layouts.
type row struct {
	ccpricing.Line
	quantity templ.Attributes
	remove   templ.Attributes
}

func (c *Estimation) rows(props EstimationProps) ([]row, error) {
	base := EstimationProps{SessionID: props.SessionID}
	rows := make([]row, 0, len(props.Lines))
	for _, line := range props.Lines {
		token, err := c.Token(line.Product())
		if err != nil {
			return nil, err
		}
		vals := map[string]any{"product": token}
		confirm := "Remove " + line.Name + " " + line.Item.Name + " from the estimation?"
		rows = append(rows, row{
			Line:     line,
			quantity: c.Call("change-quantity", base).Vals(vals).On("change").SwapNone().Attrs(),
			remove:   c.Call("delete-quantity", base).Vals(vals).Confirm(confirm).SwapNone().Attrs(),
		})
	}
	return rows, nil
}

// Render draws the recap twice, as a table and as cards, for wide and
// narrow screens.
func (c *Estimation) Render(ctx context.Context, props EstimationProps) templ.Component {
	return view(func(ctx context.Context, m *markup) {
		m.open("div", oob(templ.Attributes{"id": "pricing-estimation", "class": "pricing-estimation"}, props.OOB))
		defer m.close("div")

		m.elem("h2", class("pricing-estimation__title"), "Estimated cost")

		if len(props.Lines) == 0 {
			m.elem("p", class("pricing-estimation__empty"), "No products selected yet.")
			c.recap(m, props)
			return
		}

		rows, err := c.rows(props)
		if err != nil {
			m.err = err
			return
		}
		price := func(d decimal.Decimal) string { return ccpricing.FormatPrice(d, props.Currency) }

		// Wide layout.
		m.open("table", class("pricing-estimation__table"))
		m.raw(`<thead><tr><th>Product</th><th>Size</th><th>Quantity</th><th>Daily</th><th>30 days</th><th></th></tr></thead>`)
		m.open("tbody", nil)
		for _, r := range rows {
			m.open("tr", nil)
			m.elem("td", nil, r.Name)
			m.elem("td", nil, r.Item.Name)
			m.open("td", nil)
			m.open("input", merge(templ.Attributes{
				"type": "number", "name": "quantity", "min": "0", "value": strconv.Itoa(r.Quantity),
			}, r.quantity))
			m.close("td")
			m.elem("td", class("price"), price(r.Daily))
			m.elem("td", class("price"), price(r.Monthly))
			m.open("td", nil)
			m.elem("button", merge(templ.Attributes{"type": "button", "title": "Remove"}, r.remove), "Remove")
			m.close("td")
			m.close("tr")
		}
		m.close("tbody")
		m.close("table")

		// Narrow layout.
		m.open("ul", class("pricing-estimation__cards"))
		for _, r := range rows {
			m.open("li", class("pricing-estimation__card"))
			m.elem("strong", nil, r.Name+" "+r.Item.Name)
			for _, f := range r.Item.Features {
				m.elem("span", class("feature"), f.Name+": "+f.Value)
			}
			m.open("input", merge(templ.Attributes{
				"type": "number", "name": "quantity", "min": "0", "value": strconv.Itoa(r.Quantity),
			}, r.quantity))
			m.elem("span", class("price"), price(r.Daily)+"/day")
			m.elem("span", class("price"), price(r.Monthly)+"/30 days")
			m.elem("button", merge(templ.Attributes{"type": "button"}, r.remove), "Remove")
			m.close("li")
		}
		m.close("ul")

		c.recap(m, props)
	})
}

func (c *Estimation) recap(m *markup, props EstimationProps) {
	m.open("div", class("pricing-estimation__recap"))
	m.elem("span", nil, "Total")
	m.elem("strong", class("pricing-estimation__total"),
		ccpricing.FormatPrice(ccpricing.Convert(props.Total, props.Currency), props.Currency)+"/30 days")
	if c.links.Contact != "" {
		m.elem("a", templ.Attributes{"class": "button", "href": c.links.Contact}, "Contact the sales team")
	}
	if c.links.Signup != "" {
		m.elem("a", templ.Attributes{"class": "button button--primary", "href": c.links.Signup}, "Sign up")
	}
	m.close("div")
}

// parseQuantity reads a quantity field. Anything that is not an integer is
// treated as 0.
func parseQuantity(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (c *Estimation) product(ctx context.Context, r *http.Request) (string, bool) {
	token := r.FormValue("product")
	var p ccpricing.Product
	if err := c.ReadToken(token, &p); err != nil {
		logger.Debug(ctx, "invalid product token ignored", logger.ErrorF(err))
		return "", false
	}
	return token, true
}

func (c *Estimation) handleChangeQuantity(ctx context.Context, props EstimationProps, r *http.Request) hx.Result[EstimationProps] {
	token, ok := c.product(ctx, r)
	if !ok {
		return hx.Skip[EstimationProps]()
	}
	return hx.Skip[EstimationProps]().Trigger(EventChangeQuantity, map[string]any{
		"product":  token,
		"quantity": parseQuantity(r.FormValue("quantity")),
	})
}

func (c *Estimation) handleDeleteQuantity(ctx context.Context, props EstimationProps, r *http.Request) hx.Result[EstimationProps] {
	token, ok := c.product(ctx, r)
	if !ok {
		return hx.Skip[EstimationProps]()
	}
	return hx.Skip[EstimationProps]().Trigger(EventDeleteQuantity, map[string]any{"product": token})
}
