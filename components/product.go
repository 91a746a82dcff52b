package components

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/logger"
)

// ProductState is the display state of a catalog entry.
type ProductState int

const (
	ProductLoading ProductState = iota
	ProductError
	ProductLoaded
)

func (s ProductState) String() string {
	switch s {
	case ProductLoading:
		return "loading"
	case ProductError:
		return "error"
	case ProductLoaded:
		return "loaded"
	}
	return fmt.Sprintf("ProductState(%d)", int(s))
}

// ProductProps identify one catalog entry of a session.
type ProductProps struct {
	SessionID string `msgpack:"s"`
	ProductID string `msgpack:"id"`

	// Hydrated
	State    ProductState             `msgpack:"-"`
	Product  ccpricing.CatalogProduct `msgpack:"-"`
	Err      error                    `msgpack:"-"`
	Currency ccpricing.Currency       `msgpack:"-"`
	OOB      bool                     `msgpack:"-"`
}

// Product renders a catalog product with its items and emits add-product
// intents. Volume-priced products are handed to the storage calculator.
type Product struct {
	*hx.Component[ProductProps]
	sessions Sessions
	storage  *Storage
}

// NewProduct creates the product component. storage renders the products
// priced by volume intervals.
func NewProduct(sessions Sessions, storage *Storage) *Product {
	c := &Product{
		Component: hx.New[ProductProps]("pricing-product"),
		sessions:  sessions,
		storage:   storage,
	}
	c.Bind(c)
	c.SetDefault(c.handleRender)
	c.Action("add-product", c.handleAddProduct)
	return c
}

func productElementID(id string) string {
	return "pricing-product-" + id
}

// Hydrate resolves the product from the session. A product still loading
// is not an error: it renders a polling skeleton.
func (c *Product) Hydrate(ctx context.Context, props *ProductProps) error {
	s, err := lookup(c.sessions, props.SessionID)
	if err != nil {
		return err
	}
	props.Currency = displayCurrency(s)

	res, ok := s.Product(props.ProductID)
	switch {
	case !ok:
		props.State = ProductLoading
	case res.Err != nil:
		props.State, props.Err = ProductError, res.Err
	default:
		props.State, props.Product = ProductLoaded, res.Product
	}
	return nil
}

// Deferred renders the loading skeleton, replaced by the product as soon as
// the page has loaded.
func (c *Product) Deferred(props ProductProps) templ.Component {
	return c.Defer(props, skeleton())
}

func skeleton() templ.Component {
	return view(func(ctx context.Context, m *markup) {
		m.elem("div", class("skeleton skeleton--title"), "Loading product…")
		m.elem("div", class("skeleton skeleton--table"), "")
	})
}

// Render draws the product in its current state. The root id is stable
// across states so polling and out-of-band swaps replace it in place.
func (c *Product) Render(ctx context.Context, props ProductProps) templ.Component {
	if props.State == ProductLoaded && props.Product.IntervalPriced() {
		return c.storage.Render(ctx, StorageProps{
			SessionID: props.SessionID,
			ProductID: props.ProductID,
			State:     props.State,
			Product:   props.Product,
			Currency:  props.Currency,
			OOB:       props.OOB,
		})
	}
	return view(func(ctx context.Context, m *markup) {
		root := oob(templ.Attributes{
			"id":         productElementID(props.ProductID),
			"class":      "pricing-product pricing-product--" + props.State.String(),
			"data-state": props.State.String(),
		}, props.OOB)
		base := ProductProps{SessionID: props.SessionID, ProductID: props.ProductID}

		switch props.State {
		case ProductLoading:
			m.open("div", merge(root, c.Refresh(base).Every(500*time.Millisecond).Attrs()))
			m.render(ctx, skeleton())
			m.close("div")
			return
		case ProductError:
			m.open("div", root)
			m.elem("p", class("pricing-product__error"), "Something went wrong while loading this product.")
			m.close("div")
			return
		}

		p := props.Product
		m.open("div", root)
		m.open("div", class("pricing-product__head"))
		if p.Icon != "" {
			m.open("img", templ.Attributes{"class": "pricing-product__icon", "src": "/static/icons/" + p.Icon + ".svg", "alt": ""})
		}
		m.elem("h3", class("pricing-product__name"), p.Name)
		m.close("div")
		if p.Description != "" {
			m.elem("p", class("pricing-product__description"), p.Description)
		}

		m.open("table", class("pricing-product__items"))
		m.open("thead", nil)
		m.open("tr", nil)
		m.elem("th", nil, "Plan")
		for _, f := range p.Features {
			m.elem("th", nil, f.Name)
		}
		m.elem("th", nil, "Daily")
		m.elem("th", nil, "30 days")
		m.elem("th", nil, "")
		m.close("tr")
		m.close("thead")

		m.open("tbody", nil)
		for _, item := range p.Items {
			m.open("tr", nil)
			m.elem("td", nil, item.Name)
			for _, f := range p.Features {
				m.elem("td", nil, featureValue(item, f))
			}
			m.elem("td", class("price"), ccpricing.FormatPrice(ccpricing.DailyPrice(item, props.Currency), props.Currency))
			m.elem("td", class("price"), ccpricing.FormatPrice(ccpricing.MonthlyPrice(item, props.Currency), props.Currency))
			m.open("td", nil)
			ref := item.ID
			if ref == "" {
				ref = item.Name
			}
			m.elem("button", merge(templ.Attributes{"type": "button", "title": "Add " + item.Name},
				c.Call("add-product", base).Vals(map[string]any{"item": ref}).SwapNone().Attrs()), "Add")
			m.close("td")
			m.close("tr")
		}
		m.close("tbody")
		m.close("table")
		m.close("div")
	})
}

// featureValue finds the item's value for a product-level feature column,
// by code when both have one and by name otherwise.
func featureValue(item ccpricing.CatalogItem, col ccpricing.Feature) string {
	for _, f := range item.Features {
		if (col.Code != "" && f.Code == col.Code) || (col.Code == "" && f.Name == col.Name) {
			return f.Value
		}
	}
	return ""
}

func (c *Product) handleRender(ctx context.Context, props ProductProps, r *http.Request) hx.Result[ProductProps] {
	if props.State == ProductError {
		return hx.OK(props).Flash(hx.FlashError, "Could not load "+props.ProductID)
	}
	return hx.OK(props)
}

func (c *Product) handleAddProduct(ctx context.Context, props ProductProps, r *http.Request) hx.Result[ProductProps] {
	if props.State != ProductLoaded {
		return hx.Skip[ProductProps]()
	}

	ref := r.FormValue("item")
	item, ok := props.Product.Item(ref)
	if !ok {
		logger.Debug(ctx, "unknown item ignored", logger.String("product", props.ProductID), logger.String("item", ref))
		return hx.Skip[ProductProps]()
	}

	token, err := c.Token(props.Product.Select(item))
	if err != nil {
		return hx.Err(props, err)
	}
	return hx.Skip[ProductProps]().Trigger(EventAddProduct, map[string]any{"product": token})
}
