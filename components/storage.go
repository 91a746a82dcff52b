package components

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/hx"
)

// StorageProps identify a volume-priced product of a session and carry the
// calculator inputs between requests.
type StorageProps struct {
	SessionID   string `msgpack:"s"`
	ProductID   string `msgpack:"id"`
	Storage     string `msgpack:"sq,omitempty"`
	StorageUnit string `msgpack:"su,omitempty"`
	Traffic     string `msgpack:"tq,omitempty"`
	TrafficUnit string `msgpack:"tu,omitempty"`

	// Hydrated
	State    ProductState             `msgpack:"-"`
	Product  ccpricing.CatalogProduct `msgpack:"-"`
	Err      error                    `msgpack:"-"`
	Currency ccpricing.Currency       `msgpack:"-"`
	OOB      bool                     `msgpack:"-"`
}

// volumes parses the calculator inputs. Invalid or negative quantities
// count as zero and unknown units as megabytes.
func (p StorageProps) volumes() (storageMB, trafficMB decimal.Decimal) {
	return volume(p.Storage, p.StorageUnit), volume(p.Traffic, p.TrafficUnit)
}

func volume(quantity, unit string) decimal.Decimal {
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		q = decimal.Zero
	}
	u, ok := ccpricing.ParseStorageUnit(unit)
	if !ok {
		u = ccpricing.UnitMB
	}
	return ccpricing.Volume(q, u)
}

// inputs strips the hydrated fields, which are not sent back.
func (p StorageProps) inputs() StorageProps {
	return StorageProps{
		SessionID:   p.SessionID,
		ProductID:   p.ProductID,
		Storage:     p.Storage,
		StorageUnit: p.StorageUnit,
		Traffic:     p.Traffic,
		TrafficUnit: p.TrafficUnit,
	}
}

func (p StorageProps) estimate() ccpricing.StorageEstimate {
	storageMB, trafficMB := p.volumes()
	return ccpricing.EstimateStorage(p.Product, storageMB, trafficMB)
}

// Storage is the calculator of volume-priced products such as object
// storage: the visitor enters a stored volume and an outbound traffic
// volume, sees the matching tiers and adds the estimate as one item.
type Storage struct {
	*hx.Component[StorageProps]
	sessions Sessions
}

// NewStorage creates the storage calculator component.
func NewStorage(sessions Sessions) *Storage {
	c := &Storage{
		Component: hx.New[StorageProps]("pricing-storage").Sensitive(),
		sessions:  sessions,
	}
	c.Bind(c)
	c.Action("estimate", c.handleEstimate)
	c.Action("add-product", c.handleAddProduct)
	return c
}

// Hydrate resolves the product from the session, like Product does.
func (c *Storage) Hydrate(ctx context.Context, props *StorageProps) error {
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

// Render draws the calculator. Its root shares the catalog entry id, so
// page-level product swaps replace it.
func (c *Storage) Render(ctx context.Context, props StorageProps) templ.Component {
	return view(func(ctx context.Context, m *markup) {
		root := oob(templ.Attributes{
			"id":         productElementID(props.ProductID),
			"class":      "pricing-storage pricing-product pricing-product--" + props.State.String(),
			"data-state": props.State.String(),
		}, props.OOB)

		switch props.State {
		case ProductLoading:
			base := StorageProps{SessionID: props.SessionID, ProductID: props.ProductID}
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

		p, cur := props.Product, props.Currency
		storageMB, trafficMB := props.volumes()
		e := ccpricing.EstimateStorage(p, storageMB, trafficMB)

		state := props.inputs()

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

		m.open("form", merge(class("pricing-storage__form"),
			c.Call("estimate", state).
				On("input changed delay:300ms, change").
				TargetClosest(".pricing-storage").
				SwapOuter().
				Attrs()))

		c.renderSection(m, "storage", "Storage", props.Storage, props.StorageUnit, p.Storage, storageMB, e.Storage, cur)
		if len(p.Traffic) > 0 {
			c.renderSection(m, "traffic", "Outbound traffic", props.Traffic, props.TrafficUnit, p.Traffic, trafficMB, e.Traffic, cur)
		}

		m.open("div", class("pricing-storage__total"))
		m.elem("span", nil, "Total")
		m.elem("strong", nil, ccpricing.FormatPrice(ccpricing.Convert(e.Total(), cur), cur)+"/30 days")
		m.close("div")

		m.elem("button", merge(templ.Attributes{
			"type":     "button",
			"class":    "pricing-storage__add",
			"disabled": storageMB.IsZero() && trafficMB.IsZero(),
		}, c.Call("add-product", state).Include("closest form").SwapNone().Attrs()), "Add to estimation")

		m.close("form")
		m.close("div")
	})
}

// renderSection renders one volume input with its unit selector and the
// tier table, highlighting the tier the volume falls in.
func (c *Storage) renderSection(m *markup, name, label, quantity, unit string, tiers []ccpricing.Interval, mb, cost decimal.Decimal, cur ccpricing.Currency) {
	if unit == "" {
		unit = ccpricing.UnitGB.String()
	}
	current := ccpricing.FindInterval(tiers, mb)

	m.open("fieldset", class("pricing-storage__"+name))
	m.elem("legend", nil, label)
	m.open("input", templ.Attributes{
		"type":        "number",
		"name":        name,
		"min":         "0",
		"step":        "any",
		"value":       quantity,
		"placeholder": "Your " + name,
		"aria-label":  label,
	})
	m.open("select", templ.Attributes{"name": name + "-unit", "aria-label": label + " unit"})
	for _, u := range ccpricing.StorageUnits {
		m.elem("option", templ.Attributes{"value": u.String(), "selected": u.String() == unit}, u.String())
	}
	m.close("select")

	m.open("table", class("pricing-storage__tiers"))
	m.open("tbody", nil)
	for i, tier := range tiers {
		cls := "pricing-storage__tier"
		if i == current {
			cls += " pricing-storage__tier--highlighted"
		}
		m.open("tr", templ.Attributes{"class": cls, "data-tier": strconv.Itoa(i)})
		m.elem("td", nil, tierRange(tier, name))
		m.elem("td", class("price"), tier.UnitPrice(cur).String()+" "+cur.Code()+"/GB/30 days")
		if i == current {
			m.elem("td", class("price"), ccpricing.FormatPrice(ccpricing.Convert(cost, cur), cur))
		} else {
			m.elem("td", nil, "")
		}
		m.close("tr")
	}
	m.close("tbody")
	m.close("table")
	m.close("fieldset")
}

func tierRange(tier ccpricing.Interval, name string) string {
	upper := "∞"
	if !tier.Unbounded() {
		upper = ccpricing.FormatVolume(tier.MaxRange)
	}
	return ccpricing.FormatVolume(tier.MinRange) + " ≤ " + name + " < " + upper
}

// readInputs copies the calculator form values into props.
func readInputs(props *StorageProps, r *http.Request) {
	props.Storage = r.FormValue("storage")
	props.StorageUnit = r.FormValue("storage-unit")
	props.Traffic = r.FormValue("traffic")
	props.TrafficUnit = r.FormValue("traffic-unit")
}

func (c *Storage) handleEstimate(ctx context.Context, props StorageProps, r *http.Request) hx.Result[StorageProps] {
	readInputs(&props, r)
	return hx.OK(props)
}

func (c *Storage) handleAddProduct(ctx context.Context, props StorageProps, r *http.Request) hx.Result[StorageProps] {
	if props.State != ProductLoaded {
		return hx.Skip[StorageProps]()
	}
	readInputs(&props, r)

	storageMB, trafficMB := props.volumes()
	if storageMB.IsZero() && trafficMB.IsZero() {
		return hx.Skip[StorageProps]().Flash(hx.FlashWarning, "Enter a volume to estimate first")
	}

	e := props.estimate()
	token, err := c.Token(props.Product.Select(e.Item(props.Product)))
	if err != nil {
		return hx.Err(props, err)
	}
	return hx.Skip[StorageProps]().Trigger(EventAddProduct, map[string]any{"product": token})
}
