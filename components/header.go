package components

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/logger"
	"github.com/pthm/ccpricing/internal/session"
)

// HeaderProps identify the header of one session.
type HeaderProps struct {
	SessionID string `msgpack:"s"`

	// Hydrated
	Currencies session.State[[]ccpricing.Currency] `msgpack:"-"`
	Zones      session.State[[]ccpricing.Zone]     `msgpack:"-"`
	Currency   ccpricing.Currency                  `msgpack:"-"`
	ZoneID     string                              `msgpack:"-"`
	Total      decimal.Decimal                     `msgpack:"-"`
	OOB        bool                                `msgpack:"-"`
}

// Header shows the currency and zone pickers and the converted total.
type Header struct {
	*hx.Component[HeaderProps]
	sessions Sessions
}

// NewHeader creates the header component. Its actions only emit intents;
// the page applies them.
func NewHeader(sessions Sessions) *Header {
	c := &Header{
		Component: hx.New[HeaderProps]("pricing-header"),
		sessions:  sessions,
	}
	c.Bind(c)
	c.Action("change-currency", c.handleChangeCurrency)
	c.Action("change-zone", c.handleChangeZone)
	c.Action("retry", c.handleRetry)
	return c
}

// Hydrate copies the list states and the selection of the session.
func (c *Header) Hydrate(ctx context.Context, props *HeaderProps) error {
	s, err := lookup(c.sessions, props.SessionID)
	if err != nil {
		return err
	}
	props.Currencies = s.Currencies()
	props.Zones = s.Zones()
	props.Currency = displayCurrency(s)
	props.ZoneID = s.ZoneID()
	props.Total = s.Snapshot().Total
	return nil
}

// loaded reports whether both pickers can be shown.
func (p HeaderProps) loaded() bool {
	return p.Currencies.Done && p.Zones.Done && p.Currencies.Err == nil && p.Zones.Err == nil
}

func (p HeaderProps) failed() bool {
	return p.Currencies.Err != nil || p.Zones.Err != nil
}

// Render draws the pickers once both lists are loaded, a polling
// placeholder before that and a retry button when a load failed.
func (c *Header) Render(ctx context.Context, props HeaderProps) templ.Component {
	return view(func(ctx context.Context, m *markup) {
		root := oob(templ.Attributes{"id": "pricing-header", "class": "pricing-header"}, props.OOB)

		switch {
		case props.failed():
			retry := c.Call("retry", HeaderProps{SessionID: props.SessionID}).
				TargetClosest(".pricing-header").
				SwapOuter().
				Attrs()
			m.open("div", merge(root, class("pricing-header pricing-header--error")))
			m.elem("p", class("pricing-header__error"), "Could not load currencies and zones.")
			m.elem("button", merge(templ.Attributes{"type": "button", "class": "pricing-header__retry"}, retry), "Retry")
			m.close("div")
			return
		case !props.loaded():
			// Poll until the session has loaded both lists.
			poll := c.Refresh(HeaderProps{SessionID: props.SessionID}).Every(500 * time.Millisecond).Attrs()
			m.open("div", merge(merge(root, class("pricing-header pricing-header--loading")), poll))
			m.elem("span", class("skeleton"), "Loading currencies and zones…")
			m.close("div")
			return
		}

		base := HeaderProps{SessionID: props.SessionID}
		m.open("div", root)

		m.open("label", class("pricing-header__currency"))
		m.text("Currency")
		m.open("select", merge(templ.Attributes{"name": "code"},
			c.Call("change-currency", base).On("change").SwapNone().Attrs()))
		for _, cur := range props.Currencies.Value {
			m.elem("option", templ.Attributes{
				"value":    cur.Code(),
				"selected": cur.Code() == props.Currency.Code(),
			}, cur.Symbol()+" "+cur.Code())
		}
		m.close("select")
		m.close("label")

		m.open("label", class("pricing-header__zone"))
		m.text("Zone")
		m.open("select", merge(templ.Attributes{"name": "zone"},
			c.Call("change-zone", base).On("change").SwapNone().Attrs()))
		for _, z := range props.Zones.Value {
			m.elem("option", templ.Attributes{
				"value":    z.Name,
				"selected": z.Name == props.ZoneID,
			}, z.Label())
		}
		m.close("select")
		m.close("label")

		m.open("div", class("pricing-header__total"))
		m.elem("span", class("pricing-header__total-label"), "Estimated cost")
		m.elem("strong", class("pricing-header__total-value"),
			ccpricing.FormatPrice(ccpricing.Convert(props.Total, props.Currency), props.Currency)+"/30 days")
		m.close("div")

		m.close("div")
	})
}

func (c *Header) handleChangeCurrency(ctx context.Context, props HeaderProps, r *http.Request) hx.Result[HeaderProps] {
	code := r.FormValue("code")
	cur, ok := ccpricing.FindCurrency(props.Currencies.Value, code)
	if !ok {
		logger.Debug(ctx, "unknown currency ignored", logger.String("code", code))
		return hx.Skip[HeaderProps]()
	}
	return hx.Skip[HeaderProps]().Trigger(EventChangeCurrency, map[string]any{
		"code":       cur.Code(),
		"changeRate": cur.ChangeRate.String(),
	})
}

func (c *Header) handleChangeZone(ctx context.Context, props HeaderProps, r *http.Request) hx.Result[HeaderProps] {
	zoneID := r.FormValue("zone")
	if !lo.ContainsBy(props.Zones.Value, func(z ccpricing.Zone) bool { return z.Name == zoneID }) {
		logger.Debug(ctx, "unknown zone ignored", logger.String("zone", zoneID))
		return hx.Skip[HeaderProps]()
	}
	return hx.Skip[HeaderProps]().Trigger(EventChangeZone, map[string]any{"zoneId": zoneID})
}

// handleRetry reloads the failed lists and renders the header again, which
// polls until they are loaded.
func (c *Header) handleRetry(ctx context.Context, props HeaderProps, r *http.Request) hx.Result[HeaderProps] {
	if !props.failed() {
		return hx.OK(props)
	}
	s, err := lookup(c.sessions, props.SessionID)
	if err != nil {
		return hx.Err(props, err)
	}
	s.Retry()
	if err := c.Hydrate(ctx, &props); err != nil {
		return hx.Err(props, err)
	}
	return hx.OK(props)
}
