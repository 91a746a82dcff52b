package components

import (
	"fmt"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/session"
)

// Sessions resolves the session a component instance belongs to.
type Sessions interface {
	Get(id string) (*session.Session, error)
}

func lookup(sessions Sessions, id string) (*session.Session, error) {
	s, err := sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hx.ErrNotFound, err)
	}
	return s, nil
}

// displayCurrency is the session currency, or the base currency while the
// currency list is loading.
func displayCurrency(s *session.Session) ccpricing.Currency {
	if c, ok := s.Currency(); ok {
		return c
	}
	return ccpricing.EUR
}

// Event names.
const (
	EventAddProduct     = "pricing-product:add-product"
	EventChangeQuantity = "pricing-estimation:change-quantity"
	EventDeleteQuantity = "pricing-estimation:delete-quantity"
	EventChangeCurrency = "pricing-header:change-currency"
	EventChangeZone     = "pricing-header:change-zone"

	EventPageChangeCurrency = "pricing-page:change-currency"
	EventPageChangeZone     = "pricing-page:change-zone"
)
