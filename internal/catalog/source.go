// Package catalog provides the currencies, zones and products the pricing
// components render.
package catalog

import (
	"context"
	"errors"

	"github.com/pthm/ccpricing"
)

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrZoneNotFound    = errors.New("catalog: zone not found")
)

// Source is a catalog backend.
type Source interface {
	Currencies(ctx context.Context) ([]ccpricing.Currency, error)
	Zones(ctx context.Context) ([]ccpricing.Zone, error)
	// Product returns the product priced for zoneID.
	Product(ctx context.Context, id, zoneID string) (ccpricing.CatalogProduct, error)
}

// Lister is implemented by sources that can enumerate their products.
type Lister interface {
	ProductIDs(ctx context.Context) ([]string, error)
}
