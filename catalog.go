package ccpricing

import "github.com/shopspring/decimal"

// Feature describes one characteristic of a catalog item (memory, vCPUs,
// backups...). It is display-only.
type Feature struct {
	Code  string `msgpack:"c,omitempty"`
	Name  string `msgpack:"n"`
	Value string `msgpack:"v"`
}

// CatalogItem is a purchasable tier of a product. Price is an hourly rate in
// the base currency.
type CatalogItem struct {
	ID       string          `msgpack:"id,omitempty"`
	Name     string          `msgpack:"n"`
	Price    decimal.Decimal `msgpack:"p"`
	Features []Feature       `msgpack:"f,omitempty"`
}

// CatalogProduct is a sellable product with its selectable items.
type CatalogProduct struct {
	ID          string
	Name        string
	Icon        string
	Description string
	Items       []CatalogItem
	Features    []Feature

	// Storage and Traffic price storage products by volume instead of
	// fixed items. Traffic is empty for products without outbound traffic
	// billing.
	Storage []Interval
	Traffic []Interval
}

// IntervalPriced reports whether p is priced by volume.
func (p CatalogProduct) IntervalPriced() bool {
	return len(p.Storage) > 0
}

// Item returns the item matching ref, by id first and then by name.
func (p CatalogProduct) Item(ref string) (CatalogItem, bool) {
	for _, it := range p.Items {
		if it.ID != "" && it.ID == ref {
			return it, true
		}
	}
	for _, it := range p.Items {
		if it.Name == ref {
			return it, true
		}
	}
	return CatalogItem{}, false
}

// Select builds the Product emitted when item is chosen from p.
func (p CatalogProduct) Select(item CatalogItem) Product {
	return Product{Name: p.Name, Item: item}
}

// Product is a named grouping of one chosen catalog item. It is the payload
// of add, change and delete intents.
type Product struct {
	Name string      `msgpack:"n"`
	Item CatalogItem `msgpack:"i"`
}

// Zone is a hosting zone. Name is the identifier used as zone id.
type Zone struct {
	ID          string
	Name        string
	City        string
	Country     string
	CountryCode string
	DisplayName string
	Lat         float64
	Lon         float64
	Tags        []string
}

// Label returns the display name of the zone, falling back to its city.
func (z Zone) Label() string {
	if z.DisplayName != "" {
		return z.DisplayName
	}
	if z.City != "" {
		return z.City + " (" + z.Name + ")"
	}
	return z.Name
}
