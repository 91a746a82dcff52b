package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pthm/ccpricing"
)

type rate struct {
	code  string
	value string
}

// rates are change rates from EUR.
var rates = []rate{
	{"EUR", "1"},
	{"USD", "1.1802"},
	{"AUD", "1.5548"},
	{"BGN", "1.9558"},
	{"BRL", "6.696"},
	{"CAD", "1.4849"},
	{"CHF", "1.1045"},
	{"CNY", "7.722"},
	{"CZK", "26.233"},
	{"DKK", "7.436"},
	{"GBP", "0.86068"},
	{"HKD", "9.17"},
	{"HRK", "7.5748"},
	{"HUF", "364.78"},
	{"IDR", "17024.39"},
	{"ILS", "3.9091"},
	{"INR", "85.7605"},
	{"ISK", "149.8"},
	{"JPY", "128.75"},
	{"KRW", "1340.88"},
	{"MXN", "24.6616"},
	{"MYR", "4.8937"},
	{"NOK", "10.1653"},
	{"NZD", "1.6948"},
	{"PHP", "57.335"},
	{"PLN", "4.6399"},
	{"RON", "4.8865"},
	{"RUB", "90.0115"},
	{"SEK", "10.1935"},
	{"SGD", "1.5899"},
	{"THB", "36.746"},
	{"TRY", "9.4313"},
	{"ZAR", "17.6852"},
}

var zones = []ccpricing.Zone{
	{ID: "aad32a21-24f8-40b3-a750-baab218d927b", Name: "par", City: "Paris", Country: "France", CountryCode: "FR", Lat: 48.8566, Lon: 2.3522, Tags: []string{"infra:clever-cloud", "for:applications"}},
	{ID: "b9bd85cc-62db-492f-94f5-ad3e47367d8e", Name: "rbx", City: "Roubaix", Country: "France", CountryCode: "FR", Lat: 50.6901, Lon: 3.1613, Tags: []string{"infra:ovh", "for:applications"}},
	{ID: "7602ecff-3b3a-42d4-84f4-6d382d4073d1", Name: "rbxhds", City: "Roubaix", Country: "France", CountryCode: "FR", Lat: 50.6901, Lon: 3.1613, Tags: []string{"certification:hds", "for:applications", "infra:ovh"}},
	{ID: "83923989-e9e8-4070-a371-3aafc2c4b9e3", Name: "wsw", City: "Warsaw", Country: "Poland", CountryCode: "PL", Lat: 52.2331, Lon: 20.9208, Tags: []string{"for:applications", "infra:ovh"}},
	{ID: "d62b134a-2671-4bba-8c46-b9a09a47aedd", Name: "mtl", City: "Montreal", Country: "Canada", CountryCode: "CA", Lat: 45.5017, Lon: -73.5673, Tags: []string{"infra:ovh", "for:applications"}},
	{ID: "96e8b92f-919e-4c94-91f8-71c90f2e200d", Name: "nyc", City: "New York", Country: "United States of America", CountryCode: "US", Lat: 40.7128, Lon: -74.006, Tags: []string{"infra:bso", "for:applications"}},
	{ID: "3b9a58f4-bab4-439b-8662-e200d9805dba", Name: "sgp", City: "Singapore", Country: "Singapore", CountryCode: "SG", Lat: 1.3143, Lon: 103.7038, Tags: []string{"infra:ovh", "for:applications"}},
	{ID: "1a886ae1-1643-448b-a6b1-5891ecd74e82", Name: "syd", City: "Sydney", Country: "Australia", CountryCode: "AU", Lat: -33.8479, Lon: 150.7915, Tags: []string{"for:applications", "infra:ovh"}},
	{ID: "b4b05c1c-87a8-4e20-9e90-2b19214059b6", Name: "clevergrid", City: "Paris", Country: "France", CountryCode: "FR", DisplayName: "GPUs-enabled zone", Lat: 48.8566, Lon: 2.3522, Tags: []string{"for:applications-ml", "infra:clever-cloud"}},
}

// monthly converts a monthly EUR price to the hourly catalog rate.
func monthly(eur string) decimal.Decimal {
	return decimal.RequireFromString(eur).Div(decimal.NewFromInt(ccpricing.HoursPerMonth))
}

// tier builds a volume interval in megabytes priced per GB for 30 days; an
// empty max leaves it unbounded.
func tier(minMB, maxMB, price string) ccpricing.Interval {
	i := ccpricing.Interval{MinRange: decimal.RequireFromString(minMB), Price: decimal.RequireFromString(price)}
	if maxMB != "" {
		i.MaxRange = decimal.RequireFromString(maxMB)
	}
	return i
}

func feature(code, name, value string) ccpricing.Feature {
	return ccpricing.Feature{Code: code, Name: name, Value: value}
}

var products = []ccpricing.CatalogProduct{
	{
		ID:          "postgresql-addon",
		Name:        "PostgreSQL",
		Icon:        "postgresql",
		Description: "Managed PostgreSQL databases with daily backups.",
		Features:    []ccpricing.Feature{feature("backups", "Backups", ""), feature("max-db-size", "Max DB size", ""), feature("memory", "Memory", ""), feature("cpus", "vCPUs", "")},
		Items: []ccpricing.CatalogItem{
			{ID: "postgresql-dev", Name: "DEV", Price: decimal.Zero, Features: []ccpricing.Feature{feature("backups", "Backups", "Daily - 7 Retained"), feature("max-db-size", "Max DB size", "256 MB"), feature("memory", "Memory", "Shared"), feature("cpus", "vCPUs", "Shared")}},
			{ID: "postgresql-xs-sml-space", Name: "XS Small Space", Price: monthly("7.5"), Features: []ccpricing.Feature{feature("backups", "Backups", "Daily - 7 Retained"), feature("max-db-size", "Max DB size", "5 GB"), feature("memory", "Memory", "1 GB"), feature("cpus", "vCPUs", "1")}},
			{ID: "postgresql-s-med-space", Name: "S Medium Space", Price: monthly("30"), Features: []ccpricing.Feature{feature("backups", "Backups", "Daily - 7 Retained"), feature("max-db-size", "Max DB size", "20 GB"), feature("memory", "Memory", "2 GB"), feature("cpus", "vCPUs", "2")}},
			{ID: "postgresql-m-big-space", Name: "M Big Space", Price: monthly("75"), Features: []ccpricing.Feature{feature("backups", "Backups", "Daily - 7 Retained"), feature("max-db-size", "Max DB size", "100 GB"), feature("memory", "Memory", "4 GB"), feature("cpus", "vCPUs", "4")}},
		},
	},
	{
		ID:          "mysql-addon",
		Name:        "MySQL",
		Icon:        "mysql",
		Description: "Managed MySQL databases.",
		Features:    []ccpricing.Feature{feature("max-db-size", "Max DB size", ""), feature("memory", "Memory", ""), feature("connections", "Max connection limit", "")},
		Items: []ccpricing.CatalogItem{
			{ID: "mysql-dev", Name: "DEV", Price: decimal.Zero, Features: []ccpricing.Feature{feature("max-db-size", "Max DB size", "10 MB"), feature("memory", "Memory", "Shared"), feature("connections", "Max connection limit", "5")}},
			{ID: "mysql-xs-sml-space", Name: "XS Small Space", Price: monthly("10"), Features: []ccpricing.Feature{feature("max-db-size", "Max DB size", "1 GB"), feature("memory", "Memory", "512 MB"), feature("connections", "Max connection limit", "15")}},
			{ID: "mysql-m-med-space", Name: "M Medium Space", Price: monthly("60"), Features: []ccpricing.Feature{feature("max-db-size", "Max DB size", "30 GB"), feature("memory", "Memory", "4 GB"), feature("connections", "Max connection limit", "150")}},
		},
	},
	{
		ID:          "redis-addon",
		Name:        "Redis",
		Icon:        "redis",
		Description: "In-memory key-value store.",
		Features:    []ccpricing.Feature{feature("max-db-size", "Max DB size", ""), feature("connections", "Max connection limit", "")},
		Items: []ccpricing.CatalogItem{
			{ID: "redis-s", Name: "S", Price: monthly("10"), Features: []ccpricing.Feature{feature("max-db-size", "Max DB size", "100 MB"), feature("connections", "Max connection limit", "100")}},
			{ID: "redis-m", Name: "M", Price: monthly("25"), Features: []ccpricing.Feature{feature("max-db-size", "Max DB size", "500 MB"), feature("connections", "Max connection limit", "400")}},
			{ID: "redis-l", Name: "L", Price: monthly("50"), Features: []ccpricing.Feature{feature("max-db-size", "Max DB size", "1 GB"), feature("connections", "Max connection limit", "1000")}},
		},
	},
	{
		ID:          "cellar-addon",
		Name:        "Cellar",
		Icon:        "cellar",
		Description: "S3-compatible object storage, billed on stored volume and outbound traffic.",
		Storage: []ccpricing.Interval{
			tier("0", "1000000", "0.02"),
			tier("1000000", "25000000", "0.015"),
			tier("25000000", "", "0.01"),
		},
		Traffic: []ccpricing.Interval{
			tier("0", "1000000", "0.09"),
			tier("1000000", "", "0.07"),
		},
	},
	{
		ID:          "fsbucket-addon",
		Name:        "FS Bucket",
		Icon:        "fsbucket",
		Description: "Persistent file system for applications, billed on stored volume.",
		Storage: []ccpricing.Interval{
			tier("0", "100", "0"),
			tier("100", "", "1.5"),
		},
	},
}

// hdsSurcharge applies to zones certified for health data.
var hdsSurcharge = decimal.RequireFromString("1.2")

// Static serves the built-in catalog.
type Static struct {
	currencies []ccpricing.Currency
	zones      []ccpricing.Zone
	products   map[string]ccpricing.CatalogProduct
	order      []string
}

// NewStatic returns the built-in catalog.
func NewStatic() *Static {
	s := &Static{
		currencies: lo.Map(rates, func(r rate, _ int) ccpricing.Currency {
			c, err := ccpricing.NewCurrency(r.code, decimal.RequireFromString(r.value))
			if err != nil {
				panic(err)
			}
			return c
		}),
		zones:    zones,
		products: lo.KeyBy(products, func(p ccpricing.CatalogProduct) string { return p.ID }),
		order:    lo.Map(products, func(p ccpricing.CatalogProduct, _ int) string { return p.ID }),
	}
	return s
}

func (s *Static) Currencies(ctx context.Context) ([]ccpricing.Currency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.currencies), nil
}

func (s *Static) Zones(ctx context.Context) ([]ccpricing.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.zones), nil
}

func (s *Static) ProductIDs(ctx context.Context) ([]string, error) {
	return slices.Clone(s.order), nil
}

func (s *Static) Product(ctx context.Context, id, zoneID string) (ccpricing.CatalogProduct, error) {
	if err := ctx.Err(); err != nil {
		return ccpricing.CatalogProduct{}, err
	}

	zone, ok := lo.Find(s.zones, func(z ccpricing.Zone) bool { return z.Name == zoneID })
	if !ok {
		return ccpricing.CatalogProduct{}, fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	}
	p, ok := s.products[id]
	if !ok {
		return ccpricing.CatalogProduct{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	p.Items = slices.Clone(p.Items)
	p.Storage = slices.Clone(p.Storage)
	p.Traffic = slices.Clone(p.Traffic)
	if slices.Contains(zone.Tags, "certification:hds") {
		for i := range p.Items {
			p.Items[i].Price = p.Items[i].Price.Mul(hdsSurcharge)
		}
		for i := range p.Storage {
			p.Storage[i].Price = p.Storage[i].Price.Mul(hdsSurcharge)
		}
		for i := range p.Traffic {
			p.Traffic[i].Price = p.Traffic[i].Price.Mul(hdsSurcharge)
		}
	}
	return p, nil
}
