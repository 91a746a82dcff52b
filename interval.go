package ccpricing

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// StorageUnit is a volume unit expressed in megabytes.
type StorageUnit int64

const (
	UnitMB StorageUnit = 1
	UnitGB StorageUnit = 1000
	UnitTB StorageUnit = 1000 * 1000
)

// StorageUnits lists the units offered by storage calculators.
var StorageUnits = []StorageUnit{UnitMB, UnitGB, UnitTB}

func (u StorageUnit) String() string {
	switch u {
	case UnitMB:
		return "MB"
	case UnitGB:
		return "GB"
	case UnitTB:
		return "TB"
	}
	return fmt.Sprintf("StorageUnit(%d)", int64(u))
}

// ParseStorageUnit parses a unit label, case-insensitively.
func ParseStorageUnit(s string) (StorageUnit, bool) {
	return lo.Find(StorageUnits, func(u StorageUnit) bool {
		return strings.EqualFold(u.String(), s)
	})
}

var megabytesPerGigabyte = decimal.NewFromInt(int64(UnitGB))

// Interval is a price tier for volumes in [MinRange, MaxRange), both in
// megabytes. A zero MaxRange leaves the tier unbounded. Price is per
// gigabyte for 30 days, in the base currency.
type Interval struct {
	MinRange decimal.Decimal
	MaxRange decimal.Decimal
	Price    decimal.Decimal
}

// Unbounded reports whether the tier has no upper limit.
func (i Interval) Unbounded() bool {
	return i.MaxRange.IsZero()
}

// Contains reports whether a volume of mb megabytes falls in the tier.
func (i Interval) Contains(mb decimal.Decimal) bool {
	if mb.LessThan(i.MinRange) {
		return false
	}
	return i.Unbounded() || mb.LessThan(i.MaxRange)
}

// Volume returns quantity × unit in megabytes. Negative quantities count as
// zero.
func Volume(quantity decimal.Decimal, unit StorageUnit) decimal.Decimal {
	if quantity.IsNegative() {
		return decimal.Zero
	}
	return quantity.Mul(decimal.NewFromInt(int64(unit)))
}

// FindInterval returns the index of the tier containing mb, or -1.
func FindInterval(intervals []Interval, mb decimal.Decimal) int {
	_, idx, ok := lo.FindIndexOf(intervals, func(i Interval) bool { return i.Contains(mb) })
	if !ok {
		return -1
	}
	return idx
}

// IntervalPrice prices a volume of mb megabytes for 30 days at the rate of
// the single tier containing it. The whole volume is billed at that rate;
// tiers are not cumulative. A volume outside every tier costs nothing.
func IntervalPrice(intervals []Interval, mb decimal.Decimal) decimal.Decimal {
	idx := FindInterval(intervals, mb)
	if idx < 0 {
		return decimal.Zero
	}
	return mb.Div(megabytesPerGigabyte).Mul(intervals[idx].Price)
}

// StorageEstimate is the monthly cost of a storage product for a storage
// volume and an outbound traffic volume, in the base currency.
type StorageEstimate struct {
	StorageMB decimal.Decimal
	TrafficMB decimal.Decimal
	Storage   decimal.Decimal
	Traffic   decimal.Decimal
}

// Total is the storage cost plus the traffic cost.
func (e StorageEstimate) Total() decimal.Decimal {
	return e.Storage.Add(e.Traffic)
}

// EstimateStorage prices storage and traffic volumes (in megabytes) with
// the tiers of p. Traffic is ignored when p does not bill it.
func EstimateStorage(p CatalogProduct, storageMB, trafficMB decimal.Decimal) StorageEstimate {
	e := StorageEstimate{
		StorageMB: storageMB,
		Storage:   IntervalPrice(p.Storage, storageMB),
		Traffic:   decimal.Zero,
	}
	if len(p.Traffic) > 0 {
		e.TrafficMB = trafficMB
		e.Traffic = IntervalPrice(p.Traffic, trafficMB)
	}
	return e
}

// Item turns the estimate into a catalog item of product p, so it can be
// added to a store like any other item. Its id encodes the volumes, which
// makes identical estimates share one entry.
func (e StorageEstimate) Item(p CatalogProduct) CatalogItem {
	id := fmt.Sprintf("%s/storage:%sMB", p.ID, e.StorageMB.String())
	name := "Storage: " + FormatVolume(e.StorageMB)
	features := []Feature{{Code: "storage", Name: "Storage", Value: FormatVolume(e.StorageMB)}}
	if len(p.Traffic) > 0 {
		id += fmt.Sprintf("/traffic:%sMB", e.TrafficMB.String())
		name += ", Traffic: " + FormatVolume(e.TrafficMB)
		features = append(features, Feature{Code: "traffic", Name: "Traffic", Value: FormatVolume(e.TrafficMB)})
	}

	return CatalogItem{
		ID:       id,
		Name:     name,
		Price:    e.Total().Div(decimal.NewFromInt(HoursPerMonth)),
		Features: features,
	}
}

// FormatVolume renders mb in the largest unit keeping a value of at least
// one: 1500 → "1.5 GB", 250 → "250 MB".
func FormatVolume(mb decimal.Decimal) string {
	unit := UnitMB
	for _, u := range StorageUnits {
		if mb.GreaterThanOrEqual(decimal.NewFromInt(int64(u))) {
			unit = u
		}
	}
	v := mb.Div(decimal.NewFromInt(int64(unit))).Round(3)
	return v.String() + " " + unit.String()
}

// UnitPrice is the tier price per gigabyte converted to c, kept to four
// decimals since tier prices are fractions of a cent.
func (i Interval) UnitPrice(c Currency) decimal.Decimal {
	return i.Price.Mul(c.rate()).Round(4)
}
