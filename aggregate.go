package ccpricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Billing constants. A month is 30 days of 24 hours everywhere in the
// aggregator; header totals and estimation rows both derive from them.
const (
	HoursPerDay   = 24
	DaysPerMonth  = 30
	HoursPerMonth = HoursPerDay * DaysPerMonth
)

// itemCost is the single cost path: hourly price × hours × quantity, in the
// base currency.
func itemCost(item CatalogItem, hours int64, quantity int) decimal.Decimal {
	return item.Price.
		Mul(decimal.NewFromInt(hours)).
		Mul(decimal.NewFromInt(int64(quantity)))
}

// Total returns the monthly price of the live entries in the base currency.
// It is not converted: callers apply Convert at display time.
func Total(s Store) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Live() {
		total = total.Add(itemCost(e.Item, HoursPerMonth, e.Quantity))
	}
	return total
}

// Convert turns a base currency amount into c, rounded to cents.
func Convert(amount decimal.Decimal, c Currency) decimal.Decimal {
	return amount.Mul(c.rate()).Round(2)
}

// Line is an estimation row with prices converted to a display currency.
type Line struct {
	Entry
	Daily   decimal.Decimal
	Monthly decimal.Decimal
}

// Lines returns one Line per live entry, in insertion order.
func Lines(s Store, c Currency) []Line {
	return lo.Map(s.Live(), func(e Entry, _ int) Line {
		return Line{
			Entry:   e,
			Daily:   Convert(itemCost(e.Item, HoursPerDay, e.Quantity), c),
			Monthly: Convert(itemCost(e.Item, HoursPerMonth, e.Quantity), c),
		}
	})
}

// DailyPrice is the converted price of one unit of item for a day.
func DailyPrice(item CatalogItem, c Currency) decimal.Decimal {
	return Convert(itemCost(item, HoursPerDay, 1), c)
}

// MonthlyPrice is the converted price of one unit of item for a month.
func MonthlyPrice(item CatalogItem, c Currency) decimal.Decimal {
	return Convert(itemCost(item, HoursPerMonth, 1), c)
}
