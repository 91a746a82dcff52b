// Package ccpricing is the pricing estimation core behind the pricing
// components: a selection store acting as a cart, the aggregator deriving
// totals from it, and the orchestrator turning intents into new snapshots.
//
// # Selection store
//
// A Store maps a Key to an Entry. Keys are derived from the selected
// Product by a KeyFunc; DefaultKey uses the catalog item id when there is
// one and falls back to "<product name>/<item name>". Once a key has been
// added its slot stays in the store for the lifetime of the owner, either
// holding a live entry or a tombstone:
//
//	s := ccpricing.NewStore()
//	s = s.Add(pg)                // quantity 1
//	s = s.Add(pg)                // quantity 2
//	s = s.ChangeQuantity(pg, 5)  // quantity 5
//	s = s.Delete(pg)             // tombstone, s.Has(key) is still true
//
// Every operation returns a new Store and leaves the receiver untouched, so
// a Store can be handed to renderers without copying.
//
// # Aggregation
//
// Prices are hourly rates in the base currency (EUR). Total sums
// price × HoursPerMonth × quantity over live entries and stays in the base
// currency. Lines computes per-row daily and monthly amounts already
// converted to a display currency. Both go through the same cost helper,
// so the header total and the estimation rows cannot drift apart.
//
// # Orchestration
//
// An Orchestrator owns one Store. Dispatch applies intents one at a time
// (AddProduct, ChangeQuantity, DeleteQuantity) and relays context intents
// (ChangeCurrency, ChangeZone) unchanged to its Container.
package ccpricing
