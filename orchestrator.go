package ccpricing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Intent is a state change requested by a child component.
type Intent interface {
	intent()
}

// AddProduct selects one more unit of Product.
type AddProduct struct {
	Product Product
}

// ChangeQuantity sets the quantity of Product; zero or less removes it.
type ChangeQuantity struct {
	Product  Product
	Quantity int
}

// DeleteQuantity removes Product from the selection.
type DeleteQuantity struct {
	Product Product
}

// ChangeCurrency asks the container to switch the display currency.
type ChangeCurrency struct {
	Currency Currency
}

// ChangeZone asks the container to switch the hosting zone.
type ChangeZone struct {
	ZoneID string
}

func (AddProduct) intent()     {}
func (ChangeQuantity) intent() {}
func (DeleteQuantity) intent() {}
func (ChangeCurrency) intent() {}
func (ChangeZone) intent()     {}

// Container owns the currency and zone configuration of an orchestrator.
type Container interface {
	ChangeCurrency(Currency)
	ChangeZone(zoneID string)
}

// Snapshot is the immutable state handed to renderers.
type Snapshot struct {
	Store Store
	Total decimal.Decimal
}

// Orchestrator owns one Store and applies intents to it in order.
type Orchestrator struct {
	mu        sync.Mutex
	store     Store
	total     decimal.Decimal
	container Container
}

// NewOrchestrator creates an orchestrator with an empty store. container
// may be nil, in which case context intents are dropped.
func NewOrchestrator(container Container, opts ...StoreOption) *Orchestrator {
	return &Orchestrator{
		store:     NewStore(opts...),
		total:     decimal.Zero,
		container: container,
	}
}

// Dispatch applies in and returns the resulting snapshot. Intents are
// serialized: the store mutation and the total are computed before the next
// intent is looked at.
func (o *Orchestrator) Dispatch(in Intent) Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch in := in.(type) {
	case AddProduct:
		o.store = o.store.Add(in.Product)
	case ChangeQuantity:
		o.store = o.store.ChangeQuantity(in.Product, in.Quantity)
	case DeleteQuantity:
		o.store = o.store.Delete(in.Product)
	case ChangeCurrency:
		if o.container != nil {
			o.container.ChangeCurrency(in.Currency)
		}
	case ChangeZone:
		if o.container != nil {
			o.container.ChangeZone(in.ZoneID)
		}
	}

	o.total = Total(o.store)
	return Snapshot{Store: o.store, Total: o.total}
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{Store: o.store, Total: o.total}
}
