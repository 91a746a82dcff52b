package ccpricing

import "slices"

// Key identifies a slot of the selection store.
type Key string

// KeyFunc derives the identity of a selected product.
type KeyFunc func(Product) Key

// DefaultKey uses the catalog item id when present and falls back to
// "<product name>/<item name>". Catalog items sharing both names collide and
// are aggregated into the same entry.
func DefaultKey(p Product) Key {
	if p.Item.ID != "" {
		return Key(p.Item.ID)
	}
	return Key(p.Name + "/" + p.Item.Name)
}

// Entry is one live row of the selection.
type Entry struct {
	Key      Key
	Name     string
	Item     CatalogItem
	Quantity int
}

// Product returns the product the entry was created from.
func (e Entry) Product() Product {
	return Product{Name: e.Name, Item: e.Item}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyFunc replaces DefaultKey.
func WithKeyFunc(fn KeyFunc) StoreOption {
	return func(s *Store) {
		s.keyFn = fn
	}
}

// Store is the selection: key to entry, where a nil entry is a tombstone.
// Store values are immutable; mutating methods return a new Store. The zero
// value is an empty store using DefaultKey.
type Store struct {
	keyFn   KeyFunc
	order   []Key
	entries map[Key]*Entry
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) Store {
	s := Store{entries: make(map[Key]*Entry)}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Key derives the key of p with the store's key policy.
func (s Store) Key(p Product) Key {
	if s.keyFn == nil {
		return DefaultKey(p)
	}
	return s.keyFn(p)
}

// Add selects one more unit of p. A missing or tombstoned slot starts again
// from zero before the increment.
func (s Store) Add(p Product) Store {
	key := s.Key(p)
	cur, exists := s.entries[key]

	next := s.clone()
	if !exists {
		next.order = append(next.order, key)
	}

	e := Entry{Key: key, Name: p.Name, Item: p.Item}
	if cur != nil {
		e = *cur
	}
	e.Quantity++
	next.entries[key] = &e
	return next
}

// ChangeQuantity sets the quantity of p. Quantities of zero or less
// tombstone the entry. Keys that were never added, and tombstoned entries
// asked for a positive quantity, are left untouched.
func (s Store) ChangeQuantity(p Product, quantity int) Store {
	key := s.Key(p)
	cur, exists := s.entries[key]
	if !exists || cur == nil {
		return s
	}

	next := s.clone()
	if quantity <= 0 {
		next.entries[key] = nil
		return next
	}
	e := *cur
	e.Quantity = quantity
	next.entries[key] = &e
	return next
}

// Delete tombstones p whatever its quantity. Unknown keys are ignored.
func (s Store) Delete(p Product) Store {
	key := s.Key(p)
	if cur := s.entries[key]; cur == nil {
		return s
	}
	next := s.clone()
	next.entries[key] = nil
	return next
}

// Has reports whether key has a slot, live or tombstoned.
func (s Store) Has(key Key) bool {
	_, ok := s.entries[key]
	return ok
}

// Tombstoned reports whether key has a slot holding no entry.
func (s Store) Tombstoned(key Key) bool {
	e, ok := s.entries[key]
	return ok && e == nil
}

// Lookup returns the live entry for key.
func (s Store) Lookup(key Key) (Entry, bool) {
	e := s.entries[key]
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// Keys returns every slot key in insertion order, tombstones included.
func (s Store) Keys() []Key {
	return slices.Clone(s.order)
}

// Live returns the live entries in insertion order.
func (s Store) Live() []Entry {
	live := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		if e := s.entries[k]; e != nil {
			live = append(live, *e)
		}
	}
	return live
}

// Empty reports whether the store has no live entry.
func (s Store) Empty() bool {
	for _, e := range s.entries {
		if e != nil {
			return false
		}
	}
	return true
}

func (s Store) clone() Store {
	next := Store{
		keyFn:   s.keyFn,
		order:   slices.Clone(s.order),
		entries: make(map[Key]*Entry, len(s.entries)+1),
	}
	for k, e := range s.entries {
		next.entries[k] = e
	}
	return next
}
