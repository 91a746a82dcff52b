package ccpricing

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postgresXS() Product {
	return Product{
		Name: "Postgresql",
		Item: CatalogItem{Name: "XS", Price: decimal.NewFromFloat(7.5).Div(decimal.NewFromInt(30))},
	}
}

func fakeProducts(t *testing.T, n int) []Product {
	t.Helper()
	f := gofakeit.New(42)
	products := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, Product{
			Name: f.ProductName(),
			Item: CatalogItem{
				ID:    f.UUID(),
				Name:  f.LetterN(3),
				Price: decimal.NewFromInt(int64(f.IntRange(1, 500))).Div(decimal.NewFromInt(100)),
			},
		})
	}
	return products
}

func TestDefaultKey(t *testing.T) {
	withID := Product{Name: "Redis", Item: CatalogItem{ID: "redis-s", Name: "S"}}
	assert.Equal(t, Key("redis-s"), DefaultKey(withID))

	withoutID := Product{Name: "Redis", Item: CatalogItem{Name: "S"}}
	assert.Equal(t, Key("Redis/S"), DefaultKey(withoutID))
}

func TestStore_AddAccumulates(t *testing.T) {
	for _, p := range fakeProducts(t, 5) {
		s := NewStore()
		n := gofakeit.IntRange(1, 20)
		for i := 0; i < n; i++ {
			s = s.Add(p)
		}
		e, ok := s.Lookup(s.Key(p))
		require.True(t, ok)
		assert.Equal(t, n, e.Quantity)
		assert.Equal(t, p, e.Product())
	}
}

func TestStore_Immutable(t *testing.T) {
	p := postgresXS()
	s0 := NewStore()
	s1 := s0.Add(p)
	s2 := s1.ChangeQuantity(p, 4)
	s3 := s2.Delete(p)

	assert.True(t, s0.Empty())
	assert.False(t, s0.Has(s0.Key(p)))

	e, ok := s1.Lookup(s1.Key(p))
	require.True(t, ok)
	assert.Equal(t, 1, e.Quantity)

	e, ok = s2.Lookup(s2.Key(p))
	require.True(t, ok)
	assert.Equal(t, 4, e.Quantity)

	assert.True(t, s3.Tombstoned(s3.Key(p)))
}

func TestStore_ChangeToZeroEqualsDelete(t *testing.T) {
	for _, p := range fakeProducts(t, 3) {
		base := NewStore().Add(p).Add(p)

		changed := base.ChangeQuantity(p, 0)
		deleted := base.Delete(p)
		negative := base.ChangeQuantity(p, -3)

		for _, s := range []Store{changed, deleted, negative} {
			assert.True(t, s.Tombstoned(s.Key(p)))
			assert.Empty(t, s.Live())
			assert.True(t, Total(s).IsZero())
			assert.Equal(t, []Key{s.Key(p)}, s.Keys())
		}
	}
}

func TestStore_StaleReferences(t *testing.T) {
	known, unknown := postgresXS(), Product{Name: "MySQL", Item: CatalogItem{Name: "M"}}
	s := NewStore().Add(known)

	assert.NotPanics(t, func() {
		after := s.Delete(unknown)
		assert.Equal(t, s.Keys(), after.Keys())
		assert.False(t, after.Has(after.Key(unknown)))

		after = s.ChangeQuantity(unknown, 3)
		assert.Equal(t, s.Keys(), after.Keys())
		assert.False(t, after.Has(after.Key(unknown)))
	})
}

func TestStore_Tombstone(t *testing.T) {
	p := postgresXS()
	s := NewStore().Add(p).Delete(p)

	t.Run("positive change is ignored", func(t *testing.T) {
		after := s.ChangeQuantity(p, 3)
		assert.True(t, after.Tombstoned(after.Key(p)))
	})

	t.Run("add revives at one", func(t *testing.T) {
		after := s.Add(p)
		e, ok := after.Lookup(after.Key(p))
		require.True(t, ok)
		assert.Equal(t, 1, e.Quantity)
		assert.Len(t, after.Keys(), 1)
	})

	t.Run("delete again is ignored", func(t *testing.T) {
		after := s.Delete(p)
		assert.True(t, after.Tombstoned(after.Key(p)))
	})
}

func TestStore_KeyCollision(t *testing.T) {
	a := Product{Name: "Redis", Item: CatalogItem{Name: "S", Price: decimal.NewFromInt(1)}}
	b := Product{Name: "Redis", Item: CatalogItem{Name: "S", Price: decimal.NewFromInt(2)}}

	s := NewStore().Add(a).Add(b)
	require.Len(t, s.Live(), 1)
	assert.Equal(t, 2, s.Live()[0].Quantity)
	assert.True(t, s.Live()[0].Item.Price.Equal(a.Item.Price), "first selection keeps its item")

	strict := NewStore(WithKeyFunc(func(p Product) Key {
		return Key(p.Name + "/" + p.Item.Name + "/" + p.Item.Price.String())
	}))
	strict = strict.Add(a).Add(b)
	assert.Len(t, strict.Live(), 2)
}

func TestStore_InsertionOrder(t *testing.T) {
	products := fakeProducts(t, 6)
	s := Store{}
	for _, p := range products {
		s = s.Add(p)
	}
	s = s.Delete(products[2])

	live := s.Live()
	require.Len(t, live, 5)
	for i, p := range append(products[:2:2], products[3:]...) {
		assert.Equal(t, p.Name, live[i].Name)
	}
	assert.Len(t, s.Keys(), 6)
}
