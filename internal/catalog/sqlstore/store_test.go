package sqlstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/internal/catalog"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := Open(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSeed_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	src := catalog.NewStatic()

	require.NoError(t, s.Seed(ctx, src))

	wantCurrencies, _ := src.Currencies(ctx)
	gotCurrencies, err := s.Currencies(ctx)
	require.NoError(t, err)
	assert.Len(t, gotCurrencies, len(wantCurrencies))
	usd, ok := ccpricing.FindCurrency(gotCurrencies, "USD")
	require.True(t, ok)
	assert.Equal(t, "1.1802", usd.ChangeRate.String())

	wantZones, _ := src.Zones(ctx)
	gotZones, err := s.Zones(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, wantZones, gotZones)

	ids, err := s.ProductIDs(ctx)
	require.NoError(t, err)
	wantIDs, _ := src.ProductIDs(ctx)
	assert.Equal(t, wantIDs, ids, "products keep the catalog order")

	for _, zone := range []string{"par", "rbxhds", "sgp"} {
		for _, id := range ids {
			want, err := src.Product(ctx, id, zone)
			require.NoError(t, err)
			got, err := s.Product(ctx, id, zone)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
				t.Errorf("Product(%s, %s) mismatch (-want +got):\n%s", id, zone, diff)
			}
		}
	}
}

func TestSeed_Replaces(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, catalog.NewStatic()))
	require.NoError(t, s.Seed(ctx, catalog.NewStatic()))

	zones, err := s.Zones(ctx)
	require.NoError(t, err)
	static, _ := catalog.NewStatic().Zones(ctx)
	assert.Len(t, zones, len(static))
}

func TestProduct_NotFound(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, catalog.NewStatic()))

	_, err := s.Product(ctx, "nope", "par")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = s.Product(ctx, "redis-addon", "atlantis")
	assert.ErrorIs(t, err, catalog.ErrZoneNotFound)
}

func TestProduct_Intervals(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, catalog.NewStatic()))

	cellar, err := s.Product(ctx, "cellar-addon", "par")
	require.NoError(t, err)
	require.Len(t, cellar.Storage, 3)
	require.Len(t, cellar.Traffic, 2)
	assert.False(t, cellar.Storage[1].Unbounded())
	assert.True(t, cellar.Storage[2].Unbounded())
	assert.Equal(t, "25000000", cellar.Storage[1].MaxRange.String())

	fsbucket, err := s.Product(ctx, "fsbucket-addon", "par")
	require.NoError(t, err)
	assert.NotEmpty(t, fsbucket.Storage)
	assert.Nil(t, fsbucket.Traffic)

	redis, err := s.Product(ctx, "redis-addon", "par")
	require.NoError(t, err)
	assert.Nil(t, redis.Storage)
}

type unlistable struct{ catalog.Source }

func TestSeed_RequiresLister(t *testing.T) {
	s := openMemory(t)
	err := s.Seed(context.Background(), unlistable{catalog.NewStatic()})
	assert.Error(t, err)
}
