package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/internal/catalog"
)

// gatedSource blocks product fetches for gated zones until released.
type gatedSource struct {
	*catalog.Static

	mu      sync.Mutex
	gates   map[string]chan struct{}
	failing map[string]bool
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		Static:  catalog.NewStatic(),
		gates:   make(map[string]chan struct{}),
		failing: make(map[string]bool),
	}
}

func (g *gatedSource) gate(zone string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[zone] = ch
	return ch
}

func (g *gatedSource) fail(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[id] = true
}

func (g *gatedSource) Product(ctx context.Context, id, zoneID string) (ccpricing.CatalogProduct, error) {
	g.mu.Lock()
	gate := g.gates[zoneID]
	failing := g.failing[id]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ccpricing.CatalogProduct{}, ctx.Err()
		}
	}
	if failing {
		return ccpricing.CatalogProduct{}, errors.New("price system unavailable")
	}
	return g.Static.Product(ctx, id, zoneID)
}

func testOptions() Options {
	return Options{
		DefaultCurrency: "EUR",
		DefaultZone:     "par",
		Products:        []string{"postgresql-addon", "redis-addon"},
		TTL:             time.Minute,
		FetchLimit:      2,
	}
}

func loaded(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, pg := s.Product("postgresql-addon")
		_, redis := s.Product("redis-addon")
		return s.Currencies().Done && s.Zones().Done && pg && redis
	}, time.Second, time.Millisecond)
}

func TestSession_Loads(t *testing.T) {
	m := NewManager(catalog.NewStatic(), testOptions())
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	loaded(t, s)

	c, ok := s.Currency()
	require.True(t, ok)
	assert.Equal(t, "EUR", c.Code())
	assert.Equal(t, "par", s.ZoneID())
	assert.NotEmpty(t, s.Zones().Value)

	r, ok := s.Product("redis-addon")
	require.True(t, ok)
	require.NoError(t, r.Err)
	assert.Equal(t, "Redis", r.Product.Name)
}

func TestSession_ProductErrorIsLocal(t *testing.T) {
	src := newGatedSource()
	src.fail("redis-addon")
	m := NewManager(src, testOptions())
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	loaded(t, s)

	redis, _ := s.Product("redis-addon")
	assert.True(t, ccpricing.IsLoadError(redis.Err))

	pg, _ := s.Product("postgresql-addon")
	assert.NoError(t, pg.Err)
}

func TestSession_ContainerRelay(t *testing.T) {
	m := NewManager(catalog.NewStatic(), testOptions())
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	loaded(t, s)

	usd := ccpricing.MustCurrency("USD", 1.1802)
	s.Dispatch(ccpricing.ChangeCurrency{Currency: usd})
	assert.Equal(t, "USD", s.CurrencyCode())
	c, ok := s.Currency()
	require.True(t, ok)
	assert.True(t, c.ChangeRate.Equal(decimal.RequireFromString("1.1802")))

	s.Dispatch(ccpricing.ChangeZone{ZoneID: "rbxhds"})
	assert.Equal(t, "rbxhds", s.ZoneID())
	loaded(t, s)
	pg, _ := s.Product("postgresql-addon")
	xs, _ := pg.Product.Item("postgresql-xs-sml-space")
	assert.Equal(t, "9", ccpricing.MonthlyPrice(xs, ccpricing.EUR).String())
}

func TestSession_UnknownCurrencyCode(t *testing.T) {
	opts := testOptions()
	opts.DefaultCurrency = "XXX"
	m := NewManager(catalog.NewStatic(), opts)
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	loaded(t, s)

	_, ok := s.Currency()
	assert.False(t, ok)
}

func TestSession_StaleZoneLoadIsDiscarded(t *testing.T) {
	src := newGatedSource()
	m := NewManager(src, testOptions())
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	loaded(t, s)

	rbx := src.gate("rbx")
	s.Dispatch(ccpricing.ChangeZone{ZoneID: "rbx"})
	_, ok := s.Product("postgresql-addon")
	assert.False(t, ok, "product should be loading after a zone change")

	s.Dispatch(ccpricing.ChangeZone{ZoneID: "wsw"})
	loaded(t, s)
	close(rbx)

	r, ok := s.Product("postgresql-addon")
	require.True(t, ok)
	require.NoError(t, r.Err)
	assert.Equal(t, "wsw", s.products.State().Value.Zone)
}

func TestSession_CloseCancelsFetches(t *testing.T) {
	src := newGatedSource()
	src.gate("par")
	m := NewManager(src, testOptions())

	s := m.Open(context.Background())
	m.Close(s.ID())

	_, ok := s.Product("postgresql-addon")
	assert.False(t, ok)
	assert.ErrorIs(t, s.Context().Err(), context.Canceled)

	_, err := m.Get(s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestSession_IndependentStores(t *testing.T) {
	m := NewManager(catalog.NewStatic(), testOptions())
	defer m.Shutdown(context.Background())

	a := m.Open(context.Background())
	b := m.Open(context.Background())
	loaded(t, a)

	r, _ := a.Product("redis-addon")
	item := r.Product.Items[0]
	a.Dispatch(ccpricing.AddProduct{Product: r.Product.Select(item)})

	assert.False(t, a.Snapshot().Store.Empty())
	assert.True(t, b.Snapshot().Store.Empty())
}

// flakyZones fails zone loads until healed.
type flakyZones struct {
	*catalog.Static
	failing atomic.Bool
}

func (f *flakyZones) Zones(ctx context.Context) ([]ccpricing.Zone, error) {
	if f.failing.Load() {
		return nil, errors.New("zones unavailable")
	}
	return f.Static.Zones(ctx)
}

func TestSession_Retry(t *testing.T) {
	src := &flakyZones{Static: catalog.NewStatic()}
	src.failing.Store(true)
	m := NewManager(src, testOptions())
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	loaded(t, s)
	require.True(t, ccpricing.IsLoadError(s.Zones().Err))
	require.NoError(t, s.Currencies().Err)

	src.failing.Store(false)
	assert.True(t, s.Retry())
	require.Eventually(t, func() bool {
		st := s.Zones()
		return st.Done && st.Err == nil
	}, time.Second, time.Millisecond)
	assert.NotEmpty(t, s.Zones().Value)

	assert.False(t, s.Retry(), "nothing left to retry")
}
