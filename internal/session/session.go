// Package session holds the per-visitor pricing state: one orchestrator,
// the currency and zone context, and the catalog data loaded for it.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/internal/catalog"
	"github.com/pthm/ccpricing/internal/logger"
)

// ProductResult is the outcome of loading one catalog product.
type ProductResult struct {
	Product ccpricing.CatalogProduct
	Err     error
}

// Products maps product ids to their load result for one zone.
type Products struct {
	Zone    string
	Results map[string]ProductResult
}

// Session is the container of one pricing page. It owns the orchestrator
// and implements ccpricing.Container for it.
type Session struct {
	*ccpricing.Orchestrator

	id         string
	src        catalog.Source
	productIDs []string
	fetchLimit int

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.RWMutex
	currencyCode string
	zoneID       string
	lastSeen     time.Time

	currencies Latest[[]ccpricing.Currency]
	zones      Latest[[]ccpricing.Zone]
	products   Latest[Products]
}

func newSession(ctx context.Context, id string, src catalog.Source, opts Options, now time.Time) *Session {
	ctx, cancel := context.WithCancel(logger.WithFields(ctx, logger.String("session", id)))
	s := &Session{
		id:           id,
		src:          src,
		productIDs:   slices.Clone(opts.Products),
		fetchLimit:   opts.FetchLimit,
		ctx:          ctx,
		cancel:       cancel,
		currencyCode: opts.DefaultCurrency,
		zoneID:       opts.DefaultZone,
		lastSeen:     now,
	}
	s.Orchestrator = ccpricing.NewOrchestrator(s)

	s.currencies.Push(ctx, s.loadCurrencies)
	s.zones.Push(ctx, s.loadZones)
	s.pushProducts(opts.DefaultZone)
	return s
}

func (s *Session) loadCurrencies(ctx context.Context) ([]ccpricing.Currency, error) {
	currencies, err := s.src.Currencies(ctx)
	if err != nil {
		logger.Warn(ctx, "currencies failed to load", logger.ErrorF(err))
		return nil, ccpricing.NewLoadError("currencies", err)
	}
	return currencies, nil
}

func (s *Session) loadZones(ctx context.Context) ([]ccpricing.Zone, error) {
	zones, err := s.src.Zones(ctx)
	if err != nil {
		logger.Warn(ctx, "zones failed to load", logger.ErrorF(err))
		return nil, ccpricing.NewLoadError("zones", err)
	}
	return zones, nil
}

func (s *Session) pushProducts(zoneID string) {
	s.products.Reset()
	s.products.Push(s.ctx, func(ctx context.Context) (Products, error) {
		return s.loadProducts(ctx, zoneID)
	})
}

// loadProducts fetches every product for zoneID. One product failing does
// not affect the others.
func (s *Session) loadProducts(ctx context.Context, zoneID string) (Products, error) {
	results := make([]ProductResult, len(s.productIDs))

	g, gctx := errgroup.WithContext(ctx)
	if s.fetchLimit > 0 {
		g.SetLimit(s.fetchLimit)
	}
	for i, id := range s.productIDs {
		g.Go(func() error {
			p, err := s.src.Product(gctx, id, zoneID)
			if err != nil {
				logger.Warn(ctx, "product failed to load",
					logger.String("product", id),
					logger.String("zone", zoneID),
					logger.ErrorF(err),
				)
				err = ccpricing.NewLoadError("product "+id, err)
			}
			results[i] = ProductResult{Product: p, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := Products{Zone: zoneID, Results: make(map[string]ProductResult, len(results))}
	for i, id := range s.productIDs {
		out.Results[id] = results[i]
	}
	return out, ctx.Err()
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ChangeCurrency records c as the display currency.
func (s *Session) ChangeCurrency(c ccpricing.Currency) {
	s.mu.Lock()
	s.currencyCode = c.Code()
	s.mu.Unlock()
	logger.Debug(s.ctx, "currency changed", logger.String("currency", c.Code()))
}

// ChangeZone records zoneID and reloads the products priced for it.
func (s *Session) ChangeZone(zoneID string) {
	s.mu.Lock()
	changed := s.zoneID != zoneID
	s.zoneID = zoneID
	s.mu.Unlock()

	if changed {
		logger.Debug(s.ctx, "zone changed", logger.String("zone", zoneID))
		s.pushProducts(zoneID)
	}
}

// Retry reloads the currency and zone lists whose last load failed. Their
// state goes back to pending until the new fetch publishes. It reports
// whether anything was reloaded.
func (s *Session) Retry() bool {
	retried := false
	if s.currencies.State().Err != nil {
		s.currencies.Reset()
		s.currencies.Push(s.ctx, s.loadCurrencies)
		retried = true
	}
	if s.zones.State().Err != nil {
		s.zones.Reset()
		s.zones.Push(s.ctx, s.loadZones)
		retried = true
	}
	if retried {
		logger.Debug(s.ctx, "retrying failed loads")
	}
	return retried
}

// CurrencyCode returns the selected currency code, loaded or not.
func (s *Session) CurrencyCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currencyCode
}

// Currency resolves the selected code against the loaded currencies. It
// reports false until they are loaded, or when the code is unknown.
func (s *Session) Currency() (ccpricing.Currency, bool) {
	st := s.currencies.State()
	if !st.Done || st.Err != nil {
		return ccpricing.Currency{}, false
	}
	return ccpricing.FindCurrency(st.Value, s.CurrencyCode())
}

// Currencies returns the currency list state.
func (s *Session) Currencies() State[[]ccpricing.Currency] {
	return s.currencies.State()
}

// ZoneID returns the selected zone.
func (s *Session) ZoneID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoneID
}

// Zones returns the zone list state.
func (s *Session) Zones() State[[]ccpricing.Zone] {
	return s.zones.State()
}

// ProductIDs returns the products shown on the page, in order.
func (s *Session) ProductIDs() []string {
	return slices.Clone(s.productIDs)
}

// Product returns the load result of id for the selected zone. It reports
// false while the product is still loading.
func (s *Session) Product(id string) (ProductResult, bool) {
	st := s.products.State()
	if !st.Done || st.Value.Zone != s.ZoneID() {
		return ProductResult{}, false
	}
	r, ok := st.Value.Results[id]
	if !ok {
		return ProductResult{Err: ccpricing.NewLoadError("product "+id, catalog.ErrProductNotFound)}, true
	}
	return r, true
}

// Context returns the session context, cancelled on Close. Its log fields
// carry the session id.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last opened or looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Close cancels in-flight fetches and waits for them to return.
func (s *Session) Close() {
	s.cancel()
	s.currencies.Close()
	s.zones.Close()
	s.products.Close()
}
