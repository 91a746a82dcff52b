package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"

	"github.com/pthm/ccpricing/components"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/catalog"
	"github.com/pthm/ccpricing/internal/catalog/sqlstore"
	"github.com/pthm/ccpricing/internal/closer"
	"github.com/pthm/ccpricing/internal/config"
	"github.com/pthm/ccpricing/internal/logger"
	"github.com/pthm/ccpricing/internal/session"
)

type di struct {
	closer *closer.Closer

	source   catalog.Source
	sessions *session.Manager
	registry *hx.Registry
	handler  http.Handler
}

func NewDI(c *closer.Closer) *di { return &di{closer: c} }

// CatalogSource returns the configured catalog behind a TTL cache. SQL
// catalogs are migrated and seeded with the built-in catalog when empty.
func (d *di) CatalogSource(ctx context.Context) (catalog.Source, error) {
	if d.source != nil {
		return d.source, nil
	}
	cfg := config.C().Catalog

	var src catalog.Source
	switch cfg.Driver() {
	case "static":
		src = catalog.NewStatic()
	case sqlstore.DriverSQLite, sqlstore.DriverPgx:
		store, err := openStore(ctx, cfg.Driver(), cfg.DSN())
		if err != nil {
			return nil, err
		}
		d.closer.AddNamed("catalog store", func(context.Context) error {
			return store.Close()
		})
		src = store
	default:
		return nil, fmt.Errorf("app: unknown catalog driver %q", cfg.Driver())
	}

	d.source = catalog.NewCached(src, cfg.CacheTTL())
	return d.source, nil
}

func openStore(ctx context.Context, driver, dsn string) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		logger.Error(ctx, "failed to apply migrations", logger.ErrorF(err))
		return nil, err
	}

	ids, err := store.ProductIDs(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if len(ids) == 0 {
		if err := store.Seed(ctx, catalog.NewStatic()); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info(ctx, "catalog seeded", logger.String("driver", driver))
	}
	return store, nil
}

func (d *di) Sessions(ctx context.Context) (*session.Manager, error) {
	if d.sessions != nil {
		return d.sessions, nil
	}

	src, err := d.CatalogSource(ctx)
	if err != nil {
		return nil, err
	}

	cfg := config.C().Pricing
	d.sessions = session.NewManager(src, session.Options{
		DefaultCurrency: cfg.DefaultCurrency(),
		DefaultZone:     cfg.DefaultZone(),
		Products:        cfg.Products(),
		TTL:             cfg.SessionTTL(),
		FetchLimit:      cfg.FetchLimit(),
	})
	d.closer.AddNamed("sessions", d.sessions.Shutdown)
	return d.sessions, nil
}

// Registry returns the component registry with the pricing components
// added.
func (d *di) Registry(ctx context.Context) (*hx.Registry, error) {
	if d.registry != nil {
		return d.registry, nil
	}

	sessions, err := d.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	key := config.C().Pricing.PropsKey()
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("app: generate props key: %w", err)
		}
		logger.Warn(ctx, "PRICING_PROPS_KEY is not set, props will not survive a restart")
	}

	reg := hx.NewRegistry(key)
	reg.OnError = onError
	components.Init(sessions, components.Links{
		Contact: config.C().Pricing.ContactURL(),
		Signup:  config.C().Pricing.SignupURL(),
	}, reg)

	d.registry = reg
	return d.registry, nil
}

// onError asks htmx to reload the page when the session behind a request
// has expired, so the user gets a fresh one.
func onError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotFound) && hx.IsHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
	}
	if !hx.IsNotFound(err) && !hx.IsBadRequest(err) {
		logger.Error(r.Context(), "component request failed",
			logger.String("path", r.URL.Path), logger.ErrorF(err))
	}
	hx.DefaultErrorHandler(w, r, err)
}

func (d *di) Handler(ctx context.Context) (http.Handler, error) {
	if d.handler != nil {
		return d.handler, nil
	}

	reg, err := d.Registry(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := d.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	switch router := config.C().Server.Router(); router {
	case "chi":
		d.handler = newChiRouter(reg, sessions)
	case "echo":
		d.handler = newEchoRouter(reg, sessions)
	default:
		return nil, fmt.Errorf("app: unknown router %q", router)
	}
	return d.handler, nil
}
