package envconfig

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type catalogEnv struct {
	Driver   string        `env:"CATALOG_DRIVER" envDefault:"static"`
	DSN      string        `env:"CATALOG_DSN"`
	CacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"24h"`
}

type catalog struct {
	raw catalogEnv
}

func NewCatalogConfig() (*catalog, error) {
	var raw catalogEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	switch raw.Driver {
	case "static":
	case "sqlite":
		if raw.DSN == "" {
			raw.DSN = "file:catalog.db?cache=shared"
		}
	case "pgx":
		if raw.DSN == "" {
			return nil, fmt.Errorf("CATALOG_DSN is required with CATALOG_DRIVER=%s", raw.Driver)
		}
	default:
		return nil, fmt.Errorf("CATALOG_DRIVER: unknown driver %q", raw.Driver)
	}
	return &catalog{raw: raw}, nil
}

func (cfg *catalog) Driver() string          { return cfg.raw.Driver }
func (cfg *catalog) DSN() string             { return cfg.raw.DSN }
func (cfg *catalog) CacheTTL() time.Duration { return cfg.raw.CacheTTL }
