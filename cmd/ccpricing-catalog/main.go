package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/internal/catalog"
	"github.com/pthm/ccpricing/internal/catalog/sqlstore"
	"github.com/pthm/ccpricing/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "migrate":
		err = withStore(ctx, func(*sqlstore.Store) error { return nil })
	case "seed":
		err = withStore(ctx, func(s *sqlstore.Store) error {
			return s.Seed(ctx, catalog.NewStatic())
		})
	case "show":
		err = runShow(ctx, os.Stdout, args)
	case "version":
		fmt.Printf("ccpricing-catalog version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ccpricing-catalog - manage the SQL pricing catalog

Usage:
  ccpricing-catalog <command> [arguments]

Commands:
  migrate               Apply catalog migrations
  seed                  Replace the catalog content with the built-in catalog
  show <product> [zone] Print the items of a product in a zone (default: par)
  version               Print version
  help                  Show this help

The database is selected with CATALOG_DRIVER (sqlite or pgx) and CATALOG_DSN.

Examples:
  CATALOG_DRIVER=sqlite ccpricing-catalog seed
  CATALOG_DRIVER=pgx CATALOG_DSN=postgres://... ccpricing-catalog show redis-addon rbx`)
}

// withStore opens and migrates the configured catalog database, then runs fn.
func withStore(ctx context.Context, fn func(*sqlstore.Store) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	cfg := config.C().Catalog
	if cfg.Driver() == "static" {
		return fmt.Errorf("CATALOG_DRIVER is static, nothing to manage")
	}

	store, err := sqlstore.Open(ctx, cfg.Driver(), cfg.DSN())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return fn(store)
}

func runShow(ctx context.Context, w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("show: product id required")
	}
	productID, zoneID := args[0], "par"
	if len(args) > 1 {
		zoneID = args[1]
	}

	return withStore(ctx, func(s *sqlstore.Store) error {
		p, err := s.Product(ctx, productID, zoneID)
		if err != nil {
			return err
		}
		return printProduct(w, p)
	})
}

func printProduct(w io.Writer, p ccpricing.CatalogProduct) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID); err != nil {
		return err
	}
	for _, item := range p.Items {
		_, err := fmt.Fprintf(w, "  %-32s %14s/day %16s/30 days\n",
			item.Name,
			ccpricing.FormatPrice(ccpricing.DailyPrice(item, ccpricing.EUR), ccpricing.EUR),
			ccpricing.FormatPrice(ccpricing.MonthlyPrice(item, ccpricing.EUR), ccpricing.EUR),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
