package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/internal/catalog"
)

// Seed replaces the stored catalog with the content of src: every
// currency, every zone, and every product priced for every zone. src must
// implement catalog.Lister.
func (s *Store) Seed(ctx context.Context, src catalog.Source) error {
	const op = "sqlstore.Seed"

	lister, ok := src.(catalog.Lister)
	if !ok {
		return fmt.Errorf("%s: source cannot list products", op)
	}
	ids, err := lister.ProductIDs(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	currencies, err := src.Currencies(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	zones, err := src.Zones(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"intervals", "features", "items", "products", "zones", "currencies"} {
		if err := s.exec(ctx, tx, s.sb.Delete(table)); err != nil {
			return fmt.Errorf("%s: clear %s: %w", op, table, err)
		}
	}

	for _, c := range currencies {
		q := s.sb.Insert("currencies").Columns("code", "change_rate").Values(c.Code(), c.ChangeRate)
		if err := s.exec(ctx, tx, q); err != nil {
			return fmt.Errorf("%s: currency %s: %w", op, c.Code(), err)
		}
	}

	for _, z := range zones {
		q := s.sb.Insert("zones").
			Columns("name", "id", "city", "country", "country_code", "display_name", "lat", "lon", "tags").
			Values(z.Name, z.ID, z.City, z.Country, z.CountryCode, z.DisplayName, z.Lat, z.Lon, strings.Join(z.Tags, ","))
		if err := s.exec(ctx, tx, q); err != nil {
			return fmt.Errorf("%s: zone %s: %w", op, z.Name, err)
		}

		for pos, id := range ids {
			p, err := src.Product(ctx, id, z.Name)
			if err != nil {
				return fmt.Errorf("%s: product %s in %s: %w", op, id, z.Name, err)
			}
			if err := s.insertProduct(ctx, tx, z.Name, pos, p); err != nil {
				return fmt.Errorf("%s: product %s in %s: %w", op, id, z.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) insertProduct(ctx context.Context, tx *sql.Tx, zone string, pos int, p ccpricing.CatalogProduct) error {
	q := s.sb.Insert("products").
		Columns("id", "zone", "name", "icon", "description", "position").
		Values(p.ID, zone, p.Name, p.Icon, p.Description, pos)
	if err := s.exec(ctx, tx, q); err != nil {
		return err
	}
	if err := s.insertFeatures(ctx, tx, p.ID, zone, -1, p.Features); err != nil {
		return err
	}

	for i, it := range p.Items {
		q := s.sb.Insert("items").
			Columns("product_id", "zone", "position", "id", "name", "price").
			Values(p.ID, zone, i, it.ID, it.Name, it.Price)
		if err := s.exec(ctx, tx, q); err != nil {
			return err
		}
		if err := s.insertFeatures(ctx, tx, p.ID, zone, i, it.Features); err != nil {
			return err
		}
	}

	if err := s.insertIntervals(ctx, tx, p.ID, zone, kindStorage, p.Storage); err != nil {
		return err
	}
	return s.insertIntervals(ctx, tx, p.ID, zone, kindTraffic, p.Traffic)
}

func (s *Store) insertIntervals(ctx context.Context, tx *sql.Tx, productID, zone, kind string, intervals []ccpricing.Interval) error {
	if len(intervals) == 0 {
		return nil
	}
	q := s.sb.Insert("intervals").Columns("product_id", "zone", "kind", "position", "min_range", "max_range", "price")
	for i, in := range intervals {
		upper := decimal.NullDecimal{Decimal: in.MaxRange, Valid: !in.Unbounded()}
		q = q.Values(productID, zone, kind, i, in.MinRange, upper, in.Price)
	}
	return s.exec(ctx, tx, q)
}

func (s *Store) insertFeatures(ctx context.Context, tx *sql.Tx, productID, zone string, itemPos int, features []ccpricing.Feature) error {
	if len(features) == 0 {
		return nil
	}
	q := s.sb.Insert("features").Columns("product_id", "zone", "item_position", "position", "code", "name", "value")
	for i, f := range features {
		q = q.Values(productID, zone, itemPos, i, f.Code, f.Name, f.Value)
	}
	return s.exec(ctx, tx, q)
}

func (s *Store) exec(ctx context.Context, tx *sql.Tx, q sq.Sqlizer) error {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, sqlStr, args...)
	return err
}
