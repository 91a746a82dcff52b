// Package sqlstore is a catalog Source backed by database/sql, on SQLite
// (modernc.org/sqlite) or PostgreSQL (pgx stdlib).
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/pthm/ccpricing"
	"github.com/pthm/ccpricing/internal/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Store reads the catalog tables.
type Store struct {
	db      *sql.DB
	driver  string
	sb      sq.StatementBuilderType
	dialect goose.Dialect
}

// Open connects to dsn with driver and returns an unmigrated store.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	const op = "sqlstore.Open"

	var (
		ph      sq.PlaceholderFormat
		dialect goose.Dialect
	)
	switch driver {
	case DriverSQLite:
		ph, dialect = sq.Question, goose.DialectSQLite3
	case DriverPgx:
		ph, dialect = sq.Dollar, goose.DialectPostgres
	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if driver == DriverSQLite {
		// In-memory databases exist per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Store{
		db:      db,
		driver:  driver,
		sb:      sq.StatementBuilder.PlaceholderFormat(ph),
		dialect: dialect,
	}, nil
}

// Migrate applies the embedded migrations.
func (s *Store) Migrate(ctx context.Context) error {
	const op = "sqlstore.Migrate"

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	provider, err := goose.NewProvider(s.dialect, s.db, fsys)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Currencies(ctx context.Context) ([]ccpricing.Currency, error) {
	q := s.sb.Select("code", "change_rate").From("currencies").OrderBy("code")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ccpricing.Currency
	for rows.Next() {
		var (
			code string
			rate decimal.Decimal
		)
		if err := rows.Scan(&code, &rate); err != nil {
			return nil, err
		}
		c, err := ccpricing.NewCurrency(code, rate)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Zones(ctx context.Context) ([]ccpricing.Zone, error) {
	q := s.sb.
		Select("id", "name", "city", "country", "country_code", "display_name", "lat", "lon", "tags").
		From("zones").
		OrderBy("name")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ccpricing.Zone
	for rows.Next() {
		var (
			z    ccpricing.Zone
			tags string
		)
		if err := rows.Scan(&z.ID, &z.Name, &z.City, &z.Country, &z.CountryCode, &z.DisplayName, &z.Lat, &z.Lon, &tags); err != nil {
			return nil, err
		}
		if tags != "" {
			z.Tags = strings.Split(tags, ",")
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (s *Store) ProductIDs(ctx context.Context) ([]string, error) {
	// Products are stored once per zone; MIN keeps the catalog order.
	q := s.sb.Select("id").From("products").GroupBy("id").OrderBy("MIN(position)", "id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Product(ctx context.Context, id, zoneID string) (ccpricing.CatalogProduct, error) {
	var p ccpricing.CatalogProduct

	sqlStr, args, err := s.sb.
		Select("id", "name", "icon", "description").
		From("products").
		Where(sq.Eq{"id": id, "zone": zoneID}).
		ToSql()
	if err != nil {
		return p, err
	}
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&p.ID, &p.Name, &p.Icon, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, s.notFound(ctx, id, zoneID)
		}
		return p, err
	}

	if p.Items, err = s.items(ctx, id, zoneID); err != nil {
		return p, err
	}
	features, err := s.features(ctx, id, zoneID)
	if err != nil {
		return p, err
	}
	p.Features = features[-1]
	for i := range p.Items {
		p.Items[i].Features = features[i]
	}

	intervals, err := s.intervals(ctx, id, zoneID)
	if err != nil {
		return p, err
	}
	p.Storage, p.Traffic = intervals[kindStorage], intervals[kindTraffic]
	return p, nil
}

func (s *Store) notFound(ctx context.Context, id, zoneID string) error {
	sqlStr, args, err := s.sb.Select("COUNT(*)").From("zones").Where(sq.Eq{"name": zoneID}).ToSql()
	if err != nil {
		return err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrZoneNotFound, zoneID)
	}
	return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
}

func (s *Store) items(ctx context.Context, id, zoneID string) ([]ccpricing.CatalogItem, error) {
	sqlStr, args, err := s.sb.
		Select("id", "name", "price").
		From("items").
		Where(sq.Eq{"product_id": id, "zone": zoneID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ccpricing.CatalogItem
	for rows.Next() {
		var it ccpricing.CatalogItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// features returns feature lists keyed by item position, -1 for the
// product itself.
func (s *Store) features(ctx context.Context, id, zoneID string) (map[int][]ccpricing.Feature, error) {
	sqlStr, args, err := s.sb.
		Select("item_position", "code", "name", "value").
		From("features").
		Where(sq.Eq{"product_id": id, "zone": zoneID}).
		OrderBy("item_position", "position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]ccpricing.Feature)
	for rows.Next() {
		var (
			pos int
			f   ccpricing.Feature
		)
		if err := rows.Scan(&pos, &f.Code, &f.Name, &f.Value); err != nil {
			return nil, err
		}
		out[pos] = append(out[pos], f)
	}
	return out, rows.Err()
}

const (
	kindStorage = "storage"
	kindTraffic = "traffic"
)

// intervals returns the volume tiers of a product keyed by kind.
func (s *Store) intervals(ctx context.Context, id, zoneID string) (map[string][]ccpricing.Interval, error) {
	sqlStr, args, err := s.sb.
		Select("kind", "min_range", "max_range", "price").
		From("intervals").
		Where(sq.Eq{"product_id": id, "zone": zoneID}).
		OrderBy("kind", "position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]ccpricing.Interval)
	for rows.Next() {
		var (
			kind  string
			i     ccpricing.Interval
			upper decimal.NullDecimal
		)
		if err := rows.Scan(&kind, &i.MinRange, &upper, &i.Price); err != nil {
			return nil, err
		}
		if upper.Valid {
			i.MaxRange = upper.Decimal
		}
		out[kind] = append(out[kind], i)
	}
	return out, rows.Err()
}
