package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the product catalog in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (and creates if needed) the catalog database at dbPath.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS product_data (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  detailed_category TEXT NOT NULL DEFAULT '',
  price REAL NOT NULL,
  weight_gram REAL NOT NULL,
  emission REAL NOT NULL,
  compensation_price REAL NOT NULL DEFAULT 0,
  UNIQUE(name, category, price)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create product_data table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_product_category ON product_data(category)`); err != nil {
		return fmt.Errorf("create category index: %w", err)
	}
	return nil
}

// Upsert inserts the product or updates the row with the same name, category and price.
func (s *SQLiteStore) Upsert(ctx context.Context, p Product) (int64, error) {
	const stmt = `
INSERT INTO product_data (name, category, detailed_category, price, weight_gram, emission, compensation_price)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, category, price) DO UPDATE SET
  detailed_category=excluded.detailed_category,
  weight_gram=excluded.weight_gram,
  emission=excluded.emission,
  compensation_price=excluded.compensation_price
RETURNING id;
`
	var id int64
	err := s.db.QueryRowContext(ctx, stmt,
		p.Name,
		p.Category,
		p.DetailedCategory,
		p.Price,
		p.WeightGram,
		p.Emission,
		p.CompensationPrice,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	return id, nil
}

const productColumns = `id, name, category, detailed_category, price, weight_gram, emission, compensation_price`

// List returns products with a non-zero emission, optionally limited to categories.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM product_data WHERE emission != 0`
	var args []any
	if len(f.Categories) > 0 {
		query += ` AND category IN (?` + strings.Repeat(`, ?`, len(f.Categories)-1) + `)`
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one product by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM product_data WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Peers returns every product of a category, the selected one included.
func (s *SQLiteStore) Peers(ctx context.Context, category string) ([]Product, error) {
	return s.List(ctx, Filter{Categories: []string{category}})
}

// Categories returns the distinct categories in alphabetical order.
func (s *SQLiteStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM product_data WHERE emission != 0 ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats returns the catalog summary shown at the top of the dashboard.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	const q = `
SELECT COUNT(*), COUNT(DISTINCT category), COALESCE(MIN(emission), 0), COALESCE(MAX(emission), 0)
FROM product_data WHERE emission != 0`
	var st Stats
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.Products, &st.Categories, &st.MinEmission, &st.MaxEmission); err != nil {
		return Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.DetailedCategory, &p.Price, &p.WeightGram, &p.Emission, &p.CompensationPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
