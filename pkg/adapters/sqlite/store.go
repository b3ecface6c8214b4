// Package sqlite stores charts in a SQLite database through the pure-Go
// modernc driver. The schema is managed with embedded goose migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	_ "modernc.org/sqlite"
)

// Store implements ports.ChartStore on a SQLite table.
type Store struct {
	db    *sql.DB
	codec schema.Codec
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the codec used for chart payloads. Defaults to JSON.
// Rows written with another codec remain readable.
func WithCodec(c schema.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// Open opens (or creates) the database at path and migrates it.
// Use ":memory:" for a private in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewFromDB(db, opts...), nil
}

// NewFromDB wraps an already migrated database.
func NewFromDB(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, codec: schema.JSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the chart row.
func (s *Store) Save(ctx context.Context, c *schema.Chart) error {
	if c == nil || c.Name == "" {
		return ports.ErrInvalidName
	}
	data, err := schema.Encode(s.codec, c)
	if err != nil {
		return fmt.Errorf("failed to encode chart %s: %w", c.Name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pfc_charts (name, codec, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET codec = excluded.codec, payload = excluded.payload, updated_at = excluded.updated_at`,
		c.Name, s.codec.Name(), data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save chart %s: %w", c.Name, err)
	}
	return nil
}

// Load reads and decodes the chart row.
func (s *Store) Load(ctx context.Context, name string) (*schema.Chart, error) {
	if name == "" {
		return nil, ports.ErrInvalidName
	}
	var (
		codecName string
		data      []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT codec, payload FROM pfc_charts WHERE name = ?`, name,
	).Scan(&codecName, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ports.ErrChartNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", name, err)
	}
	codec, err := schema.CodecFor(codecName)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", name, err)
	}
	return schema.Decode(codec, data)
}

// Delete removes the chart row. Deleting a missing chart is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ports.ErrInvalidName
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pfc_charts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete chart %s: %w", name, err)
	}
	return nil
}

// List returns the stored chart names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pfc_charts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan chart name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
