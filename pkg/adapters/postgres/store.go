// Package postgres stores charts as JSONB rows in PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements ports.ChartStore using PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// New creates a Store backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool for dsn and makes sure the schema exists.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	s := New(pool)
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.db.Close()
}

// Save upserts the chart row.
func (s *Store) Save(ctx context.Context, c *schema.Chart) error {
	if c == nil || c.Name == "" {
		return ports.ErrInvalidName
	}
	data, err := schema.Encode(schema.JSON, c)
	if err != nil {
		return fmt.Errorf("failed to encode chart %s: %w", c.Name, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pfc_charts (name, payload, steps, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET
			payload = EXCLUDED.payload,
			steps = EXCLUDED.steps,
			updated_at = EXCLUDED.updated_at
	`, c.Name, data, len(c.Steps))
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
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT payload FROM pfc_charts WHERE name = $1`, name).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ports.ErrChartNotFound, name)
		}
		return nil, fmt.Errorf("failed to load chart %s: %w", name, err)
	}
	return schema.Decode(schema.JSON, data)
}

// Delete removes the chart row. Deleting a missing chart is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ports.ErrInvalidName
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM pfc_charts WHERE name = $1`, name); err != nil {
		return fmt.Errorf("failed to delete chart %s: %w", name, err)
	}
	return nil
}

// List returns the stored chart names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM pfc_charts ORDER BY name COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
