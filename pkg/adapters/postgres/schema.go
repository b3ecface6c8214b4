package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pfc_charts (
    name       TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    steps      INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// CreateSchema creates the pfc_charts table if it doesn't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the pfc_charts table.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS pfc_charts;`)
	return err
}
