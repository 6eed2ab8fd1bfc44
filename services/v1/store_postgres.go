package v1

import (
	"context"
	"database/sql"
	"errors"
)

const (
	createConfigTable = `
CREATE TABLE IF NOT EXISTS uptime_config (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	selectConfig = `SELECT value FROM uptime_config WHERE key = $1`

	upsertConfig = `
INSERT INTO uptime_config (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// PostgresStore keeps the configuration blob in a key/value table. The value column is TEXT so
// the blob comes back byte for byte.
type PostgresStore struct {
	db  *sql.DB
	key string
}

func NewPostgresStore(db *sql.DB, key string) *PostgresStore {
	return &PostgresStore{db: db, key: key}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createConfigTable); err != nil {
		return storeUnavailable("postgres create table", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectConfig, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, storeUnavailable("postgres select", err)
	}
	return []byte(value), nil
}

func (s *PostgresStore) Put(ctx context.Context, blob []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertConfig, s.key, string(blob)); err != nil {
		return storeUnavailable("postgres upsert", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeUnavailable("postgres ping", err)
	}
	return nil
}
