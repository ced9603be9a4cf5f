package resume

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS resume_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a KVStore backed by the resume_kv table
func NewPostgresStore(db *sqlx.DB) KVStore {
	return &postgresStore{db: db}
}

// EnsureSchema creates the resume_kv table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createTableQuery)
	return err
}

func (r *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, "SELECT key, value FROM resume_kv WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (r *postgresStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO resume_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}

func (r *postgresStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM resume_kv WHERE key = ANY($1)", pq.Array(keys))
	return err
}
