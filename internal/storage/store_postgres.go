package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
        "key" TEXT PRIMARY KEY,
        value jsonb NOT NULL,
        "updatedAt" TEXT
    )`

	getValueQuery = `SELECT value FROM kv_store WHERE "key" = $1`

	putValueQuery = `INSERT INTO kv_store ("key", value, "updatedAt") VALUES ($1, $2, $3)
        ON CONFLICT ("key") DO UPDATE SET value = EXCLUDED.value, "updatedAt" = EXCLUDED."updatedAt"`

	removeValuesQuery = `DELETE FROM kv_store WHERE "key" = ANY($1::text[])`
)

// PostgresStore keeps every key in a single jsonb table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the kv_store table when missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createKVTable); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, getValueQuery, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return raw, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := p.db.ExecContext(ctx, putValueQuery, key, string(value), now); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := p.db.ExecContext(ctx, removeValuesQuery, pq.Array(keys)); err != nil {
		return fmt.Errorf("remove keys: %w", err)
	}
	return nil
}
