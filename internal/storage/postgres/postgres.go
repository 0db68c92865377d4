// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"card-assistant/internal/storage"
)

// KV persists entries in a single kv_entries table with jsonb values.
// Upserts are last-write-wins, which is all the contract asks for.
type KV struct {
	db *pgxpool.Pool
}

func NewKV(db *pgxpool.Pool) *KV {
	return &KV{db: db}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := k.db.QueryRow(ctx, "SELECT value FROM kv_entries WHERE key = $1", key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get entry %q: %w", key, err)
	}
	return value, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := k.db.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("set entry %q: %w", key, err)
	}
	return nil
}

func (k *KV) Remove(ctx context.Context, key string) error {
	_, err := k.db.Exec(ctx, "DELETE FROM kv_entries WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("remove entry %q: %w", key, err)
	}
	return nil
}
